package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// Item represents a listed garment. OwnerID is immutable after creation;
// IsAvailable is written by the request lifecycle or the owner's explicit
// availability toggle, nothing else.
type Item struct {
	ID             uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID           `gorm:"column:owner_id;type:uuid;not null;index:items_owner_id_idx"`
	Title          string              `gorm:"column:title;not null"`
	Description    string              `gorm:"column:description;not null"`
	Images         pq.StringArray      `gorm:"column:images;type:text[];not null;default:ARRAY[]::text[]"`
	Category       enums.ItemCategory  `gorm:"column:category;not null;index:items_category_idx"`
	Size           enums.ItemSize      `gorm:"column:size;not null"`
	Condition      enums.ItemCondition `gorm:"column:condition;not null"`
	Mode           enums.ItemMode      `gorm:"column:mode;not null;index:items_mode_idx"`
	BorrowFee      *decimal.Decimal    `gorm:"column:borrow_fee;type:numeric(10,2)"`
	BorrowDuration *int                `gorm:"column:borrow_duration"`
	IsAvailable    bool                `gorm:"column:is_available;not null;default:true;index:items_availability_idx"`
	Location       *string             `gorm:"column:location"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
