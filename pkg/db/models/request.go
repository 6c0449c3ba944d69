package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// Request links a requester to an item. OwnerID is denormalized from the
// item at creation for query efficiency. Fee and Duration are snapshots of
// the item's borrow terms at creation, never live-linked.
type Request struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ItemID        uuid.UUID            `gorm:"column:item_id;type:uuid;not null;index:requests_item_id_idx"`
	RequesterID   uuid.UUID            `gorm:"column:requester_id;type:uuid;not null;index:requests_requester_id_idx"`
	OwnerID       uuid.UUID            `gorm:"column:owner_id;type:uuid;not null;index:requests_owner_id_idx"`
	Type          enums.RequestType    `gorm:"column:type;not null"`
	Status        enums.RequestStatus  `gorm:"column:status;not null;default:'pending';index:requests_status_idx"`
	Message       *string              `gorm:"column:message"`
	Fee           *decimal.Decimal     `gorm:"column:fee;type:numeric(10,2)"`
	Duration      *int                 `gorm:"column:duration"`
	ReturnDate    *time.Time           `gorm:"column:return_date"`
	PaymentStatus *enums.PaymentStatus `gorm:"column:payment_status"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
