package models

import (
	"time"

	"github.com/google/uuid"
)

// Review is post-exchange feedback from one participant about the other.
type Review struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ReviewerID uuid.UUID `gorm:"column:reviewer_id;type:uuid;not null"`
	RevieweeID uuid.UUID `gorm:"column:reviewee_id;type:uuid;not null;index:reviews_reviewee_id_idx"`
	RequestID  uuid.UUID `gorm:"column:request_id;type:uuid;not null;index:reviews_request_id_idx"`
	Rating     int       `gorm:"column:rating;not null"`
	Comment    *string   `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}
