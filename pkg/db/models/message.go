package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// Message is one line of the append-only chat transcript scoped to a request.
type Message struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RequestID uuid.UUID         `gorm:"column:request_id;type:uuid;not null;index:messages_request_id_idx"`
	SenderID  uuid.UUID         `gorm:"column:sender_id;type:uuid;not null"`
	Content   string            `gorm:"column:content;not null"`
	Type      enums.MessageType `gorm:"column:type;not null;default:'text'"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
}
