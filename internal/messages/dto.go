package messages

import (
	"time"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// SendMessageInput carries the fields required to append a chat line.
type SendMessageInput struct {
	RequestID uuid.UUID
	Content   string
	Type      *enums.MessageType
}

// MessageDTO is the transport shape of a chat line, enriched with the
// sender's public summary.
type MessageDTO struct {
	ID        uuid.UUID          `json:"id"`
	RequestID uuid.UUID          `json:"request_id"`
	SenderID  uuid.UUID          `json:"sender_id"`
	Content   string             `json:"content"`
	Type      enums.MessageType  `json:"type"`
	Sender    *users.UserSummary `json:"sender,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

func FromModel(m *models.Message) *MessageDTO {
	if m == nil {
		return nil
	}
	return &MessageDTO{
		ID:        m.ID,
		RequestID: m.RequestID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		Type:      m.Type,
		CreatedAt: m.CreatedAt,
	}
}
