package requests

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// CreateRequestInput carries the fields required to open a request.
type CreateRequestInput struct {
	ItemID  uuid.UUID
	Type    enums.RequestType
	Message *string
}

// RequestDTO is the transport shape of a lifecycle request.
type RequestDTO struct {
	ID            uuid.UUID            `json:"id"`
	ItemID        uuid.UUID            `json:"item_id"`
	RequesterID   uuid.UUID            `json:"requester_id"`
	OwnerID       uuid.UUID            `json:"owner_id"`
	Type          enums.RequestType    `json:"type"`
	Status        enums.RequestStatus  `json:"status"`
	Message       *string              `json:"message,omitempty"`
	Fee           *decimal.Decimal     `json:"fee,omitempty"`
	Duration      *int                 `json:"duration,omitempty"`
	ReturnDate    *time.Time           `json:"return_date,omitempty"`
	PaymentStatus *enums.PaymentStatus `json:"payment_status,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// ItemRef is the compact item shape embedded in request reads. Deleted items
// render as tombstones instead of failing the read.
type ItemRef struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Image   *string   `json:"image,omitempty"`
	Deleted bool      `json:"deleted,omitempty"`
}

// RequestWithContext pairs a request with its item reference and the
// counterparty's public summary.
type RequestWithContext struct {
	RequestDTO
	Item         *ItemRef           `json:"item"`
	Counterparty *users.UserSummary `json:"counterparty,omitempty"`
}

func FromModel(m *models.Request) *RequestDTO {
	if m == nil {
		return nil
	}
	return &RequestDTO{
		ID:            m.ID,
		ItemID:        m.ItemID,
		RequesterID:   m.RequesterID,
		OwnerID:       m.OwnerID,
		Type:          m.Type,
		Status:        m.Status,
		Message:       m.Message,
		Fee:           m.Fee,
		Duration:      m.Duration,
		ReturnDate:    m.ReturnDate,
		PaymentStatus: m.PaymentStatus,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func itemRef(itemID uuid.UUID, item *models.Item) *ItemRef {
	if item == nil {
		return &ItemRef{ID: itemID, Title: "unknown item", Deleted: true}
	}
	ref := &ItemRef{ID: item.ID, Title: item.Title}
	if len(item.Images) > 0 {
		first := item.Images[0]
		ref.Image = &first
	}
	return ref
}
