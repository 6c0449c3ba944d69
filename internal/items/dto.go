package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// CreateItemInput carries the fields required to list a garment.
type CreateItemInput struct {
	Title          string
	Description    string
	Images         []string
	Category       enums.ItemCategory
	Size           enums.ItemSize
	Condition      enums.ItemCondition
	Mode           enums.ItemMode
	BorrowFee      *decimal.Decimal
	BorrowDuration *int
	Location       *string
}

// ListFilters narrows the public catalog listing.
type ListFilters struct {
	Category *enums.ItemCategory
	Mode     *enums.ItemMode
	Size     *enums.ItemSize
	Near     *string
	RadiusKM *float64
}

// ItemDTO is the transport shape of a listing.
type ItemDTO struct {
	ID             uuid.UUID           `json:"id"`
	OwnerID        uuid.UUID           `json:"owner_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Images         []string            `json:"images"`
	Category       enums.ItemCategory  `json:"category"`
	Size           enums.ItemSize      `json:"size"`
	Condition      enums.ItemCondition `json:"condition"`
	Mode           enums.ItemMode      `json:"mode"`
	BorrowFee      *decimal.Decimal    `json:"borrow_fee,omitempty"`
	BorrowDuration *int                `json:"borrow_duration,omitempty"`
	IsAvailable    bool                `json:"is_available"`
	Location       *string             `json:"location,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// ItemWithOwner pairs a listing with its owner's public summary.
type ItemWithOwner struct {
	ItemDTO
	Owner *users.UserSummary `json:"owner,omitempty"`
}

func FromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:             m.ID,
		OwnerID:        m.OwnerID,
		Title:          m.Title,
		Description:    m.Description,
		Images:         append([]string(nil), m.Images...),
		Category:       m.Category,
		Size:           m.Size,
		Condition:      m.Condition,
		Mode:           m.Mode,
		BorrowFee:      m.BorrowFee,
		BorrowDuration: m.BorrowDuration,
		IsAvailable:    m.IsAvailable,
		Location:       m.Location,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func (c CreateItemInput) ToModel(ownerID uuid.UUID) *models.Item {
	images := c.Images
	if images == nil {
		images = []string{}
	}
	return &models.Item{
		OwnerID:        ownerID,
		Title:          c.Title,
		Description:    c.Description,
		Images:         append([]string(nil), images...),
		Category:       c.Category,
		Size:           c.Size,
		Condition:      c.Condition,
		Mode:           c.Mode,
		BorrowFee:      c.BorrowFee,
		BorrowDuration: c.BorrowDuration,
		IsAvailable:    true,
		Location:       c.Location,
	}
}
