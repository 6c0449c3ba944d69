package reviews

import (
	"time"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
)

// CreateReviewInput carries the fields required to leave feedback.
type CreateReviewInput struct {
	RevieweeID uuid.UUID
	RequestID  uuid.UUID
	Rating     int
	Comment    *string
}

// ReviewDTO is the transport shape of a review, enriched with the
// reviewer's public summary.
type ReviewDTO struct {
	ID         uuid.UUID          `json:"id"`
	ReviewerID uuid.UUID          `json:"reviewer_id"`
	RevieweeID uuid.UUID          `json:"reviewee_id"`
	RequestID  uuid.UUID          `json:"request_id"`
	Rating     int                `json:"rating"`
	Comment    *string            `json:"comment,omitempty"`
	Reviewer   *users.UserSummary `json:"reviewer,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// ReviewPage is one cursor page of reviews.
type ReviewPage struct {
	Reviews    []ReviewDTO `json:"reviews"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

func FromModel(m *models.Review) *ReviewDTO {
	if m == nil {
		return nil
	}
	return &ReviewDTO{
		ID:         m.ID,
		ReviewerID: m.ReviewerID,
		RevieweeID: m.RevieweeID,
		RequestID:  m.RequestID,
		Rating:     m.Rating,
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt,
	}
}
