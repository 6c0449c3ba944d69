package reviews

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/pagination"
)

// oneReviewConstraint enforces a single review per direction per request.
const oneReviewConstraint = "reviews_request_reviewer_uniq_idx"

type requestReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error)
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// RatingSummary aggregates a user's received feedback.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// Service exposes post-exchange feedback operations.
type Service interface {
	Create(ctx context.Context, reviewerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListByReviewee(ctx context.Context, revieweeID uuid.UUID, params pagination.Params) (*ReviewPage, error)
	AverageRating(ctx context.Context, revieweeID uuid.UUID) (*RatingSummary, error)
}

type service struct {
	repo     Repository
	requests requestReader
	users    userReader
}

// NewService builds a reviews service with the required dependencies.
func NewService(repo Repository, requests requestReader, userReader userReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if requests == nil {
		return nil, fmt.Errorf("requests reader required")
	}
	if userReader == nil {
		return nil, fmt.Errorf("users reader required")
	}
	return &service{repo: repo, requests: requests, users: userReader}, nil
}

func (s *service) Create(ctx context.Context, reviewerID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if reviewerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	if input.RevieweeID == uuid.Nil || input.RequestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewee and request ids required")
	}
	if input.RevieweeID == reviewerID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot review yourself")
	}

	if _, err := s.users.FindByID(ctx, input.RevieweeID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "reviewee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewee")
	}

	request, err := s.requests.FindByID(ctx, input.RequestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request.RequesterID != reviewerID && request.OwnerID != reviewerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only request participants can leave reviews")
	}

	review, err := s.repo.Create(ctx, &models.Review{
		ReviewerID: reviewerID,
		RevieweeID: input.RevieweeID,
		RequestID:  input.RequestID,
		Rating:     input.Rating,
		Comment:    input.Comment,
	})
	if err != nil {
		if db.IsUniqueViolation(err, oneReviewConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "review already submitted for this request")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return FromModel(review), nil
}

func (s *service) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, params pagination.Params) (*ReviewPage, error) {
	if revieweeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewee id required")
	}

	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.ListByReviewee(ctx, revieweeID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}

	reviewerIDs := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for i := range rows {
		if _, ok := seen[rows[i].ReviewerID]; ok {
			continue
		}
		seen[rows[i].ReviewerID] = struct{}{}
		reviewerIDs = append(reviewerIDs, rows[i].ReviewerID)
	}

	reviewers, err := s.users.FindByIDs(ctx, reviewerIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reviewers")
	}

	page := &ReviewPage{Reviews: make([]ReviewDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		dto := *FromModel(&rows[i])
		if reviewer, ok := reviewers[rows[i].ReviewerID]; ok {
			dto.Reviewer = users.SummaryFromModel(reviewer, false)
		}
		page.Reviews = append(page.Reviews, dto)
	}
	return page, nil
}

func (s *service) AverageRating(ctx context.Context, revieweeID uuid.UUID) (*RatingSummary, error) {
	if revieweeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reviewee id required")
	}
	average, count, err := s.repo.AverageRating(ctx, revieweeID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "aggregate ratings")
	}
	return &RatingSummary{Average: average, Count: count}, nil
}
