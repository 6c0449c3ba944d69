package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/api/responses"
	"github.com/rewear-app/rewear-backend/api/validators"
	reviewsvc "github.com/rewear-app/rewear-backend/internal/reviews"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/logger"
	"github.com/rewear-app/rewear-backend/pkg/pagination"
)

// CreateReview records feedback on a completed request.
func CreateReview(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		var payload createReviewRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.Create(r.Context(), callerID(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, review)
	}
}

// ListUserReviews pages through reviews received by a user.
func ListUserReviews(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		revieweeID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := pagination.Params{Limit: limit}
		if cursor := validators.QueryString(r, "cursor"); cursor != nil {
			params.Cursor = *cursor
		}

		page, err := svc.ListByReviewee(r.Context(), revieweeID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// UserRatingSummary returns the aggregate rating for a user.
func UserRatingSummary(svc reviewsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reviews service unavailable"))
			return
		}

		revieweeID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.AverageRating(r.Context(), revieweeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}

type createReviewRequest struct {
	RevieweeID string  `json:"reviewee_id" validate:"required"`
	RequestID  string  `json:"request_id" validate:"required"`
	Rating     int     `json:"rating" validate:"required,min=1,max=5"`
	Comment    *string `json:"comment,omitempty"`
}

func (r createReviewRequest) toCreateInput() (reviewsvc.CreateReviewInput, error) {
	revieweeID, err := uuid.Parse(strings.TrimSpace(r.RevieweeID))
	if err != nil {
		return reviewsvc.CreateReviewInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reviewee id")
	}
	requestID, err := uuid.Parse(strings.TrimSpace(r.RequestID))
	if err != nil {
		return reviewsvc.CreateReviewInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request id")
	}
	return reviewsvc.CreateReviewInput{
		RevieweeID: revieweeID,
		RequestID:  requestID,
		Rating:     r.Rating,
		Comment:    r.Comment,
	}, nil
}
