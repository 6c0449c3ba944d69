package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/api/responses"
	"github.com/rewear-app/rewear-backend/api/validators"
	requestsvc "github.com/rewear-app/rewear-backend/internal/requests"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/logger"
)

// CreateRequest opens an exchange or borrow request against a listing.
func CreateRequest(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		var payload createRequestRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.Create(r.Context(), callerID(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, request)
	}
}

// UpdateRequestStatus moves a request through its lifecycle, owner only.
func UpdateRequestStatus(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			Status string `json:"status" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseRequestStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		request, err := svc.UpdateStatus(r.Context(), requestID, status, callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// MarkRequestReturned closes out an accepted borrow, owner only.
func MarkRequestReturned(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.MarkReturned(r.Context(), requestID, callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// MarkRequestPaid settles a borrow fee, requester only.
func MarkRequestPaid(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requestID, err := pathUUID(r, "requestID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		request, err := svc.MarkPaid(r.Context(), requestID, callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, request)
	}
}

// ListMyRequests returns the requests the caller has opened.
func ListMyRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requests, err := svc.ListMine(r.Context(), callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requests)
	}
}

// ListMyItemRequests returns requests targeting the caller's listings.
func ListMyItemRequests(svc requestsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "requests service unavailable"))
			return
		}

		requests, err := svc.ListMyItemRequests(r.Context(), callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, requests)
	}
}

type createRequestRequest struct {
	ItemID  string  `json:"item_id" validate:"required"`
	Type    string  `json:"type" validate:"required"`
	Message *string `json:"message,omitempty"`
}

func (r createRequestRequest) toCreateInput() (requestsvc.CreateRequestInput, error) {
	itemID, err := uuid.Parse(strings.TrimSpace(r.ItemID))
	if err != nil {
		return requestsvc.CreateRequestInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id")
	}
	reqType, err := enums.ParseRequestType(strings.TrimSpace(r.Type))
	if err != nil {
		return requestsvc.CreateRequestInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request type")
	}
	return requestsvc.CreateRequestInput{
		ItemID:  itemID,
		Type:    reqType,
		Message: r.Message,
	}, nil
}
