package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rewear-app/rewear-backend/api/responses"
	"github.com/rewear-app/rewear-backend/api/validators"
	itemsvc "github.com/rewear-app/rewear-backend/internal/items"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/geo"
	"github.com/rewear-app/rewear-backend/pkg/logger"
)

// CreateItem handles listing creation for the authenticated owner.
func CreateItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Create(r.Context(), callerID(r), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ListItems serves the public catalog with optional filters.
func ListItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		filters, err := listFiltersFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListAvailable(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// GetItem serves the public item detail including owner contact.
func GetItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetByID(r.Context(), itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ListMyItems returns the caller's own listings, available or not.
// ListUserItems returns a user's full wardrobe, available or not. The
// route is public so anyone can browse another member's listings.
func ListUserItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		ownerID, err := pathUUID(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.ListByOwner(r.Context(), ownerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

func ListMyItems(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		items, err := svc.ListByOwner(r.Context(), callerID(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// SetItemAvailability toggles a listing's availability, owner only.
func SetItemAvailability(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload struct {
			IsAvailable *bool `json:"is_available" validate:"required"`
		}
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.SetAvailability(r.Context(), itemID, *payload.IsAvailable, callerID(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}

// DeleteItem removes a listing, owner only.
func DeleteItem(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "items service unavailable"))
			return
		}

		itemID, err := pathUUID(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), itemID, callerID(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type createItemRequest struct {
	Title          string   `json:"title" validate:"required"`
	Description    string   `json:"description" validate:"required"`
	Images         []string `json:"images,omitempty"`
	Category       string   `json:"category" validate:"required"`
	Size           string   `json:"size" validate:"required"`
	Condition      string   `json:"condition" validate:"required"`
	Mode           string   `json:"mode" validate:"required"`
	BorrowFee      *string  `json:"borrow_fee,omitempty"`
	BorrowDuration *int     `json:"borrow_duration,omitempty"`
	Location       *string  `json:"location,omitempty"`
}

func (r createItemRequest) toCreateInput() (itemsvc.CreateItemInput, error) {
	category, err := enums.ParseItemCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	size, err := enums.ParseItemSize(strings.TrimSpace(r.Size))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
	}
	condition, err := enums.ParseItemCondition(strings.TrimSpace(r.Condition))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid condition")
	}
	mode, err := enums.ParseItemMode(strings.TrimSpace(r.Mode))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode")
	}

	var fee *decimal.Decimal
	if r.BorrowFee != nil {
		parsed, err := decimal.NewFromString(strings.TrimSpace(*r.BorrowFee))
		if err != nil {
			return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid borrow fee")
		}
		fee = &parsed
	}

	return itemsvc.CreateItemInput{
		Title:          strings.TrimSpace(r.Title),
		Description:    strings.TrimSpace(r.Description),
		Images:         r.Images,
		Category:       category,
		Size:           size,
		Condition:      condition,
		Mode:           mode,
		BorrowFee:      fee,
		BorrowDuration: r.BorrowDuration,
		Location:       r.Location,
	}, nil
}

func listFiltersFromQuery(r *http.Request) (itemsvc.ListFilters, error) {
	var filters itemsvc.ListFilters

	if raw := validators.QueryString(r, "category"); raw != nil {
		category, err := enums.ParseItemCategory(*raw)
		if err != nil {
			return itemsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		filters.Category = &category
	}
	if raw := validators.QueryString(r, "mode"); raw != nil {
		mode, err := enums.ParseItemMode(*raw)
		if err != nil {
			return itemsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode")
		}
		filters.Mode = &mode
	}
	if raw := validators.QueryString(r, "size"); raw != nil {
		size, err := enums.ParseItemSize(*raw)
		if err != nil {
			return itemsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid size")
		}
		filters.Size = &size
	}

	filters.Near = validators.QueryString(r, "near")
	radius, err := validators.ParseQueryFloat(r, "radius_km", 1, geo.MaxNearbyRadiusKM)
	if err != nil {
		return itemsvc.ListFilters{}, err
	}
	filters.RadiusKM = radius

	return filters, nil
}
