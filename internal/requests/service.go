package requests

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/items"
	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
)

// pendingUniqueConstraint is the partial unique index closing the
// concurrent duplicate-pending race at the store level.
const pendingUniqueConstraint = "requests_pending_uniq_idx"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userReader interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// Service drives the request lifecycle.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateRequestInput) (*RequestDTO, error)
	UpdateStatus(ctx context.Context, requestID uuid.UUID, newStatus enums.RequestStatus, callerID uuid.UUID) (*RequestDTO, error)
	MarkReturned(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) (*RequestDTO, error)
	MarkPaid(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) (*RequestDTO, error)
	ListMine(ctx context.Context, callerID uuid.UUID) ([]RequestWithContext, error)
	ListMyItemRequests(ctx context.Context, callerID uuid.UUID) ([]RequestWithContext, error)
}

type service struct {
	repo  Repository
	items items.Repository
	users userReader
	tx    txRunner
	now   func() time.Time
}

// NewService builds a request lifecycle service with the required dependencies.
func NewService(repo Repository, itemsRepo items.Repository, usersRepo userReader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("requests repository required")
	}
	if itemsRepo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:  repo,
		items: itemsRepo,
		users: usersRepo,
		tx:    tx,
		now:   time.Now,
	}, nil
}

// canTransition encodes the guarded transition table. Same-status writes are
// handled as no-ops before this check; completed has no inbound or outbound
// transitions.
func canTransition(from, to enums.RequestStatus) bool {
	switch from {
	case enums.RequestStatusPending:
		return to == enums.RequestStatusAccepted || to == enums.RequestStatusRejected
	case enums.RequestStatusAccepted:
		return to == enums.RequestStatusReturned
	default:
		return false
	}
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateRequestInput) (*RequestDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.ItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request type must be exchange or borrow")
	}

	item, err := s.items.FindByID(ctx, input.ItemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.OwnerID == callerID {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cannot request your own item")
	}
	if !item.IsAvailable {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is not available")
	}
	if !item.Mode.Satisfies(input.Type) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "item is not listed for this arrangement").
			WithDetails(map[string]any{"mode": item.Mode, "type": input.Type})
	}

	exists, err := s.repo.HasPending(ctx, input.ItemID, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check pending requests")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending request for this item already exists")
	}

	request := &models.Request{
		ItemID:      input.ItemID,
		RequesterID: callerID,
		OwnerID:     item.OwnerID,
		Type:        input.Type,
		Status:      enums.RequestStatusPending,
		Message:     input.Message,
	}
	if input.Type == enums.RequestTypeBorrow {
		// snapshot the borrow terms; later item edits never touch the request
		request.Fee = item.BorrowFee
		request.Duration = item.BorrowDuration
		pending := enums.PaymentStatusPending
		request.PaymentStatus = &pending
	}

	created, err := s.repo.Create(ctx, request)
	if err != nil {
		if db.IsUniqueViolation(err, pendingUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a pending request for this item already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create request")
	}
	return FromModel(created), nil
}

func (s *service) UpdateStatus(ctx context.Context, requestID uuid.UUID, newStatus enums.RequestStatus, callerID uuid.UUID) (*RequestDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}
	if !newStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid request status")
	}

	var result *models.Request
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		itemsRepo := s.items.WithTx(tx)

		request, err := repo.FindByID(ctx, requestID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
		}
		if request.OwnerID != callerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "only the item owner can update this request")
		}
		if request.Status == newStatus {
			result = request
			return nil
		}
		if !canTransition(request.Status, newStatus) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "status transition not allowed").
				WithDetails(map[string]any{"from": request.Status, "to": newStatus})
		}

		updates := map[string]any{"status": newStatus}

		switch newStatus {
		case enums.RequestStatusAccepted:
			item, err := itemsRepo.FindByID(ctx, request.ItemID)
			if err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "item no longer exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
			}
			if !item.IsAvailable {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "item is already committed elsewhere")
			}
			if request.Type == enums.RequestTypeBorrow && request.Duration != nil {
				due := s.now().AddDate(0, 0, *request.Duration)
				updates["return_date"] = due
			}
			if err := itemsRepo.UpdateAvailability(ctx, request.ItemID, false); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item availability")
			}

		case enums.RequestStatusRejected, enums.RequestStatusReturned:
			if err := itemsRepo.UpdateAvailability(ctx, request.ItemID, true); err != nil {
				if err == gorm.ErrRecordNotFound {
					return pkgerrors.New(pkgerrors.CodeNotFound, "item no longer exists")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update item availability")
			}
		}

		if err := repo.Update(ctx, request.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update request status")
		}

		request.Status = newStatus
		if due, ok := updates["return_date"].(time.Time); ok {
			request.ReturnDate = &due
		}
		result = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(result), nil
}

// MarkReturned is the named convenience for the accepted -> returned transition.
func (s *service) MarkReturned(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) (*RequestDTO, error) {
	return s.UpdateStatus(ctx, requestID, enums.RequestStatusReturned, callerID)
}

// MarkPaid flips the simulated borrow payment from pending to completed.
func (s *service) MarkPaid(ctx context.Context, requestID uuid.UUID, callerID uuid.UUID) (*RequestDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if requestID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id required")
	}

	request, err := s.repo.FindByID(ctx, requestID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "request not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request")
	}
	if request.RequesterID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the requester can pay for this request")
	}
	if request.Type != enums.RequestTypeBorrow || request.PaymentStatus == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "request has no payment to settle")
	}
	if *request.PaymentStatus == enums.PaymentStatusCompleted {
		return FromModel(request), nil
	}
	if *request.PaymentStatus != enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment cannot be settled in its current state")
	}

	if err := s.repo.Update(ctx, request.ID, map[string]any{"payment_status": enums.PaymentStatusCompleted}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment status")
	}
	completed := enums.PaymentStatusCompleted
	request.PaymentStatus = &completed
	return FromModel(request), nil
}

func (s *service) ListMine(ctx context.Context, callerID uuid.UUID) ([]RequestWithContext, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByRequester(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list requests")
	}
	return s.enrich(ctx, rows, func(r *models.Request) uuid.UUID { return r.OwnerID })
}

func (s *service) ListMyItemRequests(ctx context.Context, callerID uuid.UUID) ([]RequestWithContext, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByOwner(ctx, callerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list incoming requests")
	}
	return s.enrich(ctx, rows, func(r *models.Request) uuid.UUID { return r.RequesterID })
}

// enrich attaches item references (tombstones for deleted items) and the
// counterparty summary selected by pick.
func (s *service) enrich(ctx context.Context, rows []models.Request, pick func(*models.Request) uuid.UUID) ([]RequestWithContext, error) {
	userIDs := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for i := range rows {
		id := pick(&rows[i])
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		userIDs = append(userIDs, id)
	}

	counterparts, err := s.users.FindByIDs(ctx, userIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request counterparties")
	}

	result := make([]RequestWithContext, 0, len(rows))
	for i := range rows {
		row := &rows[i]
		item, err := s.items.FindByID(ctx, row.ItemID)
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load request item")
		}
		entry := RequestWithContext{
			RequestDTO: *FromModel(row),
			Item:       itemRef(row.ItemID, item),
		}
		if counterpart, ok := counterparts[pick(row)]; ok {
			entry.Counterparty = users.SummaryFromModel(counterpart, false)
		}
		result = append(result, entry)
	}
	return result, nil
}
