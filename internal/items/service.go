package items

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/geo"
)

// DefaultNearbyRadiusKM applies when a nearby query omits an explicit radius.
const DefaultNearbyRadiusKM = 50.0

type ownerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// Service exposes catalog operations.
type Service interface {
	Create(ctx context.Context, callerID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	ListAvailable(ctx context.Context, filters ListFilters) ([]ItemWithOwner, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error)
	GetByID(ctx context.Context, itemID uuid.UUID) (*ItemWithOwner, error)
	SetAvailability(ctx context.Context, itemID uuid.UUID, isAvailable bool, callerID uuid.UUID) error
	Delete(ctx context.Context, itemID uuid.UUID, callerID uuid.UUID) error
}

type service struct {
	repo  Repository
	users ownerReader
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository, users ownerReader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("items repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("users reader required")
	}
	return &service{repo: repo, users: users}, nil
}

func (s *service) Create(ctx context.Context, callerID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category")
	}
	if !input.Size.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid size")
	}
	if !input.Condition.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid condition")
	}
	if !input.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid mode")
	}
	if input.BorrowFee != nil && input.BorrowFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow fee cannot be negative")
	}
	if input.BorrowDuration != nil && *input.BorrowDuration <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "borrow duration must be positive")
	}

	item, err := s.repo.Create(ctx, input.ToModel(callerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create item")
	}
	return FromModel(item), nil
}

func (s *service) ListAvailable(ctx context.Context, filters ListFilters) ([]ItemWithOwner, error) {
	if filters.Category != nil && !filters.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category filter")
	}
	if filters.Size != nil && !filters.Size.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid size filter")
	}
	if filters.Mode != nil && !filters.Mode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid mode filter")
	}

	var origin *geo.Point
	if filters.Near != nil && strings.TrimSpace(*filters.Near) != "" {
		point, ok := geo.Resolve(*filters.Near)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown city").
				WithDetails(map[string]any{"near": *filters.Near})
		}
		origin = &point
	}

	rows, err := s.repo.ListAvailable(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list items")
	}

	if origin != nil {
		radius := DefaultNearbyRadiusKM
		if filters.RadiusKM != nil && *filters.RadiusKM > 0 {
			radius = *filters.RadiusKM
		}
		filtered := rows[:0]
		for _, row := range rows {
			if row.Location == nil {
				continue
			}
			if geo.WithinRadius(*origin, *row.Location, radius) {
				filtered = append(filtered, row)
			}
		}
		rows = filtered
	}

	owners, err := s.ownerSummaries(ctx, rows)
	if err != nil {
		return nil, err
	}

	result := make([]ItemWithOwner, 0, len(rows))
	for i := range rows {
		result = append(result, ItemWithOwner{
			ItemDTO: *FromModel(&rows[i]),
			Owner:   owners[rows[i].OwnerID],
		})
	}
	return result, nil
}

func (s *service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]ItemDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id required")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner items")
	}
	result := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		result = append(result, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) GetByID(ctx context.Context, itemID uuid.UUID) (*ItemWithOwner, error) {
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}

	detail := &ItemWithOwner{ItemDTO: *FromModel(item)}
	owner, err := s.users.FindByID(ctx, item.OwnerID)
	if err == nil {
		// item detail is the one read that exposes owner contact email
		detail.Owner = users.SummaryFromModel(owner, true)
	} else if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item owner")
	}
	return detail, nil
}

func (s *service) SetAvailability(ctx context.Context, itemID uuid.UUID, isAvailable bool, callerID uuid.UUID) error {
	item, err := s.authorizeOwner(ctx, itemID, callerID)
	if err != nil {
		return err
	}
	if item.IsAvailable == isAvailable {
		return nil
	}
	if err := s.repo.UpdateAvailability(ctx, itemID, isAvailable); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update availability")
	}
	return nil
}

// Delete removes the listing without touching its requests; request reads
// render dangling item ids as tombstones.
func (s *service) Delete(ctx context.Context, itemID uuid.UUID, callerID uuid.UUID) error {
	if _, err := s.authorizeOwner(ctx, itemID, callerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, itemID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete item")
	}
	return nil
}

func (s *service) authorizeOwner(ctx context.Context, itemID, callerID uuid.UUID) (*models.Item, error) {
	if callerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item id required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item")
	}
	if item.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item does not belong to caller")
	}
	return item, nil
}

func (s *service) ownerSummaries(ctx context.Context, rows []models.Item) (map[uuid.UUID]*users.UserSummary, error) {
	ids := make([]uuid.UUID, 0, len(rows))
	seen := map[uuid.UUID]struct{}{}
	for i := range rows {
		if _, ok := seen[rows[i].OwnerID]; ok {
			continue
		}
		seen[rows[i].OwnerID] = struct{}{}
		ids = append(ids, rows[i].OwnerID)
	}

	owners, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load item owners")
	}

	summaries := make(map[uuid.UUID]*users.UserSummary, len(owners))
	for id, owner := range owners {
		summaries[id] = users.SummaryFromModel(owner, false)
	}
	return summaries, nil
}
