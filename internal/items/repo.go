package items

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/pkg/db/models"
)

// Repository defines persistence operations for listings.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, item *models.Item) (*models.Item, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListAvailable(ctx context.Context, filters ListFilters) ([]models.Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error)
	UpdateAvailability(ctx context.Context, id uuid.UUID, isAvailable bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an items repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListAvailable applies the enum filters in SQL. Mode filtering includes
// "both" listings because they serve either arrangement; the geographic
// filter runs in the service where the city table lives.
func (r *repository) ListAvailable(ctx context.Context, filters ListFilters) ([]models.Item, error) {
	query := r.db.WithContext(ctx).Where("is_available = ?", true)

	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Size != nil {
		query = query.Where("size = ?", *filters.Size)
	}
	if filters.Mode != nil {
		query = query.Where("mode IN ?", []string{filters.Mode.String(), "both"})
	}

	var items []models.Item
	if err := query.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) UpdateAvailability(ctx context.Context, id uuid.UUID, isAvailable bool) error {
	res := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("id = ?", id).
		UpdateColumn("is_available", isAvailable)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Item{}, "id = ?", id).Error
}
