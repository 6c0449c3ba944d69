package items

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
)

func setupItemsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	items := `
CREATE TABLE IF NOT EXISTS items (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  images TEXT NOT NULL DEFAULT '{}',
  category TEXT NOT NULL,
  size TEXT NOT NULL,
  condition TEXT NOT NULL,
  mode TEXT NOT NULL,
  borrow_fee TEXT,
  borrow_duration INTEGER,
  is_available INTEGER NOT NULL DEFAULT 1,
  location TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(items).Error)
	return db
}

func createListing(t *testing.T, db *gorm.DB, ownerID uuid.UUID, title string, category enums.ItemCategory, mode enums.ItemMode, available bool, created time.Time) *models.Item {
	t.Helper()

	item := &models.Item{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       title,
		Description: "well loved",
		Images:      pq.StringArray{},
		Category:    category,
		Size:        enums.ItemSizeM,
		Condition:   enums.ItemConditionGood,
		Mode:        mode,
		IsAvailable: available,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func TestRepositoryListAvailable_filters(t *testing.T) {
	db := setupItemsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	now := time.Now().UTC()
	createListing(t, db, owner, "Linen shirt", enums.ItemCategoryTops, enums.ItemModeExchange, true, now.Add(-2*time.Hour))
	createListing(t, db, owner, "Wool coat", enums.ItemCategoryOuterwear, enums.ItemModeBorrow, true, now.Add(-time.Hour))
	createListing(t, db, owner, "Silk dress", enums.ItemCategoryDresses, enums.ItemModeBoth, true, now)
	createListing(t, db, owner, "Torn jeans", enums.ItemCategoryBottoms, enums.ItemModeExchange, false, now)

	all, err := repo.ListAvailable(context.Background(), ListFilters{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Silk dress", all[0].Title)
	assert.Equal(t, "Linen shirt", all[2].Title)

	category := enums.ItemCategoryOuterwear
	coats, err := repo.ListAvailable(context.Background(), ListFilters{Category: &category})
	require.NoError(t, err)
	require.Len(t, coats, 1)
	assert.Equal(t, "Wool coat", coats[0].Title)

	// Mode filter folds in "both" listings since they serve either arrangement.
	mode := enums.ItemModeBorrow
	lendable, err := repo.ListAvailable(context.Background(), ListFilters{Mode: &mode})
	require.NoError(t, err)
	require.Len(t, lendable, 2)
	assert.Equal(t, "Silk dress", lendable[0].Title)
	assert.Equal(t, "Wool coat", lendable[1].Title)
}

func TestRepositoryUpdateAvailability(t *testing.T) {
	db := setupItemsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	item := createListing(t, db, owner, "Denim jacket", enums.ItemCategoryOuterwear, enums.ItemModeExchange, true, time.Now().UTC())

	require.NoError(t, repo.UpdateAvailability(context.Background(), item.ID, false))

	found, err := repo.FindByID(context.Background(), item.ID)
	require.NoError(t, err)
	assert.False(t, found.IsAvailable)

	err = repo.UpdateAvailability(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByOwnerAndDelete(t *testing.T) {
	db := setupItemsTestDB(t)
	repo := NewRepository(db)

	owner := uuid.New()
	other := uuid.New()
	now := time.Now().UTC()
	mine := createListing(t, db, owner, "Corduroy pants", enums.ItemCategoryBottoms, enums.ItemModeExchange, true, now)
	createListing(t, db, other, "Leather boots", enums.ItemCategoryShoes, enums.ItemModeBorrow, true, now)

	owned, err := repo.ListByOwner(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0].ID)

	require.NoError(t, repo.Delete(context.Background(), mine.ID))
	_, err = repo.FindByID(context.Background(), mine.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
