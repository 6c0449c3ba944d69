package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/users"
	"github.com/rewear-app/rewear-backend/pkg/config"
	"github.com/rewear-app/rewear-backend/pkg/db"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/logger"
	"github.com/rewear-app/rewear-backend/pkg/security"
)

// demoPassword is shared by every seeded account. Demo environments only.
const demoPassword = "rewear-demo-pass"

var demoNames = []string{
	"Avery Kim", "Jordan Reyes", "Sam Okafor", "Riley Chen",
	"Casey Alvarez", "Morgan Patel", "Drew Nakamura", "Quinn Dubois",
	"Harper Singh", "Rowan Castillo", "Sasha Moreau", "Emerson Liu",
}

var demoCities = []string{
	"new york", "brooklyn", "chicago", "austin", "seattle",
	"san francisco", "los angeles", "london", "berlin", "amsterdam",
}

type garment struct {
	title       string
	description string
	category    enums.ItemCategory
	size        enums.ItemSize
	condition   enums.ItemCondition
	mode        enums.ItemMode
	fee         string
	duration    int
}

// demoGarments is the fixed listing corpus. Modes cycle through exchange,
// borrow, and both so every request type has material to work with.
var demoGarments = []garment{
	{"Linen button-down", "Breathable off-white linen shirt, barely worn.", enums.ItemCategoryTops, enums.ItemSizeM, enums.ItemConditionExcellent, enums.ItemModeExchange, "", 0},
	{"High-rise denim", "Vintage-wash straight leg jeans.", enums.ItemCategoryBottoms, enums.ItemSizeS, enums.ItemConditionGood, enums.ItemModeBorrow, "6.00", 7},
	{"Wrap midi dress", "Floral wrap dress, great for weddings.", enums.ItemCategoryDresses, enums.ItemSizeM, enums.ItemConditionExcellent, enums.ItemModeBoth, "12.50", 5},
	{"Wool overcoat", "Charcoal wool coat, heavy and warm.", enums.ItemCategoryOuterwear, enums.ItemSizeL, enums.ItemConditionGood, enums.ItemModeBorrow, "15.00", 10},
	{"Canvas high-tops", "Classic white high-tops, lightly scuffed.", enums.ItemCategoryShoes, enums.ItemSizeM, enums.ItemConditionFair, enums.ItemModeExchange, "", 0},
	{"Leather crossbody bag", "Small tan crossbody with brass hardware.", enums.ItemCategoryAccessories, enums.ItemSizeS, enums.ItemConditionExcellent, enums.ItemModeBoth, "8.00", 7},
	{"Silk camisole", "Champagne silk cami, dry-clean only.", enums.ItemCategoryTops, enums.ItemSizeXS, enums.ItemConditionExcellent, enums.ItemModeExchange, "", 0},
	{"Pleated trousers", "Olive pleated trousers, cropped cut.", enums.ItemCategoryBottoms, enums.ItemSizeL, enums.ItemConditionGood, enums.ItemModeBorrow, "7.50", 7},
	{"Slip dress", "Black bias-cut slip dress.", enums.ItemCategoryDresses, enums.ItemSizeS, enums.ItemConditionGood, enums.ItemModeBoth, "10.00", 4},
	{"Denim jacket", "Faded trucker jacket with shearling collar.", enums.ItemCategoryOuterwear, enums.ItemSizeM, enums.ItemConditionFair, enums.ItemModeExchange, "", 0},
	{"Chelsea boots", "Brown suede chelsea boots, resoled last year.", enums.ItemCategoryShoes, enums.ItemSizeL, enums.ItemConditionGood, enums.ItemModeBorrow, "9.00", 7},
	{"Cashmere scarf", "Oversized grey cashmere scarf.", enums.ItemCategoryAccessories, enums.ItemSizeM, enums.ItemConditionExcellent, enums.ItemModeBoth, "5.00", 14},
}

// Seeder inserts the deterministic demo corpus. It is wired only into
// cmd/seed and is never reachable from the API.
type Seeder struct {
	db          *db.Client
	lock        Lock
	cfg         config.SeedConfig
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// SeederParams bundles the dependencies for the seeder.
type SeederParams struct {
	DB             *db.Client
	Lock           Lock
	SeedConfig     config.SeedConfig
	PasswordConfig config.PasswordConfig
	Logger         *logger.Logger
}

// Result reports what a seed run inserted.
type Result struct {
	UsersCreated int
	ItemsCreated int
	UsersSkipped int
}

// NewSeeder constructs a Seeder with the provided dependencies.
func NewSeeder(params SeederParams) (*Seeder, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("database client is required")
	}
	if params.Lock == nil {
		return nil, fmt.Errorf("lock is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Seeder{
		db:          params.DB,
		lock:        params.Lock,
		cfg:         params.SeedConfig,
		passwordCfg: params.PasswordConfig,
		logg:        params.Logger,
	}, nil
}

// Run acquires the seed lock and inserts the demo users and their listings
// in a single transaction. Users that already exist (matched by email) are
// skipped, so reruns only fill gaps.
func (s *Seeder) Run(ctx context.Context) (*Result, error) {
	acquired, err := s.lock.Acquire(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquire seed lock")
	}
	if !acquired {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another seed run holds the lock")
	}
	defer func() {
		if err := s.lock.Release(ctx); err != nil {
			s.logg.Error(ctx, "release seed lock", err)
		}
	}()

	userCount := s.cfg.Users
	if userCount <= 0 || userCount > len(demoNames) {
		userCount = len(demoNames)
	}
	itemsPerUser := s.cfg.ItemsPerUser
	if itemsPerUser <= 0 {
		itemsPerUser = 3
	}

	passwordHash, err := security.HashPassword(demoPassword, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash demo password")
	}

	result := &Result{}
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)

		for i := 0; i < userCount; i++ {
			email := fmt.Sprintf("demo-%02d@rewear.dev", i+1)

			if _, err := userRepo.FindByEmail(ctx, email); err == nil {
				result.UsersSkipped++
				continue
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check demo email")
			}

			city := demoCities[i%len(demoCities)]
			user, err := userRepo.Create(ctx, users.CreateUserDTO{
				Email:        email,
				PasswordHash: passwordHash,
				Name:         demoNames[i%len(demoNames)],
				Location:     &city,
				Role:         enums.UserRoleUser,
			})
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create demo user")
			}
			result.UsersCreated++

			for j := 0; j < itemsPerUser; j++ {
				g := demoGarments[(i*itemsPerUser+j)%len(demoGarments)]
				item := &models.Item{
					OwnerID:     user.ID,
					Title:       g.title,
					Description: g.description,
					Images:      []string{fmt.Sprintf("https://img.rewear.dev/demo/%02d-%d.jpg", i+1, j+1)},
					Category:    g.category,
					Size:        g.size,
					Condition:   g.condition,
					Mode:        g.mode,
					IsAvailable: true,
					Location:    &city,
				}
				if g.mode == enums.ItemModeBorrow || g.mode == enums.ItemModeBoth {
					fee := decimal.RequireFromString(g.fee)
					duration := g.duration
					item.BorrowFee = &fee
					item.BorrowDuration = &duration
				}
				if err := tx.WithContext(ctx).Create(item).Error; err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create demo item")
				}
				result.ItemsCreated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"users_created": result.UsersCreated,
		"items_created": result.ItemsCreated,
		"users_skipped": result.UsersSkipped,
	}), "seed run complete")
	return result, nil
}
