package requests

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/items"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
)

type stubRequestsRepo struct {
	requests  map[uuid.UUID]*models.Request
	createErr error
}

func newStubRequestsRepo() *stubRequestsRepo {
	return &stubRequestsRepo{requests: make(map[uuid.UUID]*models.Request)}
}

func (s *stubRequestsRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRequestsRepo) Create(ctx context.Context, request *models.Request) (*models.Request, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	if request.ID == uuid.Nil {
		request.ID = uuid.New()
	}
	s.requests[request.ID] = request
	return request, nil
}

func (s *stubRequestsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *request
	return &copied, nil
}

func (s *stubRequestsRepo) HasPending(ctx context.Context, itemID, requesterID uuid.UUID) (bool, error) {
	for _, request := range s.requests {
		if request.ItemID == itemID && request.RequesterID == requesterID && request.Status == enums.RequestStatusPending {
			return true, nil
		}
	}
	return false, nil
}

func (s *stubRequestsRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	request, ok := s.requests[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	for key, value := range updates {
		switch key {
		case "status":
			if v, ok := value.(enums.RequestStatus); ok {
				request.Status = v
			}
		case "return_date":
			if v, ok := value.(time.Time); ok {
				request.ReturnDate = &v
			}
		case "payment_status":
			if v, ok := value.(enums.PaymentStatus); ok {
				request.PaymentStatus = &v
			}
		}
	}
	return nil
}

func (s *stubRequestsRepo) ListByRequester(ctx context.Context, requesterID uuid.UUID) ([]models.Request, error) {
	var rows []models.Request
	for _, request := range s.requests {
		if request.RequesterID == requesterID {
			rows = append(rows, *request)
		}
	}
	return rows, nil
}

func (s *stubRequestsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Request, error) {
	var rows []models.Request
	for _, request := range s.requests {
		if request.OwnerID == ownerID {
			rows = append(rows, *request)
		}
	}
	return rows, nil
}

type stubItemsRepo struct {
	items map[uuid.UUID]*models.Item
}

func newStubItemsRepo() *stubItemsRepo {
	return &stubItemsRepo{items: make(map[uuid.UUID]*models.Item)}
}

func (s *stubItemsRepo) WithTx(tx *gorm.DB) items.Repository { return s }

func (s *stubItemsRepo) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	s.items[item.ID] = item
	return item, nil
}

func (s *stubItemsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return item, nil
}

func (s *stubItemsRepo) ListAvailable(ctx context.Context, filters items.ListFilters) ([]models.Item, error) {
	panic("not implemented")
}

func (s *stubItemsRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Item, error) {
	panic("not implemented")
}

func (s *stubItemsRepo) UpdateAvailability(ctx context.Context, id uuid.UUID, isAvailable bool) error {
	item, ok := s.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	item.IsAvailable = isAvailable
	return nil
}

func (s *stubItemsRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.items, id)
	return nil
}

type stubUserReader struct {
	users map[uuid.UUID]*models.User
}

func newStubUserReader() *stubUserReader {
	return &stubUserReader{users: make(map[uuid.UUID]*models.User)}
}

func (s *stubUserReader) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	result := make(map[uuid.UUID]*models.User)
	for _, id := range ids {
		if user, ok := s.users[id]; ok {
			result[id] = user
		}
	}
	return result, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc       Service
	repo      *stubRequestsRepo
	itemsRepo *stubItemsRepo
	users     *stubUserReader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newStubRequestsRepo()
	itemsRepo := newStubItemsRepo()
	userReader := newStubUserReader()
	svc, err := NewService(repo, itemsRepo, userReader, stubTxRunner{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return &fixture{svc: svc, repo: repo, itemsRepo: itemsRepo, users: userReader}
}

func (f *fixture) seedItem(ownerID uuid.UUID, mode enums.ItemMode) *models.Item {
	fee := decimal.NewFromFloat(12.50)
	duration := 7
	item := &models.Item{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		Title:          "Denim jacket",
		Mode:           mode,
		BorrowFee:      &fee,
		BorrowDuration: &duration,
		IsAvailable:    true,
	}
	f.itemsRepo.items[item.ID] = item
	return item
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected %s error, got %v", code, err)
	}
	if typed.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, typed.Code(), err)
	}
}

func TestCreateBorrowSnapshotsTerms(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	requesterID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)

	created, err := f.svc.Create(context.Background(), requesterID, CreateRequestInput{
		ItemID: item.ID,
		Type:   enums.RequestTypeBorrow,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending, got %s", created.Status)
	}
	if created.OwnerID != ownerID {
		t.Fatalf("expected denormalized owner id %s, got %s", ownerID, created.OwnerID)
	}
	if created.Fee == nil || !created.Fee.Equal(decimal.NewFromFloat(12.50)) {
		t.Fatalf("expected fee snapshot, got %v", created.Fee)
	}
	if created.Duration == nil || *created.Duration != 7 {
		t.Fatalf("expected duration snapshot, got %v", created.Duration)
	}
	if created.PaymentStatus == nil || *created.PaymentStatus != enums.PaymentStatusPending {
		t.Fatalf("expected pending payment, got %v", created.PaymentStatus)
	}
	// creation never touches availability
	if !f.itemsRepo.items[item.ID].IsAvailable {
		t.Fatal("item availability must not change at creation")
	}
}

func TestCreateExchangeHasNoPaymentFields(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(uuid.New(), enums.ItemModeExchange)

	created, err := f.svc.Create(context.Background(), uuid.New(), CreateRequestInput{
		ItemID: item.ID,
		Type:   enums.RequestTypeExchange,
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if created.Fee != nil || created.Duration != nil || created.PaymentStatus != nil {
		t.Fatalf("exchange request must not carry borrow terms: %+v", created)
	}
}

func TestCreateGuards(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeExchange)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.Nil, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: uuid.New(), Type: enums.RequestTypeExchange})
	assertCode(t, err, pkgerrors.CodeNotFound)

	_, err = f.svc.Create(ctx, ownerID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: "both"})
	assertCode(t, err, pkgerrors.CodeValidation)

	// exchange-only items reject borrow requests
	_, err = f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeBorrow})
	assertCode(t, err, pkgerrors.CodeStateConflict)

	item.IsAvailable = false
	_, err = f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateDuplicatePending(t *testing.T) {
	f := newFixture(t)
	item := f.seedItem(uuid.New(), enums.ItemModeBoth)
	requesterID := uuid.New()
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange}); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	assertCode(t, err, pkgerrors.CodeConflict)

	// a different requester is fine
	if _, err := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange}); err != nil {
		t.Fatalf("second requester create: %v", err)
	}
}

func TestAcceptBorrowStampsReturnDateAndLocksItem(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBorrow)
	ctx := context.Background()

	created, err := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeBorrow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	before := time.Now()
	updated, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, ownerID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if updated.Status != enums.RequestStatusAccepted {
		t.Fatalf("expected accepted, got %s", updated.Status)
	}
	if updated.ReturnDate == nil {
		t.Fatal("expected return date on borrow accept")
	}
	expected := before.AddDate(0, 0, 7)
	if updated.ReturnDate.Before(expected.Add(-time.Minute)) || updated.ReturnDate.After(expected.Add(time.Minute)) {
		t.Fatalf("expected return date around %v, got %v", expected, updated.ReturnDate)
	}
	if f.itemsRepo.items[item.ID].IsAvailable {
		t.Fatal("expected item unavailable after accept")
	}
}

func TestUpdateStatusOwnerOnly(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	requesterID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})

	_, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, requesterID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, uuid.Nil)
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.UpdateStatus(ctx, uuid.New(), enums.RequestStatusAccepted, ownerID)
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})

	updated, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusPending, ownerID)
	if err != nil {
		t.Fatalf("expected no-op success got %v", err)
	}
	if updated.Status != enums.RequestStatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}
}

func TestUpdateStatusRejectsIllegalTransitions(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})

	// pending cannot jump straight to returned or completed
	_, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusReturned, ownerID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
	_, err = f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusCompleted, ownerID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if _, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusRejected, ownerID); err != nil {
		t.Fatalf("reject: %v", err)
	}

	// rejected is terminal
	_, err = f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusPending, ownerID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
	_, err = f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, ownerID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.UpdateStatus(ctx, created.ID, "archived", ownerID)
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAcceptExclusivityGuard(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	first, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	second, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})

	if _, err := f.svc.UpdateStatus(ctx, first.ID, enums.RequestStatusAccepted, ownerID); err != nil {
		t.Fatalf("first accept: %v", err)
	}

	// the item is committed to the first request now
	_, err := f.svc.UpdateStatus(ctx, second.ID, enums.RequestStatusAccepted, ownerID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	if status := f.repo.requests[second.ID].Status; status != enums.RequestStatusPending {
		t.Fatalf("expected second request untouched, got %s", status)
	}
}

func TestRejectedAndReturnedFreeTheItem(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeBorrow})

	if _, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, ownerID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if f.itemsRepo.items[item.ID].IsAvailable {
		t.Fatal("expected item locked")
	}

	if _, err := f.svc.MarkReturned(ctx, created.ID, ownerID); err != nil {
		t.Fatalf("mark returned: %v", err)
	}
	if !f.itemsRepo.items[item.ID].IsAvailable {
		t.Fatal("expected item released after return")
	}
	if f.repo.requests[created.ID].Status != enums.RequestStatusReturned {
		t.Fatalf("expected returned, got %s", f.repo.requests[created.ID].Status)
	}
}

func TestAcceptDanglingItemFails(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, uuid.New(), CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})
	delete(f.itemsRepo.items, item.ID)

	_, err := f.svc.UpdateStatus(ctx, created.ID, enums.RequestStatusAccepted, ownerID)
	assertCode(t, err, pkgerrors.CodeNotFound)
	if f.repo.requests[created.ID].Status != enums.RequestStatusPending {
		t.Fatal("expected request status unchanged on failed transition")
	}
}

func TestMarkPaid(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	requesterID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBorrow)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeBorrow})

	_, err := f.svc.MarkPaid(ctx, created.ID, ownerID)
	assertCode(t, err, pkgerrors.CodeForbidden)

	paid, err := f.svc.MarkPaid(ctx, created.ID, requesterID)
	if err != nil {
		t.Fatalf("mark paid: %v", err)
	}
	if paid.PaymentStatus == nil || *paid.PaymentStatus != enums.PaymentStatusCompleted {
		t.Fatalf("expected completed payment, got %v", paid.PaymentStatus)
	}

	// settled payments stay settled
	if _, err := f.svc.MarkPaid(ctx, created.ID, requesterID); err != nil {
		t.Fatalf("expected idempotent success got %v", err)
	}
}

func TestMarkPaidExchangeHasNothingToSettle(t *testing.T) {
	f := newFixture(t)
	requesterID := uuid.New()
	item := f.seedItem(uuid.New(), enums.ItemModeBoth)
	ctx := context.Background()

	created, _ := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange})

	_, err := f.svc.MarkPaid(ctx, created.ID, requesterID)
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListMineRendersTombstones(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	requesterID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	f.users.users[ownerID] = &models.User{ID: ownerID, Name: "morgan"}
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange}); err != nil {
		t.Fatalf("create: %v", err)
	}
	delete(f.itemsRepo.items, item.ID)

	rows, err := f.svc.ListMine(ctx, requesterID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one request, got %d", len(rows))
	}
	if rows[0].Item == nil || !rows[0].Item.Deleted || rows[0].Item.Title != "unknown item" {
		t.Fatalf("expected tombstone item, got %+v", rows[0].Item)
	}
	if rows[0].Counterparty == nil || rows[0].Counterparty.Name != "morgan" {
		t.Fatalf("expected owner summary, got %+v", rows[0].Counterparty)
	}
}

func TestListMyItemRequestsIncludesRequesterSummary(t *testing.T) {
	f := newFixture(t)
	ownerID := uuid.New()
	requesterID := uuid.New()
	item := f.seedItem(ownerID, enums.ItemModeBoth)
	f.users.users[requesterID] = &models.User{ID: requesterID, Name: "riley"}
	ctx := context.Background()

	if _, err := f.svc.Create(ctx, requesterID, CreateRequestInput{ItemID: item.ID, Type: enums.RequestTypeExchange}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := f.svc.ListMyItemRequests(ctx, ownerID)
	if err != nil {
		t.Fatalf("list incoming: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one request, got %d", len(rows))
	}
	if rows[0].Counterparty == nil || rows[0].Counterparty.Name != "riley" {
		t.Fatalf("expected requester summary, got %+v", rows[0].Counterparty)
	}
	if rows[0].Item == nil || rows[0].Item.Deleted {
		t.Fatalf("expected live item reference, got %+v", rows[0].Item)
	}
}
