package reviews

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/pkg/db/models"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/pagination"
)

type stubReviewsRepo struct {
	rows []models.Review
}

func (s *stubReviewsRepo) Create(ctx context.Context, review *models.Review) (*models.Review, error) {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	s.rows = append(s.rows, *review)
	return review, nil
}

func (s *stubReviewsRepo) ListByReviewee(ctx context.Context, revieweeID uuid.UUID, params pagination.Params) ([]models.Review, *string, error) {
	var matched []models.Review
	for _, row := range s.rows {
		if row.RevieweeID == revieweeID {
			matched = append(matched, row)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, err
	}
	if cursor != nil {
		var after []models.Review
		for _, row := range matched {
			if row.CreatedAt.Before(cursor.CreatedAt) {
				after = append(after, row)
			}
		}
		matched = after
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var next *string
	if len(matched) > limit {
		matched = matched[:limit]
		last := matched[len(matched)-1]
		encoded := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
		next = &encoded
	}
	return matched, next, nil
}

func (s *stubReviewsRepo) AverageRating(ctx context.Context, revieweeID uuid.UUID) (float64, int64, error) {
	total := 0
	count := int64(0)
	for _, row := range s.rows {
		if row.RevieweeID == revieweeID {
			total += row.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(total) / float64(count), count, nil
}

type stubRequestReader struct {
	requests map[uuid.UUID]*models.Request
}

func (s *stubRequestReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Request, error) {
	request, ok := s.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return request, nil
}

type stubUserReader struct {
	users map[uuid.UUID]*models.User
}

func (s *stubUserReader) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
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

type reviewFixture struct {
	svc         Service
	repo        *stubReviewsRepo
	requestID   uuid.UUID
	ownerID     uuid.UUID
	requesterID uuid.UUID
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()
	repo := &stubReviewsRepo{}
	ownerID := uuid.New()
	requesterID := uuid.New()
	requestID := uuid.New()
	requestsReader := &stubRequestReader{requests: map[uuid.UUID]*models.Request{
		requestID: {ID: requestID, OwnerID: ownerID, RequesterID: requesterID},
	}}
	readers := &stubUserReader{users: map[uuid.UUID]*models.User{
		ownerID:     {ID: ownerID, Name: "owner"},
		requesterID: {ID: requesterID, Name: "requester"},
	}}
	svc, err := NewService(repo, requestsReader, readers)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return &reviewFixture{svc: svc, repo: repo, requestID: requestID, ownerID: ownerID, requesterID: requesterID}
}

func TestCreateReviewGuards(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, uuid.Nil, CreateReviewInput{RevieweeID: f.ownerID, RequestID: f.requestID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}

	_, err = f.svc.Create(ctx, f.requesterID, CreateReviewInput{RevieweeID: f.ownerID, RequestID: f.requestID, Rating: 6})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	_, err = f.svc.Create(ctx, f.requesterID, CreateReviewInput{RevieweeID: f.requesterID, RequestID: f.requestID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected self-review rejection, got %v", err)
	}

	_, err = f.svc.Create(ctx, f.requesterID, CreateReviewInput{RevieweeID: uuid.New(), RequestID: f.requestID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected reviewee not found, got %v", err)
	}

	_, err = f.svc.Create(ctx, f.requesterID, CreateReviewInput{RevieweeID: f.ownerID, RequestID: uuid.New(), Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected request not found, got %v", err)
	}

	// outsiders cannot review a request they were not part of
	outsider := uuid.New()
	_, err = f.svc.Create(ctx, outsider, CreateReviewInput{RevieweeID: f.ownerID, RequestID: f.requestID, Rating: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateReviewSucceeds(t *testing.T) {
	f := newReviewFixture(t)

	comment := "great exchange"
	created, err := f.svc.Create(context.Background(), f.requesterID, CreateReviewInput{
		RevieweeID: f.ownerID,
		RequestID:  f.requestID,
		Rating:     5,
		Comment:    &comment,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ReviewerID != f.requesterID || created.RevieweeID != f.ownerID {
		t.Fatalf("unexpected participants: %+v", created)
	}
	if created.Rating != 5 {
		t.Fatalf("expected rating 5, got %d", created.Rating)
	}
}

func TestListByRevieweePaginates(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		f.repo.rows = append(f.repo.rows, models.Review{
			ID:         uuid.New(),
			ReviewerID: f.requesterID,
			RevieweeID: f.ownerID,
			RequestID:  f.requestID,
			Rating:     4,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := f.svc.ListByReviewee(ctx, f.ownerID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list page 1: %v", err)
	}
	if len(page.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(page.Reviews))
	}
	if page.NextCursor == nil {
		t.Fatal("expected next cursor")
	}
	if page.Reviews[0].Reviewer == nil || page.Reviews[0].Reviewer.Name != "requester" {
		t.Fatalf("expected reviewer summary, got %+v", page.Reviews[0].Reviewer)
	}

	page2, err := f.svc.ListByReviewee(ctx, f.ownerID, pagination.Params{Limit: 2, Cursor: *page.NextCursor})
	if err != nil {
		t.Fatalf("list page 2: %v", err)
	}
	if len(page2.Reviews) != 1 {
		t.Fatalf("expected 1 review, got %d", len(page2.Reviews))
	}
	if page2.NextCursor != nil {
		t.Fatal("expected final page")
	}
}

func TestListByRevieweeInvalidCursor(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.ListByReviewee(context.Background(), f.ownerID, pagination.Params{Cursor: "garbage!!"})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAverageRating(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	summary, err := f.svc.AverageRating(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("average with no reviews: %v", err)
	}
	if summary.Count != 0 || summary.Average != 0 {
		t.Fatalf("expected zero summary, got %+v", summary)
	}

	for _, rating := range []int{3, 5} {
		f.repo.rows = append(f.repo.rows, models.Review{
			ID:         uuid.New(),
			ReviewerID: f.requesterID,
			RevieweeID: f.ownerID,
			RequestID:  f.requestID,
			Rating:     rating,
			CreatedAt:  time.Now(),
		})
	}

	summary, err = f.svc.AverageRating(ctx, f.ownerID)
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if summary.Count != 2 || summary.Average != 4 {
		t.Fatalf("expected average 4 over 2 reviews, got %+v", summary)
	}
}
