package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/rewear-app/rewear-backend/internal/users"
	pkgAuth "github.com/rewear-app/rewear-backend/pkg/auth"
	"github.com/rewear-app/rewear-backend/pkg/auth/session"
	"github.com/rewear-app/rewear-backend/pkg/config"
	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
	pkgerrors "github.com/rewear-app/rewear-backend/pkg/errors"
	"github.com/rewear-app/rewear-backend/pkg/security"
)

type stubAuthUserRepo struct {
	byEmail     map[string]*models.User
	byID        map[uuid.UUID]*models.User
	lastLoginAt *time.Time
}

func newStubAuthUserRepo() *stubAuthUserRepo {
	return &stubAuthUserRepo{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubAuthUserRepo) add(u *models.User) {
	s.byEmail[u.Email] = u
	s.byID[u.ID] = u
}

func (s *stubAuthUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubAuthUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubAuthUserRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	if _, ok := s.byID[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	s.lastLoginAt = &at
	return nil
}

func (s *stubAuthUserRepo) UpdateProfile(_ context.Context, id uuid.UUID, dto users.UpdateProfileDTO) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if dto.Name != nil {
		user.Name = *dto.Name
	}
	if dto.Image != nil {
		user.Image = dto.Image
	}
	if dto.Phone != nil {
		user.Phone = dto.Phone
	}
	if dto.Location != nil {
		user.Location = dto.Location
	}
	return user, nil
}

type stubSessionManager struct {
	tokens    map[string]string
	generated []string
	revoked   []string
	rotateErr error
}

func newStubSessionManager() *stubSessionManager {
	return &stubSessionManager{tokens: map[string]string{}}
}

func (s *stubSessionManager) Generate(_ context.Context, accessID string) (string, error) {
	token := "refresh-" + accessID
	s.tokens[accessID] = token
	s.generated = append(s.generated, accessID)
	return token, nil
}

func (s *stubSessionManager) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	stored, ok := s.tokens[oldAccessID]
	if !ok || stored != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.tokens, oldAccessID)
	newAccessID := session.NewAccessID()
	token := "refresh-" + newAccessID
	s.tokens[newAccessID] = token
	return newAccessID, token, nil
}

func (s *stubSessionManager) Revoke(_ context.Context, accessID string) error {
	delete(s.tokens, accessID)
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "rewear",
		ExpirationMinutes: 15,
	}
}

func newTestService(t *testing.T, repo *stubAuthUserRepo, sessions *stubSessionManager) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func seedUser(t *testing.T, repo *stubAuthUserRepo, email, password string) *models.User {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		Name:         "Avery",
		Role:         enums.UserRoleUser,
		TrustScore:   50,
		IsActive:     true,
	}
	repo.add(user)
	return user
}

func assertAuthCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", want)
	}
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *pkgerrors.Error, got %T: %v", err, err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want, appErr.Code(), err)
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	user := seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Avery@Example.com ",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.UserID != user.ID {
		t.Fatalf("expected token for user %s, got %s", user.ID, claims.UserID)
	}
	if claims.Role != enums.UserRoleUser {
		t.Fatalf("expected role user in claims, got %s", claims.Role)
	}
	if len(sessions.generated) != 1 || claims.ID != sessions.generated[0] {
		t.Fatalf("expected refresh session keyed by token jti %q, got %v", claims.ID, sessions.generated)
	}
	if resp.RefreshToken == "" {
		t.Fatalf("expected a refresh token")
	}
	if repo.lastLoginAt == nil {
		t.Fatalf("expected last login to be recorded")
	}
	if resp.User == nil || resp.User.Email != "avery@example.com" {
		t.Fatalf("expected user payload in response, got %+v", resp.User)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	user := seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@example.com", Password: "hunter2hunter2"})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.Login(context.Background(), LoginRequest{Email: "avery@example.com", Password: "wrong-password"})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)

	user.IsActive = false
	_, err = svc.Login(context.Background(), LoginRequest{Email: "avery@example.com", Password: "hunter2hunter2"})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRotatesSession(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	login, err := svc.Login(context.Background(), LoginRequest{Email: "avery@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	oldAccessID := sessions.generated[0]

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID == oldAccessID {
		t.Fatalf("expected a new access id after rotation")
	}
	if _, ok := sessions.tokens[oldAccessID]; ok {
		t.Fatalf("expected old session to be invalidated")
	}
	if resp.RefreshToken == login.RefreshToken {
		t.Fatalf("expected a new refresh token after rotation")
	}

	// Replaying the old pair must fail.
	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshRejectsGarbageAccessToken(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	svc := newTestService(t, repo, sessions)

	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestLogoutRevokesSession(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Fatalf("expected error for blank access id")
	}

	login, err := svc.Login(context.Background(), LoginRequest{Email: "avery@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	accessID := sessions.generated[0]
	if err := svc.Logout(context.Background(), accessID); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != accessID {
		t.Fatalf("expected session %q to be revoked, got %v", accessID, sessions.revoked)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestMeReturnsProfile(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	user := seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	_, err := svc.Me(context.Background(), nil)
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)

	unknown := uuid.New()
	_, err = svc.Me(context.Background(), &unknown)
	assertAuthCode(t, err, pkgerrors.CodeNotFound)

	profile, err := svc.Me(context.Background(), &user.ID)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if profile.Email != user.Email || profile.Name != user.Name {
		t.Fatalf("unexpected profile: %+v", profile)
	}
}

func TestUpdateProfilePatchesFields(t *testing.T) {
	repo := newStubAuthUserRepo()
	sessions := newStubSessionManager()
	user := seedUser(t, repo, "avery@example.com", "hunter2hunter2")
	svc := newTestService(t, repo, sessions)

	_, err := svc.UpdateProfile(context.Background(), nil, UpdateProfileRequest{})
	assertAuthCode(t, err, pkgerrors.CodeUnauthorized)

	blank := "   "
	_, err = svc.UpdateProfile(context.Background(), &user.ID, UpdateProfileRequest{Name: &blank})
	assertAuthCode(t, err, pkgerrors.CodeValidation)

	name := "Avery R."
	location := "brooklyn"
	updated, err := svc.UpdateProfile(context.Background(), &user.ID, UpdateProfileRequest{
		Name:     &name,
		Location: &location,
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}
	if updated.Name != name {
		t.Fatalf("expected name %q, got %q", name, updated.Name)
	}
	if updated.Location == nil || *updated.Location != location {
		t.Fatalf("expected location %q, got %v", location, updated.Location)
	}
	if updated.Email != "avery@example.com" {
		t.Fatalf("email must not change on profile update, got %q", updated.Email)
	}
}
