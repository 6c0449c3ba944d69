package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/pkg/db/models"
	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Image       *string        `json:"image,omitempty"`
	Phone       *string        `json:"phone,omitempty"`
	Location    *string        `json:"location,omitempty"`
	Role        enums.UserRole `json:"role"`
	TrustScore  int            `json:"trust_score"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// UserSummary is the compact shape embedded in listings, requests, and reviews.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Image *string   `json:"image,omitempty"`
	Email string    `json:"email,omitempty"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	Name         string
	Image        *string
	Phone        *string
	Location     *string
	Role         enums.UserRole
}

// UpdateProfileDTO carries the optional profile fields a user may patch.
type UpdateProfileDTO struct {
	Name     *string
	Image    *string
	Phone    *string
	Location *string
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Image:       u.Image,
		Phone:       u.Phone,
		Location:    u.Location,
		Role:        u.Role,
		TrustScore:  u.TrustScore,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// SummaryFromModel builds the compact embedded shape. includeEmail controls
// whether the contact email is exposed (item detail reads only).
func SummaryFromModel(u *models.User, includeEmail bool) *UserSummary {
	if u == nil {
		return nil
	}
	summary := &UserSummary{
		ID:    u.ID,
		Name:  u.Name,
		Image: u.Image,
	}
	if includeEmail {
		summary.Email = u.Email
	}
	return summary
}

func (c CreateUserDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.UserRoleUser
	}

	return &models.User{
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		Name:         c.Name,
		Image:        c.Image,
		Phone:        c.Phone,
		Location:     c.Location,
		Role:         role,
		TrustScore:   50,
		IsActive:     true,
	}
}
