package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/rewear-app/rewear-backend/pkg/enums"
)

// User represents the canonical identity entity.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"type:text;not null;uniqueIndex"`
	PasswordHash string         `gorm:"column:password_hash;not null"`
	Name         string         `gorm:"column:name;not null"`
	Image        *string        `gorm:"column:image"`
	Phone        *string        `gorm:"column:phone"`
	Location     *string        `gorm:"column:location"`
	Role         enums.UserRole `gorm:"column:role;not null;default:'user'"`
	TrustScore   int            `gorm:"column:trust_score;not null;default:50"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
