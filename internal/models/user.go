package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	Name         string    `gorm:"not null"                    json:"name"`
	Email        string    `gorm:"not null;uniqueIndex"        json:"email"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	Role         string    `gorm:"not null;default:user"       json:"role"`
	CreatedAt    time.Time `                                   json:"createdAt"`
	UpdatedAt    time.Time `                                   json:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                 json:"id"`
	Token     string    `gorm:"uniqueIndex;not null"       json:"-"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"   json:"user_id"`
	JTI       string    `gorm:"uniqueIndex;not null"       json:"jti"`
	ExpiresAt int64     `gorm:"not null"                   json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"     json:"revoked"`
}

// All lists every model the schema migration has to create.
func All() []any {
	return []any{&User{}, &RefreshToken{}, &Product{}, &Review{}, &Order{}, &OrderItem{}}
}
