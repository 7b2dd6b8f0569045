package entity

import (
	"time"

	"github.com/google/uuid"
)

// User представляет пользователя. ID совпадает с subject внешнего провайдера идентификации.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:100;not null;default:''" json:"email"`
	DisplayName string    `gorm:"size:100;not null;default:''" json:"display_name"`
	Role        string    `gorm:"size:20;not null;default:'user'" json:"-"` // "user" или "admin"
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Роли пользователей
const (
	UserRoleUser  = "user"
	UserRoleAdmin = "admin"
)

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin проверяет роль администратора
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
