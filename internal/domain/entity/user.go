package entity

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role определяет роль пользователя
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePlayer Role = "player"
)

// IsValid проверяет, что роль входит в допустимый набор
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RolePlayer
}

// User представляет пользователя в системе
type User struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	FullName  string     `gorm:"size:100;not null" json:"full_name"`
	Email     string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string     `gorm:"size:100;not null" json:"-"`
	Role      Role       `gorm:"size:20;not null;default:'player'" json:"role"`
	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	DeletedAt *time.Time `gorm:"type:timestamptz" json:"deleted_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (User) TableName() string {
	return "users"
}

// IsAdmin сообщает, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// BeforeSave хеширует пароль перед сохранением, только если он не является bcrypt-хешем
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !isBcryptHash(u.Password) {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Email, err)
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword проверяет, соответствует ли переданный пароль хешу
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// SoftDelete помечает пользователя удаленным
func (u *User) SoftDelete(now time.Time) {
	u.IsActive = false
	u.DeletedAt = &now
}

// Restore возвращает пользователя в активное состояние
func (u *User) Restore() {
	u.IsActive = true
	u.DeletedAt = nil
}

func isBcryptHash(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}

// NormalizeEmail приводит email к каноническому виду для поиска и уникальности
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
