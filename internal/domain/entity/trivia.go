package entity

import (
	"time"
)

// AssignmentStatus определяет состояние назначения тривии игроку
type AssignmentStatus string

// Константы статусов назначения
const (
	AssignmentPending   AssignmentStatus = "pending"
	AssignmentCompleted AssignmentStatus = "completed"
	AssignmentCancelled AssignmentStatus = "cancelled"
)

// IsTerminal сообщает, что из этого статуса переходов нет
func (s AssignmentStatus) IsTerminal() bool {
	return s == AssignmentCompleted || s == AssignmentCancelled
}

// Trivia представляет набор вопросов, назначаемый игрокам
type Trivia struct {
	ID          uint               `gorm:"primaryKey" json:"id"`
	Name        string             `gorm:"size:200;not null" json:"name"`
	Description string             `gorm:"type:text;not null;default:''" json:"description"`
	Questions   []Question         `gorm:"many2many:trivia_questions" json:"questions,omitempty"`
	Assignments []TriviaAssignment `gorm:"foreignKey:TriviaID" json:"assignments,omitempty"`
	IsActive    bool               `gorm:"not null;default:true;index" json:"is_active"`
	DeletedAt   *time.Time         `gorm:"type:timestamptz" json:"deleted_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Trivia) TableName() string {
	return "trivias"
}

// TriviaAssignment связывает игрока с тривией и хранит итоговый счет
type TriviaAssignment struct {
	ID         uint             `gorm:"primaryKey" json:"id"`
	UserID     uint             `gorm:"not null;index" json:"user_id"`
	TriviaID   uint             `gorm:"not null;index" json:"trivia_id"`
	Status     AssignmentStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	TotalScore int              `gorm:"not null;default:0" json:"total_score"`
	Trivia     *Trivia          `gorm:"foreignKey:TriviaID" json:"trivia,omitempty"`
	User       *User            `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (TriviaAssignment) TableName() string {
	return "trivia_assignments"
}

// PlayedAt возвращает момент завершения назначения
func (a *TriviaAssignment) PlayedAt() time.Time {
	if a.UpdatedAt.IsZero() {
		return a.CreatedAt
	}
	return a.UpdatedAt
}
