package entity

import (
	"time"
)

// UserAnswer фиксирует ответ игрока на вопрос в рамках назначения.
// Создается один раз при отправке ответов и больше не изменяется.
type UserAnswer struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	AssignmentID     uint      `gorm:"not null;index" json:"assignment_id"`
	QuestionID       uint      `gorm:"not null;index" json:"question_id"`
	SelectedOptionID *uint     `gorm:"index" json:"selected_option_id"` // NULL, если вариант удален при редактировании вопроса
	IsCorrect        bool      `gorm:"not null" json:"is_correct"`
	PointsAwarded    int       `gorm:"not null;default:0" json:"points_awarded"`
	CreatedAt        time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (UserAnswer) TableName() string {
	return "user_answers"
}
