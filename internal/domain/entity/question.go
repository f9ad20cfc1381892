package entity

import (
	"strings"
	"time"
)

// Difficulty определяет сложность вопроса
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// IsValid проверяет, что сложность входит в допустимый набор
func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Points возвращает количество очков за правильный ответ на вопрос этой сложности
func (d Difficulty) Points() int {
	switch d {
	case DifficultyEasy:
		return 1
	case DifficultyMedium:
		return 2
	case DifficultyHard:
		return 3
	}
	return 0
}

// Points рассчитывает очки за ответ: 0 за неправильный, иначе по сложности вопроса
func Points(difficulty Difficulty, isCorrect bool) int {
	if !isCorrect {
		return 0
	}
	return difficulty.Points()
}

// Question представляет вопрос из банка вопросов
type Question struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Text       string     `gorm:"type:text;not null" json:"text"`
	Difficulty Difficulty `gorm:"size:10;not null" json:"difficulty"`
	Options    []Option   `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
	IsActive   bool       `gorm:"not null;default:true;index" json:"is_active"`
	DeletedAt  *time.Time `gorm:"type:timestamptz" json:"deleted_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// Option представляет вариант ответа на вопрос
type Option struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	QuestionID uint   `gorm:"not null;index" json:"question_id"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"not null;default:false" json:"is_correct"`
}

// TableName определяет имя таблицы для GORM
func (Option) TableName() string {
	return "options"
}

// CorrectCount возвращает количество вариантов, отмеченных правильными
func CorrectCount(options []Option) int {
	n := 0
	for _, o := range options {
		if o.IsCorrect {
			n++
		}
	}
	return n
}

// NormalizeText приводит текст вопроса к виду, в котором сравниваются дубликаты
func NormalizeText(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// SoftDelete помечает вопрос удаленным
func (q *Question) SoftDelete(now time.Time) {
	q.IsActive = false
	q.DeletedAt = &now
}
