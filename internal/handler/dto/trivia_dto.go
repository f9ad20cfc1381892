package dto

import (
	"time"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// OptionResponse вариант ответа в административном представлении
type OptionResponse struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// QuestionResponse представляет вопрос в формате для ответа администратору
type QuestionResponse struct {
	ID         uint              `json:"id"`
	Text       string            `json:"text"`
	Difficulty entity.Difficulty `json:"difficulty"`
	Options    []OptionResponse  `json:"options"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// AssignmentResponse назначение тривии игроку
type AssignmentResponse struct {
	ID         uint                    `json:"id"`
	UserID     uint                    `json:"user_id"`
	Status     entity.AssignmentStatus `json:"status"`
	TotalScore int                     `json:"total_score"`
}

// TriviaResponse представляет тривию в формате для ответа клиенту
type TriviaResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Description   string               `json:"description"`
	QuestionCount int                  `json:"question_count"`
	Questions     []QuestionResponse   `json:"questions"`
	Assignments   []AssignmentResponse `json:"assignments"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewQuestionResponse создает DTO для вопроса
func NewQuestionResponse(q *entity.Question) *QuestionResponse {
	options := make([]OptionResponse, len(q.Options))
	for i, o := range q.Options {
		options[i] = OptionResponse{ID: o.ID, Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return &QuestionResponse{
		ID:         q.ID,
		Text:       q.Text,
		Difficulty: q.Difficulty,
		Options:    options,
		CreatedAt:  q.CreatedAt,
		UpdatedAt:  q.UpdatedAt,
	}
}

// NewTriviaResponse создает DTO для тривии
func NewTriviaResponse(t *entity.Trivia) *TriviaResponse {
	questions := make([]QuestionResponse, len(t.Questions))
	for i := range t.Questions {
		questions[i] = *NewQuestionResponse(&t.Questions[i])
	}
	assignments := make([]AssignmentResponse, len(t.Assignments))
	for i, a := range t.Assignments {
		assignments[i] = AssignmentResponse{
			ID:         a.ID,
			UserID:     a.UserID,
			Status:     a.Status,
			TotalScore: a.TotalScore,
		}
	}
	return &TriviaResponse{
		ID:            t.ID,
		Name:          t.Name,
		Description:   t.Description,
		QuestionCount: len(t.Questions),
		Questions:     questions,
		Assignments:   assignments,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}
