package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// MinOptions минимальное количество вариантов ответа у вопроса
const MinOptions = 2

// QuestionInput содержит данные для создания вопроса
type QuestionInput struct {
	Text       string
	Difficulty entity.Difficulty
	Options    []entity.Option
}

// QuestionService управляет банком вопросов
type QuestionService struct {
	questionRepo repository.QuestionRepository
	log          logrus.FieldLogger
	now          func() time.Time
}

// NewQuestionService создает новый сервис вопросов
func NewQuestionService(questionRepo repository.QuestionRepository, log logrus.FieldLogger) *QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		log:          log.WithField("component", "question_service"),
		now:          time.Now,
	}
}

// CreateQuestion проверяет и сохраняет новый вопрос с вариантами
func (s *QuestionService) CreateQuestion(ctx context.Context, in QuestionInput) (*entity.Question, error) {
	question := &entity.Question{
		Text:       strings.TrimSpace(in.Text),
		Difficulty: in.Difficulty,
		Options:    entity.TrimOptions(in.Options),
		IsActive:   true,
	}
	if err := validateQuestion(question); err != nil {
		return nil, err
	}
	if err := s.ensureUniqueText(ctx, question.Text, 0); err != nil {
		return nil, err
	}

	if err := s.questionRepo.Create(ctx, question); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, errDuplicateText
		}
		return nil, fmt.Errorf("failed to create question: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"question_id": question.ID,
		"difficulty":  question.Difficulty,
	}).Info("Question created")
	return question, nil
}

// GetQuestion возвращает активный вопрос по ID
func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "question #%d not found", id)
	}
	return question, nil
}

// ListQuestions возвращает страницу активных вопросов
func (s *QuestionService) ListQuestions(ctx context.Context, p Pagination) (Page[entity.Question], error) {
	questions, total, err := s.questionRepo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return Page[entity.Question]{}, fmt.Errorf("failed to list questions: %w", err)
	}
	return NewPage(questions, total, p), nil
}

// UpdateQuestion применяет частичное обновление. Переданный набор вариантов
// полностью заменяет прежний.
func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, patch entity.QuestionPatch) (*entity.Question, error) {
	question, err := s.questionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "question #%d not found", id)
	}

	originalText := question.Text
	patch.Apply(question)
	if err := validateQuestion(question); err != nil {
		return nil, err
	}
	if entity.NormalizeText(question.Text) != entity.NormalizeText(originalText) {
		if err := s.ensureUniqueText(ctx, question.Text, question.ID); err != nil {
			return nil, err
		}
	}

	if err := s.questionRepo.Update(ctx, question, patch.ReplacesOptions()); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, errDuplicateText
		}
		return nil, fmt.Errorf("failed to update question #%d: %w", id, wrapNotFound(err, "question #%d not found", id))
	}

	s.log.WithFields(logrus.Fields{
		"question_id":      id,
		"options_replaced": patch.ReplacesOptions(),
	}).Info("Question updated")
	return s.GetQuestion(ctx, id)
}

// DeleteQuestion мягко удаляет вопрос, если он не используется активной тривией
// с незавершенными назначениями
func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	inUse, err := s.questionRepo.SoftDeleteUnused(ctx, id, s.now())
	if err != nil {
		return wrapNotFound(err, "question #%d not found", id)
	}
	if inUse > 0 {
		return conflictErr("question #%d is used by %d active trivia(s) with pending assignments", id, inUse)
	}

	s.log.WithField("question_id", id).Info("Question soft-deleted")
	return nil
}

// errDuplicateText возвращается, когда уникальный индекс по тексту отклонил запись,
// прошедшую предварительную проверку
var errDuplicateText = fmt.Errorf("%w: question with the same text already exists", apperrors.ErrConflict)

func (s *QuestionService) ensureUniqueText(ctx context.Context, text string, excludeID uint) error {
	existing, err := s.questionRepo.FindActiveByText(ctx, text, excludeID)
	switch {
	case err == nil:
		return conflictErr("question with the same text already exists (#%d)", existing.ID)
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("failed to check question text: %w", err)
	}
}

// validateQuestion проверяет текст, сложность и набор вариантов вопроса
func validateQuestion(q *entity.Question) error {
	if q.Text == "" {
		return validationErr("question text must not be empty")
	}
	if !q.Difficulty.IsValid() {
		return validationErr("unknown difficulty %q, expected easy, medium or hard", q.Difficulty)
	}
	return validateOptions(q.Options)
}

// validateOptions требует не менее MinOptions вариантов и ровно один правильный
func validateOptions(options []entity.Option) error {
	if len(options) < MinOptions {
		return validationErr("a question needs at least %d options, got %d", MinOptions, len(options))
	}
	for i, o := range options {
		if strings.TrimSpace(o.Text) == "" {
			return validationErr("option %d text must not be empty", i+1)
		}
	}
	if n := entity.CorrectCount(options); n != 1 {
		return validationErr("exactly one option must be correct, got %d", n)
	}
	return nil
}
