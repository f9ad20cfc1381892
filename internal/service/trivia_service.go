package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
)

// notifyTimeout ограничивает фоновую отправку приглашений
const notifyTimeout = 30 * time.Second

// TriviaInput содержит данные для создания тривии
type TriviaInput struct {
	Name        string
	Description string
	QuestionIDs []uint
	UserIDs     []uint
}

// TriviaService управляет тривиями и их назначениями
type TriviaService struct {
	triviaRepo repository.TriviaRepository
	notifier   AssignmentNotifier
	log        logrus.FieldLogger
	now        func() time.Time
	wg         sync.WaitGroup
}

// NewTriviaService создает новый сервис тривий
func NewTriviaService(triviaRepo repository.TriviaRepository, notifier AssignmentNotifier, log logrus.FieldLogger) *TriviaService {
	return &TriviaService{
		triviaRepo: triviaRepo,
		notifier:   notifier,
		log:        log.WithField("component", "trivia_service"),
		now:        time.Now,
	}
}

// CreateTrivia создает тривию и по одному pending-назначению на каждого активного
// приглашенного пользователя. Неактивные и несуществующие id отбрасываются.
func (s *TriviaService) CreateTrivia(ctx context.Context, in TriviaInput) (*entity.Trivia, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, validationErr("trivia name must not be empty")
	}
	if len(in.QuestionIDs) == 0 {
		return nil, validationErr("at least one question id is required")
	}
	if len(in.UserIDs) == 0 {
		return nil, validationErr("at least one user id is required")
	}

	questionIDs, err := s.activeQuestionIDs(ctx, in.QuestionIDs)
	if err != nil {
		return nil, err
	}

	requestedUsers := uniqueIDs(in.UserIDs)
	users, err := s.triviaRepo.ActiveUsers(ctx, requestedUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve users: %w", err)
	}
	userIDs := make([]uint, 0, len(users))
	for _, u := range users {
		userIDs = append(userIDs, u.ID)
	}
	if dropped := droppedIDs(requestedUsers, userIDs); len(dropped) > 0 {
		s.log.WithField("user_ids", dropped).Warn("Dropping inactive or unknown users from trivia")
	}
	if len(userIDs) == 0 {
		return nil, validationErr("none of the given users is active")
	}

	trivia := &entity.Trivia{
		Name:        name,
		Description: in.Description,
		IsActive:    true,
	}
	if err := s.triviaRepo.Create(ctx, trivia, questionIDs, userIDs); err != nil {
		return nil, fmt.Errorf("failed to create trivia: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"trivia_id":   trivia.ID,
		"questions":   len(questionIDs),
		"assignments": len(userIDs),
	}).Info("Trivia created")

	created, err := s.GetTrivia(ctx, trivia.ID)
	if err != nil {
		return nil, err
	}
	s.notifyAsync(ctx, created, assignedUsers(created, users))
	return created, nil
}

// GetTrivia возвращает активную тривию с вопросами и назначениями
func (s *TriviaService) GetTrivia(ctx context.Context, id uint) (*entity.Trivia, error) {
	trivia, err := s.triviaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "trivia #%d not found", id)
	}
	return trivia, nil
}

// ListTrivias возвращает страницу активных тривий
func (s *TriviaService) ListTrivias(ctx context.Context, p Pagination) (Page[entity.Trivia], error) {
	trivias, total, err := s.triviaRepo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return Page[entity.Trivia]{}, fmt.Errorf("failed to list trivias: %w", err)
	}
	return NewPage(trivias, total, p), nil
}

// UpdateTrivia применяет частичное обновление. Переданный набор вопросов
// полностью заменяет прежний после отбрасывания неактивных id.
func (s *TriviaService) UpdateTrivia(ctx context.Context, id uint, patch entity.TriviaPatch) (*entity.Trivia, error) {
	trivia, err := s.triviaRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "trivia #%d not found", id)
	}

	patch.Apply(trivia)
	if trivia.Name == "" {
		return nil, validationErr("trivia name must not be empty")
	}

	var questionIDs []uint
	if patch.ReplacesQuestions() {
		if len(patch.QuestionIDs) == 0 {
			return nil, validationErr("at least one question id is required")
		}
		if questionIDs, err = s.activeQuestionIDs(ctx, patch.QuestionIDs); err != nil {
			return nil, err
		}
	}

	if err := s.triviaRepo.Update(ctx, trivia, questionIDs); err != nil {
		return nil, fmt.Errorf("failed to update trivia #%d: %w", id, wrapNotFound(err, "trivia #%d not found", id))
	}

	s.log.WithFields(logrus.Fields{
		"trivia_id":          id,
		"questions_replaced": patch.ReplacesQuestions(),
	}).Info("Trivia updated")
	return s.GetTrivia(ctx, id)
}

// DeleteTrivia мягко удаляет тривию и отменяет ее pending-назначения
func (s *TriviaService) DeleteTrivia(ctx context.Context, id uint) error {
	cancelled, err := s.triviaRepo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return wrapNotFound(err, "trivia #%d not found", id)
	}
	s.log.WithFields(logrus.Fields{
		"trivia_id":             id,
		"cancelled_assignments": cancelled,
	}).Info("Trivia soft-deleted")
	return nil
}

// Wait дожидается завершения фоновых уведомлений
func (s *TriviaService) Wait() {
	s.wg.Wait()
}

func (s *TriviaService) activeQuestionIDs(ctx context.Context, requested []uint) ([]uint, error) {
	requested = uniqueIDs(requested)
	ids, err := s.triviaRepo.ActiveQuestionIDs(ctx, requested)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve questions: %w", err)
	}
	if dropped := droppedIDs(requested, ids); len(dropped) > 0 {
		s.log.WithField("question_ids", dropped).Warn("Dropping inactive or unknown questions from trivia")
	}
	if len(ids) == 0 {
		return nil, validationErr("none of the given questions is active")
	}
	return ids, nil
}

// assignedUsers оставляет пользователей, для которых действительно создано назначение
func assignedUsers(trivia *entity.Trivia, users []entity.User) []entity.User {
	assigned := make(map[uint]struct{}, len(trivia.Assignments))
	for _, a := range trivia.Assignments {
		assigned[a.UserID] = struct{}{}
	}
	out := make([]entity.User, 0, len(users))
	for _, u := range users {
		if _, ok := assigned[u.ID]; ok {
			out = append(out, u)
		}
	}
	return out
}

// notifyAsync рассылает приглашения в фоне; ошибки только логируются
func (s *TriviaService) notifyAsync(ctx context.Context, trivia *entity.Trivia, users []entity.User) {
	if s.notifier == nil || len(users) == 0 {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyAssigned(nctx, trivia, users); err != nil {
			s.log.WithError(err).WithField("trivia_id", trivia.ID).Warn("Assignment notifications incomplete")
		}
	}()
}
