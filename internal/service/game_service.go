package service

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// SubmitMessage сообщение об успешной отправке ответов
const SubmitMessage = "Trivia completed successfully"

// AnswerInput пара "вопрос - выбранный вариант"
type AnswerInput struct {
	QuestionID uint
	OptionID   uint
}

// SubmitResult итог отправки ответов
type SubmitResult struct {
	TotalScore   int    `json:"total_score"`
	CorrectCount int    `json:"correct_count"`
	Message      string `json:"message"`
}

// MyTrivia pending-назначение игрока
type MyTrivia struct {
	ID         uint                    `json:"id"`
	TriviaID   uint                    `json:"trivia_id"`
	TriviaName string                  `json:"trivia_name"`
	Status     entity.AssignmentStatus `json:"status"`
}

// PlayOption вариант ответа без признака правильности
type PlayOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// PlayQuestion вопрос в том виде, в котором его видит игрок
type PlayQuestion struct {
	ID         uint              `json:"id"`
	Text       string            `json:"text"`
	Difficulty entity.Difficulty `json:"difficulty"`
	Options    []PlayOption      `json:"options"`
}

// PlayView тривия, готовая к прохождению
type PlayView struct {
	AssignmentID uint           `json:"assignment_id"`
	TriviaName   string         `json:"trivia_name"`
	Questions    []PlayQuestion `json:"questions"`
}

// RankingObserver получает уведомление, когда рейтинг мог измениться
type RankingObserver interface {
	RankingChanged(ctx context.Context)
}

// GameService проводит игрока через назначение и подсчитывает результат
type GameService struct {
	gameRepo repository.GameRepository
	observer RankingObserver
	log      logrus.FieldLogger
}

// NewGameService создает новый игровой сервис. observer может быть nil.
func NewGameService(gameRepo repository.GameRepository, observer RankingObserver, log logrus.FieldLogger) *GameService {
	return &GameService{
		gameRepo: gameRepo,
		observer: observer,
		log:      log.WithField("component", "game_service"),
	}
}

// SubmitAnswers проверяет и оценивает ответы и завершает назначение.
// Валидация, подсчет и сохранение выполняются в одной транзакции: любая ошибка
// оставляет назначение в статусе pending без сохраненных ответов.
func (s *GameService) SubmitAnswers(ctx context.Context, assignmentID, userID uint, answers []AnswerInput) (*SubmitResult, error) {
	result := &SubmitResult{Message: SubmitMessage}

	err := s.gameRepo.WithinTx(ctx, func(tx repository.GameRepository) error {
		assignment, err := tx.LockAssignment(ctx, assignmentID, userID)
		if err != nil {
			return wrapNotFound(err, "assignment #%d not found", assignmentID)
		}
		if assignment.Status.IsTerminal() {
			return conflictErr("assignment #%d is already %s", assignmentID, assignment.Status)
		}

		triviaQuestions, err := tx.TriviaQuestionIDs(ctx, assignment.TriviaID)
		if err != nil {
			return err
		}
		inTrivia := make(map[uint]struct{}, len(triviaQuestions))
		for _, id := range triviaQuestions {
			inTrivia[id] = struct{}{}
		}

		records := make([]entity.UserAnswer, 0, len(answers))
		answered := make(map[uint]struct{}, len(answers))
		for _, a := range answers {
			record, err := s.scoreAnswer(ctx, tx, a)
			if err != nil {
				return err
			}
			if _, ok := inTrivia[a.QuestionID]; !ok {
				return validationErr("question #%d does not belong to this trivia", a.QuestionID)
			}
			if _, dup := answered[a.QuestionID]; dup {
				return validationErr("question #%d answered more than once", a.QuestionID)
			}
			answered[a.QuestionID] = struct{}{}

			record.AssignmentID = assignment.ID
			records = append(records, record)
			result.TotalScore += record.PointsAwarded
			if record.IsCorrect {
				result.CorrectCount++
			}
		}

		if err := tx.CreateAnswers(ctx, records); err != nil {
			return err
		}
		return tx.CompleteAssignment(ctx, assignment.ID, result.TotalScore)
	})
	if err != nil {
		err = classify(err)
		entry := s.log.WithError(err).WithFields(logrus.Fields{
			"assignment_id": assignmentID,
			"user_id":       userID,
		})
		if isKind(err, apperrors.ErrInternal) {
			entry.Error("Submission failed")
		} else {
			entry.Info("Submission rejected")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"assignment_id": assignmentID,
		"user_id":       userID,
		"total_score":   result.TotalScore,
		"correct_count": result.CorrectCount,
	}).Info("Submission completed")

	if s.observer != nil {
		s.observer.RankingChanged(ctx)
	}
	return result, nil
}

// scoreAnswer проверяет одну пару и возвращает запись ответа с замороженным результатом
func (s *GameService) scoreAnswer(ctx context.Context, tx repository.GameRepository, a AnswerInput) (entity.UserAnswer, error) {
	option, err := tx.GetOption(ctx, a.OptionID)
	if err != nil {
		return entity.UserAnswer{}, wrapNotFound(err, "option #%d not found", a.OptionID)
	}
	question, err := tx.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return entity.UserAnswer{}, wrapNotFound(err, "question #%d not found", a.QuestionID)
	}
	if option.QuestionID != question.ID {
		return entity.UserAnswer{}, validationErr("option #%d does not belong to question #%d", option.ID, question.ID)
	}

	optionID := option.ID
	return entity.UserAnswer{
		QuestionID:       question.ID,
		SelectedOptionID: &optionID,
		IsCorrect:        option.IsCorrect,
		PointsAwarded:    entity.Points(question.Difficulty, option.IsCorrect),
	}, nil
}

// MyTrivias возвращает pending-назначения игрока
func (s *GameService) MyTrivias(ctx context.Context, userID uint) ([]MyTrivia, error) {
	assignments, err := s.gameRepo.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments of user #%d: %w", userID, err)
	}
	out := make([]MyTrivia, 0, len(assignments))
	for _, a := range assignments {
		item := MyTrivia{ID: a.ID, TriviaID: a.TriviaID, Status: a.Status}
		if a.Trivia != nil {
			item.TriviaName = a.Trivia.Name
		}
		out = append(out, item)
	}
	return out, nil
}

// Play возвращает вопросы назначения без признаков правильных ответов
func (s *GameService) Play(ctx context.Context, assignmentID, userID uint) (*PlayView, error) {
	assignment, err := s.gameRepo.GetForPlay(ctx, assignmentID, userID)
	if err != nil {
		return nil, wrapNotFound(err, "assignment #%d not found", assignmentID)
	}
	if assignment.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: assignment #%d is already %s", apperrors.ErrBadRequest, assignmentID, assignment.Status)
	}

	view := &PlayView{AssignmentID: assignment.ID, Questions: []PlayQuestion{}}
	if assignment.Trivia == nil {
		return view, nil
	}
	view.TriviaName = assignment.Trivia.Name
	for _, q := range assignment.Trivia.Questions {
		pq := PlayQuestion{ID: q.ID, Text: q.Text, Difficulty: q.Difficulty, Options: make([]PlayOption, 0, len(q.Options))}
		for _, o := range q.Options {
			pq.Options = append(pq.Options, PlayOption{ID: o.ID, Text: o.Text})
		}
		view.Questions = append(view.Questions, pq)
	}
	return view, nil
}
