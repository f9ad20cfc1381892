package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	"github.com/yourusername/talatrivia-api/pkg/auth"
)

// ============================================================================
// Моки репозиториев для тестов сервисов
// ============================================================================

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

// MockUserRepository реализует repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetActiveByID(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *entity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]entity.User, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) ListDeleted(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepository) SoftDeleteIdle(ctx context.Context, userID uint, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockQuestionRepository реализует repository.QuestionRepository
type MockQuestionRepository struct {
	mock.Mock
}

func (m *MockQuestionRepository) Create(ctx context.Context, question *entity.Question) error {
	args := m.Called(ctx, question)
	return args.Error(0)
}

func (m *MockQuestionRepository) GetByID(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) FindActiveByText(ctx context.Context, text string, excludeID uint) (*entity.Question, error) {
	args := m.Called(ctx, text, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepository) List(ctx context.Context, limit, offset int) ([]entity.Question, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Question), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuestionRepository) Update(ctx context.Context, question *entity.Question, replaceOptions bool) error {
	args := m.Called(ctx, question, replaceOptions)
	return args.Error(0)
}

func (m *MockQuestionRepository) SoftDeleteUnused(ctx context.Context, questionID uint, at time.Time) (int64, error) {
	args := m.Called(ctx, questionID, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockTriviaRepository реализует repository.TriviaRepository
type MockTriviaRepository struct {
	mock.Mock
}

func (m *MockTriviaRepository) ActiveQuestionIDs(ctx context.Context, ids []uint) ([]uint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockTriviaRepository) ActiveUsers(ctx context.Context, ids []uint) ([]entity.User, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockTriviaRepository) Create(ctx context.Context, trivia *entity.Trivia, questionIDs, userIDs []uint) error {
	args := m.Called(ctx, trivia, questionIDs, userIDs)
	return args.Error(0)
}

func (m *MockTriviaRepository) GetByID(ctx context.Context, id uint) (*entity.Trivia, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Trivia), args.Error(1)
}

func (m *MockTriviaRepository) FindActiveByName(ctx context.Context, name string) (*entity.Trivia, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Trivia), args.Error(1)
}

func (m *MockTriviaRepository) List(ctx context.Context, limit, offset int) ([]entity.Trivia, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entity.Trivia), args.Get(1).(int64), args.Error(2)
}

func (m *MockTriviaRepository) Update(ctx context.Context, trivia *entity.Trivia, questionIDs []uint) error {
	args := m.Called(ctx, trivia, questionIDs)
	return args.Error(0)
}

func (m *MockTriviaRepository) SoftDelete(ctx context.Context, triviaID uint, at time.Time) (int64, error) {
	args := m.Called(ctx, triviaID, at)
	return args.Get(0).(int64), args.Error(1)
}

// MockGameRepository реализует repository.GameRepository.
// WithinTx вызывает fn с самим моком.
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) WithinTx(ctx context.Context, fn func(tx repository.GameRepository) error) error {
	return fn(m)
}

func (m *MockGameRepository) LockAssignment(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error) {
	args := m.Called(ctx, assignmentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TriviaAssignment), args.Error(1)
}

func (m *MockGameRepository) GetOption(ctx context.Context, optionID uint) (*entity.Option, error) {
	args := m.Called(ctx, optionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Option), args.Error(1)
}

func (m *MockGameRepository) GetQuestion(ctx context.Context, questionID uint) (*entity.Question, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockGameRepository) TriviaQuestionIDs(ctx context.Context, triviaID uint) ([]uint, error) {
	args := m.Called(ctx, triviaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockGameRepository) CreateAnswers(ctx context.Context, answers []entity.UserAnswer) error {
	args := m.Called(ctx, answers)
	return args.Error(0)
}

func (m *MockGameRepository) CompleteAssignment(ctx context.Context, assignmentID uint, totalScore int) error {
	args := m.Called(ctx, assignmentID, totalScore)
	return args.Error(0)
}

func (m *MockGameRepository) ListPending(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TriviaAssignment), args.Error(1)
}

func (m *MockGameRepository) GetForPlay(ctx context.Context, assignmentID, userID uint) (*entity.TriviaAssignment, error) {
	args := m.Called(ctx, assignmentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.TriviaAssignment), args.Error(1)
}

// MockRankingRepository реализует repository.RankingRepository
type MockRankingRepository struct {
	mock.Mock
}

func (m *MockRankingRepository) GlobalRanking(ctx context.Context, limit int) ([]repository.RankingRow, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.RankingRow), args.Error(1)
}

func (m *MockRankingRepository) CompletedAssignments(ctx context.Context, userID uint) ([]entity.TriviaAssignment, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.TriviaAssignment), args.Error(1)
}

// MockRankingObserver реализует RankingObserver
type MockRankingObserver struct {
	mock.Mock
}

func (m *MockRankingObserver) RankingChanged(ctx context.Context) {
	m.Called(ctx)
}

// MockNotifier реализует AssignmentNotifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyAssigned(ctx context.Context, trivia *entity.Trivia, users []entity.User) error {
	args := m.Called(ctx, trivia, users)
	return args.Error(0)
}

// MockBroadcaster реализует Broadcaster
type MockBroadcaster struct {
	mock.Mock
}

func (m *MockBroadcaster) Broadcast(event string, payload interface{}) error {
	args := m.Called(event, payload)
	return args.Error(0)
}

// MockTokenIssuer реализует TokenIssuer
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) GenerateToken(email, role string) (string, error) {
	args := m.Called(email, role)
	return args.String(0), args.Error(1)
}

func (m *MockTokenIssuer) ParseToken(tokenString string) (*auth.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*auth.Claims), args.Error(1)
}

func (m *MockTokenIssuer) TTL() time.Duration {
	return 30 * time.Minute
}
