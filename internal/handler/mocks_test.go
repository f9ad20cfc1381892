package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/mock"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
	"github.com/yourusername/talatrivia-api/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func nullLogger() logrus.FieldLogger {
	log, _ := logtest.NewNullLogger()
	return log
}

var (
	adminUser  = &entity.User{ID: 1, FullName: "Admin", Email: "admin@talana.com", Role: entity.RoleAdmin, IsActive: true}
	playerUser = &entity.User{ID: 2, FullName: "Ana Player", Email: "ana@talana.com", Role: entity.RolePlayer, IsActive: true}
)

// fakeAuthenticator сопоставляет токены пользователям
type fakeAuthenticator map[string]*entity.User

func (f fakeAuthenticator) Authenticate(_ context.Context, token string) (*entity.User, error) {
	if u, ok := f[token]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUnauthorized
}

func testAuthenticator() fakeAuthenticator {
	return fakeAuthenticator{"admin-token": adminUser, "player-token": playerUser}
}

// withUser подставляет пользователя в контекст так же, как RequireAuth
func withUser(u *entity.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user", u)
		c.Set("user_id", u.ID)
		c.Next()
	}
}

func doRequest(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Signup(ctx context.Context, fullName, email, password string) (*entity.User, error) {
	args := m.Called(ctx, fullName, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) CreateUser(ctx context.Context, in service.CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, actor *entity.User, id uint) (*entity.User, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, p service.Pagination) (service.Page[entity.User], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(service.Page[entity.User]), args.Error(1)
}

func (m *MockUserService) ListDeletedUsers(ctx context.Context) ([]entity.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, actor *entity.User, id uint, patch entity.UserPatch) (*entity.User, error) {
	args := m.Called(ctx, actor, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserService) RestoreUser(ctx context.Context, id uint) (*entity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

type MockQuestionService struct {
	mock.Mock
}

func (m *MockQuestionService) CreateQuestion(ctx context.Context, in service.QuestionInput) (*entity.Question, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionService) GetQuestion(ctx context.Context, id uint) (*entity.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionService) ListQuestions(ctx context.Context, p service.Pagination) (service.Page[entity.Question], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(service.Page[entity.Question]), args.Error(1)
}

func (m *MockQuestionService) UpdateQuestion(ctx context.Context, id uint, patch entity.QuestionPatch) (*entity.Question, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockTriviaService struct {
	mock.Mock
}

func (m *MockTriviaService) CreateTrivia(ctx context.Context, in service.TriviaInput) (*entity.Trivia, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Trivia), args.Error(1)
}

func (m *MockTriviaService) GetTrivia(ctx context.Context, id uint) (*entity.Trivia, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Trivia), args.Error(1)
}

func (m *MockTriviaService) ListTrivias(ctx context.Context, p service.Pagination) (service.Page[entity.Trivia], error) {
	args := m.Called(ctx, p)
	return args.Get(0).(service.Page[entity.Trivia]), args.Error(1)
}

func (m *MockTriviaService) UpdateTrivia(ctx context.Context, id uint, patch entity.TriviaPatch) (*entity.Trivia, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Trivia), args.Error(1)
}

func (m *MockTriviaService) DeleteTrivia(ctx context.Context, id uint) error {
	return m.Called(ctx, id).Error(0)
}

type MockGameService struct {
	mock.Mock
}

func (m *MockGameService) MyTrivias(ctx context.Context, userID uint) ([]service.MyTrivia, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.MyTrivia), args.Error(1)
}

func (m *MockGameService) Play(ctx context.Context, assignmentID, userID uint) (*service.PlayView, error) {
	args := m.Called(ctx, assignmentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlayView), args.Error(1)
}

func (m *MockGameService) SubmitAnswers(ctx context.Context, assignmentID, userID uint, answers []service.AnswerInput) (*service.SubmitResult, error) {
	args := m.Called(ctx, assignmentID, userID, answers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SubmitResult), args.Error(1)
}

type MockRankingService struct {
	mock.Mock
}

func (m *MockRankingService) GlobalRanking(ctx context.Context, limit int) ([]service.RankingEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RankingEntry), args.Error(1)
}

func (m *MockRankingService) PlayerStats(ctx context.Context, userID uint) (*service.PlayerStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PlayerStats), args.Error(1)
}

func (m *MockRankingService) LiveSnapshot(ctx context.Context) ([]service.RankingEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.RankingEntry), args.Error(1)
}

type MockSeeder struct {
	mock.Mock
}

func (m *MockSeeder) Seed(ctx context.Context) (*service.SeedResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SeedResult), args.Error(1)
}
