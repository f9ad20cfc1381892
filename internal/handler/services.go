package handler

import (
	"context"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/service"
)

// AuthService выполняет вход по email и паролю
type AuthService interface {
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
}

// UserService управляет пользователями
type UserService interface {
	Signup(ctx context.Context, fullName, email, password string) (*entity.User, error)
	CreateUser(ctx context.Context, in service.CreateUserInput) (*entity.User, error)
	GetUser(ctx context.Context, actor *entity.User, id uint) (*entity.User, error)
	ListUsers(ctx context.Context, p service.Pagination) (service.Page[entity.User], error)
	ListDeletedUsers(ctx context.Context) ([]entity.User, error)
	UpdateUser(ctx context.Context, actor *entity.User, id uint, patch entity.UserPatch) (*entity.User, error)
	DeleteUser(ctx context.Context, id uint) error
	RestoreUser(ctx context.Context, id uint) (*entity.User, error)
}

// QuestionService управляет банком вопросов
type QuestionService interface {
	CreateQuestion(ctx context.Context, in service.QuestionInput) (*entity.Question, error)
	GetQuestion(ctx context.Context, id uint) (*entity.Question, error)
	ListQuestions(ctx context.Context, p service.Pagination) (service.Page[entity.Question], error)
	UpdateQuestion(ctx context.Context, id uint, patch entity.QuestionPatch) (*entity.Question, error)
	DeleteQuestion(ctx context.Context, id uint) error
}

// TriviaService управляет тривиями
type TriviaService interface {
	CreateTrivia(ctx context.Context, in service.TriviaInput) (*entity.Trivia, error)
	GetTrivia(ctx context.Context, id uint) (*entity.Trivia, error)
	ListTrivias(ctx context.Context, p service.Pagination) (service.Page[entity.Trivia], error)
	UpdateTrivia(ctx context.Context, id uint, patch entity.TriviaPatch) (*entity.Trivia, error)
	DeleteTrivia(ctx context.Context, id uint) error
}

// GameService проводит игрока через назначение
type GameService interface {
	MyTrivias(ctx context.Context, userID uint) ([]service.MyTrivia, error)
	Play(ctx context.Context, assignmentID, userID uint) (*service.PlayView, error)
	SubmitAnswers(ctx context.Context, assignmentID, userID uint, answers []service.AnswerInput) (*service.SubmitResult, error)
}

// RankingService строит рейтинг и статистику
type RankingService interface {
	GlobalRanking(ctx context.Context, limit int) ([]service.RankingEntry, error)
	PlayerStats(ctx context.Context, userID uint) (*service.PlayerStats, error)
	LiveSnapshot(ctx context.Context) ([]service.RankingEntry, error)
}

// Seeder загружает демонстрационные данные
type Seeder interface {
	Seed(ctx context.Context) (*service.SeedResult, error)
}
