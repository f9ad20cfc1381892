package service

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

//go:embed seed_data.yaml
var seedYAML []byte

// SeedData описывает встроенный набор демонстрационных данных
type SeedData struct {
	DemoQuestions []SeedQuestion `yaml:"demo_questions"`
	Players       struct {
		Password string `yaml:"password"`
		Users    []struct {
			FullName string `yaml:"full_name"`
			Email    string `yaml:"email"`
		} `yaml:"users"`
	} `yaml:"players"`
	Questions []SeedQuestion `yaml:"questions"`
	Trivias   []SeedTrivia   `yaml:"trivias"`
}

// SeedQuestion вопрос набора данных
type SeedQuestion struct {
	Text       string `yaml:"text"`
	Difficulty string `yaml:"difficulty"`
	Options    []struct {
		Text    string `yaml:"text"`
		Correct bool   `yaml:"correct"`
	} `yaml:"options"`
}

// SeedTrivia тривия набора данных; Questions - индексы в SeedData.Questions
type SeedTrivia struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Questions   []int    `yaml:"questions"`
	Players     []string `yaml:"players"`
}

// SeedResult количество созданных записей
type SeedResult struct {
	Message          string `json:"message"`
	UsersCreated     int    `json:"users_created"`
	QuestionsCreated int    `json:"questions_created"`
	TriviasCreated   int    `json:"trivias_created"`
}

// AdminAccount учетные данные первого администратора
type AdminAccount struct {
	FullName string
	Email    string
	Password string
}

// SeedService идемпотентно загружает начальные и демонстрационные данные
type SeedService struct {
	userRepo     repository.UserRepository
	questionRepo repository.QuestionRepository
	triviaRepo   repository.TriviaRepository
	data         *SeedData
	log          logrus.FieldLogger
}

// LoadSeedData разбирает встроенный YAML-набор
func LoadSeedData() (*SeedData, error) {
	return ParseSeedData(seedYAML)
}

// ParseSeedData разбирает YAML-набор и проверяет ссылки между разделами
func ParseSeedData(raw []byte) (*SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse seed data: %w", err)
	}
	for _, t := range data.Trivias {
		for _, idx := range t.Questions {
			if idx < 0 || idx >= len(data.Questions) {
				return nil, fmt.Errorf("seed trivia %q references unknown question index %d", t.Name, idx)
			}
		}
	}
	return &data, nil
}

// NewSeedService создает сервис начальных данных
func NewSeedService(
	userRepo repository.UserRepository,
	questionRepo repository.QuestionRepository,
	triviaRepo repository.TriviaRepository,
	data *SeedData,
	log logrus.FieldLogger,
) *SeedService {
	return &SeedService{
		userRepo:     userRepo,
		questionRepo: questionRepo,
		triviaRepo:   triviaRepo,
		data:         data,
		log:          log.WithField("component", "seed"),
	}
}

// Bootstrap создает первого администратора и, при withDemo, демо-вопросы.
// Существующие записи не изменяются.
func (s *SeedService) Bootstrap(ctx context.Context, admin AdminAccount, withDemo bool) error {
	_, created, err := s.ensureUser(ctx, admin.FullName, admin.Email, admin.Password, entity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if created {
		s.log.WithField("email", admin.Email).Info("Initial administrator created")
	} else {
		s.log.WithField("email", admin.Email).Debug("Initial administrator already exists")
	}

	if !withDemo {
		return nil
	}
	for _, q := range s.data.DemoQuestions {
		if _, _, err := s.ensureQuestion(ctx, q); err != nil {
			return fmt.Errorf("bootstrap demo question: %w", err)
		}
	}
	return nil
}

// Seed создает игроков, вопросы и тривии с назначениями из встроенного набора
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{Message: "Seed completed: users, questions and trivias are ready"}

	players := make(map[string]uint, len(s.data.Players.Users))
	for _, p := range s.data.Players.Users {
		user, created, err := s.ensureUser(ctx, p.FullName, p.Email, s.data.Players.Password, entity.RolePlayer)
		if err != nil {
			return nil, err
		}
		if created {
			result.UsersCreated++
		}
		players[user.Email] = user.ID
	}

	questionIDs := make([]uint, len(s.data.Questions))
	for i, q := range s.data.Questions {
		question, created, err := s.ensureQuestion(ctx, q)
		if err != nil {
			return nil, err
		}
		if created {
			result.QuestionsCreated++
		}
		questionIDs[i] = question.ID
	}

	for _, t := range s.data.Trivias {
		created, err := s.ensureTrivia(ctx, t, questionIDs, players)
		if err != nil {
			return nil, err
		}
		if created {
			result.TriviasCreated++
		}
	}

	s.log.WithFields(logrus.Fields{
		"users":     result.UsersCreated,
		"questions": result.QuestionsCreated,
		"trivias":   result.TriviasCreated,
	}).Info("Seed completed")
	return result, nil
}

func (s *SeedService) ensureUser(ctx context.Context, fullName, email, password string, role entity.Role) (*entity.User, bool, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	user := &entity.User{
		FullName: fullName,
		Email:    entity.NormalizeEmail(email),
		Password: password,
		Role:     role,
		IsActive: true,
	}
	if err := validateUser(user, password); err != nil {
		return nil, false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", email, err)
	}
	return user, true, nil
}

func (s *SeedService) ensureQuestion(ctx context.Context, sq SeedQuestion) (*entity.Question, bool, error) {
	existing, err := s.questionRepo.FindActiveByText(ctx, sq.Text, 0)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	question := &entity.Question{
		Text:       sq.Text,
		Difficulty: entity.Difficulty(sq.Difficulty),
		IsActive:   true,
	}
	for _, o := range sq.Options {
		question.Options = append(question.Options, entity.Option{Text: o.Text, IsCorrect: o.Correct})
	}
	question.Options = entity.TrimOptions(question.Options)
	if err := validateQuestion(question); err != nil {
		return nil, false, fmt.Errorf("seed question %q: %w", sq.Text, err)
	}
	if err := s.questionRepo.Create(ctx, question); err != nil {
		return nil, false, fmt.Errorf("create question %q: %w", sq.Text, err)
	}
	return question, true, nil
}

func (s *SeedService) ensureTrivia(ctx context.Context, st SeedTrivia, questionIDs []uint, players map[string]uint) (bool, error) {
	_, err := s.triviaRepo.FindActiveByName(ctx, st.Name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	qIDs := make([]uint, 0, len(st.Questions))
	for _, idx := range st.Questions {
		qIDs = append(qIDs, questionIDs[idx])
	}
	uIDs := make([]uint, 0, len(st.Players))
	for _, email := range st.Players {
		id, ok := players[entity.NormalizeEmail(email)]
		if !ok {
			return false, fmt.Errorf("seed trivia %q references unknown player %s", st.Name, email)
		}
		uIDs = append(uIDs, id)
	}

	trivia := &entity.Trivia{Name: st.Name, Description: st.Description, IsActive: true}
	if err := s.triviaRepo.Create(ctx, trivia, qIDs, uIDs); err != nil {
		return false, fmt.Errorf("create trivia %q: %w", st.Name, err)
	}
	s.log.WithField("trivia_id", trivia.ID).Info("Seed trivia created")
	return true, nil
}
