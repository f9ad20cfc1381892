package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/domain/repository"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// Ограничения профиля пользователя
const (
	MinFullNameLen = 2
	MinPasswordLen = 6
)

// CreateUserInput содержит данные для создания пользователя
type CreateUserInput struct {
	FullName string
	Email    string
	Password string
	Role     entity.Role
}

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo repository.UserRepository
	observer RankingObserver
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewUserService создает новый сервис пользователей. observer может быть nil.
func NewUserService(userRepo repository.UserRepository, observer RankingObserver, log logrus.FieldLogger) *UserService {
	return &UserService{
		userRepo: userRepo,
		observer: observer,
		log:      log.WithField("component", "user_service"),
		now:      time.Now,
	}
}

// Signup регистрирует нового игрока
func (s *UserService) Signup(ctx context.Context, fullName, email, password string) (*entity.User, error) {
	return s.CreateUser(ctx, CreateUserInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Role:     entity.RolePlayer,
	})
}

// CreateUser создает пользователя с заданной ролью
func (s *UserService) CreateUser(ctx context.Context, in CreateUserInput) (*entity.User, error) {
	if in.Role == "" {
		in.Role = entity.RolePlayer
	}
	user := &entity.User{
		FullName: strings.TrimSpace(in.FullName),
		Email:    entity.NormalizeEmail(in.Email),
		Password: in.Password,
		Role:     in.Role,
		IsActive: true,
	}
	if err := validateUser(user, in.Password); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, user.Email, 0); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, conflictErr("email %s is already registered", user.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.WithFields(logrus.Fields{"user_id": user.ID, "role": user.Role}).Info("User created")
	return user, nil
}

// GetUser возвращает пользователя, если actor - администратор или он сам
func (s *UserService) GetUser(ctx context.Context, actor *entity.User, id uint) (*entity.User, error) {
	if err := authorizeSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "user #%d not found", id)
	}
	return user, nil
}

// ListUsers возвращает страницу активных пользователей
func (s *UserService) ListUsers(ctx context.Context, p Pagination) (Page[entity.User], error) {
	users, total, err := s.userRepo.List(ctx, p.PerPage, p.Offset())
	if err != nil {
		return Page[entity.User]{}, fmt.Errorf("failed to list users: %w", err)
	}
	return NewPage(users, total, p), nil
}

// ListDeletedUsers возвращает мягко удаленных пользователей
func (s *UserService) ListDeletedUsers(ctx context.Context) ([]entity.User, error) {
	users, err := s.userRepo.ListDeleted(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list deleted users: %w", err)
	}
	return users, nil
}

// UpdateUser применяет частичное обновление. Менять роль может только администратор.
func (s *UserService) UpdateUser(ctx context.Context, actor *entity.User, id uint, patch entity.UserPatch) (*entity.User, error) {
	if err := authorizeSelfOrAdmin(actor, id); err != nil {
		return nil, err
	}
	if patch.Role != nil && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: only administrators can change roles", apperrors.ErrForbidden)
	}

	user, err := s.userRepo.GetActiveByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "user #%d not found", id)
	}

	originalEmail := user.Email
	patch.Apply(user)
	password := ""
	if patch.Password != nil {
		password = *patch.Password
	}
	if err := validateUser(user, password); err != nil {
		return nil, err
	}
	if user.Email != originalEmail {
		if err := s.ensureEmailFree(ctx, user.Email, user.ID); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, conflictErr("email %s is already registered", user.Email)
		}
		return nil, fmt.Errorf("failed to update user #%d: %w", id, err)
	}

	s.log.WithField("user_id", id).Info("User updated")
	if patch.FullName != nil || patch.Role != nil {
		s.rankingChanged(ctx)
	}
	return user, nil
}

// DeleteUser мягко удаляет пользователя без незавершенных назначений
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	pending, err := s.userRepo.SoftDeleteIdle(ctx, id, s.now())
	if err != nil {
		return wrapNotFound(err, "user #%d not found", id)
	}
	if pending > 0 {
		return conflictErr("user #%d has %d pending assignment(s)", id, pending)
	}

	s.log.WithField("user_id", id).Info("User soft-deleted")
	s.rankingChanged(ctx)
	return nil
}

// RestoreUser возвращает мягко удаленного пользователя
func (s *UserService) RestoreUser(ctx context.Context, id uint) (*entity.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapNotFound(err, "user #%d not found", id)
	}
	if user.IsActive {
		return nil, fmt.Errorf("%w: user #%d is already active", apperrors.ErrBadRequest, id)
	}

	user.Restore()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to restore user #%d: %w", id, err)
	}

	s.log.WithField("user_id", id).Info("User restored")
	s.rankingChanged(ctx)
	return user, nil
}

func (s *UserService) ensureEmailFree(ctx context.Context, email string, selfID uint) error {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check email: %w", err)
	case existing.ID != selfID:
		return conflictErr("email %s is already registered", email)
	default:
		return nil
	}
}

func (s *UserService) rankingChanged(ctx context.Context) {
	if s.observer != nil {
		s.observer.RankingChanged(ctx)
	}
}

func authorizeSelfOrAdmin(actor *entity.User, id uint) error {
	if actor == nil {
		return apperrors.ErrUnauthorized
	}
	if !actor.IsAdmin() && actor.ID != id {
		return fmt.Errorf("%w: not enough permissions", apperrors.ErrForbidden)
	}
	return nil
}

// validateUser проверяет профиль; plainPassword проверяется, только если задан
func validateUser(u *entity.User, plainPassword string) error {
	if utf8.RuneCountInString(u.FullName) < MinFullNameLen {
		return validationErr("full name must have at least %d characters", MinFullNameLen)
	}
	if _, err := mail.ParseAddress(u.Email); err != nil || !strings.Contains(u.Email, "@") {
		return validationErr("invalid email address %q", u.Email)
	}
	if !u.Role.IsValid() {
		return validationErr("unknown role %q, expected admin or player", u.Role)
	}
	if plainPassword != "" && utf8.RuneCountInString(plainPassword) < MinPasswordLen {
		return validationErr("password must have at least %d characters", MinPasswordLen)
	}
	if u.Password == "" {
		return validationErr("password is required")
	}
	return nil
}
