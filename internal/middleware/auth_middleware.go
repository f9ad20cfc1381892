package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	apperrors "github.com/yourusername/talatrivia-api/internal/pkg/errors"
)

// Ключи контекста Gin, которые заполняет RequireAuth
const (
	ContextUser     = "user"
	ContextUserID   = "user_id"
	ContextUserRole = "user_role"
)

// Authenticator проверяет access-токен и возвращает активного пользователя
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*entity.User, error)
}

// AuthMiddleware обеспечивает аутентификацию для защищенных маршрутов
type AuthMiddleware struct {
	auth       Authenticator
	cookieName string
	log        logrus.FieldLogger
}

// NewAuthMiddleware создает middleware; токен берется из cookie cookieName,
// затем из заголовка Authorization: Bearer
func NewAuthMiddleware(auth Authenticator, cookieName string, log logrus.FieldLogger) *AuthMiddleware {
	return &AuthMiddleware{
		auth:       auth,
		cookieName: cookieName,
		log:        log.WithField("component", "auth_middleware"),
	}
}

// RequireAuth проверяет, аутентифицирован ли пользователь
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, errType := m.extractToken(c)
		if errType != "" {
			msg := "Not authenticated"
			if errType == "token_format" {
				msg = "Authorization header format must be Bearer {token}"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg, "error_type": errType})
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, apperrors.ErrUnauthorized) {
				m.log.WithError(err).Error("Authentication failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Could not validate credentials", "error_type": "token_invalid"})
			return
		}

		c.Set(ContextUser, user)
		c.Set(ContextUserID, user.ID)
		c.Set(ContextUserRole, user.Role)
		c.Next()
	}
}

// AdminOnly проверяет, является ли пользователь администратором.
// Должен применяться после RequireAuth.
func (m *AuthMiddleware) AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated", "error_type": "token_missing"})
			return
		}
		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin rights required"})
			return
		}
		c.Next()
	}
}

// CurrentUser возвращает пользователя, сохраненного RequireAuth
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil, false
	}
	user, ok := v.(*entity.User)
	return user, ok && user != nil
}

// extractToken возвращает токен или тип ошибки для ответа
func (m *AuthMiddleware) extractToken(c *gin.Context) (string, string) {
	if m.cookieName != "" {
		if token, err := c.Cookie(m.cookieName); err == nil && token != "" {
			return token, ""
		}
	}

	header := c.GetHeader("Authorization")
	if header == "" {
		return "", "token_missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "token_format"
	}
	return strings.TrimSpace(parts[1]), ""
}
