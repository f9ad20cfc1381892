package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/handler/dto"
)

// CookieOptions параметры cookie с access-токеном
type CookieOptions struct {
	Name   string
	Domain string
	Secure bool
}

// AuthHandler обрабатывает запросы аутентификации
type AuthHandler struct {
	authService AuthService
	cookie      CookieOptions
	log         logrus.FieldLogger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService AuthService, cookie CookieOptions, log logrus.FieldLogger) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "access_token"
	}
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		log:         log.WithField("component", "auth_handler"),
	}
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login проверяет учетные данные и устанавливает HttpOnly cookie с токеном
// @Summary Вход по email и паролю
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Учетные данные"
// @Success 200 {object} dto.LoginResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	maxAge := int(result.ExpiresIn.Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, result.AccessToken, maxAge, "/", h.cookie.Domain, h.cookie.Secure, true)

	c.JSON(http.StatusOK, dto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   "bearer",
		ExpiresIn:   maxAge,
		User:        dto.NewUserResponse(result.User),
	})
}

// Logout удаляет cookie с токеном
// @Summary Выход
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", h.cookie.Domain, h.cookie.Secure, true)
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Successfully logged out"})
}

// Me возвращает текущего пользователя
// @Summary Текущий пользователь
// @Tags auth
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
