package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/handler/dto"
	"github.com/yourusername/talatrivia-api/internal/middleware"
	"github.com/yourusername/talatrivia-api/internal/service"
)

// UserIDKey ключ контекста с id пользователя из пути
const UserIDKey = "userID"

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService UserService
	log         logrus.FieldLogger
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService UserService, log logrus.FieldLogger) *UserHandler {
	return &UserHandler{
		userService: userService,
		log:         log.WithField("component", "user_handler"),
	}
}

// SignupRequest представляет запрос на регистрацию игрока
type SignupRequest struct {
	FullName string `json:"full_name" binding:"required,min=2"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// CreateUserRequest представляет запрос администратора на создание пользователя
type CreateUserRequest struct {
	FullName string      `json:"full_name" binding:"required,min=2"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     entity.Role `json:"role" binding:"omitempty,oneof=admin player"`
}

// UpdateUserRequest представляет частичное обновление пользователя
type UpdateUserRequest struct {
	FullName *string      `json:"full_name" binding:"omitempty,min=2"`
	Email    *string      `json:"email" binding:"omitempty,email"`
	Password *string      `json:"password" binding:"omitempty,min=6"`
	Role     *entity.Role `json:"role" binding:"omitempty,oneof=admin player"`
}

// Signup регистрирует нового игрока
// @Summary Регистрация игрока
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Профиль"
// @Success 201 {object} dto.UserResponse
// @Failure 409 {object} dto.ErrorResponse
// @Router /users/signup [post]
func (h *UserHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Signup(c.Request.Context(), req.FullName, req.Email, req.Password)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// CreateUser создает пользователя с произвольной ролью
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.CreateUser(c.Request.Context(), service.CreateUserInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// ListUsers возвращает страницу активных пользователей
func (h *UserHandler) ListUsers(c *gin.Context) {
	page, err := h.userService.ListUsers(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewUserResponse))
}

// ListDeletedUsers возвращает мягко удаленных пользователей
func (h *UserHandler) ListDeletedUsers(c *gin.Context) {
	users, err := h.userService.ListDeletedUsers(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserListResponse(users))
}

// GetUser возвращает пользователя (администратору или ему самому)
func (h *UserHandler) GetUser(c *gin.Context) {
	actor, _ := middleware.CurrentUser(c)
	user, err := h.userService.GetUser(c.Request.Context(), actor, middleware.UintParam(c, UserIDKey))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateUser применяет частичное обновление профиля
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	actor, _ := middleware.CurrentUser(c)
	patch := entity.UserPatch{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	}
	user, err := h.userService.UpdateUser(c.Request.Context(), actor, middleware.UintParam(c, UserIDKey), patch)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeleteUser мягко удаляет пользователя
func (h *UserHandler) DeleteUser(c *gin.Context) {
	if err := h.userService.DeleteUser(c.Request.Context(), middleware.UintParam(c, UserIDKey)); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "User deleted successfully"})
}

// RestoreUser возвращает удаленного пользователя
func (h *UserHandler) RestoreUser(c *gin.Context) {
	user, err := h.userService.RestoreUser(c.Request.Context(), middleware.UintParam(c, UserIDKey))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}
