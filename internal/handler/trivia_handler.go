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

// TriviaIDKey ключ контекста с id тривии из пути
const TriviaIDKey = "triviaID"

// TriviaHandler обрабатывает запросы, связанные с тривиями
type TriviaHandler struct {
	triviaService TriviaService
	log           logrus.FieldLogger
}

// NewTriviaHandler создает новый обработчик тривий
func NewTriviaHandler(triviaService TriviaService, log logrus.FieldLogger) *TriviaHandler {
	return &TriviaHandler{
		triviaService: triviaService,
		log:           log.WithField("component", "trivia_handler"),
	}
}

// CreateTriviaRequest представляет запрос на создание тривии
type CreateTriviaRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	QuestionIDs []uint `json:"question_ids" binding:"required"`
	UserIDs     []uint `json:"user_ids" binding:"required"`
}

// UpdateTriviaRequest представляет частичное обновление тривии
type UpdateTriviaRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	QuestionIDs []uint  `json:"question_ids"`
}

// CreateTrivia создает тривию и назначает ее игрокам
// @Summary Создание тривии
// @Tags trivias
// @Accept json
// @Produce json
// @Param request body CreateTriviaRequest true "Тривия"
// @Success 201 {object} dto.TriviaResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /trivias [post]
func (h *TriviaHandler) CreateTrivia(c *gin.Context) {
	var req CreateTriviaRequest
	if !bindJSON(c, &req) {
		return
	}
	trivia, err := h.triviaService.CreateTrivia(c.Request.Context(), service.TriviaInput{
		Name:        req.Name,
		Description: req.Description,
		QuestionIDs: req.QuestionIDs,
		UserIDs:     req.UserIDs,
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTriviaResponse(trivia))
}

// ListTrivias возвращает страницу активных тривий
func (h *TriviaHandler) ListTrivias(c *gin.Context) {
	page, err := h.triviaService.ListTrivias(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewTriviaResponse))
}

// GetTrivia возвращает тривию с вопросами и назначениями
func (h *TriviaHandler) GetTrivia(c *gin.Context) {
	trivia, err := h.triviaService.GetTrivia(c.Request.Context(), middleware.UintParam(c, TriviaIDKey))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTriviaResponse(trivia))
}

// UpdateTrivia применяет частичное обновление тривии
func (h *TriviaHandler) UpdateTrivia(c *gin.Context) {
	var req UpdateTriviaRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := entity.TriviaPatch{
		Name:        req.Name,
		Description: req.Description,
		QuestionIDs: req.QuestionIDs,
	}
	trivia, err := h.triviaService.UpdateTrivia(c.Request.Context(), middleware.UintParam(c, TriviaIDKey), patch)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTriviaResponse(trivia))
}

// DeleteTrivia мягко удаляет тривию, pending-назначения отменяются
func (h *TriviaHandler) DeleteTrivia(c *gin.Context) {
	if err := h.triviaService.DeleteTrivia(c.Request.Context(), middleware.UintParam(c, TriviaIDKey)); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Trivia deleted successfully"})
}
