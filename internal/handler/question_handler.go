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

// QuestionIDKey ключ контекста с id вопроса из пути
const QuestionIDKey = "questionID"

// QuestionHandler обрабатывает запросы к банку вопросов
type QuestionHandler struct {
	questionService QuestionService
	log             logrus.FieldLogger
}

// NewQuestionHandler создает новый обработчик вопросов
func NewQuestionHandler(questionService QuestionService, log logrus.FieldLogger) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		log:             log.WithField("component", "question_handler"),
	}
}

// OptionRequest вариант ответа в запросе
type OptionRequest struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

// CreateQuestionRequest представляет запрос на создание вопроса
type CreateQuestionRequest struct {
	Text       string            `json:"text" binding:"required"`
	Difficulty entity.Difficulty `json:"difficulty" binding:"required"`
	Options    []OptionRequest   `json:"options" binding:"required"`
}

// UpdateQuestionRequest представляет частичное обновление вопроса.
// Переданный options полностью заменяет набор вариантов.
type UpdateQuestionRequest struct {
	Text       *string            `json:"text"`
	Difficulty *entity.Difficulty `json:"difficulty"`
	Options    []OptionRequest    `json:"options"`
}

func toOptions(in []OptionRequest) []entity.Option {
	if in == nil {
		return nil
	}
	out := make([]entity.Option, len(in))
	for i, o := range in {
		out[i] = entity.Option{Text: o.Text, IsCorrect: o.IsCorrect}
	}
	return out
}

// CreateQuestion создает вопрос с вариантами ответа
// @Summary Создание вопроса
// @Tags questions
// @Accept json
// @Produce json
// @Param request body CreateQuestionRequest true "Вопрос"
// @Success 201 {object} dto.QuestionResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Router /questions [post]
func (h *QuestionHandler) CreateQuestion(c *gin.Context) {
	var req CreateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	question, err := h.questionService.CreateQuestion(c.Request.Context(), service.QuestionInput{
		Text:       req.Text,
		Difficulty: req.Difficulty,
		Options:    toOptions(req.Options),
	})
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewQuestionResponse(question))
}

// ListQuestions возвращает страницу активных вопросов
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	page, err := h.questionService.ListQuestions(c.Request.Context(), paginationFromQuery(c))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPageResponse(page, dto.NewQuestionResponse))
}

// GetQuestion возвращает вопрос по id
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	question, err := h.questionService.GetQuestion(c.Request.Context(), middleware.UintParam(c, QuestionIDKey))
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// UpdateQuestion применяет частичное обновление вопроса
func (h *QuestionHandler) UpdateQuestion(c *gin.Context) {
	var req UpdateQuestionRequest
	if !bindJSON(c, &req) {
		return
	}
	patch := entity.QuestionPatch{
		Text:       req.Text,
		Difficulty: req.Difficulty,
		Options:    toOptions(req.Options),
	}
	question, err := h.questionService.UpdateQuestion(c.Request.Context(), middleware.UintParam(c, QuestionIDKey), patch)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuestionResponse(question))
}

// DeleteQuestion мягко удаляет вопрос
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	if err := h.questionService.DeleteQuestion(c.Request.Context(), middleware.UintParam(c, QuestionIDKey)); err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Question deleted successfully"})
}
