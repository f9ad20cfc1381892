package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
	"github.com/yourusername/talatrivia-api/internal/middleware"
	"github.com/yourusername/talatrivia-api/internal/service"
)

// AssignmentIDKey ключ контекста с id назначения из пути
const AssignmentIDKey = "assignmentID"

// GameHandler обрабатывает игровые запросы игрока
type GameHandler struct {
	gameService GameService
	log         logrus.FieldLogger
}

// NewGameHandler создает новый игровой обработчик
func NewGameHandler(gameService GameService, log logrus.FieldLogger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		log:         log.WithField("component", "game_handler"),
	}
}

// AnswerRequest ответ на один вопрос
type AnswerRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
	OptionID   uint `json:"option_id" binding:"required"`
}

// SubmitAnswersRequest представляет отправку ответов; пустой список допустим
type SubmitAnswersRequest struct {
	Answers []AnswerRequest `json:"answers" binding:"required,dive"`
}

// MyTrivias возвращает pending-назначения текущего игрока
// @Summary Мои тривии
// @Tags game
// @Produce json
// @Success 200 {array} service.MyTrivia
// @Router /game/my-trivias [get]
func (h *GameHandler) MyTrivias(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	trivias, err := h.gameService.MyTrivias(c.Request.Context(), user.ID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, trivias)
}

// Play возвращает вопросы назначения без правильных ответов
// @Summary Вопросы назначения
// @Tags game
// @Produce json
// @Param id path int true "ID назначения"
// @Success 200 {object} service.PlayView
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /game/{id}/play [get]
func (h *GameHandler) Play(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	view, err := h.gameService.Play(c.Request.Context(), middleware.UintParam(c, AssignmentIDKey), user.ID)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Submit принимает ответы, подсчитывает очки и завершает назначение
// @Summary Отправка ответов
// @Tags game
// @Accept json
// @Produce json
// @Param id path int true "ID назначения"
// @Param request body SubmitAnswersRequest true "Ответы"
// @Success 200 {object} service.SubmitResult
// @Failure 404 {object} dto.ErrorResponse
// @Failure 400 {object} dto.ErrorResponse "Некорректное тело запроса"
// @Failure 409 {object} dto.ErrorResponse "Назначение уже завершено или отменено"
// @Failure 422 {object} dto.ErrorResponse "Вопрос вне тривии, вариант от другого вопроса или повторный ответ"
// @Router /game/{id}/submit [post]
func (h *GameHandler) Submit(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req SubmitAnswersRequest
	if !bindJSON(c, &req) {
		return
	}

	answers := make([]service.AnswerInput, len(req.Answers))
	for i, a := range req.Answers {
		answers[i] = service.AnswerInput{QuestionID: a.QuestionID, OptionID: a.OptionID}
	}

	result, err := h.gameService.SubmitAnswers(c.Request.Context(), middleware.UintParam(c, AssignmentIDKey), user.ID, answers)
	if err != nil {
		handleError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// requireUser возвращает текущего пользователя или отвечает 401
func requireUser(c *gin.Context) (*entity.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	return user, true
}
