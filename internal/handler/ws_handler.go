package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/websocket"
)

// WSHandler обслуживает WebSocket-подключения live-ленты рейтинга
type WSHandler struct {
	hub            *websocket.Hub
	rankingService RankingService
	upgrader       gorillaws.Upgrader
	log            logrus.FieldLogger
}

// NewWSHandler создает обработчик live-ленты.
// allowedOrigins синхронизирован с настройками CORS; "*" разрешает любой origin.
func NewWSHandler(hub *websocket.Hub, rankingService RankingService, allowedOrigins []string, log logrus.FieldLogger) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		rankingService: rankingService,
		log:            log.WithField("component", "ws_handler"),
	}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.originChecker(allowedOrigins),
	}
	return h
}

func (h *WSHandler) originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Пустой Origin - не браузерный клиент
		if origin == "" {
			return true
		}
		if _, ok := set["*"]; ok {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		h.log.WithField("origin", origin).Warn("WebSocket: rejected unauthorized origin")
		return false
	}
}

// LiveRanking переводит соединение на WebSocket, отправляет текущий топ
// и подписывает клиента на обновления рейтинга
// @Summary Live-лента рейтинга (WebSocket)
// @Tags ranking
// @Success 101
// @Router /ranking/live [get]
func (h *WSHandler) LiveRanking(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}

	snapshot, err := h.rankingService.LiveSnapshot(c.Request.Context())
	if err != nil {
		handleError(c, h.log, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, user.ID)
	if err := client.SendEvent(websocket.RANKING_SNAPSHOT, snapshot); err != nil {
		h.log.WithError(err).Warn("Failed to queue ranking snapshot")
	}
	if err := client.Start(); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Warn("Failed to register live ranking client")
		return
	}
	h.log.WithFields(logrus.Fields{
		"user_id": user.ID,
		"conn_id": client.ID,
		"clients": h.hub.ClientCount(),
	}).Debug("Live ranking client connected")
}
