package websocket

// Типы событий live-ленты рейтинга
const (
	// RANKING_SNAPSHOT отправляется клиенту сразу после подключения
	RANKING_SNAPSHOT = "ranking_snapshot"

	// RANKING_UPDATED рассылается после каждого изменения рейтинга
	RANKING_UPDATED = "ranking_updated"

	// SERVER_BUFFER_WARNING предупреждает медленного клиента перед отключением
	SERVER_BUFFER_WARNING = "server:buffer_warning"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
