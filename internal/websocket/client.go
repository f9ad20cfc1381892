package websocket

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время ожидания следующего pong от клиента.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Клиент ленты ничего не отправляет, кроме control-фреймов
	maxMessageSize = 512

	defaultClientBufferSize = 32

	// Максимальное количество переполнений буфера подряд до отключения
	maxBufferWarnings = 3
)

// Client является посредником между WebSocket соединением и Hub.
type Client struct {
	// Уникальный ID соединения
	ID string

	// ID пользователя, 0 для анонимного подписчика
	UserID uint

	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// sendClosed защищает канал send от повторного закрытия
	sendClosed atomic.Bool

	bufferWarnings atomic.Int32
	log            logrus.FieldLogger
}

// NewClient создает клиента для уже установленного соединения
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	size := hub.bufferSize
	if size <= 0 {
		size = defaultClientBufferSize
	}
	id := uuid.New().String()
	return &Client{
		ID:     id,
		UserID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, size),
		log:    hub.log.WithFields(logrus.Fields{"conn_id": id, "user_id": userID}),
	}
}

// Send ставит сообщение в очередь без блокировки.
// Возвращает false, если буфер переполнен или канал уже закрыт.
func (c *Client) Send(message []byte) (ok bool) {
	if c.sendClosed.Load() {
		return false
	}
	defer func() {
		// гонка с CloseSend между проверкой и отправкой
		if recover() != nil {
			ok = false
		}
	}()
	select {
	case c.send <- message:
		c.bufferWarnings.Store(0)
		return true
	default:
		return false
	}
}

// SendEvent сериализует событие и ставит его в очередь клиента
func (c *Client) SendEvent(eventType string, data interface{}) error {
	message, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	if !c.Send(message) {
		return fmt.Errorf("client %s send buffer is full", c.ID)
	}
	return nil
}

// Start регистрирует клиента в хабе и запускает горутины чтения и записи
func (c *Client) Start() error {
	if err := c.hub.register(c); err != nil {
		_ = c.conn.Close()
		return err
	}
	go c.writePump()
	go c.readPump()
	return nil
}

// CloseSend безопасно закрывает канал send (только один раз)
func (c *Client) CloseSend() bool {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
		return true
	}
	return false
}

// readPump держит соединение живым и обнаруживает отключение клиента.
// Входящие сообщения игнорируются: лента работает только на отправку.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.log.WithError(err).Debug("WebSocket read error")
			}
			return
		}
	}
}

// writePump отправляет сообщения клиенту из канала send
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// хаб закрыл канал
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.log.WithError(err).Debug("WebSocket write error")
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
