package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrHubClosed возвращается при обращении к остановленному хабу
var ErrHubClosed = errors.New("websocket hub is closed")

// HubOptions параметры Hub
type HubOptions struct {
	// BufferSize размер очереди исходящих сообщений каждого клиента
	BufferSize int

	// PubSub включает ретрансляцию событий между экземплярами, nil означает одиночный режим
	PubSub PubSubProvider

	// Channel канал Pub/Sub для событий ленты
	Channel string
}

// clusterMessage оборачивает событие при передаче между экземплярами
type clusterMessage struct {
	InstanceID string          `json:"instance_id"`
	Payload    json.RawMessage `json:"payload"`
}

// Hub хранит подключенных клиентов live-ленты и рассылает им события.
// Все изменения набора клиентов выполняются в горутине Run.
type Hub struct {
	clients    map[*Client]struct{}
	registerCh chan *Client
	leaveCh    chan *Client
	broadcast  chan []byte
	done       chan struct{}
	closed     atomic.Bool

	pubsub     PubSubProvider
	channel    string
	instanceID string
	bufferSize int

	connected atomic.Int64
	delivered atomic.Int64
	dropped   atomic.Int64

	log logrus.FieldLogger
}

// NewHub создает хаб; Run должен быть запущен до подключения клиентов
func NewHub(log logrus.FieldLogger, opts HubOptions) *Hub {
	if opts.BufferSize <= 0 {
		opts.BufferSize = defaultClientBufferSize
	}
	if opts.Channel == "" {
		opts.Channel = "talatrivia:ranking"
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		registerCh: make(chan *Client),
		leaveCh:    make(chan *Client, 16),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
		pubsub:     opts.PubSub,
		channel:    opts.Channel,
		instanceID: uuid.New().String(),
		bufferSize: opts.BufferSize,
		log:        log.WithField("component", "ws_hub"),
	}
}

// Run обслуживает регистрацию клиентов и рассылку до отмены ctx
func (h *Hub) Run(ctx context.Context) error {
	var relay <-chan []byte
	if h.pubsub != nil {
		ch, err := h.pubsub.Subscribe(ctx, h.channel)
		if err != nil {
			h.log.WithError(err).Warn("Pub/Sub unavailable, running in single-instance mode")
		} else {
			relay = ch
		}
	}

	h.log.WithField("instance_id", h.instanceID).Info("WebSocket hub started")
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return nil

		case c := <-h.registerCh:
			h.clients[c] = struct{}{}
			h.connected.Store(int64(len(h.clients)))
			c.log.Debug("WebSocket client registered")

		case c := <-h.leaveCh:
			h.remove(c)

		case message := <-h.broadcast:
			h.deliver(message)

		case raw, ok := <-relay:
			if !ok {
				relay = nil
				h.log.Warn("Pub/Sub subscription closed")
				continue
			}
			h.handleRelay(raw)
		}
	}
}

// Broadcast отправляет событие всем клиентам этого экземпляра и, в кластерном
// режиме, публикует его для остальных экземпляров
func (h *Hub) Broadcast(event string, payload interface{}) error {
	if h.closed.Load() {
		return ErrHubClosed
	}
	message, err := json.Marshal(Event{Type: event, Data: payload})
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event, err)
	}

	select {
	case h.broadcast <- message:
	default:
		h.dropped.Add(1)
		return fmt.Errorf("broadcast queue is full, %s event dropped", event)
	}

	if h.pubsub != nil {
		envelope, _ := json.Marshal(clusterMessage{InstanceID: h.instanceID, Payload: message})
		if err := h.pubsub.Publish(context.Background(), h.channel, envelope); err != nil {
			return fmt.Errorf("failed to publish %s event: %w", event, err)
		}
	}
	return nil
}

// ClientCount возвращает количество подключенных клиентов
func (h *Hub) ClientCount() int {
	return int(h.connected.Load())
}

// Metrics возвращает счетчики хаба для диагностики
func (h *Hub) Metrics() map[string]interface{} {
	return map[string]interface{}{
		"instance_id":        h.instanceID,
		"clients":            h.connected.Load(),
		"messages_delivered": h.delivered.Load(),
		"messages_dropped":   h.dropped.Load(),
		"cluster":            h.pubsub != nil,
	}
}

func (h *Hub) register(c *Client) error {
	if h.closed.Load() {
		return ErrHubClosed
	}
	select {
	case h.registerCh <- c:
		return nil
	case <-h.done:
		return ErrHubClosed
	}
}

func (h *Hub) unregister(c *Client) {
	select {
	case h.leaveCh <- c:
	case <-h.done:
	}
}

func (h *Hub) remove(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.CloseSend()
	h.connected.Store(int64(len(h.clients)))
	c.log.Debug("WebSocket client unregistered")
}

// deliver рассылает сообщение локальным клиентам. Клиент, у которого буфер
// переполнен maxBufferWarnings раз подряд, отключается.
func (h *Hub) deliver(message []byte) {
	for c := range h.clients {
		if c.Send(message) {
			h.delivered.Add(1)
			continue
		}
		h.dropped.Add(1)
		if c.bufferWarnings.Add(1) >= maxBufferWarnings {
			c.log.Warn("WebSocket client too slow, disconnecting")
			h.remove(c)
			_ = c.conn.Close()
		}
	}
}

func (h *Hub) handleRelay(raw []byte) {
	var msg clusterMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.WithError(err).Warn("Malformed Pub/Sub message")
		return
	}
	if msg.InstanceID == h.instanceID {
		return
	}
	h.deliver(msg.Payload)
}

func (h *Hub) shutdown() {
	h.closed.Store(true)
	close(h.done)
	for c := range h.clients {
		h.remove(c)
	}
	h.log.Info("WebSocket hub stopped")
}
