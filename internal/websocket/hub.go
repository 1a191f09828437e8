package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/ikkim/toolchest-backend/internal/app/model"
	"github.com/ikkim/toolchest-backend/pkg/logger"
)

// 구독 채널
const (
	ChannelMetrics = "metrics"
	ChannelAlerts  = "alerts"
)

const (
	// Rate limiting: 최대 메시지 수 (1초당)
	maxMessagesPerSecond = 10

	sendBufferSize = 64
)

var knownChannels = map[string]bool{ChannelMetrics: true, ChannelAlerts: true}

// ClientMessage 클라이언트로부터 받은 메시지 (subscribe / unsubscribe)
type ClientMessage struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// Envelope 서버가 보내는 메시지
type Envelope struct {
	Type   string      `json:"type"`
	Data   interface{} `json:"data"`
	SentAt time.Time   `json:"sent_at"`
}

// Client WebSocket 클라이언트 (관리자 한 세션)
type Client struct {
	Hub           *Hub
	Conn          *Conn
	UserID        uint
	Send          chan []byte
	channels      map[string]bool
	mu            sync.RWMutex
	messageCount  int
	lastResetTime time.Time
	rateMu        sync.Mutex
}

// NewClient 새 클라이언트는 모든 채널을 구독한 상태로 시작
func NewClient(hub *Hub, conn *Conn, userID uint) *Client {
	channels := make(map[string]bool, len(knownChannels))
	for ch := range knownChannels {
		channels[ch] = true
	}
	return &Client{
		Hub:      hub,
		Conn:     conn,
		UserID:   userID,
		Send:     make(chan []byte, sendBufferSize),
		channels: channels,
	}
}

func (c *Client) Subscribed(channel string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channels[channel]
}

func (c *Client) setSubscription(channel string, on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if on {
		c.channels[channel] = true
	} else {
		delete(c.channels, channel)
	}
}

type broadcastMessage struct {
	channel string
	payload []byte
}

// Hub 모니터링 스트림 연결 관리자
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastMessage
	upgrader   upgrader
	mu         sync.RWMutex
	now        func() time.Time
}

// NewHub allowedOrigins 가 비어 있으면 같은 출처만 허용
func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan broadcastMessage, 1024),
		upgrader:   newUpgrader(allowedOrigins),
		now:        time.Now,
	}
}

// Run Hub 실행, ctx 가 끝나면 모든 연결을 닫음
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": total,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			remaining := len(h.clients)
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":            client.UserID,
				"remaining_sessions": remaining,
			})

		case message := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				if !client.Subscribed(message.channel) {
					continue
				}
				select {
				case client.Send <- message.payload:
				default:
					// Send 채널이 막혀있음 - 비동기로 정리
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": client.UserID,
					})
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Publish 채널 구독자에게 전송. 버퍼가 가득 차면 버림 (모니터링 데이터는 손실 허용)
func (h *Hub) Publish(channel, msgType string, data interface{}) error {
	payload, err := json.Marshal(Envelope{Type: msgType, Data: data, SentAt: h.now().UTC()})
	if err != nil {
		logger.Error("Failed to marshal message", err, map[string]interface{}{"channel": channel})
		return err
	}

	select {
	case h.broadcast <- broadcastMessage{channel: channel, payload: payload}:
	default:
		logger.Warn("Broadcast channel full, message dropped", map[string]interface{}{
			"channel": channel,
		})
	}
	return nil
}

// NotifyAlert 새 알림을 alerts 채널로 전송
func (h *Hub) NotifyAlert(alert model.Alert) {
	_ = h.Publish(ChannelAlerts, "alert", alert)
}

// BroadcastSnapshot 수집된 스냅샷을 metrics 채널로 전송
func (h *Hub) BroadcastSnapshot(snapshot model.MetricSnapshot) {
	_ = h.Publish(ChannelMetrics, "metrics", snapshot)
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// ClientCount 현재 연결 수
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HandleClientMessage 클라이언트 메시지 처리
func (h *Hub) HandleClientMessage(client *Client, message []byte) {
	client.rateMu.Lock()
	now := time.Now()
	if now.Sub(client.lastResetTime) >= time.Second {
		client.messageCount = 0
		client.lastResetTime = now
	}
	client.messageCount++
	count := client.messageCount
	client.rateMu.Unlock()

	if count > maxMessagesPerSecond {
		logger.Warn("Rate limit exceeded", map[string]interface{}{
			"user_id": client.UserID,
			"count":   count,
		})
		return
	}

	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		logger.Warn("Failed to parse client message", map[string]interface{}{
			"user_id": client.UserID,
			"error":   err.Error(),
		})
		return
	}
	if !knownChannels[msg.Channel] {
		logger.Warn("Unknown channel", map[string]interface{}{
			"user_id": client.UserID,
			"channel": msg.Channel,
		})
		return
	}

	switch msg.Type {
	case "subscribe":
		client.setSubscription(msg.Channel, true)
	case "unsubscribe":
		client.setSubscription(msg.Channel, false)
	}
}
