package websocket

import (
	"errors"
	"sync"

	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/pkg/config"
)

const defaultBroadcastBuffer = 256

var ErrTooManyClients = errors.New("websocket connection limit reached")

type broadcastMessage struct {
	datasetID string
	data      []byte
}

type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcastMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
	mu         sync.RWMutex
	settings   *WebSocketSettings

	// onCountChange receives the client count after every change.
	onCountChange func(int)
}

func NewHub(cfg *config.WebSocketConfig) *Hub {
	settings := NewWebSocketSettings(cfg)

	broadcastBuffer := defaultBroadcastBuffer
	if cfg != nil && cfg.BroadcastBuffer > 0 {
		broadcastBuffer = cfg.BroadcastBuffer
	}

	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcastMessage, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		settings:   settings,
	}
}

func (h *Hub) Settings() *WebSocketSettings {
	return h.settings
}

// OnClientCountChange must be set before Run.
func (h *Hub) OnClientCountChange(fn func(int)) {
	h.onCountChange = fn
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.closeAll()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			count := h.ClientCount()
			logger.Infof("WebSocket client connected (total: %d)", count)
			h.notifyCount(count)

		case client := <-h.unregister:
			h.remove(client)
			count := h.ClientCount()
			logger.Infof("WebSocket client disconnected (total: %d)", count)
			h.notifyCount(count)

		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// Stop closes every client connection and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) deliver(msg broadcastMessage) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		if !client.wants(msg.datasetID) {
			continue
		}
		if !client.queue(msg.data) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		logger.Warn("WebSocket client too slow, disconnecting")
		h.remove(client)
	}
	if len(slow) > 0 {
		h.notifyCount(h.ClientCount())
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closeSend()
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	for client := range h.clients {
		delete(h.clients, client)
		client.closeSend()
	}
	h.mu.Unlock()
	h.notifyCount(0)
}

func (h *Hub) notifyCount(n int) {
	if h.onCountChange != nil {
		h.onCountChange(n)
	}
}

// Broadcast sends message to every client regardless of subscription.
func (h *Hub) Broadcast(message []byte) {
	h.BroadcastToDataset("", message)
}

// BroadcastToDataset sends message to clients subscribed to datasetID and to
// clients with no subscription. An empty datasetID reaches everyone.
func (h *Hub) BroadcastToDataset(datasetID string, message []byte) {
	select {
	case h.broadcast <- broadcastMessage{datasetID: datasetID, data: message}:
	default:
		logger.Warn("Broadcast channel full, dropping message")
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Register(client *Client) error {
	if h.ClientCount() >= h.settings.MaxConnections {
		return ErrTooManyClients
	}
	select {
	case h.register <- client:
		return nil
	case <-h.done:
		return errors.New("websocket hub stopped")
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}
