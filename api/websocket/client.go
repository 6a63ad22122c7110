package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/energy-forecaster/internal/logger"
	"github.com/OldStager01/energy-forecaster/pkg/validation"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu        sync.RWMutex
	datasetID string
	closed    bool
}

type IncomingMessage struct {
	Type      string `json:"type"`
	DatasetID string `json:"dataset_id,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, datasetID string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, hub.settings.ClientBuffer),
		datasetID: datasetID,
	}
}

func (c *Client) DatasetID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.datasetID
}

func (c *Client) setDatasetID(id string) {
	c.mu.Lock()
	c.datasetID = id
	c.mu.Unlock()
}

// queue hands data to the write pump without blocking. It reports false
// only when the buffer is full; data for a closed client is discarded.
func (c *Client) queue(data []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel once; the write pump then ends.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// wants reports whether a message for datasetID should reach this client.
func (c *Client) wants(datasetID string) bool {
	sub := c.DatasetID()
	return sub == "" || datasetID == "" || sub == datasetID
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	settings := c.hub.settings
	c.conn.SetReadLimit(settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(settings.PongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	settings := c.hub.settings
	ticker := time.NewTicker(settings.PingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			// Coalesce queued messages into this frame, one JSON document per line.
			n := len(c.send)
			for range n {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		if err := validation.ValidateDatasetID(msg.DatasetID); err != nil || msg.DatasetID == "" {
			c.sendConfirmation("rejected", msg.DatasetID)
			return
		}
		c.setDatasetID(msg.DatasetID)
		logger.WithDataset(msg.DatasetID).Info("Client subscribed to dataset")
		c.sendConfirmation("subscribed", msg.DatasetID)
	case "unsubscribe":
		old := c.DatasetID()
		c.setDatasetID("")
		logger.Info("Client unsubscribed from dataset")
		c.sendConfirmation("unsubscribed", old)
	}
}

func (c *Client) sendConfirmation(action, datasetID string) {
	confirmation := SubscriptionUpdate{
		Type:      MessageTypeSubscription,
		Action:    action,
		DatasetID: datasetID,
		Timestamp: time.Now().UTC(),
	}
	data, err := json.Marshal(confirmation)
	if err != nil {
		logger.Errorf("Failed to marshal confirmation: %v", err)
		return
	}
	if !c.queue(data) {
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

// ServeWebSocket godoc
// @Summary Live event stream
// @Description Upgrades to a websocket. Pass dataset_id to receive only that dataset's events.
// @Tags Events
// @Param dataset_id query string false "Dataset id filter"
// @Router /ws [get]
func ServeWebSocket(hub *Hub, allowedOrigins []string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  hub.settings.ReadBufferSize,
		WriteBufferSize: hub.settings.WriteBufferSize,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	return func(c *gin.Context) {
		datasetID := c.Query("dataset_id")
		if err := validation.ValidateDatasetID(datasetID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if hub.ClientCount() >= hub.settings.MaxConnections {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": ErrTooManyClients.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, datasetID)
		if err := hub.Register(client); err != nil {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error()))
			conn.Close()
			return
		}

		go client.WritePump()
		go client.ReadPump()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == origin {
				return true
			}
		}
		return false
	}
}
