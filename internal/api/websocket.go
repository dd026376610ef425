package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/lightpanel/lightpaneld/internal/eventbus"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 54 * time.Second
)

// WSMessage is one push frame. Clients merge Data into local state keyed
// by ResourceID.
type WSMessage struct {
	Type       string `json:"type"`
	ResourceID string `json:"resourceId,omitempty"`
	Data       any    `json:"data,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// WSHub fans event-bus deltas out to connected panel clients.
type WSHub struct {
	upgrader websocket.Upgrader
	clients  map[*wsClient]bool
	mu       sync.RWMutex
}

// NewWSHub creates the hub and subscribes it to the push-worthy event types.
func NewWSHub(bus *eventbus.Bus) *WSHub {
	h := &WSHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// The panel is served from the same host
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]bool),
	}

	for _, eventType := range []eventbus.EventType{
		eventbus.EventTypeSensorUpdate,
		eventbus.EventTypeGroupUpdate,
		eventbus.EventTypeLightChange,
		eventbus.EventTypeStreamingStatus,
		eventbus.EventTypeConnectivity,
	} {
		h.subscribe(bus, eventType)
	}

	return h
}

func (h *WSHub) subscribe(bus *eventbus.Bus, eventType eventbus.EventType) {
	bus.Subscribe(eventType, func(event eventbus.Event) {
		h.Broadcast(WSMessage{
			Type:       string(event.Type),
			ResourceID: event.ResourceID,
			Data:       event.Payload,
			Timestamp:  time.Now().UnixMilli(),
		})
	})
}

// Handle upgrades the request and serves the connection until it drops.
func (h *WSHub) Handle(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return NewBadRequestError("websocket upgrade failed", err)
	}

	client := &wsClient{
		conn: conn,
		send: make(chan WSMessage, 64),
	}

	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Debug().Int("clients", count).Msg("WebSocket client connected")

	go h.writeLoop(client)
	h.readLoop(client)

	return nil
}

// Broadcast queues a message for every client. Slow clients are dropped
// rather than blocking the bus workers.
func (h *WSHub) Broadcast(msg WSMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			log.Warn().Msg("WebSocket client too slow, closing")
			go h.remove(client)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *WSHub) Close() {
	h.mu.Lock()
	clients := make([]*wsClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.remove(client)
	}
}

func (h *WSHub) remove(client *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	h.mu.Unlock()

	close(client.send)
	client.conn.Close()
}

func (h *WSHub) readLoop(client *wsClient) {
	defer h.remove(client)

	client.conn.SetReadLimit(1024)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Clients only receive; reads exist to process control frames and
	// detect disconnects.
	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *WSHub) writeLoop(client *wsClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-client.send:
			if !ok {
				_ = client.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(wsWriteWait))
				return
			}

			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
