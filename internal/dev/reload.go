package dev

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/launchdarkly/eventsource"
)

// ReloadMessageType is the kind of a reload notification.
type ReloadMessageType string

const (
	// ReloadTypeBuild reports a build that changed outputs; pages reload.
	ReloadTypeBuild ReloadMessageType = "build"
	// ReloadTypeError reports a failed build; pages show an overlay.
	ReloadTypeError ReloadMessageType = "error"
	// ReloadTypeClear removes the overlay after the errors are fixed.
	ReloadTypeClear ReloadMessageType = "clear"
)

// eventChannel is the eventsource channel build notifications go to.
const eventChannel = "builds"

// ReloadMessage is sent to every connected client.
type ReloadMessage struct {
	ID    string            `json:"id"`
	Type  ReloadMessageType `json:"type"`
	Files []string          `json:"files,omitempty"`

	// Errors are diagnostics in their JSON form.
	Errors []json.RawMessage `json:"errors,omitempty"`
}

// reloadEvent adapts a message to eventsource.Event.
type reloadEvent struct {
	msg  ReloadMessage
	data string
}

func (e reloadEvent) Id() string    { return e.msg.ID }
func (e reloadEvent) Event() string { return string(e.msg.Type) }
func (e reloadEvent) Data() string  { return e.data }

// ReloadServer pushes build notifications to browsers over websockets
// and to tools over server-sent events.
type ReloadServer struct {
	clients  map[*websocket.Conn]*sync.Mutex
	mu       sync.RWMutex
	upgrader websocket.Upgrader
	events   *eventsource.Server
	logger   *slog.Logger
}

// NewReloadServer creates a reload server.
func NewReloadServer(logger *slog.Logger) *ReloadServer {
	if logger == nil {
		logger = slog.Default()
	}
	events := eventsource.NewServer()
	events.AllowCORS = true
	return &ReloadServer{
		clients: make(map[*websocket.Conn]*sync.Mutex),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any local page may connect during development.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		events: events,
		logger: logger,
	}
}

// HandleWebSocket upgrades the request and keeps the connection until the
// client goes away.
func (r *ReloadServer) HandleWebSocket(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	r.mu.Lock()
	r.clients[conn] = &sync.Mutex{}
	r.mu.Unlock()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	r.drop(conn)
}

// HandleEvents serves the notifications as a text/event-stream.
func (r *ReloadServer) HandleEvents() http.HandlerFunc {
	return r.events.Handler(eventChannel)
}

// NotifyBuild tells clients which outputs changed.
func (r *ReloadServer) NotifyBuild(files []string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeBuild, Files: files})
}

// NotifyError sends diagnostics, each already encoded as JSON.
func (r *ReloadServer) NotifyError(diagnostics []string) {
	msg := ReloadMessage{Type: ReloadTypeError}
	for _, d := range diagnostics {
		msg.Errors = append(msg.Errors, json.RawMessage(d))
	}
	r.broadcast(msg)
}

// ClearError tells clients the last errors are fixed.
func (r *ReloadServer) ClearError() {
	r.broadcast(ReloadMessage{Type: ReloadTypeClear})
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	msg.ID = uuid.NewString()
	data, err := json.Marshal(msg)
	if err != nil {
		r.logger.Error("encode reload message", "error", err)
		return
	}

	r.events.Publish([]string{eventChannel}, reloadEvent{msg: msg, data: string(data)})

	r.mu.RLock()
	clients := make(map[*websocket.Conn]*sync.Mutex, len(r.clients))
	for conn, lock := range r.clients {
		clients[conn] = lock
	}
	r.mu.RUnlock()

	for conn, lock := range clients {
		lock.Lock()
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		err := conn.WriteMessage(websocket.TextMessage, data)
		lock.Unlock()
		if err != nil {
			r.drop(conn)
		}
	}
}

func (r *ReloadServer) drop(conn *websocket.Conn) {
	r.mu.Lock()
	_, ok := r.clients[conn]
	delete(r.clients, conn)
	r.mu.Unlock()
	if ok {
		conn.Close()
	}
}

// ClientCount returns the number of websocket clients.
func (r *ReloadServer) ClientCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Close disconnects every client.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	for conn := range r.clients {
		conn.Close()
		delete(r.clients, conn)
	}
	r.mu.Unlock()
	r.events.Close()
}
