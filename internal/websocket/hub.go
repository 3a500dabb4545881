// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package websocket

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types
const (
	MessageTypeTracksUpdate = "tracks_update"
	MessageTypeSnapProgress = "snap_progress"
	MessageTypePing         = "ping"
	MessageTypePong         = "pong"
)

// broadcastBuffer is how many pending broadcasts the hub queues before dropping.
const broadcastBuffer = 256

// Message is the envelope of every websocket frame.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Hub fans out encoded messages to every connected client. All client set
// mutations happen on the Serve goroutine.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	doneOnce   sync.Once
	mu         sync.RWMutex
}

// NewHub creates an idle hub. Call Serve to start it.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, broadcastBuffer),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Serve runs the hub until ctx ends, then closes every client. It
// implements suture.Service.
//
// Lifecycle events are drained before broadcasts so a client registered
// just before a broadcast receives it.
func (h *Hub) Serve(ctx context.Context) error {
	defer h.doneOnce.Do(func() { close(h.done) })

	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.broadcastToClients(msg)
		}
	}
}

// String implements fmt.Stringer for supervisor logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Register hands a client to the hub. It returns false when the hub has stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client. It never blocks once the hub has stopped.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetWSConnections(n)
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("[ws] client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.SetWSConnections(n)
	logging.Info().Uint64("client_id", c.id).Int("total_clients", n).Msg("[ws] client disconnected")
}

// sortedClients returns clients in connection order. Caller holds h.mu.
func (h *Hub) sortedClients() []*Client {
	out := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// broadcastToClients encodes msg once and queues it on every client. A
// client whose queue is full is dropped.
func (h *Hub) broadcastToClients(msg Message) {
	payload, err := MarshalMessage(msg)
	if err != nil {
		logging.Error().Err(err).Str("message_type", msg.Type).Msg("[ws] failed to encode message")
		return
	}

	h.mu.Lock()
	var dropped []*Client
	for _, c := range h.sortedClients() {
		select {
		case c.send <- payload:
		default:
			dropped = append(dropped, c)
		}
	}
	for _, c := range dropped {
		close(c.send)
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()

	metrics.RecordWSMessage(msg.Type)
	if len(dropped) > 0 {
		metrics.SetWSConnections(n)
		logging.Warn().Int("dropped", len(dropped)).Msg("[ws] dropped slow clients")
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := h.sortedClients()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()

	metrics.SetWSConnections(0)
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", len(clients)).
		Msg("websocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast queues a message for every client. It never blocks; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(msgType string, data any) bool {
	select {
	case h.broadcast <- Message{Type: msgType, Data: data}:
		return true
	default:
		logging.Warn().Str("message_type", msgType).Msg("[ws] broadcast queue full, dropping message")
		return false
	}
}

// TracksUpdateData is the payload of a tracks_update message.
type TracksUpdateData struct {
	Source    string   `json:"source"`
	UserIDs   []string `json:"user_ids"`
	NewTracks int      `json:"new_tracks"`
	Replaced  int      `json:"replaced_tracks"`
	Timestamp string   `json:"timestamp"`
}

// BroadcastTracksUpdate tells clients which users' trails changed.
func (h *Hub) BroadcastTracksUpdate(source string, userIDs []string, added, replaced int, at time.Time) {
	if userIDs == nil {
		userIDs = []string{}
	}
	h.Broadcast(MessageTypeTracksUpdate, TracksUpdateData{
		Source:    source,
		UserIDs:   userIDs,
		NewTracks: added,
		Replaced:  replaced,
		Timestamp: at.UTC().Format(time.RFC3339),
	})
}

// Snap progress states.
const (
	SnapStatusRunning   = "running"
	SnapStatusCompleted = "completed"
	SnapStatusCanceled  = "canceled"
)

// SnapProgressData is the payload of a snap_progress message.
type SnapProgressData struct {
	Status        string `json:"status"`
	Done          int    `json:"done"`
	Total         int    `json:"total"`
	Mode          string `json:"mode"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// BroadcastSnapProgress reports batch snapping progress.
func (h *Hub) BroadcastSnapProgress(data SnapProgressData) {
	if h.Broadcast(MessageTypeSnapProgress, data) {
		logging.Debug().
			Str("status", data.Status).
			Int("done", data.Done).
			Int("total", data.Total).
			Msg("[ws] broadcast snap_progress")
	}
}

// MarshalMessage encodes a message as JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
