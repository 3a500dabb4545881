// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
)

//nolint:gochecknoinits // quiet logs for the whole package
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T) (*Hub, context.CancelFunc, <-chan error) {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	stopped := make(chan struct{})
	go func() {
		errc <- hub.Serve(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return hub, cancel, errc
}

// fakeClient is a client with no connection; the hub only touches send.
func fakeClient(hub *Hub, buffer int) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, send: make(chan []byte, buffer)}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			t.Fatalf("decode %s: %v", payload, err)
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
	}
	return Message{}
}

func TestHub_BroadcastTracksUpdate(t *testing.T) {
	hub, _, _ := startHub(t)
	a, b := fakeClient(hub, 4), fakeClient(hub, 4)
	if !hub.Register(a) || !hub.Register(b) {
		t.Fatal("Register returned false on a running hub")
	}

	before := testutil.ToFloat64(metrics.WSMessagesSent.WithLabelValues(MessageTypeTracksUpdate))
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	hub.BroadcastTracksUpdate("poll", []string{"u1", "u2"}, 2, 1, at)

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		if msg.Type != MessageTypeTracksUpdate {
			t.Fatalf("type = %q", msg.Type)
		}
		data, _ := msg.Data.(map[string]any)
		if data["source"] != "poll" || data["new_tracks"] != float64(2) || data["replaced_tracks"] != float64(1) {
			t.Errorf("data = %v", data)
		}
		if data["timestamp"] != "2024-03-01T10:00:00Z" {
			t.Errorf("timestamp = %v", data["timestamp"])
		}
		if ids, _ := data["user_ids"].([]any); len(ids) != 2 {
			t.Errorf("user_ids = %v", data["user_ids"])
		}
	}

	if got := testutil.ToFloat64(metrics.WSMessagesSent.WithLabelValues(MessageTypeTracksUpdate)) - before; got != 1 {
		t.Errorf("messages sent delta = %v, want 1", got)
	}
}

func TestHub_TracksUpdateNilUserIDs(t *testing.T) {
	hub, _, _ := startHub(t)
	c := fakeClient(hub, 1)
	hub.Register(c)

	hub.BroadcastTracksUpdate("initial", nil, 0, 0, time.Now())

	data, _ := receive(t, c).Data.(map[string]any)
	if ids, ok := data["user_ids"].([]any); !ok || len(ids) != 0 {
		t.Errorf("user_ids = %#v, want empty array", data["user_ids"])
	}
}

func TestHub_SnapProgress(t *testing.T) {
	hub, _, _ := startHub(t)
	c := fakeClient(hub, 4)
	hub.Register(c)

	hub.BroadcastSnapProgress(SnapProgressData{Status: SnapStatusRunning, Done: 1, Total: 3, Mode: "walking"})
	hub.BroadcastSnapProgress(SnapProgressData{Status: SnapStatusCompleted, Done: 3, Total: 3, Mode: "walking"})

	first := receive(t, c)
	second := receive(t, c)
	if first.Type != MessageTypeSnapProgress || second.Type != MessageTypeSnapProgress {
		t.Fatalf("types = %q, %q", first.Type, second.Type)
	}
	if d, _ := second.Data.(map[string]any); d["status"] != SnapStatusCompleted || d["done"] != float64(3) {
		t.Errorf("second = %v", second.Data)
	}
}

func TestHub_ConnectionGauge(t *testing.T) {
	hub, _, _ := startHub(t)
	a, b := fakeClient(hub, 1), fakeClient(hub, 1)
	hub.Register(a)
	hub.Register(b)
	waitFor(t, "two clients", func() bool { return hub.ClientCount() == 2 })
	if got := testutil.ToFloat64(metrics.WSConnections); got != 2 {
		t.Errorf("gauge = %v, want 2", got)
	}

	hub.Unregister(a)
	waitFor(t, "one client", func() bool { return hub.ClientCount() == 1 })
	if _, ok := <-a.send; ok {
		t.Error("unregistered client's send channel should be closed")
	}

	// Unregistering twice is harmless.
	hub.Unregister(a)
	waitFor(t, "gauge update", func() bool { return testutil.ToFloat64(metrics.WSConnections) == 1 })
}

func TestHub_DropsSlowClient(t *testing.T) {
	hub, _, _ := startHub(t)
	slow, fast := fakeClient(hub, 1), fakeClient(hub, 8)
	hub.Register(slow)
	hub.Register(fast)

	hub.Broadcast(MessageTypeTracksUpdate, "one")
	hub.Broadcast(MessageTypeTracksUpdate, "two")

	waitFor(t, "slow client dropped", func() bool { return hub.ClientCount() == 1 })
	receive(t, fast)
	receive(t, fast)

	<-slow.send // the one message that fit
	if _, ok := <-slow.send; ok {
		t.Error("slow client's send channel should be closed")
	}
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	hub, cancel, errc := startHub(t)
	c := fakeClient(hub, 1)
	hub.Register(c)

	cancel()

	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if _, ok := <-c.send; ok {
		t.Error("client send channel should be closed on shutdown")
	}
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d after shutdown", hub.ClientCount())
	}
	if hub.Register(fakeClient(hub, 1)) {
		t.Error("Register should fail on a stopped hub")
	}

	done := make(chan struct{})
	go func() {
		hub.Unregister(c)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Unregister blocked on a stopped hub")
	}
}

func TestHub_BroadcastQueueFull(t *testing.T) {
	hub := NewHub() // not serving, so nothing drains the queue
	for i := 0; i < broadcastBuffer; i++ {
		if !hub.Broadcast(MessageTypeTracksUpdate, i) {
			t.Fatalf("broadcast %d dropped before the queue was full", i)
		}
	}
	if hub.Broadcast(MessageTypeTracksUpdate, "overflow") {
		t.Error("expected broadcast to be dropped when the queue is full")
	}
}

func TestShutdownReason(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	if got := shutdownReason(canceled); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: got %q", got)
	}

	expired, cancel2 := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel2()
	<-expired.Done()
	if got := shutdownReason(expired); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: got %q", got)
	}
}

func TestMarshalMessage(t *testing.T) {
	b, err := MarshalMessage(Message{Type: MessageTypePong})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"type":"pong","data":null}` {
		t.Errorf("MarshalMessage() = %s", b)
	}
}

func TestHub_String(t *testing.T) {
	if NewHub().String() != "websocket-hub" {
		t.Error("unexpected service name")
	}
}
