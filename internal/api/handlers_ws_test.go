// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	ws "github.com/tomtom215/fieldtrail/internal/websocket"
)

func dialWS(t *testing.T, a *testAPI, origin string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(a.server.URL, "http") + "/api/v1/ws"
	header := http.Header{}
	if origin != "" {
		header.Set("Origin", origin)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func TestWebSocket_OriginChecks(t *testing.T) {
	a := newTestAPI(t, apiOptions{withHub: true})

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{"allowed origin", "http://map.example", true},
		{"foreign origin", "http://evil.example", false},
		{"missing origin", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := dialWS(t, a, tt.origin)
			if tt.ok && err != nil {
				t.Fatalf("dial: %v", err)
			}
			if !tt.ok {
				if err == nil {
					t.Fatal("expected the handshake to be rejected")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %v, want 403", resp)
				}
			}
		})
	}
}

func TestWebSocket_NoHub(t *testing.T) {
	a := newTestAPI(t, apiOptions{})
	resp, env := a.do(t, http.MethodGet, "/api/v1/ws", "")
	expectStatus(t, resp, http.StatusServiceUnavailable)
	expectErrorCode(t, env, ErrCodeServiceUnavailable)
}

func TestSnapBatch_PushesProgress(t *testing.T) {
	a := newTestAPI(t, apiOptions{withHub: true})
	conn, _, err := dialWS(t, a, "http://map.example")
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for a.hub.ClientCount() != 1 {
		if time.Now().After(deadline) {
			t.Fatal("websocket client never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	resp, _ := a.do(t, http.MethodPost, "/api/v1/snap/batch", `{"user_ids":["u1","u2"]}`)
	expectStatus(t, resp, http.StatusOK)

	var statuses []string
	for len(statuses) < 3 {
		if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
			t.Fatal(err)
		}
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("read after %v: %v", statuses, err)
		}
		var msg struct {
			Type string              `json:"type"`
			Data ws.SnapProgressData `json:"data"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type != ws.MessageTypeSnapProgress {
			continue
		}
		if msg.Data.Total != 2 || msg.Data.Mode != "walking" {
			t.Errorf("progress = %+v", msg.Data)
		}
		statuses = append(statuses, msg.Data.Status)
	}

	want := []string{ws.SnapStatusRunning, ws.SnapStatusRunning, ws.SnapStatusCompleted}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}
