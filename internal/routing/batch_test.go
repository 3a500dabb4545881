// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package routing

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/fieldtrail/internal/models"
)

// batchServer records the first waypoint of each request and the time it
// arrived. A request whose first waypoint is in failPrefixes has its
// connection dropped, which the client sees as a transport error.
type batchServer struct {
	mu           sync.Mutex
	order        []string
	times        []time.Time
	failPrefixes map[string]bool
}

func (b *batchServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	list := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	first := strings.SplitN(list, ";", 2)[0]

	b.mu.Lock()
	b.order = append(b.order, first)
	b.times = append(b.times, time.Now())
	fail := b.failPrefixes[first]
	b.mu.Unlock()

	if fail {
		hj, ok := w.(http.Hijacker)
		if !ok {
			panic("response writer cannot hijack")
		}
		conn, _, err := hj.Hijack()
		if err == nil {
			conn.Close()
		}
		return
	}
	fmt.Fprint(w, okRouteBody)
}

func threeTrails() []models.SnapInput {
	return []models.SnapInput{
		{ID: "trail-1", Coordinates: coords(1, 10, 1.1, 10.1)},
		{ID: "trail-2", Coordinates: coords(2, 20, 2.1, 20.1)},
		{ID: "trail-3", Coordinates: coords(3, 30, 3.1, 30.1)},
	}
}

func TestBatchSnap_SequentialAndSpaced(t *testing.T) {
	const delay = 100 * time.Millisecond
	srv := &batchServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	var progress []string
	snapper := newTestSnapper(t, server.URL, delay)
	results, err := snapper.BatchSnap(context.Background(), threeTrails(), models.TravelModeDriving, func(done, total int) {
		progress = append(progress, fmt.Sprintf("%d/%d", done, total))
	})
	if err != nil {
		t.Fatalf("BatchSnap() error = %v", err)
	}

	if len(results) != 3 {
		t.Fatalf("results = %d entries, want 3", len(results))
	}
	for id, route := range results {
		if route == nil {
			t.Errorf("%s: expected a route", id)
		}
	}

	srv.mu.Lock()
	defer srv.mu.Unlock()
	wantOrder := []string{"10,1", "20,2", "30,3"}
	if strings.Join(srv.order, " ") != strings.Join(wantOrder, " ") {
		t.Errorf("request order = %v, want %v", srv.order, wantOrder)
	}
	for i := 1; i < len(srv.times); i++ {
		gap := srv.times[i].Sub(srv.times[i-1])
		if gap < delay {
			t.Errorf("gap between request %d and %d = %v, want >= %v", i-1, i, gap, delay)
		}
	}

	if strings.Join(progress, ",") != "1/3,2/3,3/3" {
		t.Errorf("progress = %v", progress)
	}
}

func TestBatchSnap_FailureDoesNotAbort(t *testing.T) {
	srv := &batchServer{failPrefixes: map[string]bool{"20,2": true}}
	server := httptest.NewServer(srv)
	defer server.Close()

	snapper := newTestSnapper(t, server.URL, 10*time.Millisecond)
	results, err := snapper.BatchSnap(context.Background(), threeTrails(), models.TravelModeDriving, nil)
	if err != nil {
		t.Fatalf("BatchSnap() error = %v", err)
	}

	for _, id := range []string{"trail-1", "trail-2", "trail-3"} {
		if _, ok := results[id]; !ok {
			t.Errorf("missing result entry for %s", id)
		}
	}
	if results["trail-1"] == nil || results["trail-3"] == nil {
		t.Error("trails 1 and 3 should have routes")
	}
	if results["trail-2"] != nil {
		t.Errorf("trail-2 should be nil, got %+v", results["trail-2"])
	}
}

func TestBatchSnap_InsufficientTrailIsNilEntry(t *testing.T) {
	srv := &batchServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	inputs := []models.SnapInput{
		{ID: "lonely", Coordinates: coords(5, 5)},
		{ID: "ok", Coordinates: coords(1, 10, 1.1, 10.1)},
	}
	results, err := newTestSnapper(t, server.URL, 0).BatchSnap(context.Background(), inputs, models.TravelModeCycling, nil)
	if err != nil {
		t.Fatalf("BatchSnap() error = %v", err)
	}
	if route, ok := results["lonely"]; !ok || route != nil {
		t.Errorf("lonely = (%v, %v), want (nil, true)", route, ok)
	}
	if results["ok"] == nil {
		t.Error("ok should have a route")
	}
}

func TestBatchSnap_Canceled(t *testing.T) {
	srv := &batchServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	snapper := newTestSnapper(t, server.URL, 0)
	results, err := snapper.BatchSnap(ctx, threeTrails(), models.TravelModeDriving, func(done, total int) {
		if done == 1 {
			cancel()
		}
	})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(results) != 1 || results["trail-1"] == nil {
		t.Errorf("partial results = %v", results)
	}
}

func TestBatchSnap_UnknownMode(t *testing.T) {
	snapper := newTestSnapper(t, "http://routing.invalid", 0)
	if _, err := snapper.BatchSnap(context.Background(), threeTrails(), "hover", nil); err == nil {
		t.Fatal("expected ErrUnknownMode")
	}
}

func TestBatchSnap_DelayCountsFromPreviousResponse(t *testing.T) {
	const delay = 80 * time.Millisecond
	var (
		mu    sync.Mutex
		times []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		times = append(times, time.Now())
		mu.Unlock()
		// A slow routing service must not eat into the spacing.
		time.Sleep(delay / 2)
		fmt.Fprint(w, okRouteBody)
	}))
	defer server.Close()

	if _, err := newTestSnapper(t, server.URL, delay).BatchSnap(context.Background(), threeTrails(), models.TravelModeWalking, nil); err != nil {
		t.Fatalf("BatchSnap() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(times) != 3 {
		t.Fatalf("requests = %d, want 3", len(times))
	}
	for i := 1; i < len(times); i++ {
		if gap := times[i].Sub(times[i-1]); gap < delay+delay/2 {
			t.Errorf("gap between request %d and %d = %v, want >= %v", i-1, i, gap, delay+delay/2)
		}
	}
}

func TestBatchSnap_CanceledDuringDelay(t *testing.T) {
	srv := &batchServer{}
	server := httptest.NewServer(srv)
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	snapper := newTestSnapper(t, server.URL, time.Hour)
	start := time.Now()
	results, err := snapper.BatchSnap(ctx, threeTrails(), models.TravelModeDriving, func(done, total int) {
		if done == 1 {
			go func() {
				time.Sleep(20 * time.Millisecond)
				cancel()
			}()
		}
	})
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Error("BatchSnap did not stop waiting on cancel")
	}
	if len(results) != 1 || results["trail-1"] == nil {
		t.Errorf("partial results = %v", results)
	}
}
