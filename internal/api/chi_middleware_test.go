// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/middleware"
)

func TestRateLimit_Enveloped429(t *testing.T) {
	a := newTestAPI(t, apiOptions{mutateFn: func(c *config.Config) {
		c.Security.RateLimitDisabled = false
		c.Security.RateLimitReqs = 2
		c.Security.RateLimitWindow = time.Minute
	}})

	for i := 0; i < 2; i++ {
		resp, _ := a.do(t, http.MethodGet, "/api/v1/trails", "")
		expectStatus(t, resp, http.StatusOK)
	}
	resp, env := a.do(t, http.MethodGet, "/api/v1/trails", "")
	expectStatus(t, resp, http.StatusTooManyRequests)
	expectErrorCode(t, env, ErrCodeTooManyRequests)

	// Health has its own budget.
	resp, _ = a.do(t, http.MethodGet, "/api/v1/health/live", "")
	expectStatus(t, resp, http.StatusOK)
}

func TestRateLimitCustom_DisabledIsPassthrough(t *testing.T) {
	m := NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := m.RateLimitCustom(RateLimitConfig{Requests: 1, Window: time.Minute})(next)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status %d", i, rec.Code)
		}
	}
}

func TestAPISecurityHeaders(t *testing.T) {
	a := newTestAPI(t, apiOptions{})
	resp, _ := a.do(t, http.MethodGet, "/api/v1/stats", "")

	for header, want := range map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Cache-Control":          "no-store",
	} {
		if got := resp.Header.Get(header); got != want {
			t.Errorf("%s = %q, want %q", header, got, want)
		}
	}
	if resp.Header.Get("Strict-Transport-Security") != "" {
		t.Error("HSTS must only be sent over HTTPS")
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	APISecurityHeaders(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rec, req)
	if rec.Header().Get("Strict-Transport-Security") == "" {
		t.Error("expected HSTS behind a TLS-terminating proxy")
	}
}

func TestRequestIDInEnvelope(t *testing.T) {
	a := newTestAPI(t, apiOptions{})
	resp, env := a.do(t, http.MethodGet, "/api/v1/trails/ghost", "")

	id := resp.Header.Get(middleware.RequestIDHeader)
	if id == "" {
		t.Fatal("missing X-Request-ID header")
	}
	if env.Meta == nil || env.Meta.RequestID != id {
		t.Errorf("meta.request_id = %+v, want %q", env.Meta, id)
	}
	if env.Error == nil || env.Error.RequestID != id {
		t.Errorf("error.request_id = %+v, want %q", env.Error, id)
	}
}

func TestCORS_Preflight(t *testing.T) {
	a := newTestAPI(t, apiOptions{})

	req, _ := http.NewRequest(http.MethodOptions, a.server.URL+"/api/v1/snap/batch", nil)
	req.Header.Set("Origin", "http://map.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := a.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "http://map.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req, _ = http.NewRequest(http.MethodOptions, a.server.URL+"/api/v1/snap/batch", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err = a.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("foreign origin allowed: %q", got)
	}
}

func TestNotFoundIsEnveloped(t *testing.T) {
	a := newTestAPI(t, apiOptions{})
	resp, env := a.do(t, http.MethodGet, "/api/v2/nothing", "")
	expectStatus(t, resp, http.StatusNotFound)
	expectErrorCode(t, env, ErrCodeNotFound)
}

func TestMetricsEndpoint(t *testing.T) {
	a := newTestAPI(t, apiOptions{})
	a.do(t, http.MethodGet, "/api/v1/trails", "")

	resp, err := a.server.Client().Get(a.server.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if !strings.Contains(string(body), `api_requests_total{endpoint="/api/v1/trails",method="GET",status_code="200"}`) {
		t.Error("/metrics does not expose the trails request counter")
	}
}

func TestCompressionOnReads(t *testing.T) {
	a := newTestAPI(t, apiOptions{})

	req, _ := http.NewRequest(http.MethodGet, a.server.URL+"/api/v1/trails", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	tr := &http.Transport{DisableCompression: true}
	defer tr.CloseIdleConnections()
	resp, err := (&http.Client{Transport: tr}).Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if resp.Header.Get("Content-Encoding") != "gzip" {
		t.Errorf("Content-Encoding = %q, want gzip", resp.Header.Get("Content-Encoding"))
	}
}
