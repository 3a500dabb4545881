// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package tracking

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/fieldtrail/internal/config"
	"github.com/tomtom215/fieldtrail/internal/logging"
	"github.com/tomtom215/fieldtrail/internal/metrics"
	"github.com/tomtom215/fieldtrail/internal/models"
)

const (
	// tracksPath is appended to the configured base URL.
	tracksPath = "/admin/location"

	// DefaultPageLimit is used when neither the params nor the config set one.
	DefaultPageLimit = 100

	// maxErrorBodySize caps how much of an error response is kept.
	maxErrorBodySize = 64 * 1024

	// isoLayout matches the millisecond-precision UTC form the API expects.
	isoLayout = "2006-01-02T15:04:05.000Z07:00"
)

// Fetcher fetches one page of tracks. Client and CircuitBreakerClient implement it.
type Fetcher interface {
	FetchTracks(ctx context.Context, params FetchParams) (*models.TracksPage, error)
}

// Bound is an optional from/to filter. The zero value means "not set".
type Bound struct {
	ms   int64
	text string
	set  bool
}

// Millis builds a bound from epoch milliseconds.
func Millis(ms int64) Bound {
	return Bound{ms: ms, set: true}
}

// At builds a bound from a time.
func At(t time.Time) Bound {
	return Bound{ms: t.UnixMilli(), set: true}
}

// Text builds a bound from a pre-formatted timestamp string.
func Text(s string) Bound {
	return Bound{text: s, set: s != ""}
}

// IsZero reports whether the bound is unset.
func (b Bound) IsZero() bool {
	return !b.set
}

// ISO returns the bound as an ISO-8601 UTC timestamp. Strings that cannot be
// parsed are passed through unchanged so the API can reject them itself.
func (b Bound) ISO() string {
	if !b.set {
		return ""
	}
	if b.text == "" {
		return time.UnixMilli(b.ms).UTC().Format(isoLayout)
	}
	if ms := models.ParseTimestampString(b.text); ms != 0 {
		return time.UnixMilli(ms).UTC().Format(isoLayout)
	}
	return b.text
}

// FetchParams filters one page request. Page defaults to 1 and Limit to the
// client's configured page size.
type FetchParams struct {
	UserID string
	From   Bound
	To     Bound
	Page   int
	Limit  int
}

// Client reads location tracks from the tracking API.
type Client struct {
	baseURL   string
	tokens    TokenSource
	client    *http.Client
	pageLimit int
}

// NewClient creates a tracking API client. When tokens is nil the configured
// static token is used.
func NewClient(cfg *config.TrackingConfig, tokens TokenSource) *Client {
	if tokens == nil {
		tokens = StaticToken(cfg.Token)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	limit := cfg.PageLimit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		tokens:    tokens,
		client:    &http.Client{Timeout: timeout},
		pageLimit: limit,
	}
}

// buildURL constructs the listing URL for params.
func (c *Client) buildURL(params FetchParams) string {
	q := url.Values{}
	if params.UserID != "" {
		q.Set("userId", params.UserID)
	}
	if from := params.From.ISO(); from != "" {
		q.Set("from", from)
	}
	if to := params.To.ISO(); to != "" {
		q.Set("to", to)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit < 1 {
		limit = c.pageLimit
	}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))

	return c.baseURL + tracksPath + "?" + q.Encode()
}

// FetchTracks fetches one page of tracks.
//
// A non-2xx response returns *FetchError. A canceled ctx returns an error for
// which IsCanceled is true. Anything else is a transport error.
func (c *Client) FetchTracks(ctx context.Context, params FetchParams) (*models.TracksPage, error) {
	start := time.Now()
	page, err := c.fetchTracks(ctx, params)

	count := 0
	if page != nil {
		count = len(page.Data)
	}
	metrics.RecordTrackingFetch(fetchOutcome(err), time.Since(start), count)

	return page, err
}

func (c *Client) fetchTracks(ctx context.Context, params FetchParams) (*models.TracksPage, error) {
	reqURL := c.buildURL(params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("obtain token: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			StatusCode: resp.StatusCode,
			Body:       string(readBodyForError(resp.Body)),
		}
	}

	var page models.TracksPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if page.Data == nil {
		page.Data = []models.LocationTrack{}
	}

	logging.Debug().
		Str("user_id", params.UserID).
		Int("page", params.Page).
		Int("tracks", len(page.Data)).
		Msg("[tracking] fetched page")

	return &page, nil
}

// FetchAll follows pages starting at params.Page until the API reports no
// more pages, a page comes back empty, or maxPages pages have been read.
func (c *Client) FetchAll(ctx context.Context, params FetchParams, maxPages int) ([]models.LocationTrack, error) {
	return FetchAll(ctx, c, params, maxPages)
}

// FetchAll is Client.FetchAll for any Fetcher.
func FetchAll(ctx context.Context, f Fetcher, params FetchParams, maxPages int) ([]models.LocationTrack, error) {
	if maxPages < 1 {
		maxPages = 1
	}
	if params.Page < 1 {
		params.Page = 1
	}

	var all []models.LocationTrack
	for fetched := 0; fetched < maxPages; fetched++ {
		page, err := f.FetchTracks(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d: %w", params.Page, err)
		}
		all = append(all, page.Data...)

		if len(page.Data) == 0 || !page.Meta.HasMore() {
			return all, nil
		}
		params.Page++
	}

	logging.Warn().
		Int("max_pages", maxPages).
		Int("tracks", len(all)).
		Msg("[tracking] page limit reached, remaining pages left for live sync")
	return all, nil
}

// readBodyForError reads at most maxErrorBodySize bytes of an error response.
func readBodyForError(body io.Reader) []byte {
	data, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return []byte("(failed to read response body)")
	}
	return data
}

// fetchOutcome classifies err for metrics.
func fetchOutcome(err error) string {
	var fe *FetchError
	switch {
	case err == nil:
		return "success"
	case IsCanceled(err):
		return "canceled"
	case errors.As(err, &fe):
		return "http_error"
	default:
		return "transport_error"
	}
}
