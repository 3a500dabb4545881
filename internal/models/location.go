// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package models

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Coordinate is a latitude/longitude pair in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationPoint is one GPS sample as uploaded by a device.
//
// TS is the only field used for ordering. It is normalized from the wire
// "timestamp" field (epoch-ms number or ISO-8601 string) at decode time.
type LocationPoint struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Altitude  *float64 `json:"altitude,omitempty"`

	// TS is the sample time in epoch milliseconds.
	TS int64 `json:"timestamp"`
}

// Coordinate returns the point's position.
func (p LocationPoint) Coordinate() Coordinate {
	return Coordinate{Lat: p.Latitude, Lng: p.Longitude}
}

// Time returns TS as a time.Time in UTC.
func (p LocationPoint) Time() time.Time {
	return time.UnixMilli(p.TS).UTC()
}

// wireLocationPoint mirrors the tracking API's point shape before normalization.
type wireLocationPoint struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Accuracy  *float64        `json:"accuracy"`
	Speed     *float64        `json:"speed"`
	Heading   *float64        `json:"heading"`
	Altitude  *float64        `json:"altitude"`
	Timestamp json.RawMessage `json:"timestamp"`
}

// UnmarshalJSON decodes a point and normalizes its timestamp.
func (p *LocationPoint) UnmarshalJSON(data []byte) error {
	var w wireLocationPoint
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*p = LocationPoint{
		Latitude:  w.Latitude,
		Longitude: w.Longitude,
		Accuracy:  w.Accuracy,
		Speed:     w.Speed,
		Heading:   w.Heading,
		Altitude:  w.Altitude,
		TS:        NormalizeTimestamp(w.Timestamp),
	}
	return nil
}

// NormalizeTimestamp converts a raw JSON timestamp into epoch milliseconds.
//
// Accepted forms, in order:
//   - JSON number: epoch milliseconds
//   - RFC 3339 / ISO-8601 string (with or without fractional seconds or zone)
//   - numeric string: epoch milliseconds
//
// Anything else (null, empty, garbage) normalizes to 0 rather than failing
// the whole batch.
func NormalizeTimestamp(raw json.RawMessage) int64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	if raw[0] != '"' {
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0
		}
		return int64(f)
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	return ParseTimestampString(s)
}

// isoLayouts lists the string layouts accepted for timestamps.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.000",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestampString parses an ISO-8601 or numeric string into epoch milliseconds.
// Returns 0 if the string cannot be interpreted.
func ParseTimestampString(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli()
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return int64(f)
	}
	return 0
}

// UserRef is the normalized owner of a track.
//
// The tracking API sends userId either as a raw id string or as an embedded
// user document. Both collapse into this shape once, at decode time.
type UserRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	EmployeeID  string `json:"employee_id,omitempty"`
	Region      string `json:"region,omitempty"`

	// Embedded is true when the wire value was a user object rather than a bare id.
	Embedded bool `json:"-"`
}

// wireUser mirrors the embedded user document.
type wireUser struct {
	ID         string `json:"id"`
	MongoID    string `json:"_id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	EmployeeID string `json:"employeeId"`
	Region     string `json:"region"`
}

// ParseUserRef resolves a raw userId value into a UserRef.
func ParseUserRef(raw json.RawMessage) UserRef {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return UserRef{}
	}

	switch raw[0] {
	case '"':
		var id string
		if err := json.Unmarshal(raw, &id); err != nil {
			return UserRef{}
		}
		return UserRef{ID: id, DisplayName: id}
	case '{':
		var u wireUser
		if err := json.Unmarshal(raw, &u); err != nil {
			return UserRef{}
		}
		id := u.ID
		if id == "" {
			id = u.MongoID
		}
		ref := UserRef{
			ID:         id,
			EmployeeID: u.EmployeeID,
			Region:     u.Region,
			Embedded:   true,
		}
		ref.DisplayName = strings.TrimSpace(u.FirstName + " " + u.LastName)
		if ref.DisplayName == "" {
			ref.DisplayName = u.EmployeeID
		}
		if ref.DisplayName == "" {
			ref.DisplayName = id
		}
		return ref
	default:
		// Numeric ids are tolerated and kept verbatim.
		id := string(raw)
		return UserRef{ID: id, DisplayName: id}
	}
}

// LocationTrack is one batch of points uploaded by one device sync.
//
// A track's ID is globally unique and immutable; it is the dedup key used by
// the trail aggregator.
type LocationTrack struct {
	ID         string          `json:"id"`
	User       UserRef         `json:"user"`
	Locations  []LocationPoint `json:"locations"`
	DeviceInfo map[string]any  `json:"device_info,omitempty"`
	SyncedAt   *time.Time      `json:"synced_at,omitempty"`
	CreatedAt  *time.Time      `json:"created_at,omitempty"`
	UpdatedAt  *time.Time      `json:"updated_at,omitempty"`
}

// wireLocationTrack mirrors the tracking API's track document.
type wireLocationTrack struct {
	ID         string          `json:"id"`
	MongoID    string          `json:"_id"`
	UserID     json.RawMessage `json:"userId"`
	Locations  []LocationPoint `json:"locations"`
	DeviceInfo map[string]any  `json:"deviceInfo"`
	SyncedAt   json.RawMessage `json:"syncedAt"`
	CreatedAt  json.RawMessage `json:"createdAt"`
	UpdatedAt  json.RawMessage `json:"updatedAt"`
}

// UnmarshalJSON decodes the tracking API's track document and normalizes the
// polymorphic fields.
func (t *LocationTrack) UnmarshalJSON(data []byte) error {
	var w wireLocationTrack
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id := w.ID
	if id == "" {
		id = w.MongoID
	}
	*t = LocationTrack{
		ID:         id,
		User:       ParseUserRef(w.UserID),
		Locations:  w.Locations,
		DeviceInfo: w.DeviceInfo,
		SyncedAt:   parseOptionalTime(w.SyncedAt),
		CreatedAt:  parseOptionalTime(w.CreatedAt),
		UpdatedAt:  parseOptionalTime(w.UpdatedAt),
	}
	return nil
}

// parseOptionalTime parses a raw timestamp, returning nil for empty or unparseable values.
func parseOptionalTime(raw json.RawMessage) *time.Time {
	ms := NormalizeTimestamp(raw)
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

// PageMeta is the pagination block returned by the tracking API.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalDocs  int `json:"totalDocs"`
	TotalPages int `json:"totalPages"`
}

// HasMore reports whether pages remain after this one.
func (m *PageMeta) HasMore() bool {
	return m != nil && m.TotalPages > 0 && m.Page < m.TotalPages
}

// TracksPage is one page of the tracking API's /admin/location response.
type TracksPage struct {
	Success bool            `json:"success"`
	Data    []LocationTrack `json:"data"`
	Meta    *PageMeta       `json:"meta,omitempty"`
}

// FlatPoint is a point tagged with its originating track, owner and sync time.
// It is the element type of a single ordered point stream.
type FlatPoint struct {
	LocationPoint
	TrackID  string     `json:"track_id"`
	UserID   string     `json:"user_id"`
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}
