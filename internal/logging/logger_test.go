// Fieldtrail - Field Agent Location Tracking and Trail Processing
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/fieldtrail

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// captureLogs points the global logger at a buffer for the duration of the test.
func captureLogs(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(Config{Timestamp: true}) })
	return &buf
}

func TestInit_JSON(t *testing.T) {
	buf := captureLogs(t, Config{Level: "debug", Timestamp: true})

	Info().Str("user_id", "u1").Msg("trail updated")
	Debug().Msg("debug visible")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"user_id":"u1"`, `"message":"trail updated"`, `"time":`, "debug visible"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestInit_Defaults(t *testing.T) {
	buf := captureLogs(t, Config{})

	Debug().Msg("hidden")
	Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("zero Config should log at info: %s", out)
	}
	if !strings.HasPrefix(out, "{") {
		t.Errorf("zero Config should write JSON: %s", out)
	}
	if strings.Contains(out, `"time"`) {
		t.Errorf("timestamp was not requested: %s", out)
	}
}

func TestInit_ServiceFields(t *testing.T) {
	buf := captureLogs(t, Config{Service: "fieldtrail", Version: "1.2.0"})

	Warn().Msg("breaker open")

	out := buf.String()
	if !strings.Contains(out, `"service":"fieldtrail"`) || !strings.Contains(out, `"version":"1.2.0"`) {
		t.Errorf("missing service fields: %s", out)
	}
}

func TestInit_Console(t *testing.T) {
	buf := captureLogs(t, Config{Format: "Console"})
	Info().Msg("console line")

	out := buf.String()
	if strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Errorf("console output should not be JSON: %s", out)
	}
	if !strings.Contains(out, "console line") {
		t.Errorf("missing message: %s", out)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" ERROR ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"verbose", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input); got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureLogs(t, Config{Level: "warn"})

	tests := []struct {
		name    string
		log     func()
		visible bool
	}{
		{"debug", func() { Debug().Msg("m") }, false},
		{"info", func() { Info().Msg("m") }, false},
		{"warn", func() { Warn().Msg("m") }, true},
		{"error", func() { Error().Msg("m") }, true},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.log()
		if got := buf.Len() > 0; got != tt.visible {
			t.Errorf("%s at warn level: written = %v, want %v", tt.name, got, tt.visible)
		}
	}
}
