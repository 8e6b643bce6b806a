package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestLoggerEmitsServiceAndFields(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Level: zerolog.InfoLevel, Output: &buf})

	ctx := logg.WithFields(context.Background(), map[string]any{"request_id": "abc-123"})
	ctx = logg.WithUserID(ctx, "user-9")
	logg.Info(ctx, "login.success")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry["service"] != "api" {
		t.Fatalf("expected service field, got %v", entry["service"])
	}
	if entry["request_id"] != "abc-123" {
		t.Fatalf("expected request_id to flow through context, got %v", entry["request_id"])
	}
	if entry["user_id"] != "user-9" {
		t.Fatalf("expected user_id field, got %v", entry["user_id"])
	}
	if entry["message"] != "login.success" {
		t.Fatalf("unexpected message %v", entry["message"])
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Level: zerolog.WarnLevel, Output: &buf})

	logg.Info(context.Background(), "should be dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should not be written at warn level: %s", buf.String())
	}

	logg.Warn(context.Background(), "kept")
	if buf.Len() == 0 {
		t.Fatalf("warn should be written at warn level")
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != zerolog.DebugLevel {
		t.Fatalf("expected debug level")
	}
	if ParseLevel("") != zerolog.InfoLevel {
		t.Fatalf("empty level should default to info")
	}
	if ParseLevel("nonsense") != zerolog.InfoLevel {
		t.Fatalf("unknown level should default to info")
	}
}
