package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
)

func TestLoggerWritesTaggedJSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("lunch-menu", &buf, "debug")
	l.Error("order_failed", "req-1", "insert failed", errors.New("boom"), slog.String("order_id", "o1"))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	for key, want := range map[string]string{
		"service":    "lunch-menu",
		"action":     "order_failed",
		"request_id": "req-1",
		"error":      "boom",
		"order_id":   "o1",
		"msg":        "insert failed",
	} {
		if got, _ := line[key].(string); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("svc", &buf, "warn")
	l.Info("noise", "", "dropped")
	if buf.Len() != 0 {
		t.Errorf("info line written at warn level: %s", buf.String())
	}
	l.Warn("kept", "", "kept")
	if buf.Len() == 0 {
		t.Error("warn line not written")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	if got := RequestID(ctx); got != "abc" {
		t.Errorf("RequestID = %q, want abc", got)
	}
	if got := RequestID(context.Background()); got != "" {
		t.Errorf("RequestID on empty ctx = %q", got)
	}
}
