package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

// captureLogOutput reinitializes the logger to write to a buffer for the
// duration of f.
func captureLogOutput(level Level, format Format, f func()) string {
	var buf bytes.Buffer
	oldLogger := defaultLogger
	InitLoggerTo(&buf, level, format)
	f()
	defaultLogger = oldLogger
	return buf.String()
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, err=%v)", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = (%v, %v)", f, err)
	}
	if f, err := ParseFormat("Text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(Text) = (%v, %v)", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestLevelFiltering(t *testing.T) {
	out := captureLogOutput(LevelWarn, FormatText, func() {
		logger := LoggerFromContext(context.Background())
		logger.Debug("hidden debug")
		logger.Info("hidden info")
		logger.Warn("shown warn")
		logger.Error("shown error")
	})
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn leaked: %s", out)
	}
	if !strings.Contains(out, "shown warn") || !strings.Contains(out, "shown error") {
		t.Errorf("expected warn and error messages, got: %s", out)
	}
}

func TestJSONFormatAndTimestamp(t *testing.T) {
	out := captureLogOutput(LevelInfo, FormatJSON, func() {
		LoggerFromContext(context.Background()).Info("hello", "station", "ANMO")
	})
	var rec map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, out)
	}
	if rec["station"] != "ANMO" {
		t.Errorf("station = %v", rec["station"])
	}
	ts, _ := rec["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("time %q is not RFC3339: %v", ts, err)
	}
}

func TestRunIDContext(t *testing.T) {
	ctx := WithRunID(context.Background(), "run-123")
	if got := GetRunID(ctx); got != "run-123" {
		t.Errorf("GetRunID() = %q", got)
	}
	if got := GetRunID(context.Background()); got != "" {
		t.Errorf("GetRunID(empty) = %q", got)
	}

	out := captureLogOutput(LevelDebug, FormatJSON, func() {
		FileParsed(ctx, "SAC_PZs_IU_ANMO", 2, false, 3*time.Millisecond)
	})
	for _, want := range []string{`"run_id":"run-123"`, `"msg":"file_parsed"`, `"instruments":2`, `"cached":false`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}

func TestDomainEvents(t *testing.T) {
	out := captureLogOutput(LevelInfo, FormatJSON, func() {
		FileFailed(context.Background(), "bad.pz", errors.New("pz: no delimiter line found"))
		CatalogImport(context.Background(), "good.pz", "f-1", 3, true)
	})
	for _, want := range []string{`"msg":"file_failed"`, `"error":"pz: no delimiter line found"`, `"msg":"catalog_import"`, `"duplicate":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
