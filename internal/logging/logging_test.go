package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestComponentFollowsInit(t *testing.T) {
	log := Component("store")

	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, false)

	log.Info("opened", "driver", "duckdb")

	out := buf.String()
	if !strings.Contains(out, "component=store") {
		t.Errorf("missing component attribute: %s", out)
	}
	if !strings.Contains(out, "driver=duckdb") {
		t.Errorf("missing driver attribute: %s", out)
	}
}

func TestComponentRebuildsAfterReinit(t *testing.T) {
	log := Component("ingestion").With("route", "post")

	var first, second bytes.Buffer
	InitWriter(&first, slog.LevelInfo, false)
	log.Info("one")

	InitWriter(&second, slog.LevelInfo, false)
	log.Info("two")

	if !strings.Contains(first.String(), "msg=one") || strings.Contains(first.String(), "msg=two") {
		t.Errorf("first output = %q", first.String())
	}
	out := second.String()
	if !strings.Contains(out, "msg=two") || !strings.Contains(out, "component=ingestion") || !strings.Contains(out, "route=post") {
		t.Errorf("second output = %q", out)
	}
}

func TestConcurrentInitAndLog(t *testing.T) {
	if Default() == nil {
		t.Fatal("Default() is nil before Init")
	}

	log := Component("server")
	var a, b bytes.Buffer
	InitWriter(&a, slog.LevelInfo, false)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				log.Info("tick", "worker", i)
			}
		}(i)
	}
	InitWriter(&b, slog.LevelInfo, false)
	wg.Wait()

	if got := strings.Count(a.String(), "msg=tick") + strings.Count(b.String(), "msg=tick"); got != 400 {
		t.Errorf("logged %d lines, want 400", got)
	}
}

func TestComponentRequestID(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelInfo, true)

	ctx := ContextWithRequestID(context.Background(), 42)
	Component("handler").With("route", "get").InfoContext(ctx, "served")

	out := buf.String()
	for _, want := range []string{`"request_id":42`, `"component":"handler"`, `"route":"get"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %s missing %s", out, want)
		}
	}
}

func TestComponentLevel(t *testing.T) {
	var buf bytes.Buffer
	InitWriter(&buf, slog.LevelWarn, false)

	Component("query").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
