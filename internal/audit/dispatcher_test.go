package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type gateSink struct {
	gate    chan struct{}
	emitted atomic.Int64
}

func (s *gateSink) Emit(context.Context, Event) {
	<-s.gate
	s.emitted.Add(1)
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "x"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("expected nil dispatcher to report zero drops")
	}
}

func TestDispatcherDeliversToChannelSink(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)

	d.Emit(context.Background(), Event{EventType: "login_success", UserID: "u1", Success: true})

	select {
	case ev := <-sink.Events():
		if ev.EventType != "login_success" || ev.UserID != "u1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	d.Close()
}

func TestDispatcherDropIfFull(t *testing.T) {
	sink := &gateSink{gate: make(chan struct{})}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "session_rejected"})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a blocked sink and a one-slot buffer")
	}

	close(sink.gate)
	d.Close()
	if got := sink.emitted.Load() + int64(d.Dropped()); got != 10 {
		t.Fatalf("expected emitted+dropped == 10, got %d", got)
	}
}

func TestDispatcherCloseIsIdempotent(t *testing.T) {
	d := NewDispatcher(Config{Enabled: true, BufferSize: 2}, NoOpSink{})
	d.Close()
	d.Close()
	d.Emit(context.Background(), Event{EventType: "after_close"})
}

func TestJSONWriterSinkWritesLines(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{EventType: "register_success", UserID: "u1", Success: true})
	sink.Emit(context.Background(), Event{EventType: "login_failure", Error: "unauthorized"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var ev Event
	if err := json.Unmarshal([]byte(lines[1]), &ev); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if ev.Error != "unauthorized" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestSlogSinkWritesRecord(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	sink := NewSlogSink(logger, slog.LevelInfo)

	sink.Emit(context.Background(), Event{
		EventType: "session_repaired",
		UserID:    "u1",
		Success:   true,
		Metadata:  map[string]string{"reason": "expired"},
	})

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if rec["msg"] != "audit" || rec["event_type"] != "session_repaired" || rec["meta.reason"] != "expired" {
		t.Fatalf("unexpected record: %v", rec)
	}
}
