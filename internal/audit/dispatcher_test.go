package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type blockingSink struct {
	release chan struct{}
	got     chan Event
}

func (s *blockingSink) Emit(_ context.Context, e Event) {
	<-s.release
	s.got <- e
}

func TestDisabledDispatcherIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatal("expected nil dispatcher when disabled")
	}
	d.Emit(context.Background(), Event{EventType: "login.success"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatal("nil dispatcher must report zero drops")
	}
}

func TestDispatcherDeliversAndDrainsOnClose(t *testing.T) {
	sink := NewChannelSink(8)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 8}, sink)

	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{EventType: "logout.success", Success: true})
	}
	d.Close()

	count := 0
	for {
		select {
		case <-sink.Events():
			count++
			continue
		default:
		}
		break
	}
	if count != 3 {
		t.Fatalf("expected 3 delivered events, got %d", count)
	}

	d.Emit(context.Background(), Event{EventType: "after-close"})
	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected event after close: %+v", e)
	default:
	}
}

func TestDispatcherDropsWhenFull(t *testing.T) {
	sink := &blockingSink{release: make(chan struct{}), got: make(chan Event, 16)}
	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	for i := 0; i < 10; i++ {
		d.Emit(context.Background(), Event{EventType: "refresh.failure"})
	}
	for i := 0; i < 3; i++ {
		d.Emit(context.Background(), Event{EventType: "login.success", Success: true})
	}
	if d.Dropped() == 0 {
		t.Fatal("expected drops with a stalled sink and buffer of 1")
	}
	byType := d.DroppedByType()
	if byType["login.success"] != 3 {
		t.Fatalf("expected 3 dropped login events, got %d", byType["login.success"])
	}
	if byType["refresh.failure"]+byType["login.success"] != d.Dropped() {
		t.Fatalf("per-type drops %v do not add up to %d", byType, d.Dropped())
	}

	close(sink.release)
	d.Close()
}

func TestJSONWriterSinkOneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)
	sink.Emit(context.Background(), Event{ID: "e1", EventType: "login.success", Success: true, Timestamp: time.Unix(0, 0).UTC()})
	sink.Emit(context.Background(), Event{ID: "e2", EventType: "login.failure", Error: "bad"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var e Event
	if err := json.Unmarshal([]byte(lines[1]), &e); err != nil {
		t.Fatalf("decode line: %v", err)
	}
	if e.ID != "e2" || e.Error != "bad" || e.Success {
		t.Fatalf("unexpected event %+v", e)
	}
}

func TestLoggerSinkLevels(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLoggerSink(zerolog.New(&buf))

	sink.Emit(context.Background(), Event{EventType: "login.failure", Error: "invalid credentials"})
	if !strings.Contains(buf.String(), `"level":"warn"`) {
		t.Fatalf("expected warn level for failure, got %s", buf.String())
	}
	buf.Reset()

	sink.Emit(context.Background(), Event{EventType: "login.success", Success: true, UserID: "1", Role: "studio"})
	out := buf.String()
	if !strings.Contains(out, `"level":"info"`) || !strings.Contains(out, `"role":"studio"`) {
		t.Fatalf("unexpected log line %s", out)
	}
}
