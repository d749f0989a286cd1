package channels

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gloriapark/concierge/bus"
)

type stubChannel struct {
	name    string
	sent    atomic.Int64
	running atomic.Bool
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Start(ctx context.Context) error {
	s.running.Store(true)
	<-ctx.Done()
	s.running.Store(false)
	return ctx.Err()
}

func (s *stubChannel) Stop() error { return nil }

func (s *stubChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	s.sent.Add(1)
	return nil
}

func (s *stubChannel) IsRunning() bool { return s.running.Load() }

func TestStartAll_NoChannels(t *testing.T) {
	m := NewManager(bus.New(1), zerolog.Nop())
	if err := m.StartAll(context.Background()); err == nil {
		t.Fatalf("expected error with no channels")
	}
}

func TestDispatchOutbound_RoutesByChannelName(t *testing.T) {
	b := bus.New(4)
	m := NewManager(b, zerolog.Nop())
	tg := &stubChannel{name: "telegram"}
	m.Add(tg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.DispatchOutbound(ctx)
		close(done)
	}()

	if err := b.PublishOutbound(ctx, bus.OutboundMessage{Channel: "telegram", ChatID: "42", Text: "Відкрито"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	// Unknown channels are dropped, not fatal.
	if err := b.PublishOutbound(ctx, bus.OutboundMessage{Channel: "fax", ChatID: "1", Text: "x"}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(time.Second)
	for tg.sent.Load() != 1 {
		select {
		case <-deadline:
			t.Fatalf("sent = %d", tg.sent.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done
}
