package channels

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gloriapark/concierge/bus"
)

// Manager owns the registered channels: it starts each one on its own
// goroutine and pumps bus outbound messages to the channel named on them.
type Manager struct {
	bus *bus.Bus
	log zerolog.Logger

	mu       sync.Mutex
	channels map[string]Channel
	wg       sync.WaitGroup
}

func NewManager(b *bus.Bus, log zerolog.Logger) *Manager {
	return &Manager{
		bus:      b,
		log:      log,
		channels: map[string]Channel{},
	}
}

func (m *Manager) Add(c Channel) {
	m.mu.Lock()
	m.channels[c.Name()] = c
	m.mu.Unlock()
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channels) == 0 {
		return fmt.Errorf("no channels configured")
	}
	for _, c := range m.channels {
		m.wg.Add(1)
		go func(c Channel) {
			defer m.wg.Done()
			if err := c.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.log.Error().Str("channel", c.Name()).Err(err).Msg("channel stopped")
			}
		}(c)
	}
	return nil
}

func (m *Manager) StopAll() error {
	m.mu.Lock()
	for _, c := range m.channels {
		_ = c.Stop()
	}
	m.mu.Unlock()
	m.wg.Wait()
	return nil
}

// DispatchOutbound routes bus outbound messages to their channel until ctx
// is done. Delivery failures are logged, not retried; the conversation
// state has already moved on.
func (m *Manager) DispatchOutbound(ctx context.Context) {
	for {
		msg, err := m.bus.ConsumeOutbound(ctx)
		if err != nil {
			return
		}
		m.mu.Lock()
		c, ok := m.channels[msg.Channel]
		m.mu.Unlock()
		if !ok {
			m.log.Warn().Str("channel", msg.Channel).Msg("outbound for unknown channel")
			continue
		}
		if err := c.Send(ctx, msg); err != nil {
			m.log.Error().Str("channel", msg.Channel).Str("chat_id", msg.ChatID).Err(err).Msg("send failed")
		}
	}
}
