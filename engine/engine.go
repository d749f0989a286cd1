// Package engine drives conversations: it consumes inbound messages from
// the bus, resolves them into flow events (allow-list check, device fetch),
// executes the resulting actions against the intercom API, and persists the
// per-chat context. One goroutine services the whole inbound stream, which
// is what serializes events within a conversation.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gloriapark/concierge/access"
	"github.com/gloriapark/concierge/bus"
	"github.com/gloriapark/concierge/flow"
	"github.com/gloriapark/concierge/intercom"
	"github.com/gloriapark/concierge/session"
)

type Options struct {
	Bus             *bus.Bus
	Sessions        *session.Manager
	Policy          *access.Policy
	Intercom        *intercom.Client
	InstructionsDir string
	// MenuTTL bounds how long a session's device list may be acted on.
	// The vendor addresses devices by list position, so a stale list can
	// point commands at the wrong door.
	MenuTTL time.Duration
	Logger  zerolog.Logger
}

type Engine struct {
	bus             *bus.Bus
	sessions        *session.Manager
	policy          *access.Policy
	intercom        *intercom.Client
	instructionsDir string
	menuTTL         time.Duration
	log             zerolog.Logger
}

func New(opts Options) *Engine {
	return &Engine{
		bus:             opts.Bus,
		sessions:        opts.Sessions,
		policy:          opts.Policy,
		intercom:        opts.Intercom,
		instructionsDir: opts.InstructionsDir,
		menuTTL:         opts.MenuTTL,
		log:             opts.Logger,
	}
}

func (e *Engine) Run(ctx context.Context) error {
	for {
		msg, err := e.bus.ConsumeInbound(ctx)
		if err != nil {
			return err
		}
		e.handle(ctx, msg)
	}
}

func (e *Engine) handle(ctx context.Context, msg bus.InboundMessage) {
	rec, err := e.sessions.GetOrCreate(msg.SessionKey)
	if err != nil {
		e.log.Error().Str("session", msg.SessionKey).Err(err).Msg("session load failed")
		return
	}

	if e.menuExpired(rec.Context, msg) {
		e.reply(ctx, msg, flow.Action{
			Type:           flow.ActionReply,
			Text:           flow.TextMenuExpired,
			RemoveKeyboard: true,
		})
		e.clearSession(msg.SessionKey)
		return
	}

	ev, ok := e.buildEvent(ctx, msg)
	if !ok {
		return
	}

	actions, next := flow.Transition(rec.Context, ev)
	rec.Context = next

	cleared := false
	for _, a := range actions {
		if a.Type == flow.ActionClearSession {
			e.clearSession(msg.SessionKey)
			cleared = true
			continue
		}
		e.perform(ctx, msg, a)
	}
	if cleared {
		return
	}
	if err := e.sessions.Save(rec); err != nil {
		e.log.Error().Str("session", msg.SessionKey).Err(err).Msg("session save failed")
	}
}

// buildEvent turns an inbound message into a flow event. Contact shares are
// resolved here: the allow-list is consulted first, and only an authorized
// phone triggers a device-list fetch.
func (e *Engine) buildEvent(ctx context.Context, msg bus.InboundMessage) (flow.Event, bool) {
	if msg.Contact != nil {
		phone := msg.Contact.PhoneNumber
		user, ok := e.policy.Authorize(phone)
		if !ok {
			e.log.Info().Str("phone", phone).Msg("phone not in allow-list")
			return flow.Event{Type: flow.EventContact, Phone: phone}, true
		}

		devices, err := e.intercom.ListDevices(ctx)
		if err != nil {
			e.log.Error().Err(err).Msg("device list fetch failed")
			e.reply(ctx, msg, flow.Action{Type: flow.ActionReply, Text: flow.TextServiceUnavailable})
			return flow.Event{}, false
		}
		visible := flow.FilterVisible(devices, user)
		e.log.Info().Str("phone", phone).Int("devices", len(visible)).Msg("resident authorized")
		return flow.Event{
			Type:       flow.EventContact,
			Phone:      phone,
			Authorized: true,
			Devices:    visible,
			FetchedAt:  time.Now(),
		}, true
	}

	if normalizeSlashCommand(msg.Text) == "/start" {
		return flow.Event{Type: flow.EventStart}, true
	}
	return flow.Event{Type: flow.EventText, Text: msg.Text}, true
}

func (e *Engine) perform(ctx context.Context, msg bus.InboundMessage, a flow.Action) {
	switch a.Type {
	case flow.ActionReply:
		e.reply(ctx, msg, a)

	case flow.ActionSendInstructions:
		album := e.loadInstructions()
		if len(album) == 0 {
			return
		}
		e.send(ctx, bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Album:   album,
		})

	case flow.ActionOpenDoor:
		if err := e.intercom.OpenDoor(ctx, a.Device.Index); err != nil {
			e.log.Error().Int("index", a.Device.Index).Err(err).Msg("open door failed")
			e.reply(ctx, msg, flow.Action{Type: flow.ActionReply, Text: flow.TextServiceUnavailable})
			return
		}
		e.log.Info().Int("index", a.Device.Index).Str("device", a.Device.Description).Msg("door opened")
		e.reply(ctx, msg, flow.Action{Type: flow.ActionReply, Text: flow.TextOpened})

	case flow.ActionSendSnapshot:
		img, err := e.intercom.Snapshot(ctx, a.Device.Index)
		if err != nil {
			e.log.Error().Int("index", a.Device.Index).Err(err).Msg("snapshot failed")
			e.reply(ctx, msg, flow.Action{Type: flow.ActionReply, Text: flow.TextServiceUnavailable})
			return
		}
		e.send(ctx, bus.OutboundMessage{
			Channel: msg.Channel,
			ChatID:  msg.ChatID,
			Photo:   img,
		})
	}
}

func (e *Engine) reply(ctx context.Context, msg bus.InboundMessage, a flow.Action) {
	e.send(ctx, bus.OutboundMessage{
		Channel:         msg.Channel,
		ChatID:          msg.ChatID,
		Text:            a.Text,
		Keyboard:        a.Keyboard,
		OneTimeKeyboard: a.OneTimeKeyboard,
		RequestContact:  a.RequestContact,
		RemoveKeyboard:  a.RemoveKeyboard,
	})
}

func (e *Engine) send(ctx context.Context, msg bus.OutboundMessage) {
	if err := e.bus.PublishOutbound(ctx, msg); err != nil {
		e.log.Warn().Err(err).Msg("outbound dropped")
	}
}

func (e *Engine) clearSession(key string) {
	if err := e.sessions.Clear(key); err != nil {
		e.log.Error().Str("session", key).Err(err).Msg("session clear failed")
	}
}

// menuExpired reports whether msg is a device command against a device list
// older than the menu TTL.
func (e *Engine) menuExpired(ctx flow.Context, msg bus.InboundMessage) bool {
	if e.menuTTL <= 0 || ctx.State != flow.StateMenu || ctx.FetchedAt.IsZero() {
		return false
	}
	if msg.Contact != nil || !isDeviceCommand(msg.Text) {
		return false
	}
	return time.Since(ctx.FetchedAt) > e.menuTTL
}

func isDeviceCommand(text string) bool {
	return flow.IsOpenCommand(text) || flow.IsSnapshotCommand(text)
}

// loadInstructions reads the static onboarding screenshots, sorted by file
// name. A missing or empty directory just means no album is sent.
func (e *Engine) loadInstructions() [][]byte {
	dir := strings.TrimSpace(e.instructionsDir)
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	album := make([][]byte, 0, len(names))
	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			e.log.Warn().Str("file", name).Err(err).Msg("instruction image unreadable")
			continue
		}
		album = append(album, b)
	}
	return album
}

func normalizeSlashCommand(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return text
	}
	cmd, _, _ := strings.Cut(text, " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd
}
