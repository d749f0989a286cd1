// Package flow implements the concierge conversation as a pure state
// machine: given the current per-chat context and an inbound event, it
// returns the actions to perform and the next context. Side effects
// (intercom calls, message delivery, session persistence) belong to the
// engine.
package flow

import (
	"fmt"
	"time"

	"github.com/gloriapark/concierge/intercom"
)

type State string

const (
	StateAwaitingPhone State = "awaiting_phone"
	StateMenu          State = "menu"
)

// Context is the per-chat conversation state. It is what the session store
// snapshots between process restarts.
type Context struct {
	State State  `json:"state"`
	Phone string `json:"phone,omitempty"`
	// Devices is the visible device list captured at authorization time;
	// each entry keeps its fetched-list index.
	Devices   []intercom.Device `json:"devices,omitempty"`
	FetchedAt time.Time         `json:"fetched_at,omitzero"`
}

type EventType int

const (
	EventStart EventType = iota
	EventContact
	EventText
)

// Event is one inbound occurrence, pre-resolved by the engine: for contact
// events the allow-list decision and (when authorized) the visible device
// list are already attached, keeping Transition free of I/O.
type Event struct {
	Type EventType
	Text string

	Phone      string
	Authorized bool
	Devices    []intercom.Device
	FetchedAt  time.Time
}

type ActionType int

const (
	// ActionReply sends a text message, optionally replacing or removing
	// the reply keyboard.
	ActionReply ActionType = iota
	// ActionSendInstructions delivers the static onboarding screenshots.
	ActionSendInstructions
	ActionOpenDoor
	ActionSendSnapshot
	ActionClearSession
)

type Action struct {
	Type ActionType

	Text            string
	Keyboard        [][]string
	OneTimeKeyboard bool
	RequestContact  bool
	RemoveKeyboard  bool

	Device intercom.Device
}

func reply(text string) Action {
	return Action{Type: ActionReply, Text: text}
}

// Transition routes an event through the conversation state machine.
func Transition(ctx Context, ev Event) ([]Action, Context) {
	switch ev.Type {
	case EventStart:
		return []Action{{
			Type:           ActionReply,
			Text:           TextGreeting,
			Keyboard:       [][]string{{TextShareContactButton}},
			RequestContact: true,
		}}, Context{State: StateAwaitingPhone}

	case EventContact:
		if ctx.State == StateMenu {
			// Already authorized; a stray contact share changes nothing.
			return nil, ctx
		}
		if !ev.Authorized {
			return []Action{
				{
					Type:           ActionReply,
					Text:           fmt.Sprintf(TextRejectedFormat, ev.Phone),
					RemoveKeyboard: true,
				},
				{Type: ActionClearSession},
			}, Context{State: StateAwaitingPhone}
		}
		next := Context{
			State:     StateMenu,
			Phone:     ev.Phone,
			Devices:   ev.Devices,
			FetchedAt: ev.FetchedAt,
		}
		accept := Action{
			Type:            ActionReply,
			Text:            fmt.Sprintf(TextAcceptedFormat, ev.Phone),
			Keyboard:        MenuKeyboard(ev.Devices),
			OneTimeKeyboard: true,
		}
		if len(accept.Keyboard) == 0 {
			// No visible devices is still a valid (empty) menu; drop the
			// contact-request keyboard instead of leaving it on screen.
			accept.Keyboard = nil
			accept.OneTimeKeyboard = false
			accept.RemoveKeyboard = true
		}
		return []Action{
			accept,
			{Type: ActionSendInstructions},
		}, next

	case EventText:
		if doneRe.MatchString(ev.Text) {
			return []Action{
				{Type: ActionReply, Text: TextFarewell, RemoveKeyboard: true},
				{Type: ActionClearSession},
			}, Context{State: StateAwaitingPhone}
		}
		if ctx.State != StateMenu {
			return nil, ctx
		}
		switch {
		case openIntentRe.MatchString(ev.Text):
			d, ok := ResolveCommand(ev.Text, ctx.Devices)
			if !ok {
				return []Action{reply(TextDeviceNotFound)}, ctx
			}
			return []Action{
				reply(TextOpening),
				{Type: ActionOpenDoor, Device: d},
			}, ctx
		case snapshotIntentRe.MatchString(ev.Text):
			d, ok := ResolveCommand(ev.Text, ctx.Devices)
			if !ok {
				return []Action{reply(TextDeviceNotFound)}, ctx
			}
			return []Action{
				reply(TextTakingSnapshot),
				{Type: ActionSendSnapshot, Device: d},
			}, ctx
		}
		return nil, ctx
	}
	return nil, ctx
}
