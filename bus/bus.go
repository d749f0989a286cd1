package bus

import (
	"context"
)

// Contact is a phone number shared by the user through the transport's
// contact widget. The number is passed through exactly as received.
type Contact struct {
	PhoneNumber string
	FirstName   string
}

type InboundMessage struct {
	Channel    string
	SenderID   string
	ChatID     string
	Text       string
	Contact    *Contact
	SessionKey string // usually "channel:chat_id"
}

type OutboundMessage struct {
	Channel string
	ChatID  string
	Text    string

	// Photo is a single raw image payload (intercom snapshot).
	Photo []byte
	// Album is an ordered set of images sent as one media group.
	Album [][]byte

	// Keyboard rows replace the user's reply keyboard when non-empty.
	Keyboard        [][]string
	OneTimeKeyboard bool
	RequestContact  bool
	RemoveKeyboard  bool
}

type Bus struct {
	in  chan InboundMessage
	out chan OutboundMessage
}

func New(buffer int) *Bus {
	if buffer <= 0 {
		buffer = 64
	}
	return &Bus{
		in:  make(chan InboundMessage, buffer),
		out: make(chan OutboundMessage, buffer),
	}
}

func (b *Bus) PublishInbound(ctx context.Context, msg InboundMessage) error {
	select {
	case b.in <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) PublishOutbound(ctx context.Context, msg OutboundMessage) error {
	select {
	case b.out <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Bus) ConsumeInbound(ctx context.Context) (InboundMessage, error) {
	select {
	case msg := <-b.in:
		return msg, nil
	case <-ctx.Done():
		return InboundMessage{}, ctx.Err()
	}
}

func (b *Bus) ConsumeOutbound(ctx context.Context) (OutboundMessage, error) {
	select {
	case msg := <-b.out:
		return msg, nil
	case <-ctx.Done():
		return OutboundMessage{}, ctx.Err()
	}
}
