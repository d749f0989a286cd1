package channels

import (
	"context"

	"github.com/gloriapark/concierge/bus"
)

type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop() error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
}
