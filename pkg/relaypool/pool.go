package relaypool

import (
	"os"

	"github.com/mirelabs/desktr/pkg/context"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/filters"
	"github.com/mirelabs/desktr/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// Notification is one item of the relay pool's merged notification stream:
// either a delivered event or a raw relay message (notices and the like,
// which the sync loop ignores but observability may want).
type Notification struct {
	// Relay is the normalized URL of the connection that produced this.
	Relay string
	// Event is set for event deliveries.
	Event *event.T
	// Raw is set for non-event relay messages.
	Raw []byte
}

// IsEvent reports whether this notification delivers an event.
func (n Notification) IsEvent() bool { return n.Event != nil }

// I is the relay pool collaborator interface the sync loop and the
// subscription manager consume. The production implementation is Pool;
// tests substitute fakes.
type I interface {
	// AddRelay dials a relay and joins it to the active subscription.
	// proxy is an optional socks address hint.
	AddRelay(c context.T, url, proxy string) (err error)
	// RemoveRelay disconnects a relay and forgets it.
	RemoveRelay(url string) (err error)
	// Subscribe replaces the pool-wide active filter set; every current
	// and future relay serves it. Re-subscription is a replacement, not an
	// accumulation.
	Subscribe(c context.T, ff filters.T) (err error)
	// Publish sends an event to every connected relay.
	Publish(c context.T, ev *event.T) (err error)
	// Notifications returns the merged stream of all relay traffic. The
	// channel closes when the pool closes.
	Notifications() <-chan Notification
	// Relays lists the normalized URLs currently in the pool.
	Relays() (urls []string)
	// Close tears the pool down: all connections are dropped and the
	// notification channel is closed once in-flight deliveries drain.
	Close()
}
