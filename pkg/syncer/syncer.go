// Package syncer drains the relay pool's notification stream into the local
// database and fans freshly stored events out to in-process listeners.
package syncer

import (
	"os"

	"github.com/mirelabs/desktr/pkg/context"
	"github.com/mirelabs/desktr/pkg/ingest"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/relaypool"
	"github.com/mirelabs/desktr/pkg/slog"
	"github.com/puzpuzpuz/xsync/v2"
)

var log, chk = slog.New(os.Stderr)

// ListenerBuffer is the capacity of each listener channel. Listeners that
// fall behind miss events rather than stall the sync loop.
const ListenerBuffer = 64

// Syncer runs the receive side of the client: every event notification goes
// through the ingestion pipeline, and events that were actually stored (not
// duplicates) are forwarded to every registered listener.
type Syncer struct {
	Pool   relaypool.I
	Ingest *ingest.T

	listeners *xsync.MapOf[string, chan *event.T]
}

// New creates a syncer over the given pool and ingestion pipeline.
func New(pool relaypool.I, ing *ingest.T) (s *Syncer) {
	return &Syncer{
		Pool:      pool,
		Ingest:    ing,
		listeners: xsync.NewMapOf[chan *event.T](),
	}
}

// Listen registers a named listener and returns its channel. Registering the
// same name again replaces the previous channel.
func (s *Syncer) Listen(name string) (ch <-chan *event.T) {
	c := make(chan *event.T, ListenerBuffer)
	if old, ok := s.listeners.LoadAndStore(name, c); ok {
		close(old)
	}
	return c
}

// Unlisten removes a listener and closes its channel.
func (s *Syncer) Unlisten(name string) {
	if ch, ok := s.listeners.LoadAndDelete(name); ok {
		close(ch)
	}
}

// Run drains the notification stream until the pool closes it or the
// context ends. Ingestion failures are logged and the loop continues; a
// broken event must never stop the feed.
func (s *Syncer) Run(c context.T) {
	notes := s.Pool.Notifications()
	for {
		select {
		case <-c.Done():
			return
		case n, ok := <-notes:
			if !ok {
				return
			}
			s.handle(n)
		}
	}
}

func (s *Syncer) handle(n relaypool.Notification) {
	if !n.IsEvent() {
		if len(n.Raw) > 0 {
			log.D.F("relay %s: %s", n.Relay, string(n.Raw))
		}
		return
	}
	stored, err := s.Ingest.ProcessEvent(n.Event)
	if err != nil {
		log.E.F("relay %s: event %s rejected: %v", n.Relay, n.Event.ID, err)
		return
	}
	if !stored {
		return
	}
	s.fanout(n.Event)
}

// fanout delivers ev to every listener without blocking the sync loop.
func (s *Syncer) fanout(ev *event.T) {
	s.listeners.Range(func(name string, ch chan *event.T) bool {
		select {
		case ch <- ev:
		default:
			log.D.F("listener %s is full, dropping event %s", name, ev.ID)
		}
		return true
	})
}
