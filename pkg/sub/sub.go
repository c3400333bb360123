// Package sub maintains the pool-wide subscription that keeps the local
// database fed: the owner's contact list, DMs addressed to the owner, and
// the content of everyone the owner follows.
package sub

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mirelabs/desktr/pkg/context"
	"github.com/mirelabs/desktr/pkg/db"
	"github.com/mirelabs/desktr/pkg/nostr/filter"
	"github.com/mirelabs/desktr/pkg/nostr/filters"
	"github.com/mirelabs/desktr/pkg/nostr/kind"
	"github.com/mirelabs/desktr/pkg/nostr/kinds"
	"github.com/mirelabs/desktr/pkg/qu"
	"github.com/mirelabs/desktr/pkg/relaypool"
	"github.com/mirelabs/desktr/pkg/slog"
)

var log, chk = slog.New(os.Stderr)

// DefaultInterval is how often the author set is re-checked against the
// active subscription.
const DefaultInterval = 30 * time.Second

// ErrSubscribe - pushing a filter set to the pool failed. Never fatal to
// the refresh loop; the next tick retries.
var ErrSubscribe = errors.New("failed to subscribe")

// Manager owns the active filter set. It subscribes once on Start and then
// re-subscribes only when the author set stored in the database actually
// changes, so a steady state costs nothing on the wire.
type Manager struct {
	Pool relaypool.I
	DB   *db.T
	// Self is the owner's hex pubkey.
	Self string
	// Interval between author set checks; DefaultInterval when zero.
	Interval time.Duration

	authors []string
	quit    qu.C
}

// New creates a subscription manager for the given pool and database.
func New(pool relaypool.I, d *db.T, self string) (m *Manager) {
	return &Manager{
		Pool:     pool,
		DB:       d,
		Self:     self,
		Interval: DefaultInterval,
		quit:     qu.T(),
	}
}

// BuildFilters assembles the three standing filters from the current state
// of the database:
//
//   - the owner's own contact list (kind 3, limit 1),
//   - encrypted DMs addressed to the owner (kind 4, #p),
//   - metadata, notes, reposts and reactions from every followed author,
//     the owner included.
//
// The sorted author snapshot the filters were built from is returned so the
// caller can detect changes.
func (m *Manager) BuildFilters() (ff filters.T, authors []string, err error) {
	if authors, err = m.DB.GetAuthors(); chk.E(err) {
		return
	}
	seen := false
	for _, a := range authors {
		if a == m.Self {
			seen = true
			break
		}
	}
	if !seen {
		authors = append(authors, m.Self)
	}
	sort.Strings(authors)
	ff = filters.T{
		&filter.T{
			Kinds:   kinds.T{kind.ContactList},
			Authors: []string{m.Self},
			Limit:   1,
		},
		&filter.T{
			Kinds: kinds.T{kind.EncryptedDirectMessage},
			PTags: []string{m.Self},
		},
		&filter.T{
			Kinds: kinds.T{
				kind.SetMetadata,
				kind.TextNote,
				kind.Repost,
				kind.Reaction,
			},
			Authors: authors,
		},
	}
	return
}

// Subscribe builds fresh filters and pushes them to the pool,
// unconditionally replacing the active set. The author snapshot is only
// recorded once the pool accepts the filters: a failed subscribe must leave
// the manager looking out of date so Refresh pushes again on the next tick.
func (m *Manager) Subscribe(c context.T) (err error) {
	var ff filters.T
	var authors []string
	if ff, authors, err = m.BuildFilters(); chk.E(err) {
		return
	}
	if err = m.Pool.Subscribe(c, ff); chk.E(err) {
		err = fmt.Errorf("%w: %s", ErrSubscribe, err)
		return
	}
	m.authors = authors
	log.D.F("subscribed with %d authors", len(m.authors))
	return
}

// Refresh re-subscribes only if the stored author set differs from the one
// the active subscription was built with. Returns whether a re-subscribe
// happened.
func (m *Manager) Refresh(c context.T) (changed bool, err error) {
	var ff filters.T
	var authors []string
	if ff, authors, err = m.BuildFilters(); chk.E(err) {
		return
	}
	if sameAuthors(m.authors, authors) {
		return
	}
	if err = m.Pool.Subscribe(c, ff); chk.E(err) {
		err = fmt.Errorf("%w: %s", ErrSubscribe, err)
		return
	}
	m.authors = authors
	changed = true
	log.I.F("author set changed, resubscribed with %d authors", len(authors))
	return
}

// Start subscribes immediately and then keeps the subscription in step with
// the author set until the context ends or Stop is called. Subscription
// failures are logged and retried on the next tick.
func (m *Manager) Start(c context.T) {
	iv := m.Interval
	if iv <= 0 {
		iv = DefaultInterval
	}
	chk.E(m.Subscribe(c))
	tick := time.NewTicker(iv)
	defer tick.Stop()
	for {
		select {
		case <-c.Done():
			return
		case <-m.quit.Wait():
			return
		case <-tick.C:
			if _, err := m.Refresh(c); err != nil {
				log.W.F("subscription refresh failed: %v", err)
			}
		}
	}
}

// Stop ends a running Start loop.
func (m *Manager) Stop() { m.quit.Q() }

// sameAuthors compares two sorted author snapshots.
func sameAuthors(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
