package relaypool

import (
	"errors"
	"sync"
	"time"

	"github.com/fiatjaf/generic-ristretto/z"
	"github.com/mirelabs/desktr/pkg/context"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/nostr/filters"
	"github.com/nbd-wtf/go-nostr"
	"github.com/puzpuzpuz/xsync/v2"
)

const (
	// MaxLocks is the stripe count for the per-URL connection locks.
	MaxLocks = 50
	// DialTimeout bounds a single relay dial.
	DialTimeout = 15 * time.Second
	// ReconnectWait is the pause before re-dialing a dropped relay.
	ReconnectWait = 5 * time.Second
	// NotificationBuffer is the capacity of the merged stream; slow
	// consumers will eventually stall the pumps, not drop events.
	NotificationBuffer = 256
)

// ErrClosed is returned by operations on a pool that has been closed.
var ErrClosed = errors.New("relay pool is closed")

var namedMutexPool = make([]sync.Mutex, MaxLocks)

func namedLock(name string) (unlock func()) {
	idx := z.MemHashString(name) % MaxLocks
	namedMutexPool[idx].Lock()
	return namedMutexPool[idx].Unlock
}

// Pool is the production relay pool: one websocket connection per relay URL,
// one pump goroutine per relay feeding the shared notification channel, and a
// single pool-wide filter set that Subscribe replaces atomically.
type Pool struct {
	ctx    context.T
	cancel context.F
	relays *xsync.MapOf[string, *nostr.Relay]
	notes  chan Notification
	wg     sync.WaitGroup

	subMx     sync.Mutex
	subCtx    context.T
	subCancel context.F
	current   filters.T

	// noteMx guards notes against close: notice handlers run on the
	// transport's goroutines, outside wg, so Close cannot just wait for
	// them before closing the channel.
	noteMx    sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

var _ I = (*Pool)(nil)

// New creates a relay pool whose lifetime is bounded by c.
func New(c context.T) (p *Pool) {
	ctx, cancel := context.Cancel(c)
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		relays: xsync.NewMapOf[*nostr.Relay](),
		notes:  make(chan Notification, NotificationBuffer),
	}
}

// AddRelay dials url and adds it to the pool. If a subscription is active the
// new relay starts serving it immediately. The proxy hint is accepted for
// interface compatibility but the transport dials direct; a non-empty value
// is logged and ignored.
func (p *Pool) AddRelay(c context.T, url, proxy string) (err error) {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	nm := nostr.NormalizeURL(url)
	if nm == "" {
		return errors.New("invalid relay URL: " + url)
	}
	if proxy != "" {
		log.W.F("proxy %s requested for %s: transport has no proxy support, connecting direct", proxy, nm)
	}
	defer namedLock(nm)()
	if rl, ok := p.relays.Load(nm); ok && rl.IsConnected() {
		return
	}
	dc, cancel := context.Timeout(c, DialTimeout)
	defer cancel()
	var rl *nostr.Relay
	if rl, err = p.connect(dc, nm); chk.E(err) {
		return
	}
	p.relays.Store(nm, rl)
	log.I.F("relay %s connected", nm)
	p.subMx.Lock()
	defer p.subMx.Unlock()
	if p.current != nil {
		p.wg.Add(1)
		go p.pump(p.subCtx, nm, p.current.Clone())
	}
	return
}

func (p *Pool) connect(c context.T, nm string) (rl *nostr.Relay, err error) {
	return nostr.RelayConnect(c, nm,
		nostr.WithNoticeHandler(func(notice string) {
			p.deliver(p.ctx, Notification{Relay: nm, Raw: []byte(notice)})
		}),
	)
}

// RemoveRelay disconnects url and removes it from the pool. Its pump exits on
// the dropped connection and does not reconnect.
func (p *Pool) RemoveRelay(url string) (err error) {
	nm := nostr.NormalizeURL(url)
	defer namedLock(nm)()
	rl, ok := p.relays.LoadAndDelete(nm)
	if !ok {
		return
	}
	log.I.F("relay %s removed", nm)
	return rl.Close()
}

// Subscribe replaces the active filter set. The previous subscription's
// pumps are cancelled and every relay in the pool gets a fresh pump running
// the new filters.
func (p *Pool) Subscribe(c context.T, ff filters.T) (err error) {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	p.subMx.Lock()
	defer p.subMx.Unlock()
	if p.subCancel != nil {
		p.subCancel()
	}
	p.subCtx, p.subCancel = context.Cancel(p.ctx)
	p.current = ff.Clone()
	p.relays.Range(func(nm string, _ *nostr.Relay) bool {
		p.wg.Add(1)
		go p.pump(p.subCtx, nm, p.current.Clone())
		return true
	})
	return
}

// pump runs one relay's side of the active subscription: subscribe, forward
// events into the shared stream, and re-dial with a pause when the
// connection drops. It exits when c is cancelled or the relay is removed
// from the pool.
func (p *Pool) pump(c context.T, nm string, ff filters.T) {
	defer p.wg.Done()
	wire := filtersToWire(ff)
	for c.Err() == nil {
		rl, ok := p.relays.Load(nm)
		if !ok {
			return
		}
		if !rl.IsConnected() {
			if rl, ok = p.redial(c, nm); !ok {
				continue
			}
		}
		sub, err := rl.Subscribe(c, wire)
		if chk.E(err) {
			p.pause(c)
			continue
		}
		for ev := range sub.Events {
			if ev == nil {
				continue
			}
			if !p.deliver(c, Notification{Relay: nm, Event: eventFromWire(ev)}) {
				sub.Unsub()
				return
			}
		}
		// Events closed: either our context ended or the connection
		// dropped; the loop condition sorts out which.
		p.pause(c)
	}
}

// redial replaces a dropped connection, keeping the notice handler. Returns
// ok=false when the relay has been removed or the dial failed (after the
// reconnect pause).
func (p *Pool) redial(c context.T, nm string) (rl *nostr.Relay, ok bool) {
	p.pause(c)
	if c.Err() != nil {
		return nil, false
	}
	defer namedLock(nm)()
	if _, ok = p.relays.Load(nm); !ok {
		return nil, false
	}
	dc, cancel := context.Timeout(c, DialTimeout)
	defer cancel()
	var err error
	if rl, err = p.connect(dc, nm); err != nil {
		log.D.F("relay %s re-dial failed: %v", nm, err)
		return nil, false
	}
	log.I.F("relay %s reconnected", nm)
	p.relays.Store(nm, rl)
	return rl, true
}

func (p *Pool) pause(c context.T) {
	select {
	case <-c.Done():
	case <-time.After(ReconnectWait):
	}
}

// deliver pushes a notification unless the pool is shutting down. The read
// lock keeps the send from racing the channel close; a parked deliver is
// released by the context cancel that precedes it.
func (p *Pool) deliver(c context.T, n Notification) (ok bool) {
	p.noteMx.RLock()
	defer p.noteMx.RUnlock()
	if p.closed {
		return false
	}
	select {
	case p.notes <- n:
		return true
	case <-c.Done():
		return false
	case <-p.ctx.Done():
		return false
	}
}

// Publish sends ev to every relay in the pool. Individual relay failures are
// logged; the first one is returned.
func (p *Pool) Publish(c context.T, ev *event.T) (err error) {
	if p.ctx.Err() != nil {
		return ErrClosed
	}
	wire := eventToWire(ev)
	p.relays.Range(func(nm string, rl *nostr.Relay) bool {
		if e := rl.Publish(c, wire); chk.E(e) && err == nil {
			err = e
		}
		return true
	})
	return
}

// Notifications returns the merged event/notice stream.
func (p *Pool) Notifications() <-chan Notification { return p.notes }

// Relays lists the normalized URLs currently in the pool.
func (p *Pool) Relays() (urls []string) {
	p.relays.Range(func(nm string, _ *nostr.Relay) bool {
		urls = append(urls, nm)
		return true
	})
	return
}

// Close drops every connection, waits for the pumps to drain and closes the
// notification channel. Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.cancel()
		p.relays.Range(func(nm string, rl *nostr.Relay) bool {
			chk.E(rl.Close())
			p.relays.Delete(nm)
			return true
		})
		p.wg.Wait()
		p.noteMx.Lock()
		p.closed = true
		close(p.notes)
		p.noteMx.Unlock()
	})
}
