package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alexflint/go-arg"
	"github.com/mirelabs/desktr/pkg/context"
	"github.com/mirelabs/desktr/pkg/db"
	"github.com/mirelabs/desktr/pkg/ingest"
	"github.com/mirelabs/desktr/pkg/interrupt"
	"github.com/mirelabs/desktr/pkg/nostr/event"
	"github.com/mirelabs/desktr/pkg/relaypool"
	"github.com/mirelabs/desktr/pkg/slog"
	"github.com/mirelabs/desktr/pkg/sub"
	"github.com/mirelabs/desktr/pkg/syncer"
)

var log, chk = slog.New(os.Stderr)

var args struct {
	Profile string   `arg:"-p,--profile" default:"desktr" help:"profile directory name under the home directory"`
	Pubkey  string   `arg:"-k,--pubkey,required" help:"hex public key of the profile owner"`
	Relay   []string `arg:"-r,--relay,separate" help:"relay URL to connect to (repeatable)"`
	Proxy   string   `arg:"--proxy" help:"socks proxy hint for relay connections"`
	Refresh int      `arg:"--refresh" default:"30" help:"seconds between subscription refreshes"`
	Rebuild bool     `arg:"--rebuild" help:"rebuild derived indexes from stored events before starting"`
}

var (
	AppName = "desktrd"
	Version = "v0.1.0"
)

func main() {
	arg.MustParse(&args)
	log.I.F("%s %s starting", AppName, Version)
	var err error
	var home string
	if home, err = os.UserHomeDir(); chk.E(err) {
		os.Exit(1)
	}
	dataDir := filepath.Join(home, args.Profile)
	log.D.F("using profile directory: '%s'", dataDir)
	c, cancel := context.Cancel(context.Bg())
	interrupt.AddHandler(cancel)
	var d *db.T
	if d, err = db.Open(dataDir); chk.E(err) {
		os.Exit(1)
	}
	if args.Rebuild {
		log.I.Ln("rebuilding derived indexes")
		if err = d.RebuildIndexes(); chk.E(err) {
			os.Exit(1)
		}
	}
	pool := relaypool.New(c)
	for _, url := range args.Relay {
		if err = pool.AddRelay(c, url, args.Proxy); err != nil {
			log.W.F("relay %s unavailable: %v", url, err)
		}
	}
	ing := ingest.New(d, args.Pubkey)
	sy := syncer.New(pool, ing)
	go printFeed(sy.Listen("console"))
	mgr := sub.New(pool, d, args.Pubkey)
	if args.Refresh > 0 {
		mgr.Interval = time.Duration(args.Refresh) * time.Second
	}
	go mgr.Start(c)
	sy.Run(c)
	// Run returns on interrupt or pool closure; tear down in order.
	mgr.Stop()
	pool.Close()
	d.Flush()
	chk.E(d.Close())
	log.I.Ln("shutdown complete")
}

// printFeed writes incoming text notes to the console as they are stored.
func printFeed(ch <-chan *event.T) {
	for ev := range ch {
		if !ev.Kind.IsFeed() {
			continue
		}
		fmt.Printf("%s %s: %s\n",
			ev.CreatedAt.Time().Format("15:04:05"),
			ev.PubKey[:8], ev.Content)
	}
}
