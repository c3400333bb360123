package slog_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mirelabs/desktr/pkg/slog"
)

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	log, chk := slog.New(&buf)
	slog.SetLogLevel(slog.Trace)
	log.T.Ln("testing log level", slog.LevelSpecs[slog.Trace].Name)
	log.D.Ln("testing log level", slog.LevelSpecs[slog.Debug].Name)
	log.I.Ln("testing log level", slog.LevelSpecs[slog.Info].Name)
	log.W.Ln("testing log level", slog.LevelSpecs[slog.Warn].Name)
	log.E.F("testing log level %s", slog.LevelSpecs[slog.Error].Name)
	log.F.Ln("testing log level", slog.LevelSpecs[slog.Fatal].Name)
	chk.F(errors.New("dummy error as fatal"))
	chk.E(errors.New("dummy error as error"))
	chk.W(errors.New("dummy error as warning"))
	chk.I(errors.New("dummy error as info"))
	chk.D(errors.New("dummy error as debug"))
	chk.T(errors.New("dummy error as trace"))
	if log.I.Err("format string %d '%s'", 5, "testing") == nil {
		t.Fatal("log.I.Err should return a non-nil error")
	}
	if log.I.Chk(nil) {
		t.Fatal("Chk on nil must be false")
	}
	if !log.I.Chk(errors.New("dummy information check")) {
		t.Fatal("Chk on error must be true")
	}
	log.I.S("`backtick wrapped string`", t)
	if buf.Len() == 0 {
		t.Fatal("nothing was printed")
	}
}

func TestLevelGate(t *testing.T) {
	var buf bytes.Buffer
	log, _ := slog.New(&buf)
	slog.SetLogLevel(slog.Error)
	log.D.Ln("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatal("debug line printed above current level")
	}
	log.E.Ln("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatal("error line suppressed")
	}
	slog.SetLogLevel(slog.Info)
}
