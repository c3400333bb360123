package slog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/gookit/color"
)

var l = GetStd()

func GetStd() (ll *Log) {
	ll, _ = New(os.Stderr)
	return
}

func init() {
	switch strings.ToUpper(os.Getenv("DESKTR_LOGLEVEL")) {
	case "1", "TRUE", "ON", "DEBUG":
		SetLogLevel(Debug)
		l.D.Ln("printing logs at this level and lower")
	case "INFO":
		SetLogLevel(Info)
	case "TRACE":
		SetLogLevel(Trace)
		l.T.Ln("printing logs at this level and lower")
	case "WARN":
		SetLogLevel(Warn)
	case "ERROR":
		SetLogLevel(Error)
	case "FATAL":
		SetLogLevel(Fatal)
	case "0", "OFF", "FALSE":
		SetLogLevel(Off)
	default:
		SetLogLevel(Info)
	}
}

const (
	Off = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

type (
	// Ln prints lists of interfaces with spaces in between
	Ln func(a ...interface{})
	// F prints like fmt.Println surrounded by log details
	F func(format string, a ...interface{})
	// S prints a spew.Sdump for an interface slice
	S func(a ...interface{})
	// C accepts a function so that the extra computation can be avoided if it
	// is not being viewed
	C func(closure func() string)
	// Chk is a shortcut for printing if there is an error, or returning true
	Chk func(e error) bool
	// Err is a pass-through function that uses fmt.Errorf to construct an
	// error and returns the error after printing it to the log
	Err func(format string, a ...interface{}) error

	// LevelPrinter defines a set of terminal printing primitives that output
	// with extra data, time, level, and code location
	LevelPrinter struct {
		Ln
		F
		S
		C
		Chk
		Err
	}
	LevelSpec struct {
		ID        int32
		Name      string
		Colorizer func(a ...interface{}) string
	}

	// Entry is a log entry to be printed as json to the log file
	Entry struct {
		Time         time.Time
		Level        string
		Package      string
		CodeLocation string
		Text         string
	}
)

var (
	currentLevel atomic.Int32
	// writer can be swapped out for any io.*writer* that you want to use
	// instead of stdout.
	writer io.Writer = os.Stderr
	// LevelSpecs specifies the id, string name and color-printing function
	LevelSpecs = []LevelSpec{
		{Off, "   ", color.Bit24(0, 0, 0, false).Sprint},
		{Fatal, "FTL", color.Bit24(128, 0, 0, false).Sprint},
		{Error, "ERR", color.Bit24(255, 0, 0, false).Sprint},
		{Warn, "WRN", color.Bit24(0, 255, 0, false).Sprint},
		{Info, "INF", color.Bit24(255, 255, 0, false).Sprint},
		{Debug, "DBG", color.Bit24(0, 125, 255, false).Sprint},
		{Trace, "TRC", color.Bit24(125, 0, 255, false).Sprint},
	}
)

// Log is a set of log printers for the various Level items.
type Log struct {
	F, E, W, I, D, T LevelPrinter
}

type Check struct {
	F, E, W, I, D, T Chk
}

func JoinStrings(a ...any) (s string) {
	for i := range a {
		s += fmt.Sprint(a[i])
		if i < len(a)-1 {
			s += " "
		}
	}
	return
}

func logPrint(l int32, w io.Writer, text func() string) {
	if l > currentLevel.Load() {
		return
	}
	fmt.Fprintf(w,
		"%s %s %s\n",
		LevelSpecs[l].Colorizer(LevelSpecs[l].Name),
		text(),
		GetLoc(3),
	)
}

func GetPrinter(l int32, w io.Writer) LevelPrinter {
	return LevelPrinter{
		Ln: func(a ...interface{}) {
			logPrint(l, w, func() string { return JoinStrings(a...) })
		},
		F: func(format string, a ...interface{}) {
			logPrint(l, w, func() string { return fmt.Sprintf(format, a...) })
		},
		S: func(a ...interface{}) {
			logPrint(l, w, func() string { return spew.Sdump(a...) })
		},
		C: func(closure func() string) {
			logPrint(l, w, closure)
		},
		Chk: func(e error) bool {
			if e != nil {
				logPrint(l, w, e.Error)
				return true
			}
			return false
		},
		Err: func(format string, a ...interface{}) error {
			logPrint(l, w, func() string { return fmt.Sprintf(format, a...) })
			return fmt.Errorf(format, a...)
		},
	}
}

// New returns a set of LevelPrinters with their matching Chk shortcuts for a
// given output writer.
func New(w io.Writer) (l *Log, c *Check) {
	l = &Log{
		F: GetPrinter(Fatal, w),
		E: GetPrinter(Error, w),
		W: GetPrinter(Warn, w),
		I: GetPrinter(Info, w),
		D: GetPrinter(Debug, w),
		T: GetPrinter(Trace, w),
	}
	c = &Check{
		F: l.F.Chk,
		E: l.E.Chk,
		W: l.W.Chk,
		I: l.I.Chk,
		D: l.D.Chk,
		T: l.T.Chk,
	}
	return
}

func SetLogLevel(l int) {
	currentLevel.Store(int32(l))
}

func GetLogLevel() (l int) {
	return int(currentLevel.Load())
}

// GetLoc returns the file:line of the caller at the given stack depth,
// colored so terminals that linkify paths make it clickable.
func GetLoc(skip int) (output string) {
	_, file, line, _ := runtime.Caller(skip)
	output = color.Bit24(0, 128, 255, false).Sprint(file, ":", line)
	return
}
