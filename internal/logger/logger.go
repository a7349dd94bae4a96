// Package logger builds zerolog loggers for dupfind's commands and passes.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project-wide logging type.
type Logger = zerolog.Logger

// Formats accepted in Options.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Options configures a logger
type Options struct {
	Level      string
	Format     string // console | json
	Writer     io.Writer // defaults to os.Stderr
	WithCaller bool
}

func init() {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// New builds a logger from opt. Diagnostics go to stderr by default so they
// never mix with command output on stdout.
func New(opt Options) *Logger {
	var w io.Writer = os.Stderr
	if opt.Writer != nil {
		w = opt.Writer
	}
	if opt.Format != FormatJSON {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: !isTerminal(w)}
	}

	ctx := zerolog.New(w).Level(ParseLevel(opt.Level)).With().Timestamp()
	if opt.WithCaller {
		ctx = ctx.Caller()
	}
	log := ctx.Logger()
	return &log
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	log := zerolog.Nop()
	return &log
}

// Named returns a child of l with a component field.
func Named(l *Logger, component string) *Logger {
	if component == "" {
		return l
	}
	child := l.With().Str("component", component).Logger()
	return &child
}

// ParseLevel maps a level name to a zerolog level. Unknown names mean warn,
// which keeps a CLI quiet unless asked otherwise.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "off", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
