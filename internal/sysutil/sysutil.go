// Package sysutil holds process bootstrap helpers shared by the server
// binary: logger construction and instance naming.
package sysutil

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// SetLogLevel sets the global zerolog level. Unknown or empty values fall
// back to info; "warning" is accepted for warn.
func SetLogLevel(lvl string) zerolog.Level {
	l := zerolog.InfoLevel
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		l = zerolog.DebugLevel
	case "warn", "warning":
		l = zerolog.WarnLevel
	case "error":
		l = zerolog.ErrorLevel
	case "fatal":
		l = zerolog.FatalLevel
	case "panic":
		l = zerolog.PanicLevel
	}
	zerolog.SetGlobalLevel(l)
	return l
}

// NewLogger builds the process logger. pretty switches to a human readable
// console writer for local development.
func NewLogger(out io.Writer, level string, pretty bool) zerolog.Logger {
	SetLogLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	if pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).With().Timestamp().Logger()
}

// InstanceName identifies this process in logs: POD_NAME, then HOSTNAME,
// then the OS hostname, then fallback.
func InstanceName(fallback string) string {
	host, _ := os.Hostname()
	return FirstNonEmpty(os.Getenv("POD_NAME"), os.Getenv("HOSTNAME"), host, fallback)
}

// FirstNonEmpty returns the first value that is not blank, or "".
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
