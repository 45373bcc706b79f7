// Package logx wires structured logging for the engine. Grounded on
// github.com/consensys/go-corset's `log "github.com/sirupsen/logrus"`
// aliasing convention (see that repo's pkg/cmd/corset/debug.go).
package logx

import (
	"os"

	"github.com/sirupsen/logrus"
)

var std = logrus.New()

func init() {
	std.SetOutput(os.Stderr)
	std.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	std.SetLevel(logrus.InfoLevel)
}

// SetLevel parses a spec.md §6 LOG_LEVEL value ("debug"/"info"/"warn"/
// "error") and applies it, falling back to info on an unrecognized value.
func SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		std.SetLevel(logrus.InfoLevel)
		return
	}
	std.SetLevel(lvl)
}

// L returns the package logger, for call sites that want a *logrus.Entry
// with fields attached: logx.L().WithField("schematic", path).Info(...).
func L() *logrus.Logger { return std }

// WithFields is a shorthand for L().WithFields(fields).
func WithFields(fields logrus.Fields) *logrus.Entry { return std.WithFields(fields) }
