// Package logging provides zerolog helpers shared by taskdesk packages.
package logging

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Component creates a new logger with a component identifier.
// Uses the "cmp" key for consistency with zerolog conventions.
func Component(name string) zerolog.Logger {
	return log.With().Str("cmp", name).Logger()
}

// Sub derives a component logger from an existing logger rather than the
// global one.
func Sub(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("cmp", name).Logger()
}
