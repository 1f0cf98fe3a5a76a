package config

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger returns a console-formatted zerolog.Logger tagged with
// component, mirroring the teacher's observability.InitLogger shape
// (timestamped console writer, one static field identifying the
// subsystem) but without installing itself as a process-wide global —
// Tarsio is a library, not a service, so callers thread the returned
// Logger through explicitly rather than reaching for a package-level
// log.Logger.
func NewLogger(component string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).With().Timestamp().Str("component", component).Logger()
}
