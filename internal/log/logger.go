package log

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const serviceName = "securerelief-auth"

// New logs JSON lines in production and a human-readable console format
// everywhere else.
func New(environment string) zerolog.Logger {
	return NewWithWriter(environment, os.Stdout)
}

func NewWithWriter(environment string, out io.Writer) zerolog.Logger {
	production := environment == "production"

	zerolog.TimeFieldFormat = time.RFC3339Nano
	if production {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).With().
		Timestamp().
		Str("service", serviceName).
		Str("env", environment).
		Logger()
}
