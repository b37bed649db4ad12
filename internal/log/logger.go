package log

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds the process-wide logger. Production runs at info with plain
// output; everything else gets colored debug logging.
func New(environment string) zerolog.Logger {
	production := environment == "production"

	level := zerolog.DebugLevel
	if production {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	writer := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
		NoColor:    production,
	}

	return zerolog.New(writer).With().
		Timestamp().
		Str("env", environment).
		Logger()
}
