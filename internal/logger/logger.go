package logger

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Setup returns the process logger. Debug mode switches to a console writer
// on stderr and lowers the level to debug.
func Setup(dev bool) zerolog.Logger {
	return New(os.Stderr, dev)
}

func New(out io.Writer, dev bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if dev {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Caller().Logger()

	if dev {
		logger = logger.Output(zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}).Level(level).With().Stack().Logger()
	}

	return logger
}

// WithBuild tags every line with a fresh build id so interleaved rebuilds can
// be told apart.
func WithBuild(logger zerolog.Logger) (zerolog.Logger, string) {
	id := uuid.NewString()
	return logger.With().Str("build_id", id).Logger(), id
}
