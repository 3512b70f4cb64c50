package observers

import (
	"os"

	"github.com/rs/zerolog"
)

// NewDefaultLoggingObserver creates a logging observer writing human readable
// lines to stderr at LogInfo level
func NewDefaultLoggingObserver() *LoggingObserver {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().
		Timestamp().
		Logger()
	return NewLoggingObserver(logger, LogInfo, "trafficsim")
}
