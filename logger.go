package shardstate

import (
	"log/slog"

	"github.com/arloliu/shardstate/internal/logging"
)

// NewSlogLogger wraps a *slog.Logger as a shardstate Logger suitable for
// WithLogger.
//
// Example:
//
//	handler := slog.NewJSONHandler(os.Stdout, nil)
//	mgr, err := shardstate.NewManager(&cfg, conn, globalInit,
//	    shardstate.WithLogger(shardstate.NewSlogLogger(slog.New(handler))),
//	)
func NewSlogLogger(logger *slog.Logger) Logger {
	return logging.NewSlog(logger)
}

// NewDefaultLogger wraps slog.Default().
func NewDefaultLogger() Logger {
	return logging.NewSlogDefault()
}
