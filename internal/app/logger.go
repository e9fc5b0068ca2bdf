package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the application logger. LOG_FORMAT=json selects JSON
// output for deployments; "pretty" (the default) keeps the text handler for
// local runs. Every record carries the service name so margindesk lines are
// filterable when logs are aggregated alongside redis and the job worker.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	switch {
	case cfg != nil && cfg.LogFormat == "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	default:
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "margindesk"))
}
