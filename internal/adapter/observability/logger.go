package observability

import (
	"log/slog"
	"os"

	"github.com/fairyhunter13/ai-interview-orchestrator/internal/config"
)

// SetupLogger builds the process-wide JSON logger. Dev runs log at
// debug with source locations; everything else logs at info.
func SetupLogger(cfg config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if cfg.IsDev() {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts)).With(
		slog.String("service", cfg.OTELServiceName),
		slog.String("env", cfg.AppEnv),
	)
}
