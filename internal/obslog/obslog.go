// Package obslog wires up the CLI's structured logger and the
// handful of Prometheus metrics that matter for a library with no
// long-lived request-handling surface: how many messages were
// appended, how many chains were verified, and how long verification
// took.
package obslog

import (
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
)

// NewLogger returns a slog.Logger writing JSON to stderr at level,
// matching the level strings accepted by internal/config.
func NewLogger(level string) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var (
	// MessagesAppended counts appended messages, labeled by role.
	// pkg/session does not increment it; nothing in this module does
	// outside tests.
	MessagesAppended = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attested_logs",
		Name:      "messages_appended_total",
		Help:      "Number of messages successfully appended to a session.",
	}, []string{"role"})

	// ChainsVerified counts verify.Chain invocations by outcome.
	ChainsVerified = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attested_logs",
		Name:      "chains_verified_total",
		Help:      "Number of verify.Chain invocations, by pass/fail outcome.",
	}, []string{"outcome"})

	// VerifyDuration tracks how long a chain verification pass takes.
	VerifyDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "attested_logs",
		Name:      "verify_duration_seconds",
		Help:      "Wall-clock duration of a verify.Chain call.",
		Buckets:   prometheus.DefBuckets,
	})
)

// Registry returns a fresh prometheus.Registry with this package's
// collectors registered. The CLI subcommands update the collectors but
// do not call Registry, so they neither serve nor print the metrics.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(MessagesAppended, ChainsVerified, VerifyDuration)
	return reg
}
