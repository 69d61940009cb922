// Package shadow holds shadow-evaluation hook implementations. The
// hook is an opaque, best-effort external auditor: the learner ignores
// its output and swallows its failures.
package shadow

import (
	"context"

	"github.com/openclaip/claip/internal/domain"
	"go.uber.org/zap"
)

// Noop is the default evaluator used when no external auditor is
// configured.
type Noop struct{}

func (Noop) Evaluate(ctx context.Context, view domain.StateSummary, meanBrier *float64, replay []domain.ReplayEvent) error {
	return nil
}

// Logger records each evaluation invocation as a structured log line.
type Logger struct {
	logger *zap.Logger
}

func NewLogger(logger *zap.Logger) *Logger {
	return &Logger{logger: logger}
}

func (l *Logger) Evaluate(ctx context.Context, view domain.StateSummary, meanBrier *float64, replay []domain.ReplayEvent) error {
	fields := []zap.Field{
		zap.Int("event_count", view.EventCount),
		zap.Float64("total_reward", view.TotalReward),
		zap.Int("subjects_tracked", view.SubjectsTracked),
		zap.Int("sources_count", view.SourcesCount),
		zap.Int("replay_len", len(replay)),
	}
	if meanBrier != nil {
		fields = append(fields, zap.Float64("mean_brier", *meanBrier))
	}
	l.logger.Info("shadow_eval", fields...)
	return nil
}

var (
	_ domain.ShadowEvaluator = Noop{}
	_ domain.ShadowEvaluator = (*Logger)(nil)
)
