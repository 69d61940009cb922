package learner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openclaip/claip/internal/domain"
	"go.uber.org/zap"
)

var (
	ErrMoralCoreMisconfigured  = errors.New("moral core misconfigured")
	ErrExternalPredictionGated = errors.New("external prediction gated by completion threshold")
	ErrInternalPredictionGated = errors.New("internal scenarios gated by completion threshold")
	ErrCheckpointingDisabled   = errors.New("checkpointing is not configured")
)

// Learner is the orchestrator. It exclusively owns all in-memory state
// and runs one operation to completion at a time; callers exposing it
// to concurrent use must serialize access externally.
type Learner struct {
	rules  domain.StaticRules
	morals domain.MoralRules
	logger *zap.Logger

	sources   *SourceGraph
	knowledge *KnowledgeStore
	prior     *GeneralizedPrior
	predictor *Predictor
	progress  map[string]*subjectProgress
	patterns  map[string]*domain.PatternStats
	replay    *replayLog

	eventCount          int
	lastReflectionEvent int
	lastCheckpointEvent int
	totalReward         float64
	biasNotes           []string
	links               []domain.Link

	// Optional collaborators, attached via Set* after construction.
	checkpointer domain.Checkpointer
	shadow       domain.ShadowEvaluator
	metrics      domain.MetricsSink
	archive      domain.ClaimArchiver
}

// NewLearner builds a learner with the given frozen rule set. The moral
// rules are write-once: they are copied here and consulted before every
// state-mutating operation.
func NewLearner(rules domain.StaticRules, morals domain.MoralRules, logger *zap.Logger) *Learner {
	prior := NewGeneralizedPrior(rules.PriorAlpha)
	return &Learner{
		rules:     rules,
		morals:    morals,
		logger:    logger,
		sources:   NewSourceGraph(),
		knowledge: NewKnowledgeStore(),
		prior:     prior,
		predictor: NewPredictor(prior, rules.CalibrationWindowSize),
		progress:  make(map[string]*subjectProgress),
		patterns:  make(map[string]*domain.PatternStats),
		replay:    newReplayLog(rules.ReplayBufferSize),
	}
}

func (l *Learner) SetCheckpointer(cp domain.Checkpointer) { l.checkpointer = cp }

func (l *Learner) SetShadowEvaluator(se domain.ShadowEvaluator) { l.shadow = se }

func (l *Learner) SetMetricsSink(ms domain.MetricsSink) { l.metrics = ms }

func (l *Learner) SetClaimArchiver(ca domain.ClaimArchiver) { l.archive = ca }

// guard rejects every operation when any moral invariant is flipped.
// This indicates the safety core itself is corrupted, so the failure is
// unconditional.
func (l *Learner) guard() error {
	if !l.morals.Valid() {
		return ErrMoralCoreMisconfigured
	}
	return nil
}

// Ingest records a labeled observation about a subject. Unknown source
// names are registered on first mention (exact-name match, no fuzzy
// dedupe). Ingestion may trigger self-reflection and checkpointing on
// their respective event cadences; checkpoint failures are logged and
// never propagated.
func (l *Learner) Ingest(ctx context.Context, subject string, info domain.Payload, label *float64, sourceNames []string, own bool) error {
	if err := l.guard(); err != nil {
		return err
	}

	sourceIDs := make([]string, 0, len(sourceNames))
	for _, name := range sourceNames {
		id, ok := l.sources.FindByName(name)
		if !ok {
			id = l.sources.Add(name, nil, 0.5)
		}
		if s, err := l.sources.Get(id); err == nil {
			s.Samples++
		}
		sourceIDs = append(sourceIDs, id)
	}

	claim := domain.Claim{
		Subject:   subject,
		Info:      info,
		Label:     label,
		SourceIDs: sourceIDs,
		Own:       own,
		Timestamp: time.Now().UTC(),
	}
	l.knowledge.Add(claim)
	l.subjectProgress(subject).update(l.rules, sourceIDs)
	l.prior.UpdateWithObservation(subject, label)

	if l.archive != nil {
		if err := l.archive.Insert(ctx, &claim); err != nil {
			l.logger.Warn("claim archive insert failed",
				zap.String("subject", subject),
				zap.Error(err))
		}
	}

	l.totalReward += l.rules.RewardScale * 0.01
	l.eventCount++

	l.replay.append(domain.ReplayEvent{
		Kind:      domain.ReplayIngest,
		Subject:   subject,
		Label:     label,
		Timestamp: time.Now().UTC(),
	})

	stats := l.patternStats(subject)
	stats.Events++
	stats.LastSeen = time.Now().UTC()
	if label != nil {
		if stats.LastLabel != nil && *stats.LastLabel != *label {
			stats.Disagreements++
		}
		stats.LastLabel = label
	}

	l.logger.Info("add_claim",
		zap.String("subject", subject),
		zap.Strings("sources", sourceNames),
		zap.Bool("own", own),
		zap.Int("event_count", l.eventCount))

	if l.eventCount-l.lastReflectionEvent >= l.rules.ReevaluationIntervalEvents {
		if err := l.SelfReflection(ctx); err != nil {
			return err
		}
	}

	if l.checkpointer != nil && l.eventCount-l.lastCheckpointEvent >= l.rules.CheckpointIntervalEvents {
		cpLabel := fmt.Sprintf("event_%d", l.eventCount)
		meta, err := l.checkpointer.Create(ctx, l.StateSnapshot(), cpLabel)
		if err != nil {
			l.logger.Warn("checkpoint_failed", zap.Error(err))
		} else {
			l.lastCheckpointEvent = l.eventCount
			l.logger.Info("checkpoint_created",
				zap.Int("event_count", l.eventCount),
				zap.String("path", meta.Path))
		}
	}

	return nil
}

// CanPredictExternal reports whether externally supplied scenarios are
// allowed for the subject. Gates never roll back: completion is
// monotone in what it is computed from.
func (l *Learner) CanPredictExternal(subject string) bool {
	return l.completionOf(subject) >= l.rules.ExternalPredictionAfter*100.0
}

// CanPredictInternal reports whether self-generated scenarios are
// allowed for the subject.
func (l *Learner) CanPredictInternal(subject string) bool {
	return l.completionOf(subject) >= l.rules.AllowSelfScenariosAfter*100.0
}

func (l *Learner) completionOf(subject string) float64 {
	if p, ok := l.progress[subject]; ok {
		return p.completion
	}
	return l.rules.MinCompletionFloor
}

// Predict computes and logs a prediction for the subject, returning the
// history index used to resolve it later. A closed gate is a rejected
// call, never a silent degradation.
func (l *Learner) Predict(ctx context.Context, subject string, scenario domain.Payload, evidenceHint *float64, own bool) (int, error) {
	if err := l.guard(); err != nil {
		return 0, err
	}
	if own && !l.CanPredictInternal(subject) {
		return 0, ErrInternalPredictionGated
	}
	if !own && !l.CanPredictExternal(subject) {
		return 0, ErrExternalPredictionGated
	}

	prob := l.predictor.Predict(subject, scenario, evidenceHint)
	rec := domain.PredictionRecord{
		Subject:   subject,
		Scenario:  scenario,
		Prob:      prob,
		Own:       own,
		Timestamp: time.Now().UTC(),
	}
	idx := l.predictor.LogPrediction(rec)

	// Shaping bonus for low historical calibration error, independent
	// of how this particular prediction turns out.
	if meanBrier, ok := l.predictor.MeanBrier(); ok {
		bonus := 0.25 - meanBrier
		if bonus > 0 {
			l.totalReward += bonus * l.rules.RewardScale
		}
	}

	l.replay.append(domain.ReplayEvent{
		Kind:      domain.ReplayPredict,
		Subject:   subject,
		Prob:      &prob,
		Timestamp: rec.Timestamp,
	})

	return idx, nil
}

// ImagineAndPredict generates an internal scenario for the subject and
// predicts against it. A closed internal gate is a normal outcome here,
// reported as ok=false rather than an error.
func (l *Learner) ImagineAndPredict(ctx context.Context, subject string, evidenceHint *float64) (idx int, ok bool, err error) {
	if err := l.guard(); err != nil {
		return 0, false, err
	}
	if !l.CanPredictInternal(subject) {
		return 0, false, nil
	}
	scenario := domain.Payload{
		"subject":         subject,
		"hypothesis_time": time.Now().UTC().Format(time.RFC3339Nano),
		"note":            "auto-generated internal scenario",
	}
	idx, err = l.Predict(ctx, subject, scenario, evidenceHint, true)
	if err != nil {
		return 0, false, err
	}
	return idx, true, nil
}

// ResolvePrediction finalizes a logged prediction against the observed
// binary outcome and accrues correctness and calibration rewards. A
// second resolve of the same index is a no-op.
func (l *Learner) ResolvePrediction(ctx context.Context, idx int, observed int) error {
	if err := l.guard(); err != nil {
		return err
	}
	changed, err := l.predictor.Resolve(idx, observed)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	rec, err := l.predictor.Record(idx)
	if err != nil {
		return err
	}
	if rec.Correct != nil && *rec.Correct {
		l.totalReward += l.rules.RewardScale * 1.0
	}
	if rec.Brier != nil {
		bonus := 0.2 - *rec.Brier
		if bonus > 0 {
			l.totalReward += bonus * l.rules.RewardScale
		}
	}

	observedLabel := float64(observed)
	l.replay.append(domain.ReplayEvent{
		Kind:      domain.ReplayResolve,
		Subject:   rec.Subject,
		Label:     &observedLabel,
		Prob:      &rec.Prob,
		Correct:   rec.Correct,
		Timestamp: rec.Timestamp,
	})

	l.logger.Info("prediction_update",
		zap.String("subject", rec.Subject),
		zap.Bool("correct", rec.Correct != nil && *rec.Correct),
		zap.Float64("brier", *rec.Brier))

	return nil
}

// SelfReflection decays source trust toward neutral, audits subjects
// for source bias and disagreement-heavy patterns, and emits the
// metrics report. Triggered by ingestion cadence, never by predictions.
func (l *Learner) SelfReflection(ctx context.Context) error {
	if err := l.guard(); err != nil {
		return err
	}

	// Conservative regression to neutral; intentionally ignores
	// prediction correctness.
	for _, s := range l.sources.All() {
		s.Trust = 0.9*s.Trust + 0.05
	}

	biasCountBefore := len(l.biasNotes)
	now := time.Now().UTC().Format(time.RFC3339)

	for subj, prog := range l.progress {
		if len(prog.sources) <= 1 && prog.seenItems >= 3 {
			l.biasNotes = append(l.biasNotes,
				fmt.Sprintf("[%s] subject %q may be source-biased", now, subj))
		}
	}

	for subj, stats := range l.patterns {
		if stats.Events < 5 {
			continue
		}
		ratio := float64(stats.Disagreements) / float64(stats.Events)
		if ratio > l.rules.DisagreementRatioWarn {
			l.biasNotes = append(l.biasNotes,
				fmt.Sprintf("[%s] subject %q shows high disagreement ratio=%.2f", now, subj, ratio))
			l.links = append(l.links, domain.Link{
				SubjectA: subj,
				Relation: "high_disagreement",
				SubjectB: subj,
			})
		}
	}

	l.logger.Info("self_reflection",
		zap.Int("event_count", l.eventCount),
		zap.Int("new_biases", len(l.biasNotes)-biasCountBefore))

	l.lastReflectionEvent = l.eventCount

	if l.shadow != nil && l.eventCount > 0 && l.eventCount%l.rules.ShadowEvalAfterEvents == 0 {
		var meanBrier *float64
		if m, ok := l.predictor.MeanBrier(); ok {
			meanBrier = &m
		}
		if err := l.shadow.Evaluate(ctx, l.stateSummary(), meanBrier, l.replay.snapshot()); err != nil {
			l.logger.Warn("shadow_eval_failed", zap.Error(err))
		}
	}

	if l.metrics != nil {
		report := l.MetricsReport()
		path, err := l.metrics.Write(ctx, report)
		if err != nil {
			l.logger.Warn("metrics report failed", zap.Error(err))
		} else {
			l.logger.Info("metrics_report", zap.String("path", path))
		}
	}

	return nil
}

// Checkpoint takes an on-demand snapshot through the configured
// checkpointer.
func (l *Learner) Checkpoint(ctx context.Context, label string) (domain.CheckpointMeta, error) {
	if err := l.guard(); err != nil {
		return domain.CheckpointMeta{}, err
	}
	if l.checkpointer == nil {
		return domain.CheckpointMeta{}, ErrCheckpointingDisabled
	}
	meta, err := l.checkpointer.Create(ctx, l.StateSnapshot(), label)
	if err != nil {
		return domain.CheckpointMeta{}, err
	}
	l.lastCheckpointEvent = l.eventCount
	l.logger.Info("checkpoint_created",
		zap.Int("event_count", l.eventCount),
		zap.String("path", meta.Path))
	return meta, nil
}

// MetricsReport assembles the current metrics artifact.
func (l *Learner) MetricsReport() domain.MetricsReport {
	resolved, correct := l.predictor.ResolvedCounts()
	report := domain.MetricsReport{
		Timestamp:           time.Now().UTC(),
		EventCount:          l.eventCount,
		TotalReward:         l.totalReward,
		TotalPredictions:    l.predictor.TotalPredictions(),
		ResolvedPredictions: resolved,
		BiasCount:           len(l.biasNotes),
		SubjectsTracked:     len(l.progress),
		SourcesCount:        l.sources.Len(),
	}
	if resolved > 0 {
		acc := float64(correct) / float64(resolved)
		report.Accuracy = &acc
	}
	if m, ok := l.predictor.MeanBrier(); ok {
		report.CalibrationBrier = &m
	}
	return report
}

// SubjectReport returns the inspection view for a subject, including
// the skepticism over all sources that have ever contributed to it.
func (l *Learner) SubjectReport(subject string) domain.SubjectReport {
	report := domain.SubjectReport{
		Subject:           subject,
		CompletionPercent: l.completionOf(subject),
		Prior:             l.prior.Prior(subject),
		Skepticism:        1.0,
	}
	if p, ok := l.progress[subject]; ok {
		report.Items = p.seenItems
		report.DistinctSources = len(p.sources)
		ids := make([]string, 0, len(p.sources))
		for id := range p.sources {
			ids = append(ids, id)
		}
		if s, err := l.sources.Skepticism(ids); err == nil {
			report.Skepticism = s
		}
	}
	return report
}

// Skepticism is the corroboration measure over explicit source ids.
func (l *Learner) Skepticism(sourceIDs []string) (float64, error) {
	return l.sources.Skepticism(sourceIDs)
}

func (l *Learner) MeanBrier() (float64, bool) { return l.predictor.MeanBrier() }

func (l *Learner) EventCount() int { return l.eventCount }

func (l *Learner) TotalReward() float64 { return l.totalReward }

func (l *Learner) ClaimCount() int { return l.knowledge.Len() }

func (l *Learner) SourceCount() int { return l.sources.Len() }

func (l *Learner) BiasNotes() []string {
	out := make([]string, len(l.biasNotes))
	copy(out, l.biasNotes)
	return out
}

func (l *Learner) ReplaySnapshot() []domain.ReplayEvent {
	return l.replay.snapshot()
}

// Prediction returns a copy of the logged prediction at idx.
func (l *Learner) Prediction(idx int) (domain.PredictionRecord, error) {
	return l.predictor.Record(idx)
}

// SubjectItems returns the stored claims for a subject, oldest first.
func (l *Learner) SubjectItems(subject string) []domain.Claim {
	return l.knowledge.SubjectItems(subject)
}

func (l *Learner) subjectProgress(subject string) *subjectProgress {
	p, ok := l.progress[subject]
	if !ok {
		p = newSubjectProgress(l.rules.MinCompletionFloor)
		l.progress[subject] = p
	}
	return p
}

func (l *Learner) patternStats(subject string) *domain.PatternStats {
	s, ok := l.patterns[subject]
	if !ok {
		s = &domain.PatternStats{}
		l.patterns[subject] = s
	}
	return s
}

func (l *Learner) stateSummary() domain.StateSummary {
	return domain.StateSummary{
		EventCount:      l.eventCount,
		TotalReward:     l.totalReward,
		SubjectsTracked: len(l.progress),
		SourcesCount:    l.sources.Len(),
		BiasCount:       len(l.biasNotes),
	}
}
