package learner

import (
	"errors"
	"fmt"
	"time"

	"github.com/openclaip/claip/internal/domain"
)

var ErrStateVersionMismatch = errors.New("unsupported state version")

// StateSnapshot exports the full learner state as the versioned schema.
// Everything is deep-copied; the snapshot does not alias live state.
func (l *Learner) StateSnapshot() *domain.LearnerState {
	sources := make([]domain.Source, 0, l.sources.Len())
	for _, s := range l.sources.All() {
		sources = append(sources, *s)
	}

	progress := make(map[string]domain.SubjectProgressState, len(l.progress))
	for subj, p := range l.progress {
		progress[subj] = p.snapshot()
	}

	patterns := make(map[string]domain.PatternStats, len(l.patterns))
	for subj, s := range l.patterns {
		patterns[subj] = *s
	}

	biasNotes := make([]string, len(l.biasNotes))
	copy(biasNotes, l.biasNotes)
	links := make([]domain.Link, len(l.links))
	copy(links, l.links)

	return &domain.LearnerState{
		Version:             domain.StateVersion,
		CreatedAt:           time.Now().UTC(),
		EventCount:          l.eventCount,
		LastReflectionEvent: l.lastReflectionEvent,
		LastCheckpointEvent: l.lastCheckpointEvent,
		TotalReward:         l.totalReward,
		Sources:             sources,
		Claims:              l.knowledge.Claims(),
		Priors:              l.prior.snapshot(),
		Progress:            progress,
		Predictions:         l.predictor.snapshotHistory(),
		Calibration:         l.predictor.snapshotCalibration(),
		Replay:              l.replay.snapshot(),
		PatternStats:        patterns,
		BiasNotes:           biasNotes,
		Links:               links,
	}
}

// RestoreState replaces the learner's state with a snapshot, rebuilding
// every index. The configured rules, moral core, and collaborators are
// untouched: they are capabilities, not state.
func (l *Learner) RestoreState(state *domain.LearnerState) error {
	if state.Version != domain.StateVersion {
		return fmt.Errorf("%w: got %d, want %d", ErrStateVersionMismatch, state.Version, domain.StateVersion)
	}

	l.sources = NewSourceGraph()
	for _, s := range state.Sources {
		copied := s
		l.sources.sources[copied.ID] = &copied
		l.sources.order = append(l.sources.order, copied.ID)
	}

	l.knowledge = NewKnowledgeStore()
	for _, c := range state.Claims {
		l.knowledge.Add(c)
	}

	l.prior.restore(state.Priors)

	l.progress = make(map[string]*subjectProgress, len(state.Progress))
	for subj, p := range state.Progress {
		l.progress[subj] = restoreSubjectProgress(p)
	}

	l.predictor.restore(state.Predictions, state.Calibration)
	l.replay.restore(state.Replay)

	l.patterns = make(map[string]*domain.PatternStats, len(state.PatternStats))
	for subj, s := range state.PatternStats {
		copied := s
		l.patterns[subj] = &copied
	}

	l.eventCount = state.EventCount
	l.lastReflectionEvent = state.LastReflectionEvent
	l.lastCheckpointEvent = state.LastCheckpointEvent
	l.totalReward = state.TotalReward

	l.biasNotes = make([]string, len(state.BiasNotes))
	copy(l.biasNotes, state.BiasNotes)
	l.links = make([]domain.Link, len(state.Links))
	copy(l.links, state.Links)

	return nil
}
