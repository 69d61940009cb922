package domain

// StaticRules is the frozen operating configuration of a learner. A
// copy is taken at construction and never mutated afterwards; all
// thresholds the state machine consults live here.
type StaticRules struct {
	// AllowSelfScenariosAfter gates internally imagined predictions
	// (fraction of completion, 0.30 = 30%).
	AllowSelfScenariosAfter float64
	// ExternalPredictionAfter gates externally supplied scenarios.
	ExternalPredictionAfter float64

	MaxCompletionCap   float64
	MinCompletionFloor float64

	// ReevaluationIntervalEvents and CheckpointIntervalEvents are two
	// independent cadences sharing the same event counter clock.
	ReevaluationIntervalEvents int
	CheckpointIntervalEvents   int

	ReplayBufferSize      int
	CalibrationWindowSize int

	RewardScale           float64
	ShadowEvalAfterEvents int
	DisagreementRatioWarn float64

	// PriorAlpha is the EWMA smoothing factor for the generalized prior.
	PriorAlpha float64
}

// DefaultStaticRules returns the stock configuration.
func DefaultStaticRules() StaticRules {
	return StaticRules{
		AllowSelfScenariosAfter:    0.30,
		ExternalPredictionAfter:    0.05,
		MaxCompletionCap:           99.99,
		MinCompletionFloor:         0.01,
		ReevaluationIntervalEvents: 25,
		CheckpointIntervalEvents:   50,
		ReplayBufferSize:           128,
		CalibrationWindowSize:      256,
		RewardScale:                0.1,
		ShadowEvalAfterEvents:      100,
		DisagreementRatioWarn:      0.3,
		PriorAlpha:                 0.1,
	}
}

// MoralRules are the non-negotiable invariants consulted before every
// state-mutating operation. They are write-once at construction; a
// flipped invariant means the safety core itself is corrupted and every
// operation must fail unconditionally.
type MoralRules struct {
	NeverHarmLiving                 bool
	ReasonableOutweighsUnreasonable bool
	DoNotPurposefullyDeceive        bool
}

// DefaultMoralRules returns the canonical, all-true rule set.
func DefaultMoralRules() MoralRules {
	return MoralRules{
		NeverHarmLiving:                 true,
		ReasonableOutweighsUnreasonable: true,
		DoNotPurposefullyDeceive:        true,
	}
}

// Valid reports whether every invariant holds.
func (m MoralRules) Valid() bool {
	return m.NeverHarmLiving && m.ReasonableOutweighsUnreasonable && m.DoNotPurposefullyDeceive
}
