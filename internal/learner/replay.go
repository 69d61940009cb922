package learner

import "github.com/openclaip/claip/internal/domain"

// replayLog is a fixed-capacity FIFO of recent events. Once full, the
// oldest event is evicted on every append.
type replayLog struct {
	events   []domain.ReplayEvent
	capacity int
}

func newReplayLog(capacity int) *replayLog {
	return &replayLog{capacity: capacity}
}

func (r *replayLog) append(ev domain.ReplayEvent) {
	if len(r.events) == r.capacity {
		copy(r.events, r.events[1:])
		r.events = r.events[:len(r.events)-1]
	}
	r.events = append(r.events, ev)
}

func (r *replayLog) len() int {
	return len(r.events)
}

// snapshot returns a copy of the log, oldest first.
func (r *replayLog) snapshot() []domain.ReplayEvent {
	out := make([]domain.ReplayEvent, len(r.events))
	copy(out, r.events)
	return out
}

func (r *replayLog) restore(events []domain.ReplayEvent) {
	if len(events) > r.capacity {
		events = events[len(events)-r.capacity:]
	}
	r.events = make([]domain.ReplayEvent, len(events))
	copy(r.events, events)
}
