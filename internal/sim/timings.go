package sim

import (
	"log/slog"
	"time"
)

// Timings are the wall-clock durations of the phases of the last step.
type Timings struct {
	IndexRebuild time.Duration
	Collision    time.Duration
	Step         time.Duration
}

func (t Timings) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Duration("index_rebuild", t.IndexRebuild),
		slog.Duration("collision", t.Collision),
		slog.Duration("step", t.Step),
	)
}
