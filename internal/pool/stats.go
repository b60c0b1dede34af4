package pool

import (
	"log/slog"
	"sync/atomic"
)

// Stats is a snapshot of the pool counters.
type Stats struct {
	Visited          int64 `json:"visited"`
	ByExtension      int64 `json:"included_by_extension"`
	ByType           int64 `json:"included_by_type"`
	Excluded         int64 `json:"excluded"`
	ProbeFailures    int64 `json:"probe_failures"`
	DispatchFailures int64 `json:"dispatch_failures"`
	Duplicates       int64 `json:"duplicates"`
}

// Included returns the number of paths sent to the dispatcher as included.
func (s Stats) Included() int64 {
	return s.ByExtension + s.ByType
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("visited", s.Visited),
		slog.Int64("included_by_extension", s.ByExtension),
		slog.Int64("included_by_type", s.ByType),
		slog.Int64("excluded", s.Excluded),
		slog.Int64("probe_failures", s.ProbeFailures),
		slog.Int64("dispatch_failures", s.DispatchFailures),
		slog.Int64("duplicates", s.Duplicates),
	)
}

type counters struct {
	visited          atomic.Int64
	byExtension      atomic.Int64
	byType           atomic.Int64
	excluded         atomic.Int64
	probeFailures    atomic.Int64
	dispatchFailures atomic.Int64
	duplicates       atomic.Int64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Visited:          c.visited.Load(),
		ByExtension:      c.byExtension.Load(),
		ByType:           c.byType.Load(),
		Excluded:         c.excluded.Load(),
		ProbeFailures:    c.probeFailures.Load(),
		DispatchFailures: c.dispatchFailures.Load(),
		Duplicates:       c.duplicates.Load(),
	}
}
