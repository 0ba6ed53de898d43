package ingest

// Scheduler decides the next contiguous range of heights to fetch.
// Exactly one range is in flight at a time; within it every height is
// fetched exactly once.
type Scheduler struct {
	windowSize  int64
	startHeight int64
	remaining   int64
	limited     bool
}

// NewScheduler builds a scheduler producing windows of at most
// windowSize heights. startHeight forces the first window to begin no
// lower than it; limit > 0 caps the total number of heights scheduled.
func NewScheduler(windowSize, startHeight, limit int64) *Scheduler {
	if windowSize < 1 {
		windowSize = 1
	}
	return &Scheduler{
		windowSize:  windowSize,
		startHeight: startHeight,
		remaining:   limit,
		limited:     limit > 0,
	}
}

// Next returns the next window of heights to ingest given the
// checkpoint and live tip. ok is false when caught up or when the
// configured limit is exhausted.
func (s *Scheduler) Next(ingested, tip int64) (start, end int64, ok bool) {
	if s.limited && s.remaining <= 0 {
		return 0, 0, false
	}

	start = ingested + 1
	if start < s.startHeight {
		start = s.startHeight
	}
	if start > tip {
		return 0, 0, false
	}

	end = start + s.windowSize - 1
	if end > tip {
		end = tip
	}
	if s.limited && end-start+1 > s.remaining {
		end = start + s.remaining - 1
	}
	return start, end, true
}

// Advance consumes the given number of heights from the limit after a
// window commits.
func (s *Scheduler) Advance(heights int64) {
	if s.limited {
		s.remaining -= heights
	}
}

// Exhausted reports whether the configured limit has been consumed.
func (s *Scheduler) Exhausted() bool {
	return s.limited && s.remaining <= 0
}
