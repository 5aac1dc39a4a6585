// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pipeline

// StageStats is a snapshot of a stage's diagnostic counters.
// Counters are read without synchronization across workers and may be
// slightly inconsistent while the stage runs. They never affect behaviour.
type StageStats struct {
	Name  string
	State State

	// Processed is the total number of items handled by all workers,
	// including dropped ones.
	Processed uint64

	// Stolen is the total number of items taken from a peer's deque.
	Stolen uint64

	// Imbalance is the busiest worker's Processed divided by the mean.
	// 1.0 is a perfect balance; 0 when nothing has been processed.
	Imbalance float64

	Workers []WorkerStats

	// Alternate describes the alternate inbox; nil when the stage has none.
	Alternate *LaneStats
}

// LaneStats holds the counters of a stage's alternate inbox.
type LaneStats struct {
	Capacity int
	Queued   int
	Accepted uint64

	// Rejected counts SendAlternate calls refused because the lane was full.
	Rejected uint64
}

// WorkerStats holds the counters of one worker.
type WorkerStats struct {
	WorkerID  int
	Processed uint64
	Stolen    uint64
	Dropped   uint64
	Failed    bool

	// Queued is the current size of the worker's local deque.
	Queued int
}

// Stats returns a snapshot of the stage's counters.
func (s *Stage[T]) Stats() StageStats {
	st := StageStats{
		Name:    s.name,
		State:   s.State(),
		Workers: make([]WorkerStats, len(s.runners)),
	}
	var busiest uint64
	for i, r := range s.runners {
		ws := WorkerStats{
			WorkerID:  r.id,
			Processed: r.processed.Load(),
			Stolen:    r.stolen.Load(),
			Dropped:   r.dropped.Load(),
			Failed:    r.failed.LoadAcquire(),
			Queued:    r.local.Size(),
		}
		st.Workers[i] = ws
		st.Processed += ws.Processed
		st.Stolen += ws.Stolen
		busiest = max(busiest, ws.Processed)
	}
	if s.alt != nil {
		st.Alternate = &LaneStats{
			Capacity: s.alt.Cap(),
			Queued:   s.alt.Len(),
			Accepted: s.alt.Accepted(),
			Rejected: s.alt.Rejected(),
		}
	}
	if st.Processed > 0 {
		mean := float64(st.Processed) / float64(len(s.runners))
		st.Imbalance = float64(busiest) / mean
	}
	return st
}
