package scheduler

import (
	"sync"
	"time"
)

// LogEntry is one recorded job run.
type LogEntry struct {
	Job       string        `json:"job"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// JobLog is a fixed-capacity rolling log of job runs. Failures land here
// instead of being raised to any user.
type JobLog struct {
	mu      sync.Mutex
	entries []LogEntry
	cap     int
}

func NewJobLog(capacity int) *JobLog {
	if capacity <= 0 {
		capacity = 100
	}
	return &JobLog{cap: capacity}
}

func (l *JobLog) Record(e LogEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	if len(l.entries) > l.cap {
		l.entries = l.entries[len(l.entries)-l.cap:]
	}
}

// Entries returns the recorded runs, most recent first.
func (l *JobLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}
