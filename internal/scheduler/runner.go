package scheduler

import (
	"context"
	"sync"
	"time"

	"pollwise/pkg/logger"
)

// Job is one periodic routine. The host only guarantees "at or after" the
// target time; Run must therefore be idempotent within its period.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Runner drives registered jobs on independent tickers, one goroutine per
// job, and records every run in the rolling log.
type Runner struct {
	jobs     []Job
	log      *JobLog
	logger   *logger.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewRunner(l *logger.Logger) *Runner {
	return &Runner{
		log:      NewJobLog(100),
		logger:   l,
		stopChan: make(chan struct{}),
	}
}

func (r *Runner) Register(j Job) {
	r.jobs = append(r.jobs, j)
}

func (r *Runner) Log() *JobLog {
	return r.log
}

// Start begins all job loops.
func (r *Runner) Start() {
	for _, j := range r.jobs {
		r.wg.Add(1)
		go r.run(j)
	}
}

// Stop gracefully shuts down
func (r *Runner) Stop() {
	close(r.stopChan)
	r.wg.Wait()
}

func (r *Runner) run(j Job) {
	defer r.wg.Done()
	ticker := time.NewTicker(j.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopChan:
			return
		case <-ticker.C:
			r.invoke(j)
		}
	}
}

func (r *Runner) invoke(j Job) {
	start := time.Now()
	err := j.Run(context.Background())

	entry := LogEntry{Job: j.Name, StartedAt: start, Duration: time.Since(start)}
	if err != nil {
		entry.Error = err.Error()
		if r.logger != nil {
			r.logger.Errorf("job %s failed: %v", j.Name, err)
		}
	}
	r.log.Record(entry)
}
