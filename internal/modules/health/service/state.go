package service

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// JobStatus is the outcome of the latest run of a scheduled job.
type JobStatus struct {
	Name    string    `json:"name"`
	LastRun time.Time `json:"lastRun"`
	OK      bool      `json:"ok"`
	Error   string    `json:"error,omitempty"`
}

type State struct {
	ready     atomic.Bool
	startedAt time.Time

	mu   sync.RWMutex
	jobs map[string]JobStatus
}

func NewState() *State {
	s := &State{startedAt: time.Now(), jobs: map[string]JobStatus{}}
	s.ready.Store(false)
	return s
}

func (s *State) SetReady(v bool) { s.ready.Store(v) }
func (s *State) Ready() bool     { return s.ready.Load() }

// RecordRun запоминает результат последнего запуска задачи.
func (s *State) RecordRun(job string, at time.Time, err error) {
	st := JobStatus{Name: job, LastRun: at, OK: err == nil}
	if err != nil {
		st.Error = err.Error()
	}
	s.mu.Lock()
	s.jobs[job] = st
	s.mu.Unlock()
}

// Jobs returns job statuses sorted by name.
func (s *State) Jobs() []JobStatus {
	s.mu.RLock()
	out := make([]JobStatus, 0, len(s.jobs))
	for _, st := range s.jobs {
		out = append(out, st)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *State) Uptime() time.Duration { return time.Since(s.startedAt) }
