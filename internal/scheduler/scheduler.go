package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is one periodic task. An empty Spec disables it.
type Job struct {
	Name string
	Spec string
	Run  func(ctx context.Context) error
}

type RunRecorder interface {
	RecordRun(job string, at time.Time, err error)
}

// Scheduler runs jobs on cron specs (with seconds). Jobs never overlap: a
// tick that finds another job running waits for it.
type Scheduler struct {
	cron     *cron.Cron
	mu       sync.Mutex
	ctx      context.Context
	cancel   context.CancelFunc
	recorder RunRecorder
	log      *zap.Logger
}

func New(recorder RunRecorder, log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cl := cronLogger{log: log}
	return &Scheduler{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		ctx:      ctx,
		cancel:   cancel,
		recorder: recorder,
		log:      log,
	}
}

func (s *Scheduler) Register(jobs ...Job) error {
	for _, j := range jobs {
		if j.Spec == "" {
			s.log.Info("job disabled", zap.String("job", j.Name))
			continue
		}
		j := j
		if _, err := s.cron.AddFunc(j.Spec, func() { _ = s.RunNow(j) }); err != nil {
			return fmt.Errorf("register %s (%q): %w", j.Name, j.Spec, err)
		}
		s.log.Info("job registered", zap.String("job", j.Name), zap.String("spec", j.Spec))
	}
	return nil
}

// RunNow executes j under the scheduler lock and records the outcome.
func (s *Scheduler) RunNow(j Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return s.ctx.Err()
	}

	started := time.Now()
	log := s.log.With(zap.String("job", j.Name))
	log.Info("job started")

	err := j.Run(s.ctx)
	if s.recorder != nil {
		s.recorder.RecordRun(j.Name, started, err)
	}
	if err != nil {
		log.Error("job failed", zap.Duration("took", time.Since(started)), zap.Error(err))
		return err
	}
	log.Info("job finished", zap.Duration("took", time.Since(started)))
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels the running job's context and waits for it to return.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.log.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// cronLogger routes cron's own logging to zap.
type cronLogger struct {
	log *zap.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
