package engine

import (
	"context"
	"sync"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/trigger"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// DefaultPollInterval is how often time triggers are checked when the
// config does not set one.
const DefaultPollInterval = time.Second

// Scheduler drives the engine's schedule and interval triggers: it polls
// the time checker at a fixed cadence and fires the owning workflow when a
// trigger is due. Firings are recorded through the checker's last-run
// store so a trigger fires at most once per due slot.
type Scheduler struct {
	engine   *Engine
	checker  *trigger.TimeChecker
	interval time.Duration
	logger   logging.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	done      chan struct{}
}

// NewScheduler creates a scheduler polling at the given interval. A zero
// or negative interval falls back to DefaultPollInterval.
func NewScheduler(engine *Engine, checker *trigger.TimeChecker, pollInterval time.Duration, logger logging.Logger) *Scheduler {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scheduler{
		engine:   engine,
		checker:  checker,
		interval: pollInterval,
		logger:   logger,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs the poll loop until Stop is called or the context is
// cancelled. It returns immediately; the loop runs on its own goroutine.
// Only the first call starts a loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		go s.loop(ctx)
		s.logger.Info("scheduler started", logging.F("poll_interval", s.interval.String()))
	})
}

// Stop terminates the poll loop and waits for it to finish. Stopping a
// scheduler that was never started is a no-op, and a stopped scheduler
// can no longer be started.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	// If Start never ran, claim its once so the wait below cannot block.
	s.startOnce.Do(func() { close(s.done) })
	<-s.done
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.poll(ctx, now)
		}
	}
}

// dueFiring is one workflow run owed for the current poll slot
type dueFiring struct {
	workflow *workflow.Workflow
	trigger  *workflow.Trigger
	data     map[string]interface{}
}

// collectDue finds every due time trigger and records its firing, so a
// trigger fires at most once per slot regardless of how the run is
// dispatched.
func (s *Scheduler) collectDue(ctx context.Context, now time.Time) []dueFiring {
	var due []dueFiring
	for _, binding := range s.engine.timeTriggerSnapshot() {
		if !s.checker.IsTimeToRun(ctx, binding.trigger, now) {
			continue
		}
		s.checker.MarkRun(ctx, binding.trigger, now)

		w, ok := s.engine.GetWorkflow(binding.workflowID)
		if !ok || !w.Enabled {
			continue
		}

		s.logger.Info("time trigger fired",
			logging.F("workflow_id", binding.workflowID),
			logging.F("trigger_id", binding.trigger.ID),
			logging.F("trigger_type", string(binding.trigger.Type)))

		due = append(due, dueFiring{
			workflow: w,
			trigger:  binding.trigger,
			data: map[string]interface{}{
				"trigger_id":     binding.trigger.ID,
				"trigger_type":   string(binding.trigger.Type),
				"scheduled_time": now.Format(time.RFC3339),
			},
		})
	}
	return due
}

// poll dispatches every due firing as an independent execution
func (s *Scheduler) poll(ctx context.Context, now time.Time) {
	for _, firing := range s.collectDue(ctx, now) {
		go s.engine.run(ctx, firing.workflow, firing.trigger, firing.data)
	}
}

// CheckNow polls all time triggers once at the given time, running due
// ones synchronously. Used by tests instead of waiting for the ticker.
func (s *Scheduler) CheckNow(ctx context.Context, now time.Time) []*workflow.ExecutionContext {
	var runs []*workflow.ExecutionContext
	for _, firing := range s.collectDue(ctx, now) {
		runs = append(runs, s.engine.run(ctx, firing.workflow, firing.trigger, firing.data))
	}
	return runs
}
