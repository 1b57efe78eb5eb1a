package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func intervalWorkflow(t *testing.T, config map[string]interface{}) *workflow.Workflow {
	t.Helper()

	w := workflow.NewWorkflow("periodic reminder")
	w.AddTrigger(workflow.NewTrigger("every minute", workflow.TriggerInterval, config))

	say, err := workflow.NewAction("remind", workflow.ActionTwitchSendChatMessage, map[string]interface{}{
		"message": "Remember to hydrate!",
	})
	require.NoError(t, err)
	w.AddNode(say)
	return w
}

func TestSchedulerFiresIntervalTrigger(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, time.Second, nil)

	w := intervalWorkflow(t, map[string]interface{}{"interval": float64(60)})
	require.NoError(t, h.engine.RegisterWorkflow(w))

	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	runs := s.CheckNow(ctx, now)
	require.Len(t, runs, 1)
	assert.Equal(t, workflow.StatusCompleted, runs[0].Status)
	assert.Equal(t, string(workflow.TriggerInterval), runs[0].TriggerData["trigger_type"])
	assert.Len(t, h.twitch.Calls(), 1)

	// Within the interval nothing fires again.
	assert.Empty(t, s.CheckNow(ctx, now.Add(30*time.Second)))

	// Past the interval it fires once more.
	runs = s.CheckNow(ctx, now.Add(61*time.Second))
	assert.Len(t, runs, 1)
	assert.Len(t, h.twitch.Calls(), 2)
}

func TestSchedulerHonorsStartDelay(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, time.Second, nil)

	w := intervalWorkflow(t, map[string]interface{}{
		"interval":    float64(60),
		"start_delay": float64(30),
	})
	require.NoError(t, h.engine.RegisterWorkflow(w))

	ctx := context.Background()
	now := time.Now()

	assert.Empty(t, s.CheckNow(ctx, now))
	assert.Empty(t, s.CheckNow(ctx, now.Add(15*time.Second)))

	runs := s.CheckNow(ctx, now.Add(31*time.Second))
	assert.Len(t, runs, 1)
}

func TestSchedulerFiresCronTrigger(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, time.Second, nil)

	w := workflow.NewWorkflow("hourly scene reset")
	w.AddTrigger(workflow.NewTrigger("top of the hour", workflow.TriggerSchedule, map[string]interface{}{
		"cron": "0 * * * *",
	}))
	reset, err := workflow.NewAction("reset scene", workflow.ActionOBSSwitchScene, map[string]interface{}{
		"scene_name": "Main",
	})
	require.NoError(t, err)
	w.AddNode(reset)
	require.NoError(t, h.engine.RegisterWorkflow(w))

	ctx := context.Background()
	now := time.Date(2026, 3, 2, 12, 0, 5, 0, time.UTC)

	runs := s.CheckNow(ctx, now)
	require.Len(t, runs, 1)
	assert.Equal(t, "Main", h.obs.CurrentScene)

	// Same slot does not refire.
	assert.Empty(t, s.CheckNow(ctx, now.Add(time.Minute)))

	// The next hourly slot does.
	assert.Len(t, s.CheckNow(ctx, now.Add(time.Hour)), 1)
}

func TestSchedulerRejectsInvalidCronAtRegistration(t *testing.T) {
	h := newTestHarness(t)

	w := workflow.NewWorkflow("broken schedule")
	w.AddTrigger(workflow.NewTrigger("bad cron", workflow.TriggerSchedule, map[string]interface{}{
		"cron": "not a cron line",
	}))
	noop, err := workflow.NewAction("noop", workflow.ActionDelay, map[string]interface{}{"duration": float64(0)})
	require.NoError(t, err)
	w.AddNode(noop)

	assert.Error(t, h.engine.RegisterWorkflow(w))
}

func TestSchedulerSkipsDisabledWorkflow(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, time.Second, nil)

	w := intervalWorkflow(t, map[string]interface{}{"interval": float64(60)})
	w.Enabled = false
	require.NoError(t, h.engine.RegisterWorkflow(w))

	assert.Empty(t, s.CheckNow(context.Background(), time.Now()))
	assert.Empty(t, h.twitch.Calls())
}

func TestSchedulerStartStop(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, 10*time.Millisecond, nil)

	w := intervalWorkflow(t, map[string]interface{}{"interval": float64(3600)})
	require.NoError(t, h.engine.RegisterWorkflow(w))

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		return len(h.twitch.Calls()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
	time.Sleep(50 * time.Millisecond)
	assert.Len(t, h.twitch.Calls(), 1)
}

func TestSchedulerStopWithoutStart(t *testing.T) {
	h := newTestHarness(t)
	s := NewScheduler(h.engine, h.checker, 10*time.Millisecond, nil)

	returned := make(chan struct{})
	go func() {
		s.Stop()
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a scheduler that was never started")
	}
}
