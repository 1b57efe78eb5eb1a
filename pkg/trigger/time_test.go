package trigger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func TestIntervalTrigger(t *testing.T) {
	ctx := context.Background()
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)
	trigger := workflow.NewTrigger("every minute", workflow.TriggerInterval,
		map[string]interface{}{"interval": float64(60)})
	require.NoError(t, checker.Prepare(trigger))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Never fired: due immediately
	assert.True(t, checker.IsTimeToRun(ctx, trigger, now))

	checker.MarkRun(ctx, trigger, now)
	assert.False(t, checker.IsTimeToRun(ctx, trigger, now.Add(30*time.Second)))
	assert.True(t, checker.IsTimeToRun(ctx, trigger, now.Add(60*time.Second)))
}

func TestIntervalTriggerRequiresPositiveInterval(t *testing.T) {
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)

	trigger := workflow.NewTrigger("bad", workflow.TriggerInterval,
		map[string]interface{}{"interval": float64(0)})
	assert.Error(t, checker.Prepare(trigger))

	trigger = workflow.NewTrigger("none", workflow.TriggerInterval, nil)
	assert.Error(t, checker.Prepare(trigger))
}

func TestCronSchedule(t *testing.T) {
	ctx := context.Background()
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)
	trigger := workflow.NewTrigger("hourly", workflow.TriggerSchedule,
		map[string]interface{}{"cron": "0 * * * *"})
	require.NoError(t, checker.Prepare(trigger))

	// First poll fires
	now := time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC)
	assert.True(t, checker.IsTimeToRun(ctx, trigger, now))
	checker.MarkRun(ctx, trigger, now)

	// Not due again until the next slot
	assert.False(t, checker.IsTimeToRun(ctx, trigger, now.Add(10*time.Minute)))
	assert.True(t, checker.IsTimeToRun(ctx, trigger, time.Date(2026, 3, 1, 13, 0, 5, 0, time.UTC)))
}

func TestCronScheduleInvalidExpression(t *testing.T) {
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)
	trigger := workflow.NewTrigger("bad cron", workflow.TriggerSchedule,
		map[string]interface{}{"cron": "not a cron"})

	assert.Error(t, checker.Prepare(trigger))
}

func TestTimeOfDaySchedule(t *testing.T) {
	ctx := context.Background()
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)
	trigger := workflow.NewTrigger("stream start", workflow.TriggerSchedule,
		map[string]interface{}{"time": "18:00"})
	require.NoError(t, checker.Prepare(trigger))

	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

	assert.False(t, checker.IsTimeToRun(ctx, trigger, day.Add(17*time.Hour)))
	assert.True(t, checker.IsTimeToRun(ctx, trigger, day.Add(18*time.Hour)))

	// Runs at most once per day
	checker.MarkRun(ctx, trigger, day.Add(18*time.Hour))
	assert.False(t, checker.IsTimeToRun(ctx, trigger, day.Add(19*time.Hour)))
	assert.True(t, checker.IsTimeToRun(ctx, trigger, day.Add(24*time.Hour+18*time.Hour)))
}

func TestTimeOfDayScheduleDaysOfWeek(t *testing.T) {
	ctx := context.Background()
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)

	// Monday=0 convention; weekdays only
	trigger := workflow.NewTrigger("weekday stream", workflow.TriggerSchedule,
		map[string]interface{}{
			"time":         "18:00",
			"days_of_week": []interface{}{float64(0), float64(1), float64(2), float64(3), float64(4)},
		})
	require.NoError(t, checker.Prepare(trigger))

	monday := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	saturday := time.Date(2026, 3, 7, 19, 0, 0, 0, time.UTC)

	assert.True(t, checker.IsTimeToRun(ctx, trigger, monday))
	assert.False(t, checker.IsTimeToRun(ctx, trigger, saturday))
}

func TestSchedulePrepareRequiresCronOrTime(t *testing.T) {
	checker := NewTimeChecker(NewMemoryLastRunStore(), nil)
	trigger := workflow.NewTrigger("empty", workflow.TriggerSchedule, nil)

	assert.Error(t, checker.Prepare(trigger))
}

func TestParseTimeOfDay(t *testing.T) {
	seconds, err := parseTimeOfDay("18:30")
	require.NoError(t, err)
	assert.Equal(t, 18*3600+30*60, seconds)

	seconds, err = parseTimeOfDay("06:15:45")
	require.NoError(t, err)
	assert.Equal(t, 6*3600+15*60+45, seconds)

	_, err = parseTimeOfDay("25:00")
	assert.Error(t, err)
	_, err = parseTimeOfDay("noon")
	assert.Error(t, err)
}

func TestIsTimeTrigger(t *testing.T) {
	assert.True(t, IsTimeTrigger(workflow.TriggerSchedule))
	assert.True(t, IsTimeTrigger(workflow.TriggerInterval))
	assert.False(t, IsTimeTrigger(workflow.TriggerTwitchFollow))
}
