package trigger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// TimeChecker answers whether a schedule or interval trigger is due. Time
// triggers do not match bus events; an external scheduler polls IsTimeToRun
// at a regular cadence and fires the workflow when it reports true.
type TimeChecker struct {
	store  LastRunStore
	logger logging.Logger

	mu        sync.RWMutex
	schedules map[string]cron.Schedule
}

// NewTimeChecker creates a time checker backed by the given last-run store
func NewTimeChecker(store LastRunStore, logger logging.Logger) *TimeChecker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &TimeChecker{
		store:     store,
		logger:    logger,
		schedules: make(map[string]cron.Schedule),
	}
}

// IsTimeTrigger reports whether a trigger type is polled by the scheduler
func IsTimeTrigger(triggerType workflow.TriggerType) bool {
	return triggerType == workflow.TriggerSchedule || triggerType == workflow.TriggerInterval
}

// Prepare validates a time trigger's config and caches its parsed cron
// schedule. Called at registration; a failure blocks registration.
func (c *TimeChecker) Prepare(trigger *workflow.Trigger) error {
	switch trigger.Type {
	case workflow.TriggerSchedule:
		cronExpr := configString(trigger.Config, "cron")
		timeOfDay := configString(trigger.Config, "time")
		if cronExpr == "" && timeOfDay == "" {
			return fmt.Errorf("schedule trigger %q requires either cron or time config", trigger.Name)
		}

		if cronExpr != "" {
			schedule, err := cron.ParseStandard(cronExpr)
			if err != nil {
				return fmt.Errorf("invalid cron expression %q: %w", cronExpr, err)
			}
			c.mu.Lock()
			c.schedules[trigger.ID] = schedule
			c.mu.Unlock()
		}
		if timeOfDay != "" {
			if _, err := parseTimeOfDay(timeOfDay); err != nil {
				return err
			}
		}
		return nil

	case workflow.TriggerInterval:
		interval, ok := configNumber(trigger.Config, "interval")
		if !ok || interval <= 0 {
			return fmt.Errorf("interval trigger %q requires a positive interval", trigger.Name)
		}
		return nil

	default:
		return fmt.Errorf("trigger %q is not a time trigger", trigger.Name)
	}
}

// ApplyStartDelay seeds the last-run timestamp of an interval trigger so
// its first firing happens start_delay seconds after registration instead
// of on the next poll. Triggers without a start_delay, or with a run
// already recorded, are left alone.
func (c *TimeChecker) ApplyStartDelay(ctx context.Context, trigger *workflow.Trigger, now time.Time) error {
	if trigger.Type != workflow.TriggerInterval {
		return nil
	}
	startDelay, ok := configNumber(trigger.Config, "start_delay")
	if !ok || startDelay <= 0 {
		return nil
	}
	interval, ok := configNumber(trigger.Config, "interval")
	if !ok || interval <= 0 {
		return nil
	}

	_, hasRun, err := c.store.LastRun(ctx, trigger.ID)
	if err != nil {
		return err
	}
	if hasRun {
		return nil
	}

	seeded := now.Add(time.Duration((startDelay - interval) * float64(time.Second)))
	return c.store.SetLastRun(ctx, trigger.ID, seeded)
}

// IsTimeToRun reports whether the trigger is due at the given time. It
// consults the last-run store to avoid double-firing within one scheduled
// slot; the scheduler records the firing via MarkRun.
func (c *TimeChecker) IsTimeToRun(ctx context.Context, trigger *workflow.Trigger, now time.Time) bool {
	switch trigger.Type {
	case workflow.TriggerSchedule:
		return c.scheduleDue(ctx, trigger, now)
	case workflow.TriggerInterval:
		return c.intervalDue(ctx, trigger, now)
	default:
		return false
	}
}

// MarkRun records that the trigger fired at the given time
func (c *TimeChecker) MarkRun(ctx context.Context, trigger *workflow.Trigger, now time.Time) {
	if err := c.store.SetLastRun(ctx, trigger.ID, now); err != nil {
		c.logger.Error("failed to record trigger run time",
			logging.F("trigger_id", trigger.ID),
			logging.F("error", err))
	}
}

func (c *TimeChecker) scheduleDue(ctx context.Context, trigger *workflow.Trigger, now time.Time) bool {
	lastRun, hasRun, err := c.store.LastRun(ctx, trigger.ID)
	if err != nil {
		c.logger.Warn("failed to read trigger last run, skipping this poll",
			logging.F("trigger_id", trigger.ID),
			logging.F("error", err))
		return false
	}

	c.mu.RLock()
	schedule, hasCron := c.schedules[trigger.ID]
	c.mu.RUnlock()

	if hasCron {
		if !hasRun {
			// Never fired: the slot that is currently due counts.
			return true
		}
		return !now.Before(schedule.Next(lastRun))
	}

	timeOfDay := configString(trigger.Config, "time")
	if timeOfDay == "" {
		return false
	}
	scheduled, err := parseTimeOfDay(timeOfDay)
	if err != nil {
		c.logger.Warn("invalid time config on schedule trigger",
			logging.F("trigger_id", trigger.ID),
			logging.F("error", err))
		return false
	}

	// At most once per day, on the configured weekdays, once the scheduled
	// time of day has passed.
	if hasRun && sameDay(lastRun, now) {
		return false
	}
	if days, ok := configInts(trigger.Config, "days_of_week"); ok && len(days) > 0 {
		if !containsInt(days, mondayBasedWeekday(now)) {
			return false
		}
	}

	nowOfDay := now.Hour()*3600 + now.Minute()*60 + now.Second()
	return nowOfDay >= scheduled
}

func (c *TimeChecker) intervalDue(ctx context.Context, trigger *workflow.Trigger, now time.Time) bool {
	interval, ok := configNumber(trigger.Config, "interval")
	if !ok || interval <= 0 {
		return false
	}

	lastRun, hasRun, err := c.store.LastRun(ctx, trigger.ID)
	if err != nil {
		c.logger.Warn("failed to read trigger last run, skipping this poll",
			logging.F("trigger_id", trigger.ID),
			logging.F("error", err))
		return false
	}
	if !hasRun {
		return true
	}
	return now.Sub(lastRun).Seconds() >= interval
}

// parseTimeOfDay parses "HH:MM" or "HH:MM:SS" into seconds since midnight
func parseTimeOfDay(value string) (int, error) {
	var hour, minute, second int
	if _, err := fmt.Sscanf(value, "%d:%d:%d", &hour, &minute, &second); err != nil {
		second = 0
		if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
			return 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", value)
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 || second < 0 || second > 59 {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM or HH:MM:SS", value)
	}
	return hour*3600 + minute*60 + second, nil
}

// mondayBasedWeekday numbers days Monday=0 through Sunday=6, the convention
// the days_of_week config uses.
func mondayBasedWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func containsInt(values []int, target int) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
