package trigger

import (
	"strings"

	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// manualMatcher matches user-initiated firings. A trigger with an "id" in
// its config only matches events carrying the same "trigger_id"; without
// one it matches any manual event.
type manualMatcher struct{}

func newManualMatcher() *manualMatcher { return &manualMatcher{} }

func (m *manualMatcher) Type() workflow.TriggerType      { return workflow.TriggerManual }
func (m *manualMatcher) EventType() events.Type          { return events.ManualTrigger }
func (m *manualMatcher) Prepare(*workflow.Trigger) error { return nil }

func (m *manualMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	want, hasWant := t.Config["id"]
	got, hasGot := data["trigger_id"]
	if hasWant && hasGot {
		return want == got
	}
	return true
}

// hotkeyMatcher matches keyboard hotkey events by key and modifier set.
// Configured modifiers must all be held; with strict_modifiers no extra
// modifiers may be held either.
type hotkeyMatcher struct{}

func newHotkeyMatcher() *hotkeyMatcher { return &hotkeyMatcher{} }

func (m *hotkeyMatcher) Type() workflow.TriggerType      { return workflow.TriggerHotkey }
func (m *hotkeyMatcher) EventType() events.Type          { return events.HotkeyPressed }
func (m *hotkeyMatcher) Prepare(*workflow.Trigger) error { return nil }

func (m *hotkeyMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	wantKey := configString(t.Config, "key")
	gotKey := dataString(data, "key")
	if wantKey == "" || gotKey == "" {
		return false
	}
	if !strings.EqualFold(wantKey, gotKey) {
		return false
	}

	wantModifiers := lowerAll(configStrings(t.Config, "modifiers"))
	gotModifiers := lowerAll(dataStrings(data, "modifiers"))
	if len(wantModifiers) == 0 {
		return true
	}

	for _, modifier := range wantModifiers {
		if !containsString(gotModifiers, modifier) {
			return false
		}
	}
	if configBool(t.Config, "strict_modifiers") {
		for _, modifier := range gotModifiers {
			if !containsString(wantModifiers, modifier) {
				return false
			}
		}
	}
	return true
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
