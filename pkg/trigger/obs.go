package trigger

import (
	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// sceneChangedMatcher matches OBS scene switches by exact name or pattern,
// for both the new scene and the one being left.
type sceneChangedMatcher struct {
	patterns *compiledPatterns
}

func newSceneChangedMatcher() *sceneChangedMatcher {
	return &sceneChangedMatcher{patterns: newCompiledPatterns()}
}

func (m *sceneChangedMatcher) Type() workflow.TriggerType { return workflow.TriggerOBSSceneChanged }
func (m *sceneChangedMatcher) EventType() events.Type     { return events.OBSSceneChanged }

func (m *sceneChangedMatcher) Prepare(t *workflow.Trigger) error {
	if err := m.patterns.compileFromConfig(t.ID, t.Config, "scene_pattern"); err != nil {
		return err
	}
	return m.patterns.compileFromConfig(t.ID, t.Config, "previous_scene_pattern")
}

func (m *sceneChangedMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	scene := dataString(data, "scene_name")
	previous := dataString(data, "previous_scene_name")

	if want := configString(t.Config, "scene_name"); want != "" && want != scene {
		return false
	}
	if want := configString(t.Config, "previous_scene_name"); want != "" && want != previous {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "scene_pattern", scene) {
		return false
	}
	return m.patterns.matchesPattern(t.ID, "previous_scene_pattern", previous)
}

// stateMatcher matches OBS streaming and recording state transitions. The
// event itself carries all the information, so any trigger of the right
// type matches unconditionally.
type stateMatcher struct {
	triggerType workflow.TriggerType
	eventType   events.Type
}

func newStateMatcher(triggerType workflow.TriggerType, eventType events.Type) *stateMatcher {
	return &stateMatcher{triggerType: triggerType, eventType: eventType}
}

func (m *stateMatcher) Type() workflow.TriggerType      { return m.triggerType }
func (m *stateMatcher) EventType() events.Type          { return m.eventType }
func (m *stateMatcher) Prepare(*workflow.Trigger) error { return nil }

func (m *stateMatcher) MatchesConfig(*workflow.Trigger, map[string]interface{}) bool {
	return true
}
