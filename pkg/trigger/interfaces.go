// Package trigger decides whether incoming events satisfy workflow
// triggers. One matcher exists per trigger type; a registry built at
// startup maps types to matchers and applies the uniform matching
// algorithm: event kind check, then trigger conditions, then the matcher's
// own config check.
package trigger

import (
	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// Matcher implements the type-specific part of trigger matching
type Matcher interface {
	// Type reports the trigger type this matcher handles
	Type() workflow.TriggerType

	// EventType reports the bus event type this matcher consumes. Time
	// triggers return an empty type; they are polled, not event-driven.
	EventType() events.Type

	// Prepare compiles config artifacts (patterns, parsed schedules) once
	// at registration. A prepare error blocks registration.
	Prepare(trigger *workflow.Trigger) error

	// MatchesConfig checks the trigger's type-specific config against the
	// event payload. Conditions have already been checked by the registry.
	MatchesConfig(trigger *workflow.Trigger, data map[string]interface{}) bool
}

// Registry holds one matcher per trigger type, built once at startup and
// immutable afterwards.
type Registry struct {
	matchers map[workflow.TriggerType]Matcher
	logger   logging.Logger
}

// NewRegistry builds the matcher table for every supported trigger type
func NewRegistry(logger logging.Logger) *Registry {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	r := &Registry{
		matchers: make(map[workflow.TriggerType]Matcher),
		logger:   logger,
	}

	for _, m := range []Matcher{
		newChatMessageMatcher(),
		newFollowMatcher(),
		newSubscriptionMatcher(),
		newBitsMatcher(),
		newRaidMatcher(),
		newChannelPointsMatcher(),
		newStreamOnlineMatcher(),
		newStreamOfflineMatcher(),
		newSceneChangedMatcher(),
		newStateMatcher(workflow.TriggerOBSStreamingStarted, events.OBSStreamingStarted),
		newStateMatcher(workflow.TriggerOBSStreamingStopped, events.OBSStreamingStopped),
		newStateMatcher(workflow.TriggerOBSRecordingStarted, events.OBSRecordingStarted),
		newStateMatcher(workflow.TriggerOBSRecordingStopped, events.OBSRecordingStopped),
		newManualMatcher(),
		newHotkeyMatcher(),
		newChatCommandMatcher(),
	} {
		r.matchers[m.Type()] = m
	}
	return r
}

// Get returns the matcher for a trigger type
func (r *Registry) Get(triggerType workflow.TriggerType) (Matcher, bool) {
	m, ok := r.matchers[triggerType]
	return m, ok
}

// Prepare runs the type-specific preparation for a trigger at registration
func (r *Registry) Prepare(trigger *workflow.Trigger) error {
	m, ok := r.matchers[trigger.Type]
	if !ok {
		// Time triggers are prepared by the scheduler, not the event path.
		return nil
	}
	return m.Prepare(trigger)
}

// Matches applies the uniform matching algorithm: the event type must be
// the one the trigger's matcher consumes, every declared condition must
// hold against the event data, and the type-specific config check must
// pass. Any failure means no match; matching never errors.
func (r *Registry) Matches(trigger *workflow.Trigger, eventType events.Type, data map[string]interface{}) bool {
	m, ok := r.matchers[trigger.Type]
	if !ok {
		r.logger.Warn("no matcher registered for trigger type",
			logging.F("trigger_type", string(trigger.Type)))
		return false
	}

	if m.EventType() != eventType {
		return false
	}

	for _, condition := range trigger.Conditions {
		if !condition.Evaluate(data) {
			return false
		}
	}

	return m.MatchesConfig(trigger, data)
}

// TriggerTypesForEvent lists the trigger types that can fire from one bus
// event type. Most map one-to-one; chat commands also ride on chat message
// events.
func TriggerTypesForEvent(eventType events.Type) []workflow.TriggerType {
	types := []workflow.TriggerType{workflow.TriggerType(eventType)}
	if eventType == events.TwitchChatMessage {
		types = append(types, workflow.TriggerChatCommand)
	}
	return types
}
