package trigger

import (
	"strings"

	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// channelMatches applies the optional channel filter shared by every Twitch
// matcher. An unset filter or missing event channel passes.
func channelMatches(config, data map[string]interface{}) bool {
	want := configString(config, "channel")
	got := dataString(data, "channel")
	if want == "" || got == "" {
		return true
	}
	return strings.EqualFold(want, got)
}

// chatMessageMatcher matches Twitch chat messages against optional channel,
// user pattern, message pattern and role flags.
type chatMessageMatcher struct {
	patterns *compiledPatterns
}

func newChatMessageMatcher() *chatMessageMatcher {
	return &chatMessageMatcher{patterns: newCompiledPatterns()}
}

func (m *chatMessageMatcher) Type() workflow.TriggerType { return workflow.TriggerTwitchChatMessage }
func (m *chatMessageMatcher) EventType() events.Type     { return events.TwitchChatMessage }

func (m *chatMessageMatcher) Prepare(t *workflow.Trigger) error {
	if err := m.patterns.compileFromConfig(t.ID, t.Config, "message_pattern"); err != nil {
		return err
	}
	return m.patterns.compileFromConfig(t.ID, t.Config, "user_pattern")
}

func (m *chatMessageMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "message_pattern", dataString(data, "message")) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "user_pattern", dataString(data, "username")) {
		return false
	}
	if configBool(t.Config, "is_mod_only") && !dataBool(data, "is_mod") {
		return false
	}
	if configBool(t.Config, "is_sub_only") && !dataBool(data, "is_sub") {
		return false
	}
	if configBool(t.Config, "is_broadcaster_only") && !dataBool(data, "is_broadcaster") {
		return false
	}
	return true
}

// followMatcher matches new follower events
type followMatcher struct {
	patterns *compiledPatterns
}

func newFollowMatcher() *followMatcher {
	return &followMatcher{patterns: newCompiledPatterns()}
}

func (m *followMatcher) Type() workflow.TriggerType { return workflow.TriggerTwitchFollow }
func (m *followMatcher) EventType() events.Type     { return events.TwitchFollow }

func (m *followMatcher) Prepare(t *workflow.Trigger) error {
	return m.patterns.compileFromConfig(t.ID, t.Config, "user_pattern")
}

func (m *followMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	return m.patterns.matchesPattern(t.ID, "user_pattern", dataString(data, "username"))
}

// subscriptionMatcher matches subscription events with optional gift, resub
// and tier filters.
type subscriptionMatcher struct {
	patterns *compiledPatterns
}

func newSubscriptionMatcher() *subscriptionMatcher {
	return &subscriptionMatcher{patterns: newCompiledPatterns()}
}

func (m *subscriptionMatcher) Type() workflow.TriggerType { return workflow.TriggerTwitchSubscription }
func (m *subscriptionMatcher) EventType() events.Type     { return events.TwitchSubscription }

func (m *subscriptionMatcher) Prepare(t *workflow.Trigger) error {
	return m.patterns.compileFromConfig(t.ID, t.Config, "user_pattern")
}

func (m *subscriptionMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "user_pattern", dataString(data, "username")) {
		return false
	}
	if configBool(t.Config, "is_gift_only") && !dataBool(data, "is_gift") {
		return false
	}
	if configBool(t.Config, "is_resub_only") && !dataBool(data, "is_resub") {
		return false
	}
	if want := configString(t.Config, "tier"); want != "" {
		tier := dataString(data, "tier")
		if tier == "" {
			tier = "1000"
		}
		if want != tier {
			return false
		}
	}
	return true
}

// bitsMatcher matches cheer events within an optional bits range
type bitsMatcher struct {
	patterns *compiledPatterns
}

func newBitsMatcher() *bitsMatcher {
	return &bitsMatcher{patterns: newCompiledPatterns()}
}

func (m *bitsMatcher) Type() workflow.TriggerType { return workflow.TriggerTwitchBits }
func (m *bitsMatcher) EventType() events.Type     { return events.TwitchBits }

func (m *bitsMatcher) Prepare(t *workflow.Trigger) error {
	return m.patterns.compileFromConfig(t.ID, t.Config, "user_pattern")
}

func (m *bitsMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "user_pattern", dataString(data, "username")) {
		return false
	}

	bits := dataNumber(data, "bits")
	if min, ok := configNumber(t.Config, "min_bits"); ok && bits < min {
		return false
	}
	if max, ok := configNumber(t.Config, "max_bits"); ok && bits > max {
		return false
	}
	return true
}

// raidMatcher matches incoming raids by raider name and viewer count
type raidMatcher struct {
	patterns *compiledPatterns
}

func newRaidMatcher() *raidMatcher {
	return &raidMatcher{patterns: newCompiledPatterns()}
}

func (m *raidMatcher) Type() workflow.TriggerType { return workflow.TriggerTwitchRaid }
func (m *raidMatcher) EventType() events.Type     { return events.TwitchRaid }

func (m *raidMatcher) Prepare(t *workflow.Trigger) error {
	return m.patterns.compileFromConfig(t.ID, t.Config, "raider_pattern")
}

func (m *raidMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "raider_pattern", dataString(data, "raider")) {
		return false
	}

	viewers := dataNumber(data, "viewers")
	if min, ok := configNumber(t.Config, "min_viewers"); ok && viewers < min {
		return false
	}
	if max, ok := configNumber(t.Config, "max_viewers"); ok && viewers > max {
		return false
	}
	return true
}

// channelPointsMatcher matches channel point redemptions by reward title,
// pattern and cost range.
type channelPointsMatcher struct {
	patterns *compiledPatterns
}

func newChannelPointsMatcher() *channelPointsMatcher {
	return &channelPointsMatcher{patterns: newCompiledPatterns()}
}

func (m *channelPointsMatcher) Type() workflow.TriggerType {
	return workflow.TriggerTwitchChannelPointsRedeem
}

func (m *channelPointsMatcher) EventType() events.Type { return events.TwitchChannelPointsRedeem }

func (m *channelPointsMatcher) Prepare(t *workflow.Trigger) error {
	if err := m.patterns.compileFromConfig(t.ID, t.Config, "user_pattern"); err != nil {
		return err
	}
	return m.patterns.compileFromConfig(t.ID, t.Config, "reward_pattern")
}

func (m *channelPointsMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !channelMatches(t.Config, data) {
		return false
	}
	if !m.patterns.matchesPattern(t.ID, "user_pattern", dataString(data, "username")) {
		return false
	}

	rewardTitle := dataString(data, "reward_title")
	if !m.patterns.matchesPattern(t.ID, "reward_pattern", rewardTitle) {
		return false
	}
	if want := configString(t.Config, "reward_title"); want != "" && want != rewardTitle {
		return false
	}

	cost := dataNumber(data, "reward_cost")
	if min, ok := configNumber(t.Config, "min_cost"); ok && cost < min {
		return false
	}
	if max, ok := configNumber(t.Config, "max_cost"); ok && cost > max {
		return false
	}
	return true
}

// streamStateMatcher matches stream online and offline events with only the
// channel filter.
type streamStateMatcher struct {
	triggerType workflow.TriggerType
	eventType   events.Type
}

func newStreamOnlineMatcher() *streamStateMatcher {
	return &streamStateMatcher{
		triggerType: workflow.TriggerTwitchStreamOnline,
		eventType:   events.TwitchStreamOnline,
	}
}

func newStreamOfflineMatcher() *streamStateMatcher {
	return &streamStateMatcher{
		triggerType: workflow.TriggerTwitchStreamOffline,
		eventType:   events.TwitchStreamOffline,
	}
}

func (m *streamStateMatcher) Type() workflow.TriggerType      { return m.triggerType }
func (m *streamStateMatcher) EventType() events.Type          { return m.eventType }
func (m *streamStateMatcher) Prepare(*workflow.Trigger) error { return nil }

func (m *streamStateMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	return channelMatches(t.Config, data)
}
