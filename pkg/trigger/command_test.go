package trigger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func commandEvent(command string, extra map[string]interface{}) map[string]interface{} {
	data := map[string]interface{}{
		"is_command": true,
		"command":    command,
		"message":    "!" + command,
		"username":   "bob",
	}
	for k, v := range extra {
		data[k] = v
	}
	return data
}

func TestChatCommandRequiresCommandEvent(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("shoutout", workflow.TriggerChatCommand,
		map[string]interface{}{"command_name": "so"}))

	// Plain chat message without the command flag
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage, map[string]interface{}{
		"message": "!so streamer", "username": "bob",
	}))

	assert.True(t, r.Matches(trigger, events.TwitchChatMessage, commandEvent("so", nil)))

	// Chat commands never match other event types
	assert.False(t, r.Matches(trigger, events.TwitchFollow, commandEvent("so", nil)))
}

func TestChatCommandNameIsCaseInsensitive(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("shoutout", workflow.TriggerChatCommand,
		map[string]interface{}{"command_name": "SO"}))

	assert.True(t, r.Matches(trigger, events.TwitchChatMessage, commandEvent("so", nil)))
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage, commandEvent("song", nil)))
}

func TestChatCommandPermissionTiers(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("shoutout", workflow.TriggerChatCommand,
		map[string]interface{}{"command_name": "so", "required_permission": "mod"}))

	assert.True(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"is_mod": true})))
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"is_mod": false})))

	// Broadcaster outranks mod
	assert.True(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"is_broadcaster": true})))

	// A sub does not hold mod permission
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"is_sub": true})))
}

func TestChatCommandSubTierSatisfiedByHigherTiers(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("sub perk", workflow.TriggerChatCommand,
		map[string]interface{}{"command_name": "perk", "required_permission": "sub"}))

	for _, flag := range []string{"is_sub", "is_vip", "is_mod", "is_broadcaster"} {
		assert.True(t, r.Matches(trigger, events.TwitchChatMessage,
			commandEvent("perk", map[string]interface{}{flag: true})), flag)
	}
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage, commandEvent("perk", nil)))
}

func TestChatCommandArgPattern(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("shoutout", workflow.TriggerChatCommand,
		map[string]interface{}{"command_name": "so", "arg_pattern": `^@?\w+$`}))

	assert.True(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"command_args": "@streamer"})))
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage,
		commandEvent("so", map[string]interface{}{"command_args": "two words"})))

	// Pattern configured but no args supplied
	assert.False(t, r.Matches(trigger, events.TwitchChatMessage, commandEvent("so", nil)))
}

func TestChatCommandExtractArgs(t *testing.T) {
	r := NewRegistry(nil)
	trigger := prepared(t, r, workflow.NewTrigger("timeout cmd", workflow.TriggerChatCommand,
		map[string]interface{}{
			"command_name": "timeout",
			"arg_pattern":  `^(?P<target>\w+) (?P<duration>\d+)$`,
		}))

	data := commandEvent("timeout", map[string]interface{}{"command_args": "troll 600"})
	require.True(t, r.Matches(trigger, events.TwitchChatMessage, data))

	args := r.ExtractCommandArgs(trigger, data)
	assert.Equal(t, "timeout", args["command"])
	assert.Equal(t, "troll 600", args["args"])
	assert.Equal(t, "troll", args["target"])
	assert.Equal(t, "600", args["duration"])
}

func TestChatCommandPrepareRequiresName(t *testing.T) {
	r := NewRegistry(nil)
	trigger := workflow.NewTrigger("nameless", workflow.TriggerChatCommand, nil)

	assert.Error(t, r.Prepare(trigger))
}
