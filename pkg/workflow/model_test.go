package workflow

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActionRequiresConfigKeys(t *testing.T) {
	_, err := NewAction("greet", ActionTwitchSendChatMessage, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"message"`)

	action, err := NewAction("greet", ActionTwitchSendChatMessage, map[string]interface{}{
		"message": "hello {username}",
	})
	require.NoError(t, err)
	assert.True(t, action.Enabled)
	assert.NotEmpty(t, action.ID)
}

func TestNewActionSourceVisibilityRequiresBothKeys(t *testing.T) {
	_, err := NewAction("show alert", ActionOBSSetSourceVisibility, map[string]interface{}{
		"source_name": "Alert",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"visible"`)
}

func TestNewActionNoRequiredKeys(t *testing.T) {
	action, err := NewAction("start stream", ActionOBSStartStreaming, nil)
	require.NoError(t, err)
	assert.Equal(t, ActionOBSStartStreaming, action.Type)
}

func TestAddNodeFirstBecomesEntry(t *testing.T) {
	w := NewWorkflow("test")
	first := w.AddNode(testAction(t))
	second := w.AddNode(testAction(t))

	assert.Equal(t, first.ID, w.EntryNodeID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Len(t, w.Nodes, 2)
}

func TestConnectUnknownNode(t *testing.T) {
	w := NewWorkflow("test")
	a := w.AddNode(testAction(t))

	assert.Error(t, w.Connect(a.ID, "missing"))
	assert.Error(t, w.Connect("missing", a.ID))
}

func TestWorkflowJSONRoundTrip(t *testing.T) {
	w := NewWorkflow("follow alert")
	w.Description = "show the alert source on follow"
	w.AddTrigger(NewTrigger("on follow", TriggerTwitchFollow, nil))

	action, err := NewAction("show alert", ActionOBSSetSourceVisibility, map[string]interface{}{
		"source_name": "Alert",
		"visible":     true,
	})
	require.NoError(t, err)
	action.Retry = &RetryPolicy{MaxAttempts: 3, Delay: 0.5, Backoff: 2.0}
	node := w.AddNode(action)

	data, err := json.Marshal(w)
	require.NoError(t, err)

	decoded, err := ParseWorkflow(data)
	require.NoError(t, err)

	assert.Equal(t, w.ID, decoded.ID)
	assert.Equal(t, w.Name, decoded.Name)
	assert.True(t, decoded.Enabled)
	require.Len(t, decoded.Triggers, 1)
	assert.Equal(t, TriggerTwitchFollow, decoded.Triggers[0].Type)
	require.Contains(t, decoded.Nodes, node.ID)
	assert.Equal(t, "Alert", decoded.Nodes[node.ID].Action.Config["source_name"])
	require.NotNil(t, decoded.Nodes[node.ID].Action.Retry)
	assert.Equal(t, 3, decoded.Nodes[node.ID].Action.Retry.MaxAttempts)
	assert.Equal(t, node.ID, decoded.EntryNodeID)
}

func TestParseWorkflowRejectsMissingConfig(t *testing.T) {
	raw := `{
		"id": "wf-1",
		"name": "bad",
		"enabled": true,
		"entry_node_id": "n1",
		"triggers": [],
		"nodes": {
			"n1": {
				"id": "n1",
				"action": {"id": "a1", "name": "say", "type": "twitch_send_chat_message", "config": {}}
			}
		}
	}`

	_, err := ParseWorkflow([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"message"`)
}

func TestParseWorkflowYAML(t *testing.T) {
	raw := `
id: wf-yaml
name: raid shoutout
enabled: true
entry_node_id: n1
triggers:
  - id: t1
    name: on raid
    type: twitch_raid
    config:
      min_viewers: 5
nodes:
  n1:
    action:
      id: a1
      name: thank raider
      type: twitch_send_chat_message
      enabled: true
      config:
        message: "thanks for the raid, {username}!"
`

	w, err := ParseWorkflowYAML([]byte(raw))
	require.NoError(t, err)
	assert.Equal(t, "raid shoutout", w.Name)
	require.Len(t, w.Triggers, 1)
	assert.Equal(t, TriggerTwitchRaid, w.Triggers[0].Type)
	require.Contains(t, w.Nodes, "n1")

	// Node id was filled in from the map key
	assert.Equal(t, "n1", w.Nodes["n1"].ID)
	assert.Empty(t, Validate(w))
}

func TestParseWorkflowMismatchedNodeID(t *testing.T) {
	raw := `{
		"id": "wf-2",
		"name": "mismatch",
		"entry_node_id": "n1",
		"nodes": {
			"n1": {"id": "other", "action": {"id": "a1", "name": "x", "type": "delay", "config": {"duration": 1}}}
		}
	}`

	_, err := ParseWorkflow([]byte(raw))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched id")
}
