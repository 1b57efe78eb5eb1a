// Package workflow defines the persisted workflow model: triggers, actions,
// a directed graph of nodes, and the per-run execution context.
package workflow

import (
	"fmt"

	"github.com/google/uuid"
)

// TriggerType identifies the kind of external event a trigger reacts to
type TriggerType string

const (
	// Twitch event triggers
	TriggerTwitchChatMessage         TriggerType = "twitch_chat_message"
	TriggerTwitchFollow              TriggerType = "twitch_follow"
	TriggerTwitchSubscription        TriggerType = "twitch_subscription"
	TriggerTwitchBits                TriggerType = "twitch_bits"
	TriggerTwitchRaid                TriggerType = "twitch_raid"
	TriggerTwitchChannelPointsRedeem TriggerType = "twitch_channel_points_redeem"
	TriggerTwitchStreamOnline        TriggerType = "twitch_stream_online"
	TriggerTwitchStreamOffline       TriggerType = "twitch_stream_offline"

	// OBS event triggers
	TriggerOBSSceneChanged     TriggerType = "obs_scene_changed"
	TriggerOBSStreamingStarted TriggerType = "obs_streaming_started"
	TriggerOBSStreamingStopped TriggerType = "obs_streaming_stopped"
	TriggerOBSRecordingStarted TriggerType = "obs_recording_started"
	TriggerOBSRecordingStopped TriggerType = "obs_recording_stopped"

	// Time triggers, polled by the scheduler instead of matching bus events
	TriggerSchedule TriggerType = "schedule"
	TriggerInterval TriggerType = "interval"

	// Manual triggers
	TriggerManual      TriggerType = "manual"
	TriggerHotkey      TriggerType = "hotkey"
	TriggerChatCommand TriggerType = "chat_command"
)

// ActionType identifies the kind of side effect an action performs
type ActionType string

const (
	// Twitch actions
	ActionTwitchSendChatMessage ActionType = "twitch_send_chat_message"
	ActionTwitchTimeoutUser     ActionType = "twitch_timeout_user"
	ActionTwitchBanUser         ActionType = "twitch_ban_user"

	// OBS actions
	ActionOBSSwitchScene         ActionType = "obs_switch_scene"
	ActionOBSSetSourceVisibility ActionType = "obs_set_source_visibility"
	ActionOBSStartStreaming      ActionType = "obs_start_streaming"
	ActionOBSStopStreaming       ActionType = "obs_stop_streaming"
	ActionOBSStartRecording      ActionType = "obs_start_recording"
	ActionOBSStopRecording       ActionType = "obs_stop_recording"

	// Media actions
	ActionPlaySound ActionType = "play_sound"
	ActionShowImage ActionType = "show_image"

	// AI actions
	ActionAIGenerateResponse ActionType = "ai_generate_response"

	// Utility actions
	ActionDelay       ActionType = "delay"
	ActionConditional ActionType = "conditional"
	ActionWebhook     ActionType = "webhook"
	ActionRunProcess  ActionType = "run_process"
	ActionSendEmail   ActionType = "send_email"
)

// RetryPolicy controls per-action retry behavior. The delay before attempt
// N is Delay * Backoff^(N-1) seconds.
type RetryPolicy struct {
	MaxAttempts int     `json:"max_attempts" yaml:"max_attempts"`
	Delay       float64 `json:"delay" yaml:"delay"`
	Backoff     float64 `json:"backoff" yaml:"backoff"`
}

// Trigger describes which external events should start a workflow
type Trigger struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Type        TriggerType            `json:"type" yaml:"type"`
	Conditions  []Condition            `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Config      map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
}

// NewTrigger creates a trigger with a generated id
func NewTrigger(name string, triggerType TriggerType, config map[string]interface{}) *Trigger {
	if config == nil {
		config = make(map[string]interface{})
	}
	return &Trigger{
		ID:     uuid.New().String(),
		Name:   name,
		Type:   triggerType,
		Config: config,
	}
}

// Action is a single side-effecting step in a workflow
type Action struct {
	ID          string                 `json:"id" yaml:"id"`
	Name        string                 `json:"name" yaml:"name"`
	Description string                 `json:"description,omitempty" yaml:"description,omitempty"`
	Type        ActionType             `json:"type" yaml:"type"`
	Config      map[string]interface{} `json:"config,omitempty" yaml:"config,omitempty"`
	Enabled     bool                   `json:"enabled" yaml:"enabled"`

	// TimeoutSeconds bounds one execution attempt; zero means the engine
	// default applies.
	TimeoutSeconds float64 `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	Retry *RetryPolicy `json:"retry,omitempty" yaml:"retry,omitempty"`
}

// requiredConfigKeys lists the config keys each action type must carry.
// Violations are configuration errors and are rejected at construction.
var requiredConfigKeys = map[ActionType][]string{
	ActionTwitchSendChatMessage:  {"message"},
	ActionTwitchTimeoutUser:      {"username"},
	ActionTwitchBanUser:          {"username"},
	ActionOBSSwitchScene:         {"scene_name"},
	ActionOBSSetSourceVisibility: {"source_name", "visible"},
	ActionPlaySound:              {"sound_path"},
	ActionShowImage:              {"image_path"},
	ActionAIGenerateResponse:     {"prompt"},
	ActionDelay:                  {"duration"},
	ActionConditional:            {"condition"},
	ActionWebhook:                {"url"},
	ActionRunProcess:             {"command"},
	ActionSendEmail:              {"to", "subject"},
}

// NewAction creates an action with a generated id, validating that the
// config carries every key its type requires.
func NewAction(name string, actionType ActionType, config map[string]interface{}) (*Action, error) {
	if config == nil {
		config = make(map[string]interface{})
	}
	action := &Action{
		ID:      uuid.New().String(),
		Name:    name,
		Type:    actionType,
		Config:  config,
		Enabled: true,
	}
	if err := action.ValidateConfig(); err != nil {
		return nil, err
	}
	return action, nil
}

// ValidateConfig checks that the action's config carries every required key
// for its type. It is called from NewAction and again after decoding
// persisted definitions, which bypass the constructor.
func (a *Action) ValidateConfig() error {
	for _, key := range requiredConfigKeys[a.Type] {
		if _, ok := a.Config[key]; !ok {
			return fmt.Errorf("action %q (%s) is missing required config key %q", a.Name, a.Type, key)
		}
	}
	return nil
}

// Node is a graph vertex wrapping one action plus its successor edges.
// NextNodes are executed in order after this node completes, regardless of
// the node's own result, except that a false conditional action skips them.
type Node struct {
	ID        string   `json:"id" yaml:"id"`
	Action    *Action  `json:"action" yaml:"action"`
	NextNodes []string `json:"next_nodes,omitempty" yaml:"next_nodes,omitempty"`
}

// Workflow is a user-authored automation: triggers plus a node graph of
// actions with a single entry point.
type Workflow struct {
	ID          string           `json:"id" yaml:"id"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool             `json:"enabled" yaml:"enabled"`
	Triggers    []*Trigger       `json:"triggers" yaml:"triggers"`
	Nodes       map[string]*Node `json:"nodes" yaml:"nodes"`
	EntryNodeID string           `json:"entry_node_id" yaml:"entry_node_id"`
}

// NewWorkflow creates an empty enabled workflow with a generated id
func NewWorkflow(name string) *Workflow {
	return &Workflow{
		ID:      uuid.New().String(),
		Name:    name,
		Enabled: true,
		Nodes:   make(map[string]*Node),
	}
}

// AddTrigger appends a trigger to the workflow
func (w *Workflow) AddTrigger(trigger *Trigger) {
	w.Triggers = append(w.Triggers, trigger)
}

// AddNode wraps the action in a new node and adds it to the graph. The
// first node added becomes the entry node.
func (w *Workflow) AddNode(action *Action) *Node {
	node := &Node{
		ID:     uuid.New().String(),
		Action: action,
	}
	w.Nodes[node.ID] = node
	if w.EntryNodeID == "" {
		w.EntryNodeID = node.ID
	}
	return node
}

// Connect adds a directed edge from one node to another
func (w *Workflow) Connect(fromID, toID string) error {
	from, ok := w.Nodes[fromID]
	if !ok {
		return fmt.Errorf("node %q not found in workflow %q", fromID, w.Name)
	}
	if _, ok := w.Nodes[toID]; !ok {
		return fmt.Errorf("node %q not found in workflow %q", toID, w.Name)
	}
	from.NextNodes = append(from.NextNodes, toID)
	return nil
}
