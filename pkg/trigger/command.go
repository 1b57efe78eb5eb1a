package trigger

import (
	"fmt"
	"strings"

	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// permissionChecks maps a required permission tier to the event flags that
// satisfy it. Tiers are ordered broadcaster > mod > vip > sub; holding a
// higher tier satisfies any lower requirement.
var permissionChecks = map[string][]string{
	"broadcaster": {"is_broadcaster"},
	"mod":         {"is_mod", "is_broadcaster"},
	"vip":         {"is_vip", "is_mod", "is_broadcaster"},
	"sub":         {"is_sub", "is_vip", "is_mod", "is_broadcaster"},
}

// chatCommandMatcher matches parsed chat commands. It rides on chat message
// events flagged is_command rather than having a bus event type of its own.
type chatCommandMatcher struct {
	patterns *compiledPatterns
}

func newChatCommandMatcher() *chatCommandMatcher {
	return &chatCommandMatcher{patterns: newCompiledPatterns()}
}

func (m *chatCommandMatcher) Type() workflow.TriggerType { return workflow.TriggerChatCommand }
func (m *chatCommandMatcher) EventType() events.Type     { return events.TwitchChatMessage }

func (m *chatCommandMatcher) Prepare(t *workflow.Trigger) error {
	if configString(t.Config, "command_name") == "" {
		return fmt.Errorf("chat command trigger %q has no command_name", t.Name)
	}
	return m.patterns.compileFromConfig(t.ID, t.Config, "arg_pattern")
}

func (m *chatCommandMatcher) MatchesConfig(t *workflow.Trigger, data map[string]interface{}) bool {
	if !dataBool(data, "is_command") {
		return false
	}

	command := dataString(data, "command")
	expected := configString(t.Config, "command_name")
	if command == "" || expected == "" || !strings.EqualFold(command, expected) {
		return false
	}

	if re := m.patterns.get(t.ID, "arg_pattern"); re != nil {
		args := dataString(data, "command_args")
		if args == "" || !re.MatchString(args) {
			return false
		}
	}

	if required := configString(t.Config, "required_permission"); required != "" {
		flags, known := permissionChecks[required]
		if !known {
			return false
		}
		granted := false
		for _, flag := range flags {
			if dataBool(data, flag) {
				granted = true
				break
			}
		}
		if !granted {
			return false
		}
	}
	return true
}

// ExtractArgs pulls the command name and argument string out of a matched
// event, plus any named capture groups from the trigger's arg_pattern. The
// engine merges these into the execution's trigger data so templates can
// reference them.
func (m *chatCommandMatcher) ExtractArgs(t *workflow.Trigger, data map[string]interface{}) map[string]interface{} {
	args := map[string]interface{}{
		"command": dataString(data, "command"),
		"args":    dataString(data, "command_args"),
	}

	re := m.patterns.get(t.ID, "arg_pattern")
	raw := dataString(data, "command_args")
	if re == nil || raw == "" {
		return args
	}

	match := re.FindStringSubmatch(raw)
	if match == nil {
		return args
	}
	for i, name := range re.SubexpNames() {
		if i > 0 && name != "" && i < len(match) {
			args[name] = match[i]
		}
	}
	return args
}

// ExtractCommandArgs exposes chat command argument extraction through the
// registry for triggers of the chat command type.
func (r *Registry) ExtractCommandArgs(t *workflow.Trigger, data map[string]interface{}) map[string]interface{} {
	if t.Type != workflow.TriggerChatCommand {
		return nil
	}
	m, ok := r.matchers[workflow.TriggerChatCommand].(*chatCommandMatcher)
	if !ok {
		return nil
	}
	return m.ExtractArgs(t, data)
}
