package action

import (
	"github.com/justedave0/obscopilot-sub001/pkg/template"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

func configString(config map[string]interface{}, key string) string {
	if s, ok := config[key].(string); ok {
		return s
	}
	return ""
}

func configBool(config map[string]interface{}, key string, fallback bool) bool {
	if b, ok := config[key].(bool); ok {
		return b
	}
	return fallback
}

func configNumber(config map[string]interface{}, key string, fallback float64) float64 {
	switch v := config[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return fallback
	}
}

func configMap(config map[string]interface{}, key string) map[string]interface{} {
	if m, ok := config[key].(map[string]interface{}); ok {
		return m
	}
	return nil
}

// resolveConfigString template-resolves a string config value against the
// execution's variable scope.
func resolveConfigString(resolver *template.Resolver, config map[string]interface{}, key string, execCtx *workflow.ExecutionContext) string {
	value := configString(config, key)
	if value == "" {
		return ""
	}
	return resolver.Resolve(value, execCtx.Scope())
}

// resolveValue template-resolves every string inside a config value,
// walking nested maps and lists. Non-string values pass through unchanged.
func resolveValue(resolver *template.Resolver, value interface{}, execCtx *workflow.ExecutionContext) interface{} {
	switch v := value.(type) {
	case string:
		return resolver.Resolve(v, execCtx.Scope())
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, item := range v {
			out[key] = resolveValue(resolver, item, execCtx)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, item := range v {
			out[i] = resolveValue(resolver, item, execCtx)
		}
		return out
	default:
		return value
	}
}
