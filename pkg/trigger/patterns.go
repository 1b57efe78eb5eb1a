package trigger

import (
	"fmt"
	"regexp"
	"sync"
)

// compiledPatterns caches regexes compiled from trigger config at
// registration time, keyed by trigger id and config key. The compiled
// artifact lives here rather than inside the trigger's config map so it is
// never serialized with the workflow definition.
type compiledPatterns struct {
	mu sync.RWMutex
	m  map[string]map[string]*regexp.Regexp
}

func newCompiledPatterns() *compiledPatterns {
	return &compiledPatterns{m: make(map[string]map[string]*regexp.Regexp)}
}

// compileFromConfig compiles the pattern stored under configKey, if any
func (p *compiledPatterns) compileFromConfig(triggerID string, config map[string]interface{}, configKey string) error {
	pattern, ok := config[configKey].(string)
	if !ok || pattern == "" {
		return nil
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", configKey, pattern, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.m[triggerID] == nil {
		p.m[triggerID] = make(map[string]*regexp.Regexp)
	}
	p.m[triggerID][configKey] = re
	return nil
}

// get returns the compiled pattern for a trigger and config key, or nil
func (p *compiledPatterns) get(triggerID, configKey string) *regexp.Regexp {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.m[triggerID][configKey]
}

// matchesPattern checks value against a prepared pattern. A trigger with no
// such pattern passes; a prepared pattern that does not match fails.
func (p *compiledPatterns) matchesPattern(triggerID, configKey, value string) bool {
	re := p.get(triggerID, configKey)
	if re == nil {
		return true
	}
	return re.MatchString(value)
}
