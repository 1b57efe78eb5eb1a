package workflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseWorkflow decodes a workflow definition from its canonical JSON form
func ParseWorkflow(data []byte) (*Workflow, error) {
	var w Workflow
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse workflow definition: %w", err)
	}
	if err := normalize(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// ParseWorkflowYAML decodes a workflow definition from YAML
func ParseWorkflowYAML(data []byte) (*Workflow, error) {
	var w Workflow
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("failed to parse workflow definition: %w", err)
	}
	if err := normalize(&w); err != nil {
		return nil, err
	}
	return &w, nil
}

// LoadWorkflowFile reads a workflow definition from disk, choosing the
// decoder by file extension. JSON is the canonical persisted form; YAML is
// accepted for hand-authored definitions.
func LoadWorkflowFile(path string) (*Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read workflow file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseWorkflowYAML(data)
	default:
		return ParseWorkflow(data)
	}
}

// LoadWorkflowDir loads every workflow definition in a directory. Files
// that fail to parse are reported together rather than aborting the load.
func LoadWorkflowDir(dir string) ([]*Workflow, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read workflow directory: %w", err)}
	}

	var workflows []*Workflow
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".yaml", ".yml":
		default:
			continue
		}

		w, err := LoadWorkflowFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}
		workflows = append(workflows, w)
	}
	return workflows, errs
}

// SaveWorkflowFile writes a workflow definition as indented JSON
func SaveWorkflowFile(w *Workflow, path string) error {
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal workflow: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write workflow file: %w", err)
	}
	return nil
}

// normalize fills in ids that hand-authored definitions may omit and
// re-checks constraints the constructors would have enforced.
func normalize(w *Workflow) error {
	if w.Nodes == nil {
		w.Nodes = make(map[string]*Node)
	}

	for id, node := range w.Nodes {
		if node == nil {
			return fmt.Errorf("node %q has no definition", id)
		}
		if node.ID == "" {
			node.ID = id
		}
		if node.ID != id {
			return fmt.Errorf("node %q declares mismatched id %q", id, node.ID)
		}
		if node.Action == nil {
			return fmt.Errorf("node %q has no action", id)
		}
		if node.Action.Config == nil {
			node.Action.Config = make(map[string]interface{})
		}
		if err := node.Action.ValidateConfig(); err != nil {
			return err
		}
	}

	for _, trigger := range w.Triggers {
		if trigger.Config == nil {
			trigger.Config = make(map[string]interface{})
		}
	}
	return nil
}
