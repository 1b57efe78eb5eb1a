// Package engine orchestrates workflow execution: it indexes registered
// workflows by the bus events that can fire them, matches incoming events
// against their triggers, and runs the matched workflows' node graphs.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/action"
	"github.com/justedave0/obscopilot-sub001/pkg/events"
	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/storage"
	"github.com/justedave0/obscopilot-sub001/pkg/trigger"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// adapterEventTypes lists every bus event type external adapters emit.
// The engine subscribes to all of them at Start.
var adapterEventTypes = []events.Type{
	events.TwitchChatMessage,
	events.TwitchFollow,
	events.TwitchSubscription,
	events.TwitchBits,
	events.TwitchRaid,
	events.TwitchChannelPointsRedeem,
	events.TwitchStreamOnline,
	events.TwitchStreamOffline,
	events.OBSSceneChanged,
	events.OBSStreamingStarted,
	events.OBSStreamingStopped,
	events.OBSRecordingStarted,
	events.OBSRecordingStopped,
	events.ManualTrigger,
	events.HotkeyPressed,
}

// Deps holds the collaborators an Engine needs
type Deps struct {
	Bus      *events.Bus
	Triggers *trigger.Registry
	Actions  *action.Registry
	Storage  storage.Provider

	// TimeChecker prepares schedule/interval triggers at registration.
	// Nil when no scheduler is attached; time triggers then never fire.
	TimeChecker *trigger.TimeChecker

	Logger logging.Logger

	// MaxConcurrentExecutions caps simultaneously running executions.
	// Zero means unlimited.
	MaxConcurrentExecutions int
}

// timeTriggerBinding ties a time trigger to the workflow it starts
type timeTriggerBinding struct {
	workflowID string
	trigger    *workflow.Trigger
}

// Engine matches bus events against registered workflows and executes them
type Engine struct {
	bus         *events.Bus
	triggers    *trigger.Registry
	actions     *action.Registry
	store       storage.Provider
	timeChecker *trigger.TimeChecker
	logger      logging.Logger
	sem         chan struct{}

	mu           sync.RWMutex
	workflows    map[string]*workflow.Workflow
	eventIndex   map[events.Type][]string
	timeTriggers []timeTriggerBinding
}

// NewEngine creates an engine from its collaborators
func NewEngine(deps Deps) *Engine {
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}

	e := &Engine{
		bus:         deps.Bus,
		triggers:    deps.Triggers,
		actions:     deps.Actions,
		store:       deps.Storage,
		timeChecker: deps.TimeChecker,
		logger:      deps.Logger,
		workflows:   make(map[string]*workflow.Workflow),
		eventIndex:  make(map[events.Type][]string),
	}
	if deps.MaxConcurrentExecutions > 0 {
		e.sem = make(chan struct{}, deps.MaxConcurrentExecutions)
	}
	return e
}

// Start subscribes the engine to every adapter event type on the bus
func (e *Engine) Start() {
	for _, eventType := range adapterEventTypes {
		e.bus.Subscribe(eventType, e.HandleEvent)
	}
	e.logger.Info("workflow engine started")
}

// RegisterWorkflow validates a workflow, prepares its triggers and adds it
// to the event index. Disabled workflows are kept but add no index entries.
func (e *Engine) RegisterWorkflow(w *workflow.Workflow) error {
	if errs := workflow.Validate(w); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, err := range errs {
			msgs[i] = err.Error()
		}
		return fmt.Errorf("workflow %q is invalid: %s", w.Name, strings.Join(msgs, "; "))
	}

	for _, t := range w.Triggers {
		if trigger.IsTimeTrigger(t.Type) {
			if e.timeChecker == nil {
				e.logger.Warn("no scheduler attached, time trigger will never fire",
					logging.F("workflow_id", w.ID),
					logging.F("trigger_id", t.ID))
				continue
			}
			if err := e.timeChecker.Prepare(t); err != nil {
				return fmt.Errorf("workflow %q: %w", w.Name, err)
			}
			if err := e.timeChecker.ApplyStartDelay(context.Background(), t, time.Now()); err != nil {
				return fmt.Errorf("workflow %q: %w", w.Name, err)
			}
			continue
		}
		if err := e.triggers.Prepare(t); err != nil {
			return fmt.Errorf("workflow %q: %w", w.Name, err)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.workflows[w.ID]; exists {
		e.removeFromIndexLocked(w.ID)
	}
	e.workflows[w.ID] = w

	if w.Enabled {
		e.indexLocked(w)
	}

	e.logger.Info("registered workflow",
		logging.F("workflow_id", w.ID),
		logging.F("name", w.Name),
		logging.F("enabled", w.Enabled))
	return nil
}

// UnregisterWorkflow removes a workflow from the engine. It reports whether
// the workflow was registered.
func (e *Engine) UnregisterWorkflow(workflowID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.workflows[workflowID]; !ok {
		return false
	}
	delete(e.workflows, workflowID)
	e.removeFromIndexLocked(workflowID)
	return true
}

// GetWorkflow returns a registered workflow by id
func (e *Engine) GetWorkflow(workflowID string) (*workflow.Workflow, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	w, ok := e.workflows[workflowID]
	return w, ok
}

// WorkflowIDsForEvent returns the workflow ids indexed under one event type
func (e *Engine) WorkflowIDsForEvent(eventType events.Type) []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.eventIndex[eventType]...)
}

// indexLocked adds a workflow's event-driven triggers to the event index
// and its time triggers to the scheduler binding list.
func (e *Engine) indexLocked(w *workflow.Workflow) {
	indexed := make(map[events.Type]bool)
	for _, t := range w.Triggers {
		if trigger.IsTimeTrigger(t.Type) {
			e.timeTriggers = append(e.timeTriggers, timeTriggerBinding{workflowID: w.ID, trigger: t})
			continue
		}
		m, ok := e.triggers.Get(t.Type)
		if !ok {
			e.logger.Warn("no matcher for trigger type",
				logging.F("workflow_id", w.ID),
				logging.F("trigger_type", string(t.Type)))
			continue
		}
		eventType := m.EventType()
		if indexed[eventType] {
			continue
		}
		indexed[eventType] = true
		e.eventIndex[eventType] = append(e.eventIndex[eventType], w.ID)
	}
}

func (e *Engine) removeFromIndexLocked(workflowID string) {
	for eventType, ids := range e.eventIndex {
		kept := ids[:0]
		for _, id := range ids {
			if id != workflowID {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(e.eventIndex, eventType)
		} else {
			e.eventIndex[eventType] = kept
		}
	}

	kept := e.timeTriggers[:0]
	for _, binding := range e.timeTriggers {
		if binding.workflowID != workflowID {
			kept = append(kept, binding)
		}
	}
	e.timeTriggers = kept
}

// timeTriggerSnapshot returns the registered time triggers for the
// scheduler's poll loop
func (e *Engine) timeTriggerSnapshot() []timeTriggerBinding {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]timeTriggerBinding(nil), e.timeTriggers...)
}

// HandleEvent checks an incoming event against every indexed workflow and
// fires an independent execution for each workflow whose first matching
// trigger accepts the event.
func (e *Engine) HandleEvent(ctx context.Context, event events.Event) {
	e.mu.RLock()
	candidateIDs := append([]string(nil), e.eventIndex[event.Type]...)
	e.mu.RUnlock()

	for _, workflowID := range candidateIDs {
		e.mu.RLock()
		w, ok := e.workflows[workflowID]
		e.mu.RUnlock()
		if !ok || !w.Enabled {
			continue
		}

		for _, t := range w.Triggers {
			if trigger.IsTimeTrigger(t.Type) {
				continue
			}
			if !e.triggers.Matches(t, event.Type, event.Data) {
				continue
			}

			data := e.triggerData(t, event.Data)
			e.logger.Info("workflow triggered",
				logging.F("workflow_id", w.ID),
				logging.F("workflow_name", w.Name),
				logging.F("trigger_type", string(t.Type)))
			go e.run(ctx, w, t, data)
			break
		}
	}
}

// triggerData builds the per-execution trigger data bag: a copy of the
// event payload, extended with chat-command arguments where applicable.
func (e *Engine) triggerData(t *workflow.Trigger, eventData map[string]interface{}) map[string]interface{} {
	data := make(map[string]interface{}, len(eventData)+2)
	for key, value := range eventData {
		data[key] = value
	}
	if t.Type == workflow.TriggerChatCommand {
		for key, value := range e.triggers.ExtractCommandArgs(t, eventData) {
			data[key] = value
		}
	}
	return data
}

// ExecuteWorkflow runs one registered workflow synchronously with the given
// trigger data and returns its execution context. Used for manual firing
// and by tests; event-driven firings go through HandleEvent.
func (e *Engine) ExecuteWorkflow(ctx context.Context, workflowID string, triggerData map[string]interface{}) (*workflow.ExecutionContext, error) {
	e.mu.RLock()
	w, ok := e.workflows[workflowID]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("workflow %q is not registered", workflowID)
	}
	return e.run(ctx, w, nil, triggerData), nil
}

// run executes one workflow from its entry node and persists the outcome
func (e *Engine) run(ctx context.Context, w *workflow.Workflow, t *workflow.Trigger, triggerData map[string]interface{}) *workflow.ExecutionContext {
	if e.sem != nil {
		e.sem <- struct{}{}
		defer func() { <-e.sem }()
	}

	execCtx := workflow.NewExecutionContext(w.ID, triggerData)
	execCtx.MarkRunning()
	e.emit(ctx, events.WorkflowStarted, w, execCtx)

	err := e.executeNode(ctx, w, w.Nodes[w.EntryNodeID], execCtx)
	if err != nil {
		execCtx.MarkFailed(err)
		e.logger.Error("workflow execution failed",
			logging.F("workflow_id", w.ID),
			logging.F("execution_id", execCtx.ExecutionID),
			logging.F("error", err))
		e.emit(ctx, events.WorkflowFailed, w, execCtx)
	} else {
		execCtx.MarkCompleted()
		e.logger.Info("workflow execution completed",
			logging.F("workflow_id", w.ID),
			logging.F("execution_id", execCtx.ExecutionID),
			logging.F("duration_ms", execCtx.Duration().Milliseconds()))
		e.emit(ctx, events.WorkflowCompleted, w, execCtx)
	}

	e.logExecution(w, t, execCtx)
	return execCtx
}

// executeNode runs one node and then its successors in listed order. A
// disabled node is a no-op but its successors still execute; a conditional
// action that evaluates false skips them; an action error aborts the run.
func (e *Engine) executeNode(ctx context.Context, w *workflow.Workflow, node *workflow.Node, execCtx *workflow.ExecutionContext) error {
	execCtx.RecordNode(node.ID)

	if node.Action != nil && node.Action.Enabled {
		result, err := e.actions.Execute(ctx, node.Action, execCtx)
		if err != nil {
			return fmt.Errorf("node %q: %w", node.ID, err)
		}
		if node.Action.Type == workflow.ActionConditional {
			if passed, ok := result.(bool); ok && !passed {
				return nil
			}
		}
	} else {
		e.logger.Debug("skipping disabled node",
			logging.F("workflow_id", w.ID),
			logging.F("node_id", node.ID))
	}

	for _, nextID := range node.NextNodes {
		next, ok := w.Nodes[nextID]
		if !ok {
			// Validation guarantees edges resolve; a miss here means the
			// workflow was mutated after registration.
			return fmt.Errorf("node %q references unknown node %q", node.ID, nextID)
		}
		if err := e.executeNode(ctx, w, next, execCtx); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, eventType events.Type, w *workflow.Workflow, execCtx *workflow.ExecutionContext) {
	if e.bus == nil {
		return
	}
	e.bus.Emit(ctx, events.Event{
		Type: eventType,
		Data: map[string]interface{}{
			"workflow_id":   w.ID,
			"workflow_name": w.Name,
			"execution_id":  execCtx.ExecutionID,
			"status":        string(execCtx.Status),
		},
	})
}

func (e *Engine) logExecution(w *workflow.Workflow, t *workflow.Trigger, execCtx *workflow.ExecutionContext) {
	if e.store == nil {
		return
	}

	log := storage.ExecutionLog{
		ID:            execCtx.ExecutionID,
		WorkflowID:    w.ID,
		TriggerData:   execCtx.TriggerData,
		Status:        string(execCtx.Status),
		ExecutionPath: execCtx.ExecutionPath,
		Variables:     execCtx.Variables,
		Error:         execCtx.Error,
		StartTime:     execCtx.StartTime,
		EndTime:       execCtx.EndTime,
	}
	if t != nil {
		log.TriggerID = t.ID
		log.TriggerType = string(t.Type)
	}

	if _, err := e.store.ExecutionStore().LogExecution(log); err != nil {
		e.logger.Error("failed to persist execution log",
			logging.F("workflow_id", w.ID),
			logging.F("execution_id", execCtx.ExecutionID),
			logging.F("error", err))
	}
}

// LoadStoredWorkflows registers every enabled workflow from storage. It
// returns how many were registered; individual registration failures are
// logged and skipped.
func (e *Engine) LoadStoredWorkflows() (int, error) {
	if e.store == nil {
		return 0, nil
	}

	workflows, err := e.store.WorkflowStore().GetAllWorkflows(true)
	if err != nil {
		return 0, fmt.Errorf("failed to load workflows from storage: %w", err)
	}

	registered := 0
	for _, w := range workflows {
		if err := e.RegisterWorkflow(w); err != nil {
			e.logger.Error("skipping stored workflow",
				logging.F("workflow_id", w.ID),
				logging.F("error", err))
			continue
		}
		registered++
	}
	return registered, nil
}

// LoadWorkflowDir loads workflow definition files from a directory,
// persists them and registers the enabled ones. It returns how many were
// registered; files that fail to parse or register are logged and skipped.
func (e *Engine) LoadWorkflowDir(dir string) (int, error) {
	workflows, errs := workflow.LoadWorkflowDir(dir)
	for _, err := range errs {
		e.logger.Error("skipping workflow file", logging.F("error", err))
	}

	registered := 0
	for _, w := range workflows {
		if err := e.RegisterWorkflow(w); err != nil {
			e.logger.Error("skipping workflow",
				logging.F("workflow_id", w.ID),
				logging.F("error", err))
			continue
		}
		if e.store != nil {
			if err := e.store.WorkflowStore().SaveWorkflow(w); err != nil {
				e.logger.Error("failed to persist workflow",
					logging.F("workflow_id", w.ID),
					logging.F("error", err))
			}
		}
		registered++
	}
	return registered, nil
}
