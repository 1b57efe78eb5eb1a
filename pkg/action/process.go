package action

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/justedave0/obscopilot-sub001/pkg/logging"
	"github.com/justedave0/obscopilot-sub001/pkg/workflow"
)

// processGracePeriod is how long a timed-out process gets to exit after an
// interrupt before it is killed.
const processGracePeriod = 5 * time.Second

// runProcessExecutor runs an external command. On deadline the process is
// interrupted first and killed only if it does not exit within the grace
// period.
type runProcessExecutor struct {
	deps Deps
}

func newRunProcessExecutor(deps Deps) *runProcessExecutor {
	return &runProcessExecutor{deps: deps}
}

func (e *runProcessExecutor) Type() workflow.ActionType {
	return workflow.ActionRunProcess
}

func (e *runProcessExecutor) Execute(ctx context.Context, action *workflow.Action, execCtx *workflow.ExecutionContext) (interface{}, error) {
	command := resolveConfigString(e.deps.Resolver, action.Config, "command", execCtx)
	if command == "" {
		return nil, fmt.Errorf("run process action %q resolved to an empty command", action.Name)
	}

	var args []string
	if rawArgs, ok := action.Config["args"].([]interface{}); ok {
		for _, raw := range rawArgs {
			if s, ok := raw.(string); ok {
				args = append(args, e.deps.Resolver.Resolve(s, execCtx.Scope()))
			}
		}
	}

	cmd := exec.Command(command, args...)
	if dir := resolveConfigString(e.deps.Resolver, action.Config, "working_dir", execCtx); dir != "" {
		cmd.Dir = dir
	}
	if env := configMap(action.Config, "env"); len(env) > 0 {
		cmd.Env = os.Environ()
		for key, value := range env {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%v", key, value))
		}
	}

	var stdout, stderr bytes.Buffer
	if configBool(action.Config, "capture_output", true) {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start process: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	var waitErr error
	timedOut := false
	select {
	case waitErr = <-done:
	case <-ctx.Done():
		timedOut = true
		waitErr = e.terminate(cmd, done)
	}

	exitCode := 0
	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = -1
		}
	}

	result := map[string]interface{}{
		"exit_code": exitCode,
		"stdout":    stdout.String(),
		"stderr":    stderr.String(),
		"timed_out": timedOut,
	}
	execCtx.SetVariable("process_result_"+action.ID, result)

	if timedOut {
		return result, fmt.Errorf("process timed out: %s", command)
	}
	if waitErr != nil {
		return result, fmt.Errorf("process exited with code %d", exitCode)
	}
	return result, nil
}

// terminate interrupts the process and escalates to a kill after the grace
// period.
func (e *runProcessExecutor) terminate(cmd *exec.Cmd, done chan error) error {
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		e.deps.Logger.Warn("failed to interrupt process, killing it",
			logging.F("pid", cmd.Process.Pid),
			logging.F("error", err))
		cmd.Process.Kill()
		return <-done
	}

	timer := time.NewTimer(processGracePeriod)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		cmd.Process.Kill()
		return <-done
	}
}
