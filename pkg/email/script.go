package email

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ScriptChecker runs the agent's monitor script as a subprocess.
type ScriptChecker struct {
	Interpreter string
	Script      string
	Args        []string
	Dir         string
	Timeout     time.Duration
	Now         func() time.Time
}

// NewScriptChecker runs "interpreter script account password check" in dir.
func NewScriptChecker(interpreter, script, dir, account, password string, timeout time.Duration) *ScriptChecker {
	return &ScriptChecker{
		Interpreter: interpreter,
		Script:      script,
		Args:        []string{account, password, "check"},
		Dir:         dir,
		Timeout:     timeout,
		Now:         time.Now,
	}
}

func (c *ScriptChecker) Check(ctx context.Context) Result {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Interpreter, append([]string{c.Script}, c.Args...)...)
	cmd.Dir = c.Dir
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return timedOut(timeout, c.Now)
	}

	res := Result{
		Status:    StatusSuccess,
		Output:    strings.TrimSpace(stdout.String()),
		Error:     strings.TrimSpace(stderr.String()),
		CheckedAt: checkedAt(c.Now),
	}
	if err != nil {
		res.Status = StatusError
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			res.Output = ""
			res.Error = err.Error()
		}
	}
	return res
}
