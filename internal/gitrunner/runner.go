package gitrunner

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes git commands in a fixed working directory.
type Runner struct {
	gitPath string
	dir     string
}

// ExecError carries the failed git invocation together with its stderr,
// so the operator sees what git itself reported.
type ExecError struct {
	Args   []string
	Stderr string
	Err    error
}

// Error renders the underlying error followed by git's stderr.
func (e *ExecError) Error() string {
	return fmt.Sprintf("git %s: %v: %s", strings.Join(e.Args, " "), e.Err, strings.TrimSpace(e.Stderr))
}

// Unwrap exposes the underlying exec error.
func (e *ExecError) Unwrap() error {
	return e.Err
}

// New returns a Runner for the provided working directory.
func New(dir string) (*Runner, error) {
	p, err := exec.LookPath("git")
	if err != nil {
		return nil, fmt.Errorf("no 'git' program on path: %w", err)
	}

	return &Runner{
		gitPath: p,
		dir:     dir,
	}, nil
}

// Run runs a git command, omitting the 'git' part, and returns its stdout.
func (r *Runner) Run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, r.gitPath, args...)
	cmd.Dir = r.dir
	cmd.Env = os.Environ()

	cmdStdout := &bytes.Buffer{}
	cmdStderr := &bytes.Buffer{}
	cmd.Stdout = cmdStdout
	cmd.Stderr = cmdStderr

	if err := cmd.Run(); err != nil {
		return "", &ExecError{
			Args:   args,
			Stderr: cmdStderr.String(),
			Err:    err,
		}
	}

	return cmdStdout.String(), nil
}
