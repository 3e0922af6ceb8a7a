package gitrunner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExecError_Message includes the git arguments and stderr for the operator.
func TestExecError_Message(t *testing.T) {
	t.Parallel()

	inner := errors.New("exit status 1")
	err := &ExecError{
		Args:   []string{"push", "origin", "main"},
		Stderr: "rejected: non-fast-forward\n",
		Err:    inner,
	}

	require.Contains(t, err.Error(), "git push origin main")
	require.Contains(t, err.Error(), "non-fast-forward")
	require.ErrorIs(t, err, inner)
}

// TestNew_RequiresGit fails fast when no git binary is resolvable.
func TestNew_RequiresGit(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	_, err := New(".")
	require.Error(t, err)
}
