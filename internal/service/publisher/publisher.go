package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/chenjicheng/upmc-release/internal/gitrunner"
	"github.com/chenjicheng/upmc-release/internal/logger"
)

// Result reports what a publish attempt did.
type Result int

const (
	// NoChanges means the working tree matched the last commit, so no commit
	// or push was performed. This is a success, not an error.
	NoChanges Result = iota
	// Published means a commit was created and pushed to the remote.
	Published
)

// String renders the result for logs.
func (r Result) String() string {
	if r == Published {
		return "published"
	}

	return "no changes"
}

var (
	// ErrPushFailure indicates the remote rejected the push. The local commit
	// is kept; operator intervention is required.
	ErrPushFailure = errors.New("push rejected by remote")

	// ErrMergeConflict indicates the merge could not complete automatically.
	ErrMergeConflict = errors.New("merge conflict")
)

// Publish commits and pushes the pending changes of a working copy to its
// remote. A clean tree short-circuits to NoChanges: no commit, no push, no
// error, so empty commits never accumulate on repeated pipeline runs.
func Publish(ctx context.Context, git gitrunner.Client, remote, message string) (Result, error) {
	ctx = logger.WithName(ctx, "publisher")

	changes, err := git.Status(ctx)
	if err != nil {
		return NoChanges, fmt.Errorf("inspect working tree: %w", err)
	}

	if len(changes) == 0 {
		logger.Info(ctx, "Working tree matches the last commit, nothing to publish")
		return NoChanges, nil
	}

	logger.InfoKV(ctx, "Committing pending changes", "entries", len(changes))

	if err = git.AddAll(ctx); err != nil {
		return NoChanges, fmt.Errorf("stage changes: %w", err)
	}

	if err = git.Commit(ctx, message); err != nil {
		return NoChanges, fmt.Errorf("commit changes: %w", err)
	}

	branch, err := git.CurrentBranch(ctx)
	if err != nil {
		return NoChanges, fmt.Errorf("detect branch: %w", err)
	}

	if err = git.Push(ctx, remote, branch); err != nil {
		// The local commit is intentionally kept.
		return NoChanges, fmt.Errorf("%w: %v", ErrPushFailure, err)
	}

	logger.InfoKV(ctx, "Pushed release", "remote", remote, "branch", branch)

	return Published, nil
}
