package gitrunner

import (
	"context"
	"strings"
)

// Client is the narrow set of version-control operations the release
// pipeline depends on. Services accept this interface so tests can
// substitute a command recorder for a real repository.
type Client interface {
	// Status returns the pending change-set, one porcelain line per entry.
	Status(ctx context.Context) ([]string, error)
	// AddAll stages every pending change in the working tree.
	AddAll(ctx context.Context) error
	// Commit records the staged changes with the provided message.
	Commit(ctx context.Context, message string) error
	// Push sends the branch (or the current branch when empty) to the remote.
	Push(ctx context.Context, remote, branch string) error
	// Checkout switches the working tree to the named branch.
	Checkout(ctx context.Context, branch string) error
	// Merge merges the named branch into the current one with the message.
	Merge(ctx context.Context, branch, message string) error
	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)
}

// Status returns the working tree's pending changes via `git status --porcelain`.
func (r *Runner) Status(ctx context.Context) ([]string, error) {
	out, err := r.Run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(out)
	if trimmed == "" {
		return nil, nil
	}

	return strings.Split(trimmed, "\n"), nil
}

// AddAll stages every change in the working tree.
func (r *Runner) AddAll(ctx context.Context) error {
	_, err := r.Run(ctx, "add", "--all")
	return err
}

// Commit records staged changes with the provided message.
func (r *Runner) Commit(ctx context.Context, message string) error {
	_, err := r.Run(ctx, "commit", "-m", message)
	return err
}

// Push sends the branch to the remote; an empty branch pushes the current one.
func (r *Runner) Push(ctx context.Context, remote, branch string) error {
	args := []string{"push", remote}
	if branch != "" {
		args = append(args, branch)
	}

	_, err := r.Run(ctx, args...)

	return err
}

// Checkout switches to the named branch.
func (r *Runner) Checkout(ctx context.Context, branch string) error {
	_, err := r.Run(ctx, "checkout", branch)
	return err
}

// Merge merges the named branch into the current one.
func (r *Runner) Merge(ctx context.Context, branch, message string) error {
	_, err := r.Run(ctx, "merge", branch, "-m", message)
	return err
}

// CurrentBranch returns the name of the checked-out branch.
func (r *Runner) CurrentBranch(ctx context.Context) (string, error) {
	out, err := r.Run(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(out), nil
}
