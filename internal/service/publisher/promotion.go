package publisher

import (
	"context"
	"fmt"

	"github.com/chenjicheng/upmc-release/internal/gitrunner"
	"github.com/chenjicheng/upmc-release/internal/logger"
)

// State tracks how far the branch promotion workflow progressed. Failures
// carry the reached state so the operator can judge whether the remote was
// already affected.
type State int

const (
	// StateClean is the starting state, before anything is committed.
	StateClean State = iota
	// StateCommitted means the working branch carries the release commit
	// (or was already clean and nothing needed committing).
	StateCommitted
	// StateMergedToMain means the working branch was merged into the primary
	// branch locally. Reversible with a manual reset.
	StateMergedToMain
	// StatePushed means the primary branch reached the remote. Not reversible.
	StatePushed
	// StateRestored means the original working branch is checked out again.
	StateRestored
)

// String renders the state for error messages and logs.
func (s State) String() string {
	switch s {
	case StateClean:
		return "Clean"
	case StateCommitted:
		return "Committed"
	case StateMergedToMain:
		return "MergedToMain"
	case StatePushed:
		return "Pushed"
	case StateRestored:
		return "Restored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// PromotionError is a promotion failure annotated with the state it happened in.
type PromotionError struct {
	State State
	Err   error
}

// Error names the reached state so the operator knows what already happened.
func (e *PromotionError) Error() string {
	return fmt.Sprintf("branch promotion failed in state %s: %v", e.State, e.Err)
}

// Unwrap exposes the underlying failure for errors.Is checks.
func (e *PromotionError) Unwrap() error {
	return e.Err
}

// PromotionOptions configure one promotion run.
type PromotionOptions struct {
	// MainBranch is the primary branch releases are promoted to.
	MainBranch string
	// Remote is the git remote the primary branch is pushed to.
	Remote string
	// Message is the operator-supplied commit message.
	Message string
	// Direct commits and pushes the current branch as-is, with no branch
	// switch and therefore no restoration step.
	Direct bool
}

// Promote runs the branch promotion workflow:
// Clean -> Committed -> MergedToMain -> Pushed -> Restored.
//
// Whatever transition fails, a best-effort checkout of the original working
// branch is attempted before the error is reported. That restoration cannot
// undo a completed merge or push; the returned PromotionError records the
// reached state so the operator can tell the difference.
func Promote(ctx context.Context, git gitrunner.Client, opts *PromotionOptions) (err error) {
	ctx = logger.WithName(ctx, "promotion")

	originalBranch, err := git.CurrentBranch(ctx)
	if err != nil {
		return fmt.Errorf("detect working branch: %w", err)
	}

	state := StateClean
	switchedAway := false

	// Restoration runs on every exit path, success or failure.
	defer func() {
		if !switchedAway {
			return
		}

		if restoreErr := git.Checkout(ctx, originalBranch); restoreErr != nil {
			logger.ErrorKV(ctx, "Unable to restore working branch",
				"branch", originalBranch, "error", restoreErr)
			if err == nil {
				err = &PromotionError{State: state, Err: restoreErr}
			}

			return
		}

		if err == nil {
			state = StateRestored
		}

		logger.InfoKV(ctx, "Working branch restored", "branch", originalBranch)
	}()

	changes, err := git.Status(ctx)
	if err != nil {
		return &PromotionError{State: state, Err: err}
	}

	if len(changes) > 0 {
		if err = git.AddAll(ctx); err != nil {
			return &PromotionError{State: state, Err: err}
		}

		if err = git.Commit(ctx, opts.Message); err != nil {
			return &PromotionError{State: state, Err: err}
		}

		logger.InfoKV(ctx, "Committed release on working branch", "branch", originalBranch)
	} else {
		logger.Info(ctx, "Working branch already clean, skipping commit")
	}

	state = StateCommitted

	if opts.Direct {
		if err = git.Push(ctx, opts.Remote, originalBranch); err != nil {
			return &PromotionError{State: state, Err: fmt.Errorf("%w: %v", ErrPushFailure, err)}
		}

		state = StatePushed
		logger.InfoKV(ctx, "Pushed working branch directly", "branch", originalBranch)

		return nil
	}

	if err = git.Checkout(ctx, opts.MainBranch); err != nil {
		return &PromotionError{State: state, Err: err}
	}

	switchedAway = true

	mergeMessage := fmt.Sprintf("Merge %s: %s", originalBranch, opts.Message)
	if err = git.Merge(ctx, originalBranch, mergeMessage); err != nil {
		return &PromotionError{State: state, Err: fmt.Errorf("%w: %v", ErrMergeConflict, err)}
	}

	state = StateMergedToMain
	logger.InfoKV(ctx, "Merged working branch into primary",
		"branch", originalBranch, "primary", opts.MainBranch)

	if err = git.Push(ctx, opts.Remote, opts.MainBranch); err != nil {
		return &PromotionError{State: state, Err: fmt.Errorf("%w: %v", ErrPushFailure, err)}
	}

	state = StatePushed
	logger.InfoKV(ctx, "Pushed primary branch", "primary", opts.MainBranch, "remote", opts.Remote)

	return nil
}
