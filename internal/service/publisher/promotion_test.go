package publisher

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// promote runs the workflow with standard options against the fake.
func promote(t *testing.T, git *fakeGit, direct bool) error {
	t.Helper()

	return Promote(context.Background(), git, &PromotionOptions{
		MainBranch: "main",
		Remote:     "origin",
		Message:    "bump to 1.21.11",
		Direct:     direct,
	})
}

// TestPromote_FullSequence walks a dirty working branch through the whole
// promotion: commit on dev, merge into main, push, restore dev.
func TestPromote_FullSequence(t *testing.T) {
	t.Parallel()

	git := &fakeGit{branch: "dev", dirty: true}

	require.NoError(t, promote(t, git, false))
	require.Equal(t, []string{
		"status",
		"add",
		"commit bump to 1.21.11@dev",
		"checkout main",
		"merge dev: Merge dev: bump to 1.21.11",
		"push origin main",
		"checkout dev",
	}, git.calls)
	require.Equal(t, "dev", git.branch)
}

// TestPromote_CleanTreeSkipsCommit proceeds straight to the merge.
func TestPromote_CleanTreeSkipsCommit(t *testing.T) {
	t.Parallel()

	git := &fakeGit{branch: "dev"}

	require.NoError(t, promote(t, git, false))
	require.False(t, git.called("commit"))
	require.True(t, git.called("merge dev"))
	require.Equal(t, "dev", git.branch)
}

// TestPromote_MergeConflict reports the Committed state and still restores
// the working branch before returning.
func TestPromote_MergeConflict(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		branch: "dev",
		dirty:  true,
		failOn: map[string]error{"merge": errors.New("CONFLICT (content)")},
	}

	err := promote(t, git, false)
	require.ErrorIs(t, err, ErrMergeConflict)

	var promotionErr *PromotionError
	require.ErrorAs(t, err, &promotionErr)
	require.Equal(t, StateCommitted, promotionErr.State)

	// Restoration was attempted and succeeded.
	require.True(t, git.called("checkout dev"))
	require.Equal(t, "dev", git.branch)
}

// TestPromote_PushFailure reports MergedToMain, telling the operator the
// merge is local only, and restores the working branch.
func TestPromote_PushFailure(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		branch: "dev",
		dirty:  true,
		failOn: map[string]error{"push": errors.New("non-fast-forward")},
	}

	err := promote(t, git, false)
	require.ErrorIs(t, err, ErrPushFailure)

	var promotionErr *PromotionError
	require.ErrorAs(t, err, &promotionErr)
	require.Equal(t, StateMergedToMain, promotionErr.State)
	require.Equal(t, "dev", git.branch)
}

// TestPromote_Direct commits and pushes the working branch without any
// branch switch.
func TestPromote_Direct(t *testing.T) {
	t.Parallel()

	git := &fakeGit{branch: "dev", dirty: true}

	require.NoError(t, promote(t, git, true))
	require.Equal(t, []string{
		"status",
		"add",
		"commit bump to 1.21.11@dev",
		"push origin dev",
	}, git.calls)
	require.Equal(t, "dev", git.branch)
}

// TestPromote_CommitFailure fails in the Clean state before any branch switch;
// no restoration is attempted because nothing was switched.
func TestPromote_CommitFailure(t *testing.T) {
	t.Parallel()

	git := &fakeGit{
		branch: "dev",
		dirty:  true,
		failOn: map[string]error{"commit": errors.New("hook rejected")},
	}

	err := promote(t, git, false)

	var promotionErr *PromotionError
	require.ErrorAs(t, err, &promotionErr)
	require.Equal(t, StateClean, promotionErr.State)
	require.False(t, git.called("checkout"))
}

// TestState_String covers the operator-facing state names.
func TestState_String(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Clean", StateClean.String())
	require.Equal(t, "Committed", StateCommitted.String())
	require.Equal(t, "MergedToMain", StateMergedToMain.String())
	require.Equal(t, "Pushed", StatePushed.String())
	require.Equal(t, "Restored", StateRestored.String())
}
