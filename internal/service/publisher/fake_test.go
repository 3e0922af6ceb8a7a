package publisher

import (
	"context"
	"fmt"
	"strings"
)

// fakeGit is a scripted stand-in for the git client. It records every call
// and fails on the operations listed in failOn.
type fakeGit struct {
	branch string
	dirty  bool
	calls  []string
	failOn map[string]error
}

// fail returns the scripted error for the operation, if any.
func (f *fakeGit) fail(op string) error {
	if f.failOn == nil {
		return nil
	}

	return f.failOn[op]
}

func (f *fakeGit) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

func (f *fakeGit) Status(context.Context) ([]string, error) {
	f.record("status")

	if err := f.fail("status"); err != nil {
		return nil, err
	}

	if f.dirty {
		return []string{" M server.json"}, nil
	}

	return nil, nil
}

func (f *fakeGit) AddAll(context.Context) error {
	f.record("add")
	return f.fail("add")
}

func (f *fakeGit) Commit(_ context.Context, message string) error {
	f.record("commit %s@%s", message, f.branch)

	if err := f.fail("commit"); err != nil {
		return err
	}

	f.dirty = false

	return nil
}

func (f *fakeGit) Push(_ context.Context, remote, branch string) error {
	f.record("push %s %s", remote, branch)
	return f.fail("push")
}

func (f *fakeGit) Checkout(_ context.Context, branch string) error {
	f.record("checkout %s", branch)

	if err := f.fail("checkout"); err != nil {
		return err
	}

	f.branch = branch

	return nil
}

func (f *fakeGit) Merge(_ context.Context, branch, message string) error {
	f.record("merge %s: %s", branch, message)
	return f.fail("merge")
}

func (f *fakeGit) CurrentBranch(context.Context) (string, error) {
	return f.branch, nil
}

// called reports whether any recorded call starts with the prefix.
func (f *fakeGit) called(prefix string) bool {
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}

	return false
}
