// Package gitrunner shells out to the git client installed on the operator's
// machine. It exposes a thin Runner over `git` plus the porcelain helpers the
// release pipeline needs (status, add, commit, push, checkout, merge,
// current branch), all synchronous and context-bound.
package gitrunner
