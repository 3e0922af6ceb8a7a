// Package release orchestrates one pipeline invocation: resolve the target
// version pair, synchronize the manifest files, build and describe the
// artifact, then stage and publish through the configured channel.
//
// The pipeline is single-threaded and run-to-completion. No run state is
// persisted: every stage derives its output from the current on-disk and
// remote state, so re-running after a partial failure reproduces the same
// result instead of resuming.
package release
