// Package stager mirrors the dist source tree into the release channel's
// working copy with full-replace semantics: everything except the channel's
// git metadata is deleted and recreated from the source tree on every run.
package stager
