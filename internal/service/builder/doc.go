// Package builder invokes the external build toolchain and turns its output
// into a described artifact: byte length, SHA-256 digest and declared version.
//
// A non-zero toolchain exit aborts before any metadata is produced. A zero
// exit without the expected binary is reported separately as a toolchain
// contract violation. The digest is streamed and recomputed on every run.
package builder
