// Package manifest performs targeted, format-preserving updates on the
// release manifest (server.json) and the packwiz pack file (pack.toml).
//
// Both files are modeled as opaque text buffers with addressable field spans
// rather than parsed object graphs: an update replaces only the bytes of the
// addressed value, so comments, key order and surrounding formatting survive
// unchanged. Missing fields are reported with ErrFieldNotFound and skipped;
// the store never invents new structure. Files are always written back as
// UTF-8 without a byte order mark.
package manifest
