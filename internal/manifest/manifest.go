package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	// DefaultFileMode is used when persisting manifest files.
	DefaultFileMode os.FileMode = 0o644
)

var (
	// ErrFieldNotFound is returned when a targeted update cannot locate its field.
	// Callers treat it as a warning: the update is skipped, nothing is invented.
	ErrFieldNotFound = errors.New("field not found")

	// errNotScalar is returned when the addressed field holds an object or array.
	errNotScalar = errors.New("field is not a scalar value")

	// utf8BOM is stripped on load and never written back.
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
)

// Document is a JSON manifest held as an opaque text buffer.
//
// Updates are targeted span replacements: only the bytes of the addressed
// value change, every other byte of the document (key order, whitespace,
// fields owned by collaborators) survives untouched. The document is always
// persisted as UTF-8 without a byte order mark.
type Document struct {
	path string
	data []byte
}

// Load reads a manifest document from disk, stripping a UTF-8 BOM if present.
func Load(path string) (*Document, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return &Document{
		path: path,
		data: bytes.TrimPrefix(contents, utf8BOM),
	}, nil
}

// Bytes returns the current document content.
func (d *Document) Bytes() []byte {
	return d.data
}

// Save writes the full document back to its original path, overwriting the
// previous content. Output encoding is fixed: UTF-8, no BOM.
func (d *Document) Save() error {
	if err := os.WriteFile(d.path, d.data, DefaultFileMode); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	return nil
}

// SetString replaces the scalar string value at the dotted path,
// e.g. "updater.sha256". Re-running with the same value is byte-identical.
func (d *Document) SetString(path, value string) error {
	return d.setRaw(path, strconv.Quote(value))
}

// SetNumber replaces the scalar numeric value at the dotted path.
func (d *Document) SetNumber(path string, value int64) error {
	return d.setRaw(path, strconv.FormatInt(value, 10))
}

// GetString returns the scalar value at the dotted path, unquoted when the
// underlying JSON value is a string.
func (d *Document) GetString(path string) (string, error) {
	start, end, err := findSpan(d.data, strings.Split(path, "."))
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}

	raw := string(d.data[start:end])
	if len(raw) >= 2 && raw[0] == '"' {
		unquoted, uerr := strconv.Unquote(raw)
		if uerr != nil {
			return "", fmt.Errorf("%s: decode value: %w", path, uerr)
		}

		return unquoted, nil
	}

	return raw, nil
}

// setRaw splices the replacement token over the located value span and
// verifies the buffer still parses as JSON afterwards.
func (d *Document) setRaw(path, token string) error {
	start, end, err := findSpan(d.data, strings.Split(path, "."))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if string(d.data[start:end]) == token {
		return nil
	}

	updated := make([]byte, 0, len(d.data)-(end-start)+len(token))
	updated = append(updated, d.data[:start]...)
	updated = append(updated, token...)
	updated = append(updated, d.data[end:]...)

	if !json.Valid(updated) {
		return fmt.Errorf("%s: update would corrupt manifest", path)
	}

	d.data = updated

	return nil
}

// findSpan locates the [start, end) byte span of the scalar value addressed
// by the key path, scanning the buffer without building an object graph.
func findSpan(data []byte, keys []string) (int, int, error) {
	pos := skipSpace(data, 0)

	return findInObject(data, pos, keys)
}

// findInObject expects an object at pos and resolves the key path inside it.
func findInObject(data []byte, pos int, keys []string) (int, int, error) {
	if pos >= len(data) || data[pos] != '{' {
		return 0, 0, ErrFieldNotFound
	}

	pos++

	for {
		pos = skipSpace(data, pos)
		if pos >= len(data) || data[pos] == '}' {
			return 0, 0, ErrFieldNotFound
		}

		if data[pos] != '"' {
			return 0, 0, ErrFieldNotFound
		}

		key, next, ok := scanString(data, pos)
		if !ok {
			return 0, 0, ErrFieldNotFound
		}

		pos = skipSpace(data, next)
		if pos >= len(data) || data[pos] != ':' {
			return 0, 0, ErrFieldNotFound
		}

		pos = skipSpace(data, pos+1)
		if pos >= len(data) {
			return 0, 0, ErrFieldNotFound
		}

		if key == keys[0] {
			if len(keys) == 1 {
				end, ok := scanScalar(data, pos)
				if !ok {
					return 0, 0, errNotScalar
				}

				return pos, end, nil
			}

			if data[pos] != '{' {
				return 0, 0, ErrFieldNotFound
			}

			return findInObject(data, pos, keys[1:])
		}

		end, ok := skipValue(data, pos)
		if !ok {
			return 0, 0, ErrFieldNotFound
		}

		pos = skipSpace(data, end)
		if pos < len(data) && data[pos] == ',' {
			pos++
			continue
		}

		return 0, 0, ErrFieldNotFound
	}
}

// skipSpace advances past JSON whitespace.
func skipSpace(data []byte, pos int) int {
	for pos < len(data) {
		switch data[pos] {
		case ' ', '\t', '\r', '\n':
			pos++
		default:
			return pos
		}
	}

	return pos
}

// scanString reads a quoted string starting at pos and returns its raw inner
// content and the index just past the closing quote.
func scanString(data []byte, pos int) (string, int, bool) {
	if pos >= len(data) || data[pos] != '"' {
		return "", 0, false
	}

	i := pos + 1
	for i < len(data) {
		switch data[i] {
		case '\\':
			i += 2
		case '"':
			return string(data[pos+1 : i]), i + 1, true
		default:
			i++
		}
	}

	return "", 0, false
}

// scanScalar returns the end of a scalar value (string, number, bool, null)
// starting at pos. Objects and arrays are rejected.
func scanScalar(data []byte, pos int) (int, bool) {
	switch data[pos] {
	case '{', '[':
		return 0, false
	case '"':
		_, end, ok := scanString(data, pos)
		return end, ok
	}

	end := pos
	for end < len(data) && !isValueTerminator(data[end]) {
		end++
	}

	if end == pos {
		return 0, false
	}

	return end, true
}

// skipValue returns the index just past any JSON value starting at pos.
func skipValue(data []byte, pos int) (int, bool) {
	switch data[pos] {
	case '"':
		_, end, ok := scanString(data, pos)
		return end, ok
	case '{', '[':
		return skipComposite(data, pos)
	default:
		return scanScalar(data, pos)
	}
}

// skipComposite skips a balanced object or array, honouring quoted strings.
func skipComposite(data []byte, pos int) (int, bool) {
	depth := 0

	for pos < len(data) {
		switch data[pos] {
		case '"':
			_, end, ok := scanString(data, pos)
			if !ok {
				return 0, false
			}

			pos = end
		case '{', '[':
			depth++
			pos++
		case '}', ']':
			depth--
			pos++

			if depth == 0 {
				return pos, true
			}
		default:
			pos++
		}
	}

	return 0, false
}

// isValueTerminator reports whether the byte ends a bare scalar token.
func isValueTerminator(b byte) bool {
	switch b {
	case ',', '}', ']', ' ', '\t', '\r', '\n':
		return true
	}

	return false
}
