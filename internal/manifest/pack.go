package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// PackFile is a packwiz pack.toml held as an opaque text buffer.
//
// pack.toml is hand-edited and partially owned by external tooling, so values
// are replaced in place with a section-aware line scan. The file is never
// round-tripped through a TOML serializer: the parser is used only to verify
// the buffer still decodes after an update.
type PackFile struct {
	path string
	data []byte
}

// LoadPack reads a pack file from disk, stripping a UTF-8 BOM if present.
func LoadPack(path string) (*PackFile, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read pack file: %w", err)
	}

	return &PackFile{
		path: path,
		data: bytes.TrimPrefix(contents, utf8BOM),
	}, nil
}

// Bytes returns the current file content.
func (p *PackFile) Bytes() []byte {
	return p.data
}

// Save writes the full buffer back to its original path as UTF-8 without a BOM.
func (p *PackFile) Save() error {
	if err := os.WriteFile(p.path, p.data, DefaultFileMode); err != nil {
		return fmt.Errorf("write pack file: %w", err)
	}

	return nil
}

// Get returns the quoted value of key inside the named section,
// e.g. Get("versions", "minecraft").
func (p *PackFile) Get(section, key string) (string, error) {
	start, end, err := p.valueSpan(section, key)
	if err != nil {
		return "", err
	}

	return string(p.data[start:end]), nil
}

// Set replaces the quoted value of key inside the named section, preserving
// the existing quote style and everything else in the file byte for byte.
// Re-running with the same value is byte-identical.
func (p *PackFile) Set(section, key, value string) error {
	start, end, err := p.valueSpan(section, key)
	if err != nil {
		return err
	}

	if string(p.data[start:end]) == value {
		return nil
	}

	updated := make([]byte, 0, len(p.data)-(end-start)+len(value))
	updated = append(updated, p.data[:start]...)
	updated = append(updated, value...)
	updated = append(updated, p.data[end:]...)

	// Parse only to verify; the serializer output is never persisted.
	var check map[string]any
	if err := toml.Unmarshal(updated, &check); err != nil {
		return fmt.Errorf("%s.%s: update would corrupt pack file: %w", section, key, err)
	}

	p.data = updated

	return nil
}

// valueSpan locates the [start, end) span of the quoted value for key within
// the section. The section ends at the next "[header]" line.
func (p *PackFile) valueSpan(section, key string) (int, int, error) {
	var (
		inSection bool
		offset    int
		header    = "[" + section + "]"
	)

	for _, line := range strings.SplitAfter(string(p.data), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case trimmed == header:
			inSection = true
		case inSection && strings.HasPrefix(trimmed, "["):
			return 0, 0, fmt.Errorf("%s.%s: %w", section, key, ErrFieldNotFound)
		case inSection:
			if start, end, ok := keyValueSpan(line, key); ok {
				return offset + start, offset + end, nil
			}
		}

		offset += len(line)
	}

	return 0, 0, fmt.Errorf("%s.%s: %w", section, key, ErrFieldNotFound)
}

// keyValueSpan matches a `key = "value"` line and returns the span of the
// value between its quotes, relative to the line start.
func keyValueSpan(line, key string) (int, int, bool) {
	indent := len(line) - len(strings.TrimLeft(line, " \t"))
	rest := line[indent:]

	if !strings.HasPrefix(rest, key) {
		return 0, 0, false
	}

	afterKey := rest[len(key):]
	trimmed := strings.TrimLeft(afterKey, " \t")
	if !strings.HasPrefix(trimmed, "=") {
		return 0, 0, false
	}

	valuePart := strings.TrimLeft(trimmed[1:], " \t")
	if valuePart == "" {
		return 0, 0, false
	}

	quote := valuePart[0]
	if quote != '"' && quote != '\'' {
		return 0, 0, false
	}

	closing := strings.IndexByte(valuePart[1:], quote)
	if closing < 0 {
		return 0, 0, false
	}

	start := len(line) - len(valuePart) + 1

	return start, start + closing, true
}
