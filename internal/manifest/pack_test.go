package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// samplePack is a realistic hand-edited pack.toml with comments and a second section.
const samplePack = `name = "UPMC"
author = "chenjicheng"
version = "1.0.0"
pack-format = "packwiz:1.1.0"

# Hand-tuned, do not reformat.
[versions]
fabric = "0.16.9"
minecraft = "1.21.1"

[index]
file = "index.toml"
hash-format = "sha256"
hash = "deadbeef"
`

// loadPack persists the sample and loads it back.
func loadPack(t *testing.T, contents string) *PackFile {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pack.toml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	pack, err := LoadPack(path)
	require.NoError(t, err)

	return pack
}

// TestPackFile_Set_PreservesEverythingElse replaces one value byte for byte.
func TestPackFile_Set_PreservesEverythingElse(t *testing.T) {
	t.Parallel()

	pack := loadPack(t, samplePack)
	require.NoError(t, pack.Set("versions", "minecraft", "1.21.11"))

	got := string(pack.Bytes())
	require.Contains(t, got, `minecraft = "1.21.11"`)
	require.Contains(t, got, `fabric = "0.16.9"`)
	require.Contains(t, got, "# Hand-tuned, do not reformat.")
	require.Contains(t, got, `hash = "deadbeef"`)
	require.Contains(t, got, `version = "1.0.0"`)
}

// TestPackFile_Set_Idempotent checks repeated updates are byte-identical.
func TestPackFile_Set_Idempotent(t *testing.T) {
	t.Parallel()

	pack := loadPack(t, samplePack)
	require.NoError(t, pack.Set("versions", "fabric", "0.18.4"))

	once := append([]byte(nil), pack.Bytes()...)
	require.NoError(t, pack.Set("versions", "fabric", "0.18.4"))
	require.Equal(t, once, pack.Bytes())
}

// TestPackFile_Set_SectionBoundary does not match keys from a later section.
func TestPackFile_Set_SectionBoundary(t *testing.T) {
	t.Parallel()

	pack := loadPack(t, samplePack)

	// "file" exists only under [index], not under [versions].
	err := pack.Set("versions", "file", "other.toml")
	require.ErrorIs(t, err, ErrFieldNotFound)
}

// TestPackFile_Get reads values out of the addressed section.
func TestPackFile_Get(t *testing.T) {
	t.Parallel()

	pack := loadPack(t, samplePack)

	got, err := pack.Get("versions", "minecraft")
	require.NoError(t, err)
	require.Equal(t, "1.21.1", got)

	got, err = pack.Get("index", "hash-format")
	require.NoError(t, err)
	require.Equal(t, "sha256", got)

	_, err = pack.Get("versions", "forge")
	require.ErrorIs(t, err, ErrFieldNotFound)
}

// TestPackFile_SaveRoundtrip persists the buffer unchanged apart from the update.
func TestPackFile_SaveRoundtrip(t *testing.T) {
	t.Parallel()

	pack := loadPack(t, samplePack)
	require.NoError(t, pack.Set("versions", "minecraft", "1.21.11"))
	require.NoError(t, pack.Save())

	reloaded, err := LoadPack(pack.path)
	require.NoError(t, err)
	require.Equal(t, pack.Bytes(), reloaded.Bytes())
}
