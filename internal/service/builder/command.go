package builder

import (
	"bytes"
	"context"
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/Masterminds/semver/v3"

	"github.com/chenjicheng/upmc-release/internal/logger"
	"github.com/chenjicheng/upmc-release/internal/manifest"

	// Ensure SHA256 is available for artifact digests.
	_ "crypto/sha256"
)

// DefaultChecksumFunction is used to digest the built artifact.
const DefaultChecksumFunction crypto.Hash = crypto.SHA256

// artifactFileMode is applied to the publish-facing copy of the artifact.
const artifactFileMode os.FileMode = 0o755

var (
	// ErrBuildFailure indicates the external toolchain exited non-zero.
	ErrBuildFailure = errors.New("build toolchain failed")

	// ErrArtifactNotFound indicates a zero exit code but no artifact at the
	// expected path: a toolchain contract violation, distinct from ErrBuildFailure.
	ErrArtifactNotFound = errors.New("artifact not found after successful build")

	errNoBuildCommand  = errors.New("no build command configured")
	errHashUnavailable = errors.New("hash function unavailable")
)

// Options are inputs accepted by the builder entry point.
type Options struct {
	// SourceDir is where the build toolchain is invoked.
	SourceDir string
	// Command is the external toolchain invocation, argv style.
	Command []string
	// ArtifactPath is the toolchain-defined output, relative to SourceDir.
	ArtifactPath string
	// VersionFile optionally names a metadata file in SourceDir whose
	// [package] section declares the artifact version.
	VersionFile string
	// PublishPath is the fixed publish-facing location the artifact is copied to.
	PublishPath string
	// PreviousVersion is the version currently recorded in the manifest,
	// used only to warn about downgrades.
	PreviousVersion string
}

// Artifact describes the built binary: where it was published, its byte
// length, its content digest and its declared version. It is recomputed on
// every build and never compared against a prior value.
type Artifact struct {
	Path    string
	Size    int64
	SHA256  string
	Version string
}

// Run invokes the external build toolchain, locates and digests the produced
// binary, and copies it to the publish-facing location.
func Run(ctx context.Context, opts *Options) (*Artifact, error) {
	ctx = logger.WithName(ctx, "builder")

	if len(opts.Command) == 0 {
		return nil, errNoBuildCommand
	}

	if err := runToolchain(ctx, opts); err != nil {
		return nil, err
	}

	artifactPath := filepath.Join(opts.SourceDir, opts.ArtifactPath)

	info, err := os.Stat(artifactPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, artifactPath)
	} else if err != nil {
		return nil, fmt.Errorf("stat artifact: %w", err)
	}

	digest, err := fileChecksum(artifactPath)
	if err != nil {
		return nil, err
	}

	declaredVersion := resolveVersion(ctx, opts)

	if err = copyArtifact(artifactPath, opts.PublishPath); err != nil {
		return nil, err
	}

	artifact := &Artifact{
		Path:    opts.PublishPath,
		Size:    info.Size(),
		SHA256:  digest,
		Version: declaredVersion,
	}

	logger.InfoKV(ctx, "Artifact built",
		"path", artifact.Path,
		"size", artifact.Size,
		"sha256", artifact.SHA256,
		"version", artifact.Version)

	return artifact, nil
}

// runToolchain blocks until the external build command exits.
func runToolchain(ctx context.Context, opts *Options) error {
	logger.InfoKV(ctx, "Invoking build toolchain",
		"command", opts.Command, "dir", opts.SourceDir)

	cmd := exec.CommandContext(ctx, opts.Command[0], opts.Command[1:]...) //nolint:gosec // Command comes from the operator's own config.
	cmd.Dir = opts.SourceDir

	cmdStderr := &bytes.Buffer{}
	cmd.Stdout = io.Discard
	cmd.Stderr = cmdStderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %v: %s", ErrBuildFailure, err, cmdStderr.String())
	}

	return nil
}

// fileChecksum streams the file through DefaultChecksumFunction and returns
// the lowercase hex digest. Recomputed on every run, never cached.
func fileChecksum(path string) (string, error) {
	if !DefaultChecksumFunction.Available() {
		return "", fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("open artifact: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = file.Close()
	}()

	hasher := DefaultChecksumFunction.New()
	if _, err = io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("calculate checksum: %w", err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// resolveVersion reads the artifact's declared version from the source
// metadata file and warns when it would move the manifest backwards.
// Failures here never abort the build; the version just stays unreported.
func resolveVersion(ctx context.Context, opts *Options) string {
	if opts.VersionFile == "" {
		return ""
	}

	meta, err := manifest.LoadPack(filepath.Join(opts.SourceDir, opts.VersionFile))
	if err != nil {
		logger.WarnKV(ctx, "Unable to read version metadata", "error", err)
		return ""
	}

	declared, err := meta.Get("package", "version")
	if err != nil {
		logger.WarnKV(ctx, "Version metadata has no package version", "error", err)
		return ""
	}

	parsed, err := semver.NewVersion(declared)
	if err != nil {
		logger.WarnKV(ctx, "Declared version is not semantic", "version", declared, "error", err)
		return declared
	}

	if prev, perr := semver.NewVersion(opts.PreviousVersion); perr == nil && parsed.LessThan(prev) {
		logger.WarnKV(ctx, "Artifact version is older than the published one",
			"declared", parsed.String(), "published", prev.String())
	}

	return parsed.String()
}

// copyArtifact copies the built binary to the publish-facing location.
func copyArtifact(src, dst string) error {
	if dst == "" {
		return nil
	}

	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = in.Close()
	}()

	if err = os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create publish directory: %w", err)
	}

	out, err := os.OpenFile(filepath.Clean(dst), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, artifactFileMode)
	if err != nil {
		return fmt.Errorf("create published artifact: %w", err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("copy artifact: %w", err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("finish published artifact: %w", err)
	}

	return nil
}
