package stager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/chenjicheng/upmc-release/internal/logger"
)

// gitDirName is the version-control metadata entry preserved during replacement.
const gitDirName = ".git"

// ErrChannelNotFound indicates the destination is not a valid working copy of
// the release channel. It is reported before any deletion happens.
var ErrChannelNotFound = errors.New("release channel working copy not found")

// Stage replaces the full contents of destRoot with a fresh copy of
// sourceTree. Every entry under destRoot except its git metadata is deleted
// first; the channel's content is always fully derived from the source tree,
// no merge or patch logic exists.
func Stage(ctx context.Context, sourceTree, destRoot string) error {
	ctx = logger.WithName(ctx, "stager")

	if err := checkChannel(destRoot); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Replacing channel contents",
		"source", sourceTree, "destination", destRoot)

	if err := clearChannel(destRoot); err != nil {
		return err
	}

	options := cp.Options{
		Skip: func(_ os.FileInfo, src, _ string) (bool, error) {
			return filepath.Base(src) == gitDirName, nil
		},
	}

	if err := cp.Copy(sourceTree, destRoot, options); err != nil {
		return fmt.Errorf("copy source tree: %w", err)
	}

	return nil
}

// checkChannel verifies destRoot exists and is a git working copy.
func checkChannel(destRoot string) error {
	info, err := os.Stat(destRoot)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrChannelNotFound, destRoot)
	} else if err != nil {
		return fmt.Errorf("stat channel: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrChannelNotFound, destRoot)
	}

	if _, err = os.Stat(filepath.Join(destRoot, gitDirName)); err != nil {
		return fmt.Errorf("%w: %s has no git metadata", ErrChannelNotFound, destRoot)
	}

	return nil
}

// clearChannel deletes every entry under destRoot except the git metadata.
func clearChannel(destRoot string) error {
	entries, err := os.ReadDir(destRoot)
	if err != nil {
		return fmt.Errorf("read channel: %w", err)
	}

	for _, entry := range entries {
		if entry.Name() == gitDirName {
			continue
		}

		if err = os.RemoveAll(filepath.Join(destRoot, entry.Name())); err != nil {
			return fmt.Errorf("clear channel entry %s: %w", entry.Name(), err)
		}
	}

	return nil
}
