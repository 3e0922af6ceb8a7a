package release

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chenjicheng/upmc-release/internal/config"
	"github.com/chenjicheng/upmc-release/internal/fabricmeta"
	"github.com/chenjicheng/upmc-release/internal/gitrunner"
	"github.com/chenjicheng/upmc-release/internal/logger"
	"github.com/chenjicheng/upmc-release/internal/manifest"
	"github.com/chenjicheng/upmc-release/internal/service/builder"
	"github.com/chenjicheng/upmc-release/internal/service/publisher"
	"github.com/chenjicheng/upmc-release/internal/service/stager"
)

// ErrPrecondition indicates a missing manifest, pack file or build directory.
// It is checked before any mutation happens.
var ErrPrecondition = errors.New("precondition failed")

// Options select the stages of one pipeline invocation.
type Options struct {
	// ConfigPath is an optional path to the release settings YAML.
	ConfigPath string
	// MinecraftVersion is the explicit primary version override. Empty keeps
	// the currently recorded version.
	MinecraftVersion string
	// SkipResolve leaves the version pair untouched.
	SkipResolve bool
	// SkipBuild leaves the artifact and its manifest metadata untouched.
	SkipBuild bool
	// SkipPublish stops after the manifest updates.
	SkipPublish bool
	// Direct commits and pushes the current branch as-is during promotion.
	Direct bool
	// Message is the operator-supplied commit message. Empty synthesizes one
	// from the resolved version tag.
	Message string
}

// pipeline holds the state of a single run. Each stage recomputes its output
// from current inputs; nothing persists across invocations, so reruns are
// idempotent.
type pipeline struct {
	cfg  *config.Config
	opts *Options
	doc  *manifest.Document
	pack *manifest.PackFile
	spec fabricmeta.VersionSpec
}

// Run executes the selected pipeline stages in order:
// resolve version, update manifest, build, stage, publish.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "release")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	p, err := newPipeline(cfg, opts)
	if err != nil {
		return err
	}

	if !opts.SkipResolve {
		if err = p.resolveVersions(ctx); err != nil {
			return err
		}
	}

	if !opts.SkipBuild && len(cfg.BuildCommand) > 0 {
		if err = p.buildArtifact(ctx); err != nil {
			return err
		}
	}

	if opts.SkipPublish {
		logger.Info(ctx, "Publishing skipped")
		return nil
	}

	return p.publish(ctx)
}

// newPipeline checks preconditions and loads both manifest files.
// Nothing is mutated before every check passes.
func newPipeline(cfg *config.Config, opts *Options) (*pipeline, error) {
	for _, path := range []string{cfg.ManifestFile(), cfg.PackPath()} {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrPrecondition, path, err)
		}
	}

	if !opts.SkipBuild && len(cfg.BuildCommand) > 0 {
		if _, err := os.Stat(cfg.SourceDir); err != nil {
			return nil, fmt.Errorf("%w: build directory %s: %v", ErrPrecondition, cfg.SourceDir, err)
		}
	}

	doc, err := manifest.Load(cfg.ManifestFile())
	if err != nil {
		return nil, err
	}

	pack, err := manifest.LoadPack(cfg.PackPath())
	if err != nil {
		return nil, err
	}

	p := &pipeline{
		cfg:  cfg,
		opts: opts,
		doc:  doc,
		pack: pack,
	}

	// The pack file is the single source of truth for the current pair.
	p.spec.Minecraft, _ = pack.Get("versions", "minecraft")
	p.spec.Loader, _ = pack.Get("versions", "fabric")

	return p, nil
}

// resolveVersions determines the target version pair and writes it into both
// the pack file and the manifest.
func (p *pipeline) resolveVersions(ctx context.Context) error {
	meta := fabricmeta.NewClient(p.cfg.MetaURL, p.cfg.Timeout)

	next, warning := fabricmeta.Resolve(ctx, p.opts.MinecraftVersion, p.spec, meta)
	if warning != "" {
		logger.WarnKV(ctx, "Version resolution degraded", "warning", warning)
	}

	if next == p.spec {
		logger.InfoKV(ctx, "Version pair unchanged", "tag", p.spec.Tag())
		return nil
	}

	logger.InfoKV(ctx, "Upgrading version pair",
		"minecraft", next.Minecraft, "loader", next.Loader)

	if err := p.setPackField(ctx, "versions", "minecraft", next.Minecraft); err != nil {
		return err
	}

	if err := p.setPackField(ctx, "versions", "fabric", next.Loader); err != nil {
		return err
	}

	if err := p.pack.Save(); err != nil {
		return err
	}

	for path, value := range map[string]any{
		"versions.minecraft": next.Minecraft,
		"versions.fabric":    next.Loader,
		"version_tag":        next.Tag(),
	} {
		if err := p.setField(ctx, path, value); err != nil {
			return err
		}
	}

	p.spec = next

	return p.doc.Save()
}

// buildArtifact invokes the toolchain and records the artifact metadata.
// A build failure aborts before any manifest field is written.
func (p *pipeline) buildArtifact(ctx context.Context) error {
	previous, _ := p.doc.GetString("updater.version")

	artifact, err := builder.Run(ctx, &builder.Options{
		SourceDir:       p.cfg.SourceDir,
		Command:         p.cfg.BuildCommand,
		ArtifactPath:    p.cfg.ArtifactPath,
		VersionFile:     p.cfg.ArtifactVersionFile,
		PublishPath:     filepath.Join(p.cfg.DistDir, p.cfg.PublishName),
		PreviousVersion: previous,
	})
	if err != nil {
		return err
	}

	if err = p.setField(ctx, "updater.size", artifact.Size); err != nil {
		return err
	}

	if err = p.setField(ctx, "updater.sha256", artifact.SHA256); err != nil {
		return err
	}

	if artifact.Version != "" {
		if err = p.setField(ctx, "updater.version", artifact.Version); err != nil {
			return err
		}
	}

	return p.doc.Save()
}

// publish stages and pushes the release through the configured channel.
func (p *pipeline) publish(ctx context.Context) error {
	message := p.opts.Message
	if message == "" {
		message = fmt.Sprintf("Release %s", p.spec.Tag())
	}

	if p.cfg.ChannelDir != "" {
		return p.publishMirror(ctx, message)
	}

	return p.publishPromotion(ctx, message)
}

// publishMirror replaces the mirror working copy and pushes it.
func (p *pipeline) publishMirror(ctx context.Context, message string) error {
	if err := stager.Stage(ctx, p.cfg.DistDir, p.cfg.ChannelDir); err != nil {
		return err
	}

	git, err := gitrunner.New(p.cfg.ChannelDir)
	if err != nil {
		return err
	}

	result, err := publisher.Publish(ctx, git, p.cfg.Remote, message)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Mirror publish finished", "result", result.String())

	return nil
}

// publishPromotion promotes the current working branch into the primary one.
func (p *pipeline) publishPromotion(ctx context.Context, message string) error {
	git, err := gitrunner.New(".")
	if err != nil {
		return err
	}

	return publisher.Promote(ctx, git, &publisher.PromotionOptions{
		MainBranch: p.cfg.MainBranch,
		Remote:     p.cfg.Remote,
		Message:    message,
		Direct:     p.opts.Direct,
	})
}

// setPackField performs a tolerant pack file update: a missing key is skipped
// with a warning, mirroring setField. Any other failure is fatal.
func (p *pipeline) setPackField(ctx context.Context, section, key, value string) error {
	err := p.pack.Set(section, key, value)
	if errors.Is(err, manifest.ErrFieldNotFound) {
		logger.WarnKV(ctx, "Pack file key missing, update skipped",
			"section", section, "key", key)
		return nil
	}

	return err
}

// setField performs a tolerant manifest update: a missing field is skipped
// with a warning, the store never invents structure implicitly. Any other
// failure is fatal.
func (p *pipeline) setField(ctx context.Context, path string, value any) error {
	var err error

	switch v := value.(type) {
	case int64:
		err = p.doc.SetNumber(path, v)
	case string:
		err = p.doc.SetString(path, v)
	default:
		err = fmt.Errorf("unsupported value type %T", value)
	}

	if errors.Is(err, manifest.ErrFieldNotFound) {
		logger.WarnKV(ctx, "Manifest field missing, update skipped", "field", path)
		return nil
	}

	return err
}
