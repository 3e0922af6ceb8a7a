package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the release pipeline settings shared by all subcommands.
type Config struct {
	// ManifestPath is the path to the server.json manifest, relative to DistDir.
	ManifestPath string `yaml:"manifest_path"`
	// PackFile is the path to the packwiz pack.toml, relative to DistDir.
	PackFile string `yaml:"pack_file"`
	// DistDir is the directory whose contents are mirrored to the release channel.
	DistDir string `yaml:"dist_dir"`
	// ChannelDir is the working copy of the mirror repository. Empty means
	// publishing happens on the current repository via branch promotion.
	ChannelDir string `yaml:"channel_dir"`
	// SourceDir is the directory where the build toolchain is invoked.
	SourceDir string `yaml:"source_dir"`
	// BuildCommand is the external toolchain invocation, argv style.
	BuildCommand []string `yaml:"build_command"`
	// ArtifactPath is the toolchain output binary, relative to SourceDir.
	ArtifactPath string `yaml:"artifact_path"`
	// ArtifactVersionFile is a metadata file in SourceDir carrying the
	// artifact's declared version in a [package] section. Optional.
	ArtifactVersionFile string `yaml:"artifact_version_file"`
	// PublishName is the artifact's file name inside DistDir.
	PublishName string `yaml:"publish_name"`
	// Remote is the git remote releases are pushed to.
	Remote string `yaml:"remote"`
	// MainBranch is the primary branch used by branch promotion.
	MainBranch string `yaml:"main_branch"`
	// MetaURL is the base URL of the loader version metadata service.
	MetaURL string `yaml:"meta_url"`
	// Timeout bounds metadata service requests.
	Timeout time.Duration `yaml:"timeout"`
}

const (
	// DefaultConfigFilename is the default filename for release settings.
	DefaultConfigFilename = "upmc-release.yaml"

	// DefaultManifestFilename is the default manifest name inside the dist directory.
	DefaultManifestFilename = "server.json"

	// DefaultPackFilename is the default packwiz pack file name inside the dist directory.
	DefaultPackFilename = "pack.toml"

	// DefaultPublishName is the artifact's default file name inside the dist directory.
	DefaultPublishName = "upmc-updater.exe"

	// DefaultRemote is the git remote used when none is configured.
	DefaultRemote = "origin"

	// DefaultMainBranch is the promotion target when none is configured.
	DefaultMainBranch = "main"

	// DefaultMetaURL is the Fabric loader metadata endpoint.
	DefaultMetaURL = "https://meta.fabricmc.net"

	// DefaultTimeout is the default duration for metadata requests.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errSourceDirRequired is returned when build settings lack a source directory.
	errSourceDirRequired = errors.New("build command is set but source directory is empty")
	// errArtifactPathRequired is returned when build settings lack an artifact path.
	errArtifactPathRequired = errors.New("build command is set but artifact path is empty")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and fills defaults for everything optional.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.DistDir == "" {
		cfg.DistDir = "."
	}

	if cfg.ManifestPath == "" {
		cfg.ManifestPath = DefaultManifestFilename
	}

	if cfg.PackFile == "" {
		cfg.PackFile = DefaultPackFilename
	}

	if cfg.PublishName == "" {
		cfg.PublishName = DefaultPublishName
	}

	if cfg.Remote == "" {
		cfg.Remote = DefaultRemote
	}

	if cfg.MainBranch == "" {
		cfg.MainBranch = DefaultMainBranch
	}

	if cfg.MetaURL == "" {
		cfg.MetaURL = DefaultMetaURL
	}

	if _, err := url.ParseRequestURI(cfg.MetaURL); err != nil {
		return fmt.Errorf("invalid meta URL: %w", err)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	// Build settings are optional as a group: the build stage can be skipped
	// entirely, but a configured build command must be complete.
	if len(cfg.BuildCommand) > 0 {
		if cfg.SourceDir == "" {
			return errSourceDirRequired
		}

		if cfg.ArtifactPath == "" {
			return errArtifactPathRequired
		}
	}

	return nil
}

// ManifestFile returns the manifest path resolved against the dist directory.
func (c *Config) ManifestFile() string {
	return filepath.Join(c.DistDir, c.ManifestPath)
}

// PackPath returns the pack file path resolved against the dist directory.
func (c *Config) PackPath() string {
	return filepath.Join(c.DistDir, c.PackFile)
}
