// Package config loads the audit configuration and suppression policy.
//
// Configuration lives in an oxidized-skills.yaml file in the working
// directory (or an explicit --config path). Every field carries a default
// so the file can be omitted entirely. After the file is read, environment
// variables with the OXIDIZED_SKILLS prefix are overlaid on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigFile is looked up in the current directory when no
	// explicit --config path is given.
	DefaultConfigFile = "oxidized-skills.yaml"
	// DefaultIgnoreFile holds suppression entries inside a skill directory.
	DefaultIgnoreFile = ".oxidized-skills-ignore"
	// DefaultStateDir under the home directory holds the audit trail.
	DefaultStateDir = ".oxidized-skills"
	// DefaultTrailFile is the append-only JSONL audit trail.
	DefaultTrailFile = "audit.jsonl"

	envPrefix = "OXIDIZED_SKILLS"
)

// Config is the root configuration for an audit run.
type Config struct {
	// Allowlist holds trusted registries and domains used by the
	// package-install and bash-pattern scanners.
	Allowlist AllowlistConfig `yaml:"allowlist"`
	// Strict promotes warnings to failures when enabled.
	Strict StrictConfig `yaml:"strict"`
	// Scanners holds per-scanner on/off toggles.
	Scanners ScannersConfig `yaml:"scanners"`
}

// AllowlistConfig lists trusted package registries and download domains.
// Entries are normalized to lowercase once at load time so scanners can
// compare without allocating per line.
type AllowlistConfig struct {
	Registries []string `yaml:"registries"`
	Domains    []string `yaml:"domains"`
}

// StrictConfig controls strict mode: when enabled, any warning fails the
// audit.
type StrictConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ScannersConfig toggles individual scanners. Every scanner defaults to
// enabled; set a field to false to skip it during audits.
type ScannersConfig struct {
	ShellCheck     bool `yaml:"shellcheck"`
	Semgrep        bool `yaml:"semgrep"`
	Secrets        bool `yaml:"secrets"`
	Prompt         bool `yaml:"prompt"`
	BashPatterns   bool `yaml:"bash_patterns" split_words:"true"`
	PackageInstall bool `yaml:"package_install" split_words:"true"`
	Frontmatter    bool `yaml:"frontmatter"`
	Unicode        bool `yaml:"unicode"`
}

// Default returns the built-in configuration used when no config file
// exists.
func Default() *Config {
	return &Config{
		Allowlist: AllowlistConfig{
			Registries: []string{
				"registry.npmjs.org",
				"pypi.org",
				"files.pythonhosted.org",
			},
			Domains: []string{
				"registry.npmjs.org",
				"npmjs.org",
				"github.com",
				"githubusercontent.com",
				"pypi.org",
			},
		},
		Scanners: ScannersConfig{
			ShellCheck:     true,
			Semgrep:        true,
			Secrets:        true,
			Prompt:         true,
			BashPatterns:   true,
			PackageInstall: true,
			Frontmatter:    true,
			Unicode:        true,
		},
	}
}

// Load reads configuration with the following resolution order:
//
//  1. If path is non-empty, load that file (error if missing).
//  2. Otherwise try oxidized-skills.yaml in the current directory.
//  3. Otherwise start from Default().
//
// Environment variables (OXIDIZED_SKILLS_STRICT_ENABLED,
// OXIDIZED_SKILLS_SCANNERS_SEMGREP, ...) are overlaid after the file, and
// allowlist entries are lowercased afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	switch {
	case path != "":
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
	default:
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process(envPrefix+"_ALLOWLIST", &cfg.Allowlist); err != nil {
		return nil, fmt.Errorf("invalid %s_ALLOWLIST environment: %w", envPrefix, err)
	}
	if err := envconfig.Process(envPrefix+"_STRICT", &cfg.Strict); err != nil {
		return nil, fmt.Errorf("invalid %s_STRICT environment: %w", envPrefix, err)
	}
	if err := envconfig.Process(envPrefix+"_SCANNERS", &cfg.Scanners); err != nil {
		return nil, fmt.Errorf("invalid %s_SCANNERS environment: %w", envPrefix, err)
	}

	cfg.Allowlist.normalize()
	return cfg, nil
}

// normalize lowercases all allowlist entries in place. Called once at load
// time so the hot matching path never lowercases per comparison.
func (a *AllowlistConfig) normalize() {
	for i, s := range a.Registries {
		a.Registries[i] = strings.ToLower(s)
	}
	for i, s := range a.Domains {
		a.Domains[i] = strings.ToLower(s)
	}
}

// IsScannerEnabled reports whether the named scanner is enabled. Unknown
// scanner names are considered enabled.
func (c *Config) IsScannerEnabled(name string) bool {
	switch name {
	case "shellcheck":
		return c.Scanners.ShellCheck
	case "semgrep":
		return c.Scanners.Semgrep
	case "secrets":
		return c.Scanners.Secrets
	case "prompt":
		return c.Scanners.Prompt
	case "bash_patterns":
		return c.Scanners.BashPatterns
	case "package_install":
		return c.Scanners.PackageInstall
	case "frontmatter":
		return c.Scanners.Frontmatter
	case "unicode":
		return c.Scanners.Unicode
	default:
		return true
	}
}

// TrailPath returns the audit-trail path under the user's home directory,
// creating the state directory when missing.
func TrailPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, DefaultStateDir)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, DefaultTrailFile), nil
}
