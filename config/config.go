package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/helmup/domain"
)

// Config is the top-level configuration for helmup.
type Config struct {
	Manifests           []string           `yaml:"manifests"`           // glob patterns for manifest discovery
	UpdateStrategy      string             `yaml:"updateStrategy"`      // major | minor | patch | all
	AllowPrereleases    bool               `yaml:"allowPrereleases"`    // pre-releases are never candidates unless set
	Ignore              []IgnoreConfig     `yaml:"ignore"`              // per-chart suppression rules
	RegistryCredentials []CredentialConfig `yaml:"registryCredentials"` // per-host repository credentials
	Git                 GitConfig          `yaml:"git"`
	GitHub              GitHubConfig       `yaml:"github"`
	Changelogs          map[string]string  `yaml:"changelogs"` // chart name -> "owner/repo" for release notes
}

// IgnoreConfig suppresses updates for a named chart, optionally scoped to
// specific update types.
type IgnoreConfig struct {
	DependencyName string   `yaml:"dependencyName"`
	UpdateTypes    []string `yaml:"updateTypes"`
}

// CredentialConfig describes one chart repository or registry credential.
type CredentialConfig struct {
	Registry string `yaml:"registry"` // host (including port) to match
	AuthType string `yaml:"authType"` // "basic" or "bearer"
	Username string `yaml:"username"` // required for basic
	Password string `yaml:"password"` // inline, ${ENV_VAR}, or file path
}

// GitConfig holds the settings for committing updates to a branch.
type GitConfig struct {
	BaseBranch   string `yaml:"baseBranch"`
	BranchPrefix string `yaml:"branchPrefix"`
	Remote       string `yaml:"remote"`
	AuthorName   string `yaml:"authorName"`
	AuthorEmail  string `yaml:"authorEmail"`
}

// GitHubConfig holds the settings for publishing pull requests and looking
// up release notes. Leaving Token empty disables both.
type GitHubConfig struct {
	Token string `yaml:"token"` // inline, ${ENV_VAR}, or file path
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`
}

const (
	defaultStrategy     = string(domain.StrategyMinor)
	defaultRemote       = "origin"
	defaultBranchPrefix = "helmup/"
	defaultAuthorName   = "helmup"
	defaultAuthorEmail  = "helmup@localhost"
)

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// Load reads and parses a configuration file, expanding environment
// variables and resolving secret file paths, then applies defaults and
// validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg Config
	if unmarshalErr := yaml.Unmarshal(data, &cfg); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	// Resolve secrets (env vars and file paths)
	for i := range cfg.RegistryCredentials {
		cfg.RegistryCredentials[i].Password = ResolveToken(cfg.RegistryCredentials[i].Password)
	}
	cfg.GitHub.Token = ResolveToken(cfg.GitHub.Token)

	applyDefaults(&cfg)

	if validateErr := validate(&cfg); validateErr != nil {
		return nil, validateErr
	}

	return &cfg, nil
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".helmup.yaml",
		".helmup.yml",
		"helmup.yaml",
		"helmup.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", errors.New("config file not found in default locations")
}

// ResolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the secret from the
// file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the secret from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// Policy converts the configured rules into the engine's update policy.
func (c *Config) Policy() domain.UpdatePolicy {
	rules := make([]domain.IgnoreRule, 0, len(c.Ignore))
	for _, ign := range c.Ignore {
		types := make([]domain.UpdateType, 0, len(ign.UpdateTypes))
		for _, t := range ign.UpdateTypes {
			types = append(types, domain.UpdateType(t))
		}
		rules = append(rules, domain.IgnoreRule{
			DependencyName: ign.DependencyName,
			UpdateTypes:    types,
		})
	}

	return domain.UpdatePolicy{
		Strategy:         domain.UpdateStrategy(c.UpdateStrategy),
		Ignore:           rules,
		AllowPrereleases: c.AllowPrereleases,
	}
}

// Credentials converts the configured credentials into the immutable list
// handed to the fetchers, preserving declaration order.
func (c *Config) Credentials() []domain.RegistryCredential {
	creds := make([]domain.RegistryCredential, 0, len(c.RegistryCredentials))
	for _, cc := range c.RegistryCredentials {
		creds = append(creds, domain.RegistryCredential{
			Registry: cc.Registry,
			AuthType: domain.AuthType(cc.AuthType),
			Username: cc.Username,
			Password: cc.Password,
		})
	}
	return creds
}

func applyDefaults(cfg *Config) {
	if cfg.UpdateStrategy == "" {
		cfg.UpdateStrategy = defaultStrategy
	}
	if cfg.Git.Remote == "" {
		cfg.Git.Remote = defaultRemote
	}
	if cfg.Git.BranchPrefix == "" {
		cfg.Git.BranchPrefix = defaultBranchPrefix
	}
	if cfg.Git.AuthorName == "" {
		cfg.Git.AuthorName = defaultAuthorName
	}
	if cfg.Git.AuthorEmail == "" {
		cfg.Git.AuthorEmail = defaultAuthorEmail
	}
}

// validate checks for required configuration values.
func validate(cfg *Config) error {
	if len(cfg.Manifests) == 0 {
		return errors.New("at least one manifest pattern must be configured")
	}

	switch domain.UpdateStrategy(cfg.UpdateStrategy) {
	case domain.StrategyMajor, domain.StrategyMinor, domain.StrategyPatch, domain.StrategyAll:
	default:
		return fmt.Errorf(
			"updateStrategy must be one of major, minor, patch, all (got %q)",
			cfg.UpdateStrategy,
		)
	}

	for i, cred := range cfg.RegistryCredentials {
		if cred.Registry == "" {
			return fmt.Errorf("registryCredentials[%d].registry is required", i)
		}
		if cred.Password == "" {
			return fmt.Errorf(
				"registryCredentials[%d].password is required (set inline, via ${ENV_VAR}, or as file path)",
				i,
			)
		}
		switch domain.AuthType(cred.AuthType) {
		case domain.AuthTypeBasic:
			if cred.Username == "" {
				return fmt.Errorf(
					"registryCredentials[%d].username is required for basic auth", i,
				)
			}
		case domain.AuthTypeBearer:
		default:
			return fmt.Errorf(
				"registryCredentials[%d].authType must be basic or bearer (got %q)",
				i, cred.AuthType,
			)
		}
	}

	return nil
}
