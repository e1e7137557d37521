// Package config loads tool configuration and credentials.
//
// Precedence, highest first: process environment, the nearest .env file
// (walking up from the working directory, then $HOME), the YAML config
// file at ~/.config/lgc/config.yaml, built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvFileName is the credential file discovered by upward search.
const EnvFileName = ".env"

// Config carries everything the adapters need. It is built once in main
// and passed down; nothing reads credentials from globals afterward.
type Config struct {
	LinearAPIKey string
	GitHubToken  string

	GitHubOwner string // org or user that owns the repo
	GitHubRepo  string
	ProjectName string // GitHub ProjectV2 board name

	LinearTeam    string // team key, e.g. "LEA"
	LinearProject string

	BranchOwner string // branch name owner segment; git user.name when empty

	// CommitDefaultType, when set, is used for branches whose prefix is
	// not in the taxonomy instead of prompting. Empty means always prompt.
	CommitDefaultType string

	SyncInterval time.Duration
	SyncMaxWait  time.Duration

	// ProjectV2 date field names.
	TargetField string
	StartField  string
}

// Load builds the config for a process started in dir.
func Load(dir string) (*Config, error) {
	v := viper.New()

	v.SetDefault("sync.interval", "500ms")
	v.SetDefault("sync.max_wait", "10s")
	v.SetDefault("github.target_field", "Target")
	v.SetDefault("github.start_field", "Start")

	if home, err := os.UserHomeDir(); err == nil {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(filepath.Join(home, ".config", "lgc"))
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix("LGC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		GitHubOwner:       v.GetString("github.owner"),
		GitHubRepo:        v.GetString("github.repo"),
		ProjectName:       v.GetString("github.project"),
		LinearTeam:        v.GetString("linear.team"),
		LinearProject:     v.GetString("linear.project"),
		BranchOwner:       v.GetString("branch.owner"),
		CommitDefaultType: v.GetString("commit.default_type"),
		SyncInterval:      v.GetDuration("sync.interval"),
		SyncMaxWait:       v.GetDuration("sync.max_wait"),
		TargetField:       v.GetString("github.target_field"),
		StartField:        v.GetString("github.start_field"),
	}

	env := loadEnvFile(dir)
	cfg.LinearAPIKey = credential("LINEAR_API_KEY", env)
	cfg.GitHubToken = credential("GITHUB_TOKEN", env)

	return cfg, nil
}

// credential resolves a key from the process environment first, then the
// discovered .env file.
func credential(key string, env map[string]string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return env[key]
}

// loadEnvFile finds and parses the nearest .env. Parse failures are
// treated as absent: a malformed .env must not break the tool, only the
// credentials it would have supplied.
func loadEnvFile(dir string) map[string]string {
	path, ok := FindEnvFile(dir)
	if !ok {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil
	}

	out := make(map[string]string)
	for _, key := range v.AllKeys() {
		out[strings.ToUpper(key)] = v.GetString(key)
	}
	return out
}

// FindEnvFile walks up from dir to the filesystem root looking for a .env
// file, then falls back to $HOME/.env.
func FindEnvFile(dir string) (string, bool) {
	cur, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(cur, EnvFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, EnvFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
	}
	return "", false
}

// RequireLinear fails when the Linear credential is missing.
func (c *Config) RequireLinear() error {
	if c.LinearAPIKey == "" {
		return errors.New("LINEAR_API_KEY not set (add it to .env or the environment)")
	}
	return nil
}

// RequireGitHub fails when the GitHub credential is missing.
func (c *Config) RequireGitHub() error {
	if c.GitHubToken == "" {
		return errors.New("GITHUB_TOKEN not set (add it to .env or the environment)")
	}
	return nil
}
