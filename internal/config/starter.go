package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML shape of ~/.config/lgc/config.yaml.
type fileConfig struct {
	GitHub struct {
		Owner       string `yaml:"owner"`
		Repo        string `yaml:"repo"`
		Project     string `yaml:"project"`
		TargetField string `yaml:"target_field"`
		StartField  string `yaml:"start_field"`
	} `yaml:"github"`
	Linear struct {
		Team    string `yaml:"team"`
		Project string `yaml:"project"`
	} `yaml:"linear"`
	Branch struct {
		Owner string `yaml:"owner"`
	} `yaml:"branch"`
	Commit struct {
		DefaultType string `yaml:"default_type"`
	} `yaml:"commit"`
	Sync struct {
		Interval string `yaml:"interval"`
		MaxWait  string `yaml:"max_wait"`
	} `yaml:"sync"`
}

const starterHeader = `# lgc configuration.
# Credentials (LINEAR_API_KEY, GITHUB_TOKEN) do not belong here; put them
# in a .env file or the environment.
`

// DefaultPath returns the YAML config file location.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".config", "lgc", "config.yaml"), nil
}

// WriteStarter writes a commented starter config to path. Refuses to
// overwrite an existing file.
func WriteStarter(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}

	var fc fileConfig
	fc.GitHub.TargetField = "Target"
	fc.GitHub.StartField = "Start"
	fc.Commit.DefaultType = "" // empty: prompt on unknown branch prefixes
	fc.Sync.Interval = "500ms"
	fc.Sync.MaxWait = "10s"

	body, err := yaml.Marshal(&fc)
	if err != nil {
		return fmt.Errorf("marshaling starter config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(starterHeader), body...), 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
