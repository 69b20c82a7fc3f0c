// Package config loads server configuration from a YAML file, falling
// back to defaults when the file is absent.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server reads at startup.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
	GameName   string `yaml:"game_name"`

	Map struct {
		Width  int   `yaml:"width"`
		Height int   `yaml:"height"`
		Seed   int64 `yaml:"seed"`
	} `yaml:"map"`

	Players int `yaml:"players"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{
		ListenAddr: ":8080",
		DBPath:     "data/hexrealm.db",
		GameName:   "default",
		Players:    2,
	}
	cfg.Map.Width = 40
	cfg.Map.Height = 30
	cfg.Map.Seed = 42
	return cfg
}

// Load reads the config file at path. A missing file yields defaults;
// a malformed file is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
