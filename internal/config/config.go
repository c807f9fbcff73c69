package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	TempDir       string            `toml:"temp_dir"`
	CacheDir      string            `toml:"cache_dir"`
	HistoryDB     string            `toml:"history_db"`
	SevenZipPath  string            `toml:"sevenzip_path"`
	InlineLimitMB int64             `toml:"inline_limit_mb"`
	FetchTimeout  int               `toml:"fetch_timeout_minutes"`
	EngineOrder   map[string]string `toml:"engine_order"`
}

func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	base := filepath.Join(home, ".unbox")

	cfg := &Config{
		TempDir:       filepath.Join(base, "work"),
		CacheDir:      filepath.Join(base, "cache"),
		HistoryDB:     filepath.Join(base, "history.db"),
		InlineLimitMB: 4,
		FetchTimeout:  15,
		EngineOrder:   map[string]string{},
	}

	err := Save(cfg)
	if err != nil {
		fmt.Println(err) // TODO: Improve
	}

	return cfg
}

func Load() (*Config, error) {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}

	configPath := filepath.Join(home, ".unbox", "config.toml")

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(configPath, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func Save(cfg *Config) error {
	home, _ := os.UserHomeDir()
	configPath := filepath.Join(home, ".unbox", "config.toml")

	os.MkdirAll(filepath.Dir(configPath), 0755)
	f, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// InlineLimit converts the configured megabyte threshold into bytes.
func (c *Config) InlineLimit() int64 {
	return c.InlineLimitMB << 20
}
