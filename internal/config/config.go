package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Notion NotionConfig `mapstructure:"notion"`
	Sync   SyncConfig   `mapstructure:"sync"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	Log    LogConfig    `mapstructure:"log"`
}

type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

type SyncConfig struct {
	ArticlesDir     string        `mapstructure:"articles_dir"`
	ImagesDir       string        `mapstructure:"images_dir"`
	ImagePublicPath string        `mapstructure:"image_public_path"`
	StateFile       string        `mapstructure:"state_file"`
	Interval        time.Duration `mapstructure:"interval"`
}

type HTTPConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	RetryDelay time.Duration `mapstructure:"retry_delay"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

func defaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			ArticlesDir:     "app/data/articles",
			ImagesDir:       "public/images/articles",
			ImagePublicPath: "/images/articles",
			StateFile:       ".notion-sync-state.json",
			Interval:        30 * time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
		},
		Log: LogConfig{
			Level: "INFO",
		},
	}
}

// Load reads configuration from the TOML file, the environment and a local
// .env file. NOTION_TOKEN and NOTION_DATABASE_ID are honored directly so a
// checkout configured for the original sync scripts keeps working.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("notion", cfg.Notion)
	v.SetDefault("sync", cfg.Sync)
	v.SetDefault("http", cfg.HTTP)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "blogsync")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("BLOGSYNC")
	v.AutomaticEnv()
	_ = v.BindEnv("notion.token", "BLOGSYNC_NOTION_TOKEN", "NOTION_TOKEN")
	_ = v.BindEnv("notion.database_id", "BLOGSYNC_NOTION_DATABASE_ID", "NOTION_DATABASE_ID")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// Validate checks the fields without which no remote call can be made.
// Failures here abort before any network traffic.
func (c *Config) Validate() error {
	if c.Notion.Token == "" {
		return errors.New("notion token is not configured (set NOTION_TOKEN or notion.token)")
	}
	if c.Notion.DatabaseID == "" {
		return errors.New("notion database id is not configured (set NOTION_DATABASE_ID or notion.database_id)")
	}
	return nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Sync.ArticlesDir = expandPath(cfg.Sync.ArticlesDir)
	cfg.Sync.ImagesDir = expandPath(cfg.Sync.ImagesDir)
	cfg.Sync.StateFile = expandPath(cfg.Sync.StateFile)
	if cfg.Log.File != "" && cfg.Log.File != "-" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability
	syncCfg := map[string]interface{}{
		"articles_dir":      config.Sync.ArticlesDir,
		"images_dir":        config.Sync.ImagesDir,
		"image_public_path": config.Sync.ImagePublicPath,
		"state_file":        config.Sync.StateFile,
		"interval":          config.Sync.Interval.String(),
	}

	httpCfg := map[string]interface{}{
		"timeout":     config.HTTP.Timeout.String(),
		"max_retries": config.HTTP.MaxRetries,
		"retry_delay": config.HTTP.RetryDelay.String(),
	}

	v.Set("notion", map[string]interface{}{
		"token":       config.Notion.Token,
		"database_id": config.Notion.DatabaseID,
	})
	v.Set("sync", syncCfg)
	v.Set("http", httpCfg)
	v.Set("log", map[string]interface{}{
		"level": config.Log.Level,
		"file":  config.Log.File,
	})

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
