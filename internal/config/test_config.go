package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		Notion: NotionConfig{
			Token:      "secret-test-token",
			DatabaseID: "00000000000000000000000000000000",
		},
		Sync: SyncConfig{
			ArticlesDir:     "articles",
			ImagesDir:       "images",
			ImagePublicPath: "/images/articles",
			StateFile:       "sync-state.json",
			Interval:        time.Minute,
		},
		HTTP: HTTPConfig{
			Timeout:    5 * time.Second,
			MaxRetries: 1,
			RetryDelay: time.Millisecond,
		},
		Log: defaultConfig().Log,
	}
}
