package config

import "os"

// Config holds service configuration. Every field has a working
// default and can be overridden through environment variables.
type Config struct {
	DBPath        string // TRACKER_DB_PATH
	ListenAddress string // TRACKER_LISTEN_ADDRESS
	SourceBaseURL string // TRACKER_SOURCE_URL
	LogPath       string // TRACKER_LOG_PATH
}

func Load() *Config {
	return &Config{
		DBPath:        envOr("TRACKER_DB_PATH", "../db/influencers.db"),
		ListenAddress: envOr("TRACKER_LISTEN_ADDRESS", ":8080"),
		SourceBaseURL: envOr("TRACKER_SOURCE_URL", "http://localhost:9090"),
		LogPath:       envOr("TRACKER_LOG_PATH", "../log"),
	}
}

func envOr(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
