// Package config loads client configuration from the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config holds the Sketchpad client settings.
type Config struct {
	// ServerURL is the base URL of the Sketchpad REST API.
	ServerURL string
	// SocketURL is the websocket updates endpoint.
	SocketURL string
	// SketchpadHome is the directory for local state (token cache, exports).
	SketchpadHome string
	// TokenFile is the path to the cached access token.
	TokenFile string

	// ReconnectBackoff is the fixed delay before a reconnect attempt.
	ReconnectBackoff time.Duration
	// RefreshCooldown is the token-refresh guard cooldown window.
	RefreshCooldown time.Duration

	// Debug enables verbose logging.
	Debug bool
}

const (
	defaultServerURL = "https://api.sketchpad.art"
	defaultSocketURL = "wss://api.sketchpad.art/v1/updates"
)

// Load reads configuration from environment variables and defaults.
func Load() (*Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	sketchpadHome := os.Getenv("SKETCHPAD_HOME_DIR")
	if sketchpadHome == "" {
		sketchpadHome = filepath.Join(homeDir, ".sketchpad")
	}
	if err := os.MkdirAll(sketchpadHome, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sketchpad home: %w", err)
	}

	serverURL := os.Getenv("SKETCHPAD_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	socketURL := os.Getenv("SKETCHPAD_WS_URL")
	if socketURL == "" {
		socketURL = defaultSocketURL
	}

	backoff, err := durationEnv("SKETCHPAD_RECONNECT_BACKOFF", 3*time.Second)
	if err != nil {
		return nil, err
	}
	cooldown, err := durationEnv("SKETCHPAD_REFRESH_COOLDOWN", 5*time.Second)
	if err != nil {
		return nil, err
	}

	debug := os.Getenv("DEBUG") == "true" || os.Getenv("DEBUG") == "1" ||
		os.Getenv("SKETCHPAD_DEBUG") == "true" || os.Getenv("SKETCHPAD_DEBUG") == "1"

	return &Config{
		ServerURL:        serverURL,
		SocketURL:        socketURL,
		SketchpadHome:    sketchpadHome,
		TokenFile:        filepath.Join(sketchpadHome, "access.token"),
		ReconnectBackoff: backoff,
		RefreshCooldown:  cooldown,
		Debug:            debug,
	}, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, raw)
	}
	return d, nil
}
