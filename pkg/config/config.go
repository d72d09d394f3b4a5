// Package config loads application settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the desktop application's settings.
type Config struct {
	ScenePath    string // default file for save and load
	EvalTimeout  time.Duration
	WindowWidth  int
	WindowHeight int
	Metrics      bool // serve /metrics through the asset server
}

// Load reads the configuration from STEREO_* environment variables.
// Missing or malformed values fall back to the defaults.
func Load() *Config {
	return &Config{
		ScenePath:    getEnv("STEREO_SCENE_PATH", "scene.scene"),
		EvalTimeout:  time.Duration(getEnvAsInt("STEREO_EVAL_TIMEOUT_MS", 5000)) * time.Millisecond,
		WindowWidth:  getEnvAsInt("STEREO_WINDOW_WIDTH", 1280),
		WindowHeight: getEnvAsInt("STEREO_WINDOW_HEIGHT", 800),
		Metrics:      getEnvAsBool("STEREO_METRICS", true),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
