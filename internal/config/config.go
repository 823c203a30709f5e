package config

import (
	"fmt"
	"strings"

	"github.com/Alexsovich5/DAPP-sub000/internal/engine"
)

type Config struct {
	Server  ServerConfig
	API     APIConfig
	Storage StorageConfig
	Engine  EngineConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port int
}

type APIConfig struct {
	// Token guards the HTTP API. Optional at load time; the server
	// refuses to start without it, CLI scoring works without one.
	Token string
}

type StorageConfig struct {
	DataDir string
}

type EngineConfig struct {
	// Weights overrides the built-in dimension weights. Empty means the
	// engine defaults. Validated at load time: a bad weight map must
	// never reach scoring.
	Weights map[string]float64
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4600,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the platform-native backend, environment
// variables, and the platform secret store.
//
// On macOS the backend is UserDefaults (domain: com.compat.app) and the
// API token falls back to macOS Keychain.
// On Linux the backend is a JSON file at $XDG_CONFIG_HOME/compat/config.json
// and the token falls back to a secrets file under $XDG_DATA_HOME.
//
// Environment variables (COMPAT_*) override backend values on all platforms.
func Load() (Config, error) {
	return loadWith(newPlatformBackend(), keychainReader{})
}

// keychain abstracts secret-store access for testing.
type keychain interface {
	Get(service, account string) (string, error)
}

func loadWith(b ConfigBackend, kc keychain) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	// Try the platform secret store for the API token if still empty.
	if cfg.API.Token == "" {
		if token, err := kc.Get("compat", "api_token"); err == nil && token != "" {
			cfg.API.Token = token
		}
	}

	// Weight configuration fails fast: never silently renormalized, never
	// deferred to the first scoring call.
	if len(cfg.Engine.Weights) > 0 {
		if _, err := engine.NewWeights(cfg.Engine.Weights); err != nil {
			return Config{}, fmt.Errorf("engine weights: %w", err)
		}
	}

	return cfg, nil
}

// keychainReader reads from the platform secret store.
type keychainReader struct{}

func (keychainReader) Get(service, account string) (string, error) {
	out, err := keychainGet(service, account)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}
