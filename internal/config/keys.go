package config

import (
	"fmt"
	"os"
	"strconv"
)

type keyType int

const (
	kString keyType = iota
	kInt
	kFloat
)

type keySpec struct {
	key     string
	typ     keyType
	env     string
	secret  bool
	apply   func(cfg *Config, v any)
	extract func(cfg Config) any
}

// weightDimensions are the configurable dimension-weight keys. They mirror
// the engine's canonical dimension names.
var weightDimensions = []string{
	"interests", "values", "communication", "personality", "emotional_depth", "demographic",
}

var specs = buildSpecs()

func buildSpecs() []keySpec {
	s := []keySpec{
		{
			key: "server.port", typ: kInt, env: "COMPAT_SERVER_PORT",
			apply:   func(cfg *Config, v any) { cfg.Server.Port = v.(int) },
			extract: func(cfg Config) any { return cfg.Server.Port },
		},
		{
			key: "storage.data_dir", typ: kString, env: "COMPAT_STORAGE_DATA_DIR",
			apply:   func(cfg *Config, v any) { cfg.Storage.DataDir = v.(string) },
			extract: func(cfg Config) any { return cfg.Storage.DataDir },
		},
		{
			key: "log.level", typ: kString, env: "COMPAT_LOG_LEVEL",
			apply:   func(cfg *Config, v any) { cfg.Log.Level = v.(string) },
			extract: func(cfg Config) any { return cfg.Log.Level },
		},
		{
			key: "api.token", typ: kString, env: "COMPAT_API_TOKEN",
			secret:  true,
			apply:   func(cfg *Config, v any) { cfg.API.Token = v.(string) },
			extract: func(cfg Config) any { return cfg.API.Token },
		},
	}
	for _, dim := range weightDimensions {
		s = append(s, keySpec{
			key: "engine.weight." + dim, typ: kFloat, env: "COMPAT_ENGINE_WEIGHT_" + envSuffix(dim),
			apply:   setWeight(dim),
			extract: getWeight(dim),
		})
	}
	return s
}

func envSuffix(dim string) string {
	out := make([]byte, len(dim))
	for i := 0; i < len(dim); i++ {
		c := dim[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}

func setWeight(dim string) func(cfg *Config, v any) {
	return func(cfg *Config, v any) {
		if cfg.Engine.Weights == nil {
			cfg.Engine.Weights = make(map[string]float64)
		}
		cfg.Engine.Weights[dim] = v.(float64)
	}
}

func getWeight(dim string) func(cfg Config) any {
	return func(cfg Config) any {
		if w, ok := cfg.Engine.Weights[dim]; ok {
			return w
		}
		return "(engine default)"
	}
}

func applyBackend(cfg *Config, b ConfigBackend) error {
	for _, s := range specs {
		if s.secret {
			continue
		}
		switch s.typ {
		case kString:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kInt:
			v, ok, err := b.GetInt(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok {
				s.apply(cfg, v)
			}
		case kFloat:
			v, ok, err := b.GetString(s.key)
			if err != nil {
				return fmt.Errorf("reading %s: %w", s.key, err)
			}
			if ok && v != "" {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return fmt.Errorf("parsing float from config key %s=%q: %w", s.key, v, err)
				}
				s.apply(cfg, f)
			}
		}
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	for _, s := range specs {
		if s.env == "" {
			continue
		}
		raw := os.Getenv(s.env)
		if raw == "" {
			continue
		}
		switch s.typ {
		case kString:
			s.apply(cfg, raw)
		case kInt:
			if i, err := strconv.Atoi(raw); err == nil {
				s.apply(cfg, i)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse integer from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		case kFloat:
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				s.apply(cfg, f)
			} else {
				fmt.Fprintf(os.Stderr, "[WARN] could not parse float from env var %s=%q: %v. Using default value.\n", s.env, raw, err)
			}
		}
	}
}
