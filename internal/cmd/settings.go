package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ambitiousfew/rxstream/config"
	"github.com/ambitiousfew/rxstream/intracom"
)

// EnvPrefix is the prefix of environment variables read into Settings,
// e.g. RXSTREAM_ADDR or RXSTREAM_LOG_LEVEL.
const EnvPrefix = "RXSTREAM_"

// Settings is everything the commands read from a config file or the environment.
// Flags set on the command line win over both.
type Settings struct {
	LogLevel string `json:"log_level" yaml:"log_level"`
	Addr     string `json:"addr" yaml:"addr"`
	Capacity int    `json:"capacity" yaml:"capacity"`
}

func defaultSettings() Settings {
	return Settings{
		LogLevel: "info",
		Addr:     ":8080",
		Capacity: intracom.DefaultTopicCapacity,
	}
}

// loadSettings layers defaults, the optional config file and the environment.
func loadSettings(ctx context.Context, path string) (Settings, error) {
	s := defaultSettings()

	if path != "" {
		codec, err := config.CodecForPath[Settings](path)
		if err != nil {
			return s, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := config.Load(ctx, config.FromFile(path), codec, &s); err != nil {
			return s, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	env := config.FromEnvironment(config.WithEnvPrefix(EnvPrefix, true))
	if err := env.Read(ctx); err != nil {
		return s, fmt.Errorf("reading environment: %w", err)
	}

	b, err := env.Load(ctx)
	if err != nil {
		return s, fmt.Errorf("loading environment: %w", err)
	}

	vars, err := config.EnvJSONDecoder(b)
	if err != nil {
		return s, fmt.Errorf("decoding environment: %w", err)
	}

	return s, s.applyEnv(vars)
}

func (s *Settings) applyEnv(vars map[string]string) error {
	if v, ok := vars["LOG_LEVEL"]; ok && v != "" {
		s.LogLevel = v
	}

	if v, ok := vars["ADDR"]; ok && v != "" {
		s.Addr = v
	}

	if v, ok := vars["CAPACITY"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sCAPACITY: %w", EnvPrefix, err)
		}
		s.Capacity = n
	}
	return nil
}
