package config

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"sync"
)

// EnvEncoder turns the selected environment variables into bytes for Load.
type EnvEncoder func(vars map[string]string) ([]byte, error)

// EnvJSONEncoder encodes the environment variables as a JSON object.
func EnvJSONEncoder(vars map[string]string) ([]byte, error) {
	return json.Marshal(vars)
}

// EnvJSONDecoder decodes what EnvJSONEncoder produced.
func EnvJSONDecoder(p []byte) (map[string]string, error) {
	var vars map[string]string
	if err := json.Unmarshal(p, &vars); err != nil {
		return nil, err
	}
	return vars, nil
}

type EnvOption func(*configEnv)

func WithEnvEncoder(encoder EnvEncoder) EnvOption {
	return func(c *configEnv) {
		c.encoder = encoder
	}
}

// WithEnvPrefix only keeps variables starting with prefix, optionally trimming it.
func WithEnvPrefix(prefix string, trim bool) EnvOption {
	return func(c *configEnv) {
		c.prefix = prefix
		c.trimPrefix = trim
	}
}

// FromEnvironment returns a ReadLoader over the process environment.
// Read snapshots the selected variables, Load returns them encoded, as a JSON
// object by default.
func FromEnvironment(opts ...EnvOption) ReadLoader {
	conf := &configEnv{
		encoder: EnvJSONEncoder,
		environ: os.Environ,
	}

	for _, opt := range opts {
		opt(conf)
	}

	return conf
}

type configEnv struct {
	prefix     string
	trimPrefix bool
	encoder    EnvEncoder
	environ    func() []string
	mu         sync.RWMutex
	cache      cache
}

func (c *configEnv) Read(_ context.Context) error {
	vars := make(map[string]string)

	for _, kv := range c.environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}

		if c.prefix != "" && !strings.HasPrefix(key, c.prefix) {
			continue
		}

		if c.trimPrefix {
			key = strings.TrimPrefix(key, c.prefix)
		}

		vars[key] = value
	}

	contents, err := c.encoder(vars)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.cache.contents = contents
	c.mu.Unlock()
	return nil
}

func (c *configEnv) Load(_ context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.load()
}
