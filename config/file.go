package config

import (
	"context"
	"io"
	"os"
	"sync"
)

// FromFile returns a ReadLoader that reads the whole file at path on every Read.
func FromFile(path string) ReadLoader {
	return &configFile{path: path}
}

type configFile struct {
	path  string
	mu    sync.RWMutex
	cache cache
}

func (c *configFile) Read(_ context.Context) error {
	f, err := os.Open(c.path)
	if err != nil {
		return err
	}
	defer f.Close()

	contents, err := io.ReadAll(f)
	if err != nil {
		return err
	}

	if len(contents) == 0 {
		return ErrEmptyContents
	}

	c.mu.Lock()
	c.cache.contents = contents
	c.mu.Unlock()
	return nil
}

func (c *configFile) Load(_ context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.load()
}

// FromReader returns a ReadLoader over r. Since r is consumed, only the first
// Read sees its contents; later Reads keep the cached contents.
func FromReader(r io.Reader) ReadLoader {
	return &configReader{reader: r}
}

type configReader struct {
	reader io.Reader
	mu     sync.RWMutex
	cache  cache
}

func (c *configReader) Read(_ context.Context) error {
	contents, err := io.ReadAll(c.reader)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if len(contents) == 0 {
		if len(c.cache.contents) > 0 {
			return nil
		}
		return ErrEmptyContents
	}

	c.cache.contents = contents
	return nil
}

func (c *configReader) Load(_ context.Context) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.cache.load()
}
