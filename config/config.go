// Package config reads raw configuration from the environment, files or
// readers and decodes it into typed values.
//
// A ReadLoader separates reading from loading: Read refreshes the cached
// contents from the source, Load returns a copy of the last successful read.
package config

import (
	"context"
)

type Reader interface {
	Read(ctx context.Context) error
}

type Loader interface {
	Load(ctx context.Context) ([]byte, error)
}

type ReadLoader interface {
	Reader
	Loader
}

// Load reads from rl and decodes the fresh contents into into.
// Fields missing from the source keep whatever into already held, so
// defaults can be set before calling Load.
func Load[T any](ctx context.Context, rl ReadLoader, decoder Decoder[T], into *T) error {
	if err := rl.Read(ctx); err != nil {
		return err
	}

	contents, err := rl.Load(ctx)
	if err != nil {
		return err
	}

	return decoder.Decode(contents, into)
}

// cache holds the contents of the last successful read.
type cache struct {
	contents []byte
}

func (c *cache) load() ([]byte, error) {
	if len(c.contents) == 0 {
		return nil, ErrEmptyContents
	}

	b := make([]byte, len(c.contents))
	copy(b, c.contents)
	return b, nil
}
