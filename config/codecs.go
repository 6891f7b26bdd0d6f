package config

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

type Decoder[T any] interface {
	Decode([]byte, *T) error
}

type Encoder[T any] interface {
	Encode(T) ([]byte, error)
}

type Codec[T any] interface {
	Encoder[T]
	Decoder[T]
}

type JSONCodec[T any] struct{}

func (JSONCodec[T]) Encode(from T) ([]byte, error) {
	return json.Marshal(from)
}

func (JSONCodec[T]) Decode(b []byte, into *T) error {
	return json.Unmarshal(b, into)
}

type YAMLCodec[T any] struct{}

func (YAMLCodec[T]) Encode(from T) ([]byte, error) {
	return yaml.Marshal(from)
}

func (YAMLCodec[T]) Decode(b []byte, into *T) error {
	return yaml.Unmarshal(b, into)
}

// CodecForPath picks a codec from the file extension: .json, .yaml or .yml.
func CodecForPath[T any](path string) (Codec[T], error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSONCodec[T]{}, nil
	case ".yaml", ".yml":
		return YAMLCodec[T]{}, nil
	default:
		return nil, ErrUnknownFormat
	}
}
