package config

// Error is a constant error returned by the config package.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrEmptyContents is returned when a source had nothing to read, or when
	// Load is called before a successful Read.
	ErrEmptyContents = Error("config contents were empty on read")
	// ErrUnknownFormat is returned when no decoder matches a file extension.
	ErrUnknownFormat = Error("unknown config format")
)
