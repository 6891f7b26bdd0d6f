package log

import (
	"io"
	"os"
)

// HandlerOption configures the default Handler.
type HandlerOption func(*textHandler)

// WithWriters sets both writers. A nil writer keeps os.Stdout / os.Stderr.
func WithWriters(stdout, stderr io.Writer) HandlerOption {
	return func(h *textHandler) {
		WithStdOutWriter(stdout)(h)
		WithStdErrWriter(stderr)(h)
	}
}

// WithStdOutWriter sets the writer for NOTICE and less severe entries.
func WithStdOutWriter(stdout io.Writer) HandlerOption {
	return func(h *textHandler) {
		if stdout == nil {
			stdout = os.Stdout
		}
		h.stdout = stdout
	}
}

// WithStdErrWriter sets the writer for WARNING and more severe entries.
func WithStdErrWriter(stderr io.Writer) HandlerOption {
	return func(h *textHandler) {
		if stderr == nil {
			stderr = os.Stderr
		}
		h.stderr = stderr
	}
}

// WithMessageFormat sets the line template. {time}, {level} and {message}
// are substituted.
func WithMessageFormat(format string) HandlerOption {
	return func(h *textHandler) {
		h.msgfmt = format
	}
}

func WithTimeFormat(format string) HandlerOption {
	return func(h *textHandler) {
		h.timefmt = format
	}
}

// WithEnabled turns the handler on or off.
func WithEnabled(enabled bool) HandlerOption {
	return func(h *textHandler) {
		h.disabled = !enabled
	}
}
