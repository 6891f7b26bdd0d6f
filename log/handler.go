package log

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// NewHandler returns the default text Handler.
// Entries look like "{time} [{level}] {message} key=value ...". WARNING and
// more severe entries go to stderr, everything else to stdout.
func NewHandler(opts ...HandlerOption) Handler {
	h := &textHandler{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		msgfmt:   "{time} [{level}] {message}",
		timefmt:  time.RFC3339,
		disabled: false,
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

type textHandler struct {
	stdout   io.Writer
	stderr   io.Writer
	outMu    sync.Mutex
	errMu    sync.Mutex
	disabled bool
	msgfmt   string
	timefmt  string
	now      func() time.Time
}

func (h *textHandler) Handle(level Level, message string, fields []Field) {
	if h.disabled {
		return
	}

	line := strings.NewReplacer(
		"{time}", h.now().Format(h.timefmt),
		"{level}", level.String(),
		"{message}", message,
	).Replace(h.msgfmt)

	var b strings.Builder
	b.WriteString(line)
	for _, field := range fields {
		b.WriteString(" " + field.Key + "=" + quote(field.Value))
	}
	b.WriteByte('\n')

	if level <= LevelWarning {
		h.errMu.Lock()
		io.WriteString(h.stderr, b.String())
		h.errMu.Unlock()
		return
	}

	h.outMu.Lock()
	io.WriteString(h.stdout, b.String())
	h.outMu.Unlock()
}

// quote wraps values containing whitespace so key=value pairs stay parseable.
func quote(v string) string {
	if v == "" {
		return `""`
	}
	if strings.ContainsAny(v, " \t\n") {
		return `"` + strings.ReplaceAll(v, `"`, `\"`) + `"`
	}
	return v
}
