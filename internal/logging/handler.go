package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Attribute keys the console handler highlights.
const (
	KeyEntry = "entry"
	KeyError = "error"
)

// TimeLayout is the clock time printed in front of console records.
const TimeLayout = "15:04:05"

// Handler writes one human-readable line per record:
//
//	14:07:09 WARN  docs: skipped entry=docs reason="source not found"
//
// Colors are used only when the writer supports them.
type Handler struct {
	opts   slog.HandlerOptions
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	colors *palette
}

type palette struct {
	time  *color.Color
	key   *color.Color
	entry *color.Color
	err   *color.Color
	level map[slog.Level]*color.Color
}

// newPalette returns colors that are always emitted; SupportsColor has
// already decided the writer wants them.
func newPalette() *palette {
	c := func(attrs ...color.Attribute) *color.Color {
		col := color.New(attrs...)
		col.EnableColor()
		return col
	}
	return &palette{
		time:  c(color.FgHiBlack),
		key:   c(color.FgCyan),
		entry: c(color.Bold),
		err:   c(color.FgRed),
		level: map[slog.Level]*color.Color{
			LevelTrace:      c(color.FgHiBlack),
			slog.LevelDebug: c(color.FgMagenta),
			slog.LevelInfo:  c(color.FgGreen),
			slog.LevelWarn:  c(color.FgYellow),
			slog.LevelError: c(color.FgRed, color.Bold),
		},
	}
}

// NewHandler creates a console handler writing to out.
func NewHandler(out io.Writer, opts *slog.HandlerOptions) *Handler {
	if opts == nil {
		opts = &slog.HandlerOptions{}
	}

	h := &Handler{
		opts: *opts,
		out:  out,
		mu:   &sync.Mutex{},
	}
	if SupportsColor(out) {
		h.colors = newPalette()
	}
	return h
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}
	return level >= minLevel
}

// Handle formats r into a single line and writes it with one call.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var buf bytes.Buffer

	if !r.Time.IsZero() {
		buf.WriteString(h.paint(h.timeColor(), r.Time.Format(TimeLayout)))
		buf.WriteByte(' ')
	}

	label := LevelName(r.Level)
	pad := strings.Repeat(" ", max(0, 5-len(label)))
	buf.WriteString(h.paint(h.levelColor(r.Level), label))
	buf.WriteString(pad)
	buf.WriteByte(' ')
	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		h.appendAttr(&buf, "", a)
	}
	prefix := h.prefix()
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&buf, prefix, a)
		return true
	})
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

func (h *Handler) prefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *Handler) appendAttr(buf *bytes.Buffer, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(buf, prefix, ga)
		}
		return
	}

	key := prefix + a.Key

	value := formatValue(a.Value)
	if h.colors != nil {
		switch a.Key {
		case KeyEntry:
			value = h.colors.entry.Sprint(value)
		case KeyError:
			value = h.colors.err.Sprint(value)
		}
		key = h.colors.key.Sprint(key)
	}

	fmt.Fprintf(buf, " %s=%s", key, value)
}

func formatValue(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		s = v.Time().Format(time.DateTime)
	case slog.KindDuration:
		s = v.Duration().String()
	case slog.KindString:
		s = v.String()
	default:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = v.String()
		}
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.Quote(s)
	}
	return s
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) timeColor() *color.Color {
	if h.colors == nil {
		return nil
	}
	return h.colors.time
}

func (h *Handler) levelColor(level slog.Level) *color.Color {
	if h.colors == nil {
		return nil
	}
	switch {
	case level >= slog.LevelError:
		return h.colors.level[slog.LevelError]
	case level >= slog.LevelWarn:
		return h.colors.level[slog.LevelWarn]
	case level >= slog.LevelInfo:
		return h.colors.level[slog.LevelInfo]
	case level >= slog.LevelDebug:
		return h.colors.level[slog.LevelDebug]
	default:
		return h.colors.level[LevelTrace]
	}
}

// LevelName returns the console label for level, naming LevelTrace TRACE.
func LevelName(level slog.Level) string {
	if level <= LevelTrace {
		return "TRACE"
	}
	return level.String()
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newH := *h
	newH.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	newH.attrs = append(newH.attrs, h.attrs...)
	prefix := h.prefix()
	for _, a := range attrs {
		if a.Key == "" && a.Value.Kind() == slog.KindGroup {
			for _, ga := range a.Value.Group() {
				ga.Key = prefix + ga.Key
				newH.attrs = append(newH.attrs, ga)
			}
			continue
		}
		a.Key = prefix + a.Key
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a new Handler whose later keys are prefixed by name.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.groups = append(append([]string(nil), h.groups...), name)
	return &newH
}
