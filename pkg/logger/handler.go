package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
)

// streamHandler sends warn and error records to one handler and
// everything else to another.
type streamHandler struct {
	level slog.Leveler
	out   slog.Handler
	err   slog.Handler
}

func (h *streamHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *streamHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelWarn {
		return h.err.Handle(ctx, r)
	}
	return h.out.Handle(ctx, r)
}

func (h *streamHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &streamHandler{level: h.level, out: h.out.WithAttrs(attrs), err: h.err.WithAttrs(attrs)}
}

func (h *streamHandler) WithGroup(name string) slog.Handler {
	return &streamHandler{level: h.level, out: h.out.WithGroup(name), err: h.err.WithGroup(name)}
}

// lineHandler writes the human readable development format:
//
//	2024-01-02T15:04:05.000Z [INFO] message {"key":"value"}
type lineHandler struct {
	w      io.Writer
	level  slog.Leveler
	attrs  []slog.Attr
	prefix string
	mu     *sync.Mutex
}

func (h *lineHandler) Enabled(_ context.Context, l slog.Level) bool {
	return l >= h.level.Level()
}

func (h *lineHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		putAttr(fields, "", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		putAttr(fields, h.prefix, a)
		return true
	})

	var buf bytes.Buffer
	buf.WriteString(formatTime(r.Time))
	buf.WriteString(" [")
	buf.WriteString(levelName(r.Level))
	buf.WriteString("] ")
	buf.WriteString(r.Message)
	if len(fields) > 0 {
		meta, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		buf.WriteByte(' ')
		buf.Write(meta)
	}
	buf.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(buf.Bytes())
	return err
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		if h.prefix != "" {
			a.Key = h.prefix + a.Key
		}
		next.attrs = append(next.attrs, a)
	}
	return &next
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

func putAttr(dst map[string]any, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			putAttr(dst, p, ga)
		}
		return
	}
	v := a.Value.Any()
	if err, ok := v.(error); ok {
		v = err.Error()
	}
	dst[prefix+a.Key] = v
}
