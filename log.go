package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/nimbus-tools/weather-mcp/protocol"
)

// logRecord represents a log record to be sent as a notification.
type logRecord struct {
	JSONRPC string         `json:"jsonrpc"`
	Method  string         `json:"method"`
	Params  map[string]any `json:"params"`
}

// logHandler renders records as JSON and forwards them to the client
// as notifications/message.
type logHandler struct {
	slog.Handler

	name string

	mu      *sync.Mutex
	encoder *json.Encoder
	buf     *bytes.Buffer
}

func (s *logHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	new := *s
	new.Handler = s.Handler.WithAttrs(attrs)
	return &new
}

func (s *logHandler) WithGroup(name string) slog.Handler {
	new := *s
	new.Handler = s.Handler.WithGroup(name)
	return &new
}

func (s *logHandler) Handle(ctx context.Context, r slog.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.Handler.Handle(ctx, r); err != nil {
		return fmt.Errorf("failed to handle log: %w", err)
	}
	data := bytes.TrimSpace(s.buf.Bytes())
	defer s.buf.Reset()

	return s.encoder.Encode(logRecord{
		JSONRPC: "2.0",
		Method:  protocol.MethodNotificationsMessage,
		Params: map[string]any{
			"level":  protocol.LogLevel(r.Level).String(),
			"logger": s.name,
			"data":   json.RawMessage(data),
		},
	})
}

// logWriterKey is a key for retrieving the log writer from the context
type logWriterKey struct{}

// SetLogWriterToContext sets the writer client log notifications are written to.
// Transports call it for every connection they serve.
func SetLogWriterToContext(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, logWriterKey{}, w)
}

// Logger creates a new logger with the given name.
// Note that this logger is for communication with the client, not for process logging.
// The logged messages are sent as notifications to the client. Without a log writer in
// ctx, messages are discarded.
//
// See https://modelcontextprotocol.io/specification/2025-03-26/server/utilities/logging#logging
func Logger(ctx context.Context, name string) *slog.Logger {
	writer, ok := ctx.Value(logWriterKey{}).(io.Writer)
	if !ok {
		writer = io.Discard
	}
	return slog.New(newLogHandler(name, writer, logLevelFromContext(ctx)))
}

// logLevelKey is a key for retrieving the minimum log level of a connection from the context.
type logLevelKey struct{}

// logLevelFromContext returns the level set by logging/setLevel on the connection serving ctx.
// Without one, a fresh info level is returned.
func logLevelFromContext(ctx context.Context) *slog.LevelVar {
	if lv, ok := ctx.Value(logLevelKey{}).(*slog.LevelVar); ok {
		return lv
	}
	return new(slog.LevelVar)
}

func newLogHandler(name string, w io.Writer, level slog.Leveler) *logHandler {
	buf := &bytes.Buffer{}
	return &logHandler{
		name:    name,
		encoder: json.NewEncoder(w),
		buf:     buf,
		mu:      &sync.Mutex{},
		Handler: slog.NewJSONHandler(buf, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if len(groups) != 0 {
					return a
				}
				switch a.Key {
				case slog.TimeKey, slog.LevelKey, slog.SourceKey:
					return slog.Attr{}
				default:
					return a
				}
			},
		}),
	}
}
