package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/exp/jsonrpc2"
)

const (
	defaultSSEPath     = "/sse"
	defaultMessagePath = "/messages/"

	maxMessageBytes = 4 << 20
)

var errSessionClosed = errors.New("session closed")

// SSETransportOptions configures the SSE transport.
type SSETransportOptions struct {
	// SSEPath is the path of the event stream. Defaults to "/sse".
	SSEPath string
	// MessagePath is the path clients post messages to. Defaults to "/messages/".
	MessagePath string
	// AllowedOrigins lists the origins allowed by CORS. Empty or "*" allows any origin.
	AllowedOrigins []string
	// KeepAlive is the interval of comment lines written to idle streams. Zero disables them.
	KeepAlive time.Duration
	// Logger is the process logger. Defaults to slog.Default().
	Logger *slog.Logger
}

// SSETransport serves MCP over HTTP: clients open an event stream and post their
// messages to the endpoint announced on it.
//
// See https://modelcontextprotocol.io/specification/2024-11-05/basic/transports#http-with-sse
type SSETransport struct {
	ctx     context.Context
	handler *Handler
	opts    SSETransportOptions
	router  chi.Router

	sessions sync.Map // session id -> *sseSession

	done      chan struct{}
	closeOnce sync.Once
}

// NewSSETransport creates a new SSE transport. Requests are served with contexts derived from ctx.
func NewSSETransport(ctx context.Context, handler *Handler, opts *SSETransportOptions) *SSETransport {
	var o SSETransportOptions
	if opts != nil {
		o = *opts
	}
	if o.SSEPath == "" {
		o.SSEPath = defaultSSEPath
	}
	if o.MessagePath == "" {
		o.MessagePath = defaultMessagePath
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	t := &SSETransport{
		ctx:     ctx,
		handler: handler,
		opts:    o,
		done:    make(chan struct{}),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(o.Logger))
	r.Use(CORS(o.AllowedOrigins))
	r.Get(o.SSEPath, t.handleStream)
	r.Post(o.MessagePath, t.handleMessage)
	r.Get("/", t.handleRoot)
	r.Get("/test", t.handleTest)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	t.router = r

	return t
}

func (t *SSETransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	t.router.ServeHTTP(w, r)
}

// Close ends every open event stream. The transport must not be used afterwards.
func (t *SSETransport) Close() error {
	t.closeOnce.Do(func() { close(t.done) })
	return nil
}

// Sessions returns the number of open event streams.
func (t *SSETransport) Sessions() int {
	n := 0
	t.sessions.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (t *SSETransport) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := newSSESession(uuid.NewString())
	b := &binder{
		handler:   t.handler,
		preempter: t.handler,
		framer:    jsonrpc2.RawFramer(),
		logWriter: io.Discard,
	}
	if t.handler.Capabilities.Logging != nil {
		b.logWriter = sess
	}
	conn, err := jsonrpc2.Dial(t.ctx, sessionDialer{sess}, b)
	if err != nil {
		t.opts.Logger.Error("failed to open session", "error", err)
		http.Error(w, "failed to open session", http.StatusInternalServerError)
		return
	}
	t.sessions.Store(sess.id, sess)
	defer t.sessions.Delete(sess.id)
	defer conn.Close()
	// Runs before conn.Close so in-flight writes fail fast instead of blocking on a dead stream.
	defer sess.Close()

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	writeEvent(w, "endpoint", []byte(t.opts.MessagePath+"?session_id="+sess.id))
	flusher.Flush()
	t.opts.Logger.Info("session opened", "session_id", sess.id, "remote", r.RemoteAddr)

	var tick <-chan time.Time
	if t.opts.KeepAlive > 0 {
		ticker := time.NewTicker(t.opts.KeepAlive)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-r.Context().Done():
			t.opts.Logger.Info("session closed", "session_id", sess.id)
			return
		case <-t.done:
			return
		case <-sess.done:
			return
		case msg := <-sess.events:
			writeEvent(w, "message", msg)
			flusher.Flush()
		case <-tick:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		}
	}
}

func (t *SSETransport) handleMessage(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session_id")
	if id == "" {
		http.Error(w, "session_id is required", http.StatusBadRequest)
		return
	}
	v, ok := t.sessions.Load(id)
	if !ok {
		http.Error(w, "Could not find session", http.StatusNotFound)
		return
	}
	sess := v.(*sseSession)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !json.Valid(body) {
		http.Error(w, "Could not parse message", http.StatusBadRequest)
		return
	}
	if err := sess.deliver(r.Context(), body); err != nil {
		http.Error(w, "Could not find session", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusAccepted)
	w.Write([]byte("Accepted"))
}

func (t *SSETransport) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"message": t.handler.Implementation.Name + " is reachable",
		"status":  "working",
	})
}

func (t *SSETransport) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"test":   "success",
		"server": t.handler.Implementation.Name,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeEvent(w io.Writer, event string, data []byte) {
	fmt.Fprintf(w, "event: %s\n", event)
	for _, line := range bytes.Split(data, []byte("\n")) {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprint(w, "\n")
}

// sseSession is the server side of one event stream.
// Messages posted by the client are read from a pipe; every write becomes one event.
type sseSession struct {
	id string

	in  *io.PipeReader
	inW *io.PipeWriter

	events chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newSSESession(id string) *sseSession {
	pr, pw := io.Pipe()
	return &sseSession{
		id:     id,
		in:     pr,
		inW:    pw,
		events: make(chan []byte, 16),
		done:   make(chan struct{}),
	}
}

func (s *sseSession) Read(p []byte) (int, error) { return s.in.Read(p) }

func (s *sseSession) Write(p []byte) (int, error) {
	data := bytes.TrimSpace(p)
	if len(data) == 0 {
		return len(p), nil
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	select {
	case <-s.done:
		return 0, errSessionClosed
	case s.events <- msg:
		return len(p), nil
	}
}

func (s *sseSession) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		s.inW.CloseWithError(io.EOF)
		s.in.Close()
	})
	return nil
}

// deliver hands a message posted by the client to the connection.
func (s *sseSession) deliver(ctx context.Context, msg []byte) error {
	select {
	case <-s.done:
		return errSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if _, err := s.inW.Write(append(msg, '\n')); err != nil {
		return errSessionClosed
	}
	return nil
}

type sessionDialer struct{ sess *sseSession }

func (d sessionDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) { return d.sess, nil }

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
			)
		})
	}
}
