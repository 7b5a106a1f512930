package mcp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/exp/jsonrpc2"
)

// stdio joins a reader and a writer into a connection. Writes are serialized so that
// responses and log notifications never interleave.
type stdio struct {
	in  io.ReadCloser
	out io.WriteCloser
	mu  *sync.Mutex
}

func (s stdio) Read(p []byte) (n int, err error) { return s.in.Read(p) }

func (s stdio) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s stdio) Close() error { return errors.Join(s.in.Close(), s.out.Close()) }

type stdioDialer struct{ stdio }

func (d *stdioDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) { return d.stdio, nil }

// stdioListener hands out a single connection over stdin and stdout. Once that
// connection is closed the listener is closed too, so the server stops when stdin ends.
type stdioListener struct {
	stdio

	conn      chan io.ReadWriteCloser
	closed    chan struct{}
	closeOnce sync.Once
}

func newStdioListener(s stdio) *stdioListener {
	l := &stdioListener{
		stdio:  s,
		conn:   make(chan io.ReadWriteCloser, 1),
		closed: make(chan struct{}),
	}
	l.conn <- &stdioCloser{stdio: s, close: l.Close}
	return l
}

type stdioCloser struct {
	stdio
	close func() error
}

func (c *stdioCloser) Close() error { return c.close() }

func (l *stdioListener) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.closed:
		return nil, io.EOF
	case c := <-l.conn:
		return c, nil
	}
}

func (l *stdioListener) Close() error {
	var err error
	l.closeOnce.Do(func() {
		close(l.closed)
		err = l.stdio.Close()
	})
	return err
}

func (l *stdioListener) Dialer() jsonrpc2.Dialer { return &stdioDialer{stdio: l.stdio} }

// lineFramer reads a stream of JSON values and writes one JSON value per line.
type lineFramer struct{}

func (lineFramer) Reader(r io.Reader) jsonrpc2.Reader { return jsonrpc2.RawFramer().Reader(r) }

func (lineFramer) Writer(w io.Writer) jsonrpc2.Writer { return &lineWriter{w: w} }

type lineWriter struct {
	w io.Writer
}

func (w *lineWriter) Write(ctx context.Context, msg jsonrpc2.Message) (int64, error) {
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	default:
	}
	data, err := jsonrpc2.EncodeMessage(msg)
	if err != nil {
		return 0, err
	}
	n, err := w.w.Write(append(data, '\n'))
	return int64(n), err
}

// binder is an implementation of jsonrpc2.Binder.
// Every bound connection gets its own id and log level, so request ids and
// logging/setLevel of different clients never interfere.
type binder struct {
	handler   jsonrpc2.Handler
	preempter jsonrpc2.Preempter
	framer    jsonrpc2.Framer
	logWriter io.Writer
}

var connSeq atomic.Uint64

func (b *binder) Bind(ctx context.Context, conn *jsonrpc2.Connection) (jsonrpc2.ConnectionOptions, error) {
	id := connSeq.Add(1)
	level := new(slog.LevelVar)
	opts := jsonrpc2.ConnectionOptions{
		Framer: b.framer,
		Handler: jsonrpc2.HandlerFunc(func(ctx context.Context, req *jsonrpc2.Request) (any, error) {
			ctx = SetLogWriterToContext(ctx, b.logWriter)
			ctx = context.WithValue(ctx, logLevelKey{}, level)
			ctx = context.WithValue(ctx, connIDKey{}, id)
			return b.handler.Handle(ctx, req)
		}),
	}
	if b.preempter != nil {
		opts.Preempter = preempterFunc(func(ctx context.Context, req *jsonrpc2.Request) (any, error) {
			return b.preempter.Preempt(context.WithValue(ctx, connIDKey{}, id), req)
		})
	}
	return opts, nil
}

type preempterFunc func(ctx context.Context, req *jsonrpc2.Request) (any, error)

func (f preempterFunc) Preempt(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	return f(ctx, req)
}

type StdioTransportOptions struct {
	// Preempter is the preempter for the transport.
	// If this is not set, the handler preempts cancellation notifications.
	Preempter jsonrpc2.Preempter
	// In and Out replace os.Stdin and os.Stdout.
	In  io.ReadCloser
	Out io.WriteCloser
}

// NewStdioTransport creates a new stdio transport. The server returned by jsonrpc2.Serve
// stops with io.EOF once the client closes stdin.
//
// See https://modelcontextprotocol.io/specification/2025-03-26/basic/transports#stdio
func NewStdioTransport(
	ctx context.Context,
	handler *Handler,
	opts *StdioTransportOptions,
) (context.Context, jsonrpc2.Listener, jsonrpc2.Binder) {
	if opts == nil {
		opts = &StdioTransportOptions{}
	}
	if opts.Preempter == nil {
		opts.Preempter = handler
	}
	in, out := opts.In, opts.Out
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}

	s := stdio{in: in, out: out, mu: &sync.Mutex{}}
	var w io.Writer = io.Discard
	if handler.Capabilities.Logging != nil {
		w = s
	}
	ctx = SetLogWriterToContext(ctx, w)

	listener := newStdioListener(s)
	b := &binder{handler: handler, preempter: opts.Preempter, framer: lineFramer{}, logWriter: w}

	return ctx, listener, b
}
