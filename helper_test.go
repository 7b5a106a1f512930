package mcp_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	mcp "github.com/nimbus-tools/weather-mcp"
	"github.com/nimbus-tools/weather-mcp/protocol"
	"golang.org/x/exp/jsonrpc2"
)

// newTestHandler returns a handler with an "echo" tool and a "block" tool that waits
// for its request to be cancelled.
func newTestHandler() *mcp.Handler {
	h := &mcp.Handler{
		Capabilities: protocol.ServerCapabilities{
			Tools:   &protocol.ToolCapability{},
			Logging: &protocol.LoggingCapability{},
		},
		Implementation: protocol.Implementation{Name: "Test Server", Version: "0.1.0"},
		Tools: []protocol.Tool{
			{Name: "echo", InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}}}`)},
			{Name: "block", InputSchema: json.RawMessage(`{"type":"object"}`)},
		},
	}
	h.ToolHandler = protocol.ServerHandlerFunc[protocol.CallToolRequestParams](func(ctx context.Context, method string, req protocol.CallToolRequestParams) (any, error) {
		switch req.Name {
		case "echo":
			var in struct {
				Text string `json:"text"`
			}
			if err := protocol.DecodeArguments(req.Arguments, &in); err != nil {
				return nil, err
			}
			mcp.Logger(ctx, "test").Warn("echo", "text", in.Text)
			return mcp.NewToolResult(in.Text), nil
		case "block":
			<-ctx.Done()
			return nil, ctx.Err()
		default:
			return nil, fmt.Errorf("%w: %s", mcp.ErrToolNotFound, req.Name)
		}
	})
	return h
}

type pipeConn struct {
	io.Reader
	w io.WriteCloser
	r io.Closer
}

func (c *pipeConn) Write(p []byte) (int, error) { return c.w.Write(p) }

func (c *pipeConn) Close() error {
	c.w.Close()
	return c.r.Close()
}

type pipeDialer struct{ conn *pipeConn }

func (d pipeDialer) Dial(context.Context) (io.ReadWriteCloser, error) { return d.conn, nil }

// serveStdio serves h over an in-memory stdio transport and returns a dialer for it.
func serveStdio(t *testing.T, h *mcp.Handler) jsonrpc2.Dialer {
	t.Helper()

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, listener, binder := mcp.NewStdioTransport(context.Background(), h, &mcp.StdioTransportOptions{In: inR, Out: outW})
	srv, err := jsonrpc2.Serve(ctx, listener, binder)
	if err != nil {
		t.Fatalf("failed to serve: %v", err)
	}
	t.Cleanup(func() {
		listener.Close()
		srv.Wait()
	})
	return pipeDialer{&pipeConn{Reader: outR, w: inW, r: outR}}
}
