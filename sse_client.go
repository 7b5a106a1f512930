package mcp

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/exp/jsonrpc2"
)

var _ jsonrpc2.Dialer = (*SSEDialer)(nil)

// SSEDialer dials an MCP server served over HTTP with server-sent events.
type SSEDialer struct {
	// URL is the event stream URL, e.g. http://127.0.0.1:8000/sse.
	URL string
	// Client is used for the stream and for posting messages. Defaults to http.DefaultClient.
	Client *http.Client
	// Header is added to every request.
	Header http.Header
}

// Dial opens the event stream and waits for the server to announce its message endpoint.
// ctx bounds only the handshake; the stream lives until the connection is closed.
func (d *SSEDialer) Dial(ctx context.Context) (io.ReadWriteCloser, error) {
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}
	base, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid SSE URL: %w", err)
	}

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, base.String(), nil)
	if err != nil {
		cancel()
		return nil, err
	}
	d.setHeader(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := client.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("failed to open event stream: unexpected status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("failed to open event stream: unexpected content type %q", ct)
	}

	pr, pw := io.Pipe()
	c := &sseClientConn{
		dialer: d,
		client: client,
		ctx:    streamCtx,
		cancel: cancel,
		body:   resp.Body,
		in:     pr,
	}
	endpoint := make(chan string, 1)
	go c.readEvents(pw, endpoint)

	select {
	case <-ctx.Done():
		c.Close()
		return nil, ctx.Err()
	case ep, ok := <-endpoint:
		if !ok {
			c.Close()
			return nil, errors.New("event stream closed before the endpoint was announced")
		}
		u, err := base.Parse(ep)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("invalid endpoint %q: %w", ep, err)
		}
		c.endpoint = u.String()
	}
	return c, nil
}

func (d *SSEDialer) setHeader(req *http.Request) {
	for k, vs := range d.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
}

// sseClientConn reads messages from the event stream and posts writes to the endpoint.
type sseClientConn struct {
	dialer   *SSEDialer
	client   *http.Client
	endpoint string

	ctx    context.Context
	cancel context.CancelFunc
	body   io.ReadCloser
	in     *io.PipeReader

	closeOnce sync.Once
}

func (c *sseClientConn) Read(p []byte) (int, error) { return c.in.Read(p) }

func (c *sseClientConn) Write(p []byte) (int, error) {
	req, err := http.NewRequestWithContext(c.ctx, http.MethodPost, c.endpoint, bytes.NewReader(bytes.Clone(p)))
	if err != nil {
		return 0, err
	}
	c.dialer.setHeader(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("failed to post message: unexpected status %d", resp.StatusCode)
	}
	return len(p), nil
}

func (c *sseClientConn) Close() error {
	c.closeOnce.Do(func() {
		c.cancel()
		c.body.Close()
		c.in.Close()
	})
	return nil
}

// readEvents parses the event stream. The first endpoint event is sent on endpoint;
// message events are written to pw.
func (c *sseClientConn) readEvents(pw *io.PipeWriter, endpoint chan<- string) {
	announced := false
	defer func() {
		if !announced {
			close(endpoint)
		}
	}()

	r := bufio.NewReader(c.body)
	var (
		event string
		data  []string
	)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			pw.CloseWithError(io.EOF)
			return
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			payload := strings.Join(data, "\n")
			switch event {
			case "endpoint":
				if !announced {
					announced = true
					endpoint <- payload
				}
			case "", "message":
				if payload != "" {
					if _, err := pw.Write([]byte(payload + "\n")); err != nil {
						return
					}
				}
			}
			event, data = "", nil
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
}
