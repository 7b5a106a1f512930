// Package probe checks that a running weather server is reachable by web and MCP clients.
package probe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	mcp "github.com/nimbus-tools/weather-mcp"
	"github.com/nimbus-tools/weather-mcp/protocol"
)

// DefaultTimeout bounds each reachability request.
const DefaultTimeout = 5 * time.Second

// Prober runs probes against a server.
type Prober struct {
	// Client is used for every request. Defaults to http.DefaultClient.
	Client *http.Client
	// Timeout bounds each reachability and preflight request. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (p *Prober) client() *http.Client {
	if p.Client == nil {
		return http.DefaultClient
	}
	return p.Client
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

func (p *Prober) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.Default()
	}
	return p.Logger
}

// Result is the outcome of probing one URL.
type Result struct {
	URL        string
	StatusCode int
	// EventStream reports whether the response is a server-sent event stream.
	EventStream bool
	// AllowOrigin is the Access-Control-Allow-Origin header of the response.
	AllowOrigin string
	// Err is set if the request could not be completed.
	Err error
}

// OK reports whether the URL answered with 200.
func (r *Result) OK() bool { return r.Err == nil && r.StatusCode == http.StatusOK }

// Reachability sends a GET request to every URL. A failing URL is reported in its
// Result and does not stop the others.
func (p *Prober) Reachability(ctx context.Context, origin string, urls []string) []Result {
	results := make([]Result, 0, len(urls))
	for _, u := range urls {
		results = append(results, p.get(ctx, origin, u))
	}
	return results
}

func (p *Prober) get(ctx context.Context, origin, url string) Result {
	res := Result{URL: url}

	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		res.Err = err
		return res
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}

	resp, err := p.client().Do(req)
	if err != nil {
		res.Err = err
		p.logger().DebugContext(ctx, "probe failed", "url", url, "error", err)
		return res
	}
	// Event streams never end, so only the headers are read.
	resp.Body.Close()

	res.StatusCode = resp.StatusCode
	res.EventStream = strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream")
	res.AllowOrigin = resp.Header.Get("Access-Control-Allow-Origin")
	p.logger().DebugContext(ctx, "probe done", "url", url, "status", res.StatusCode, "event_stream", res.EventStream)
	return res
}

// PreflightResult holds the CORS headers of a preflight response.
type PreflightResult struct {
	StatusCode   int
	AllowOrigin  string
	AllowMethods string
	AllowHeaders string
}

// Allowed reports whether the preflight admitted origin.
func (r *PreflightResult) Allowed(origin string) bool {
	ok := r.StatusCode >= 200 && r.StatusCode < 300
	return ok && (r.AllowOrigin == "*" || r.AllowOrigin == origin)
}

// Preflight sends a CORS preflight for a POST with a JSON body from origin.
func (p *Prober) Preflight(ctx context.Context, url, origin string) (*PreflightResult, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodOptions, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")

	resp, err := p.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("preflight failed: %w", err)
	}
	resp.Body.Close()

	return &PreflightResult{
		StatusCode:   resp.StatusCode,
		AllowOrigin:  resp.Header.Get("Access-Control-Allow-Origin"),
		AllowMethods: resp.Header.Get("Access-Control-Allow-Methods"),
		AllowHeaders: resp.Header.Get("Access-Control-Allow-Headers"),
	}, nil
}

// SmokeReport summarizes an MCP session against a server.
type SmokeReport struct {
	Server            protocol.Implementation
	ProtocolVersion   string
	Tools             []string
	Prompts           []string
	ResourceTemplates []string
	// Weather is the text returned by get_current_weather.
	Weather string
	// WeatherIsError is set if the tool reported a failure.
	WeatherIsError bool
	// Resource is the text of weather://{city}.
	Resource string
}

// Smoke connects to the event stream at sseURL and exercises the weather server:
// it lists tools, prompts and resource templates, calls get_current_weather for city
// and reads its weather resource.
func (p *Prober) Smoke(ctx context.Context, sseURL, city string) (*SmokeReport, error) {
	client, err := mcp.Connect(ctx, &mcp.SSEDialer{URL: sseURL, Client: p.client()}, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := client.Close(); cerr != nil && !errors.Is(cerr, context.Canceled) {
			p.logger().DebugContext(ctx, "failed to close client", "error", cerr)
		}
	}()

	ir, err := client.Initialize(ctx, protocol.Implementation{Name: "weather-probe", Version: "1.0.0"})
	if err != nil {
		return nil, err
	}
	report := &SmokeReport{Server: ir.ServerInfo, ProtocolVersion: ir.ProtocolVersion}

	tools, err := client.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		report.Tools = append(report.Tools, t.Name)
	}

	prompts, err := client.ListPrompts(ctx)
	if err != nil {
		return nil, err
	}
	for _, pr := range prompts {
		report.Prompts = append(report.Prompts, pr.Name)
	}

	templates, err := client.ListResourceTemplates(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range templates {
		report.ResourceTemplates = append(report.ResourceTemplates, t.URITemplate)
	}

	res, err := client.CallTool(ctx, "get_current_weather", map[string]string{"city": city})
	if err != nil {
		return nil, err
	}
	report.Weather = res.Text()
	report.WeatherIsError = res.IsError

	read, err := client.ReadResource(ctx, "weather://"+city)
	if err != nil {
		return nil, err
	}
	var sb strings.Builder
	for _, c := range read.Contents {
		sb.WriteString(c.Text)
	}
	report.Resource = sb.String()

	return report, nil
}
