package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nimbus-tools/weather-mcp/probe"
)

func main() {
	base := flag.String("base", "http://127.0.0.1:8000", "base URL of the weather server")
	origin := flag.String("origin", "https://example.com", "origin sent with reachability and CORS checks")
	city := flag.String("city", "London", "city used by the MCP smoke test")
	smoke := flag.Bool("smoke", true, "run the MCP smoke test over SSE")
	verbose := flag.Bool("v", false, "log every request")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	urls := flag.Args()
	if len(urls) == 0 {
		b := strings.TrimSuffix(*base, "/")
		urls = []string{b + "/sse", b, b + "/test", b + "/healthz"}
	}

	p := &probe.Prober{Timeout: probe.DefaultTimeout, Logger: logger}
	if !runProbe(context.Background(), os.Stdout, p, strings.TrimSuffix(*base, "/"), *origin, *city, urls, *smoke) {
		os.Exit(1)
	}
}

// runProbe prints the report and returns whether every check passed.
func runProbe(ctx context.Context, w io.Writer, p *probe.Prober, base, origin, city string, urls []string, smoke bool) bool {
	ok := true

	fmt.Fprintln(w, "Reachability:")
	for _, r := range p.Reachability(ctx, origin, urls) {
		switch {
		case r.Err != nil:
			ok = false
			fmt.Fprintf(w, "  FAIL %s: %v\n", r.URL, r.Err)
		case !r.OK():
			ok = false
			fmt.Fprintf(w, "  FAIL %s: status %d\n", r.URL, r.StatusCode)
		default:
			fmt.Fprintf(w, "  ok   %s: status %d, event stream: %t, allow origin: %q\n", r.URL, r.StatusCode, r.EventStream, r.AllowOrigin)
		}
	}

	fmt.Fprintln(w, "CORS preflight:")
	pre, err := p.Preflight(ctx, base+"/sse", origin)
	switch {
	case err != nil:
		ok = false
		fmt.Fprintf(w, "  FAIL %v\n", err)
	case !pre.Allowed(origin):
		ok = false
		fmt.Fprintf(w, "  FAIL status %d, allow origin: %q\n", pre.StatusCode, pre.AllowOrigin)
	default:
		fmt.Fprintf(w, "  ok   allow origin: %q, methods: %q, headers: %q\n", pre.AllowOrigin, pre.AllowMethods, pre.AllowHeaders)
	}

	if !smoke {
		return ok
	}

	fmt.Fprintln(w, "MCP smoke test:")
	sctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	report, err := p.Smoke(sctx, base+"/sse", city)
	if err != nil {
		fmt.Fprintf(w, "  FAIL %v\n", err)
		return false
	}
	fmt.Fprintf(w, "  server: %s %s (protocol %s)\n", report.Server.Name, report.Server.Version, report.ProtocolVersion)
	fmt.Fprintf(w, "  tools: %s\n", strings.Join(report.Tools, ", "))
	fmt.Fprintf(w, "  prompts: %s\n", strings.Join(report.Prompts, ", "))
	fmt.Fprintf(w, "  resource templates: %s\n", strings.Join(report.ResourceTemplates, ", "))
	fmt.Fprintf(w, "  get_current_weather(%s):\n%s\n", city, indent(report.Weather))
	fmt.Fprintf(w, "  weather://%s:\n%s\n", city, indent(report.Resource))
	if report.WeatherIsError {
		ok = false
	}
	return ok
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "    " + l
	}
	return strings.Join(lines, "\n")
}
