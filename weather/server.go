package weather

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	mcp "github.com/nimbus-tools/weather-mcp"
	"golang.org/x/sync/errgroup"
)

const (
	resourceScheme   = "weather://"
	resourceMimeType = "text/plain"

	helloMessage = "Hello! This response proves the weather server is working!"
)

var (
	_ ServerPromptHandler         = (*Server)(nil)
	_ ServerToolHandler           = (*Server)(nil)
	_ mcp.ServerResourceHandler   = (*Server)(nil)
	_ mcp.ServerCompletionHandler = (*Server)(nil)
)

// Server implements the tools, prompts, resources and completions of the weather server.
type Server struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewServer creates a new Server backed by fetcher. If logger is nil, slog.Default() is used.
func NewServer(fetcher *Fetcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{fetcher: fetcher, logger: logger}
}

// Handler returns the MCP handler serving s.
func (s *Server) Handler() *mcp.Handler {
	return NewHandler(s, s, s, s)
}

func (s *Server) fetch(ctx context.Context, city string) (Record, error) {
	s.logger.DebugContext(ctx, "fetching weather", "city", city, "mock", s.fetcher.Source().Mock())
	rec, err := s.fetcher.Fetch(ctx, city)
	if err != nil {
		s.logger.WarnContext(ctx, "weather fetch failed", "city", city, "kind", KindOf(err), "error", err)
		mcp.Logger(ctx, "weather").Warn("weather fetch failed", "city", city, "error", err.Error())
		return Record{}, err
	}
	mcp.Logger(ctx, "weather").Debug("weather fetched", "city", rec.CityName)
	return rec, nil
}

func (s *Server) HandleToolGetCurrentWeather(ctx context.Context, req *ToolGetCurrentWeatherRequest) (*mcp.CallToolResult, error) {
	rec, err := s.fetch(ctx, req.City)
	text, ferr := FormatJSON(req.City, rec, err)
	if ferr != nil {
		return nil, ferr
	}
	if err != nil {
		return mcp.NewToolErrorResult(text), nil
	}
	return mcp.NewToolResult(text), nil
}

func (s *Server) HandleToolGetWeather(ctx context.Context, req *ToolGetWeatherRequest) (*mcp.CallToolResult, error) {
	rec, err := s.fetch(ctx, req.City)
	if err != nil {
		return mcp.NewToolErrorResult(fmt.Sprintf("Error getting weather for %s: %v", req.City, err)), nil
	}
	return mcp.NewToolResult(FormatSummary(rec)), nil
}

func (s *Server) HandleToolCompareWeather(ctx context.Context, req *ToolCompareWeatherRequest) (*mcp.CallToolResult, error) {
	// Both fetches run to completion so a failure of city1 is reported ahead of city2's.
	var (
		eg   errgroup.Group
		recs [2]Record
		errs [2]error
	)
	for i, city := range []string{req.City1, req.City2} {
		eg.Go(func() error {
			recs[i], errs[i] = s.fetch(ctx, city)
			return nil
		})
	}
	eg.Wait()
	for _, err := range errs {
		if err != nil {
			return mcp.NewToolErrorResult(fmt.Sprintf("Error comparing weather: %v", err)), nil
		}
	}
	return mcp.NewToolResult(FormatComparison(recs[0], recs[1])), nil
}

func (s *Server) HandleToolHello(ctx context.Context, req *ToolHelloRequest) (*mcp.CallToolResult, error) {
	s.logger.DebugContext(ctx, "hello called")
	return mcp.NewToolResult(helloMessage), nil
}

func (s *Server) HandlePromptWeatherQueryPrompt(ctx context.Context, req *PromptWeatherQueryPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Ask for the current weather of " + req.City,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Text: fmt.Sprintf("Please provide the current weather information for %s. "+
						"Include temperature, conditions, and humidity if available.", req.City),
				},
			},
		},
	}, nil
}

func (s *Server) HandlePromptWeatherComparisonPrompt(ctx context.Context, req *PromptWeatherComparisonPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Compare the current weather of %s and %s", req.City1, req.City2),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Text: fmt.Sprintf("Compare the current weather between %s and %s. "+
						"Highlight the differences in temperature, conditions, and humidity. "+
						"Provide insights about which city has better weather conditions today.", req.City1, req.City2),
				},
			},
		},
	}, nil
}

// HandleResourcesList returns no resources: weather is only reachable through the
// weather://{city_name} template.
func (s *Server) HandleResourcesList(ctx context.Context) (*mcp.ListResourcesResult, error) {
	return &mcp.ListResourcesResult{Resources: []mcp.Resource{}}, nil
}

func (s *Server) HandleResourcesRead(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	city, err := cityFromURI(req.URI)
	if err != nil {
		return nil, err
	}

	var text string
	rec, err := s.fetch(ctx, city)
	if err != nil {
		text = fmt.Sprintf("Error fetching weather for %s: %v", city, err)
	} else {
		text = FormatReport(rec)
	}
	return &mcp.ReadResourceResult{
		Contents: []mcp.TextResourceContent{
			{URI: req.URI, MimeType: resourceMimeType, Text: text},
		},
	}, nil
}

// cityFromURI extracts the city of a weather://{city_name} URI.
func cityFromURI(uri string) (string, error) {
	rest, ok := strings.CutPrefix(uri, resourceScheme)
	if !ok {
		return "", fmt.Errorf("%w: %s", mcp.ErrResourceNotFound, uri)
	}
	city, err := url.PathUnescape(strings.TrimSuffix(rest, "/"))
	if err != nil || city == "" || strings.Contains(city, "/") {
		return "", fmt.Errorf("%w: %s", mcp.ErrResourceNotFound, uri)
	}
	return city, nil
}
