package weather

import (
	"context"
	"strings"

	mcp "github.com/nimbus-tools/weather-mcp"
	"github.com/nimbus-tools/weather-mcp/protocol"
	"golang.org/x/text/cases"
)

const maxCompletionValues = 100

// knownCities are offered as completions for city arguments.
var knownCities = []string{
	"Amsterdam", "Athens", "Auckland", "Bangkok", "Barcelona", "Beijing", "Berlin", "Bogota",
	"Boston", "Brussels", "Buenos Aires", "Cairo", "Cape Town", "Chicago", "Copenhagen",
	"Delhi", "Dubai", "Dublin", "Helsinki", "Hong Kong", "Istanbul", "Jakarta", "Johannesburg",
	"Lagos", "Lima", "Lisbon", "London", "Los Angeles", "Madrid", "Manila", "Melbourne",
	"Mexico City", "Miami", "Milan", "Montreal", "Moscow", "Mumbai", "Nairobi", "New York",
	"Oslo", "Paris", "Prague", "Rome", "San Francisco", "Santiago", "Sao Paulo", "Seattle",
	"Seoul", "Shanghai", "Singapore", "Stockholm", "Sydney", "Taipei", "Tokyo", "Toronto",
	"Vancouver", "Vienna", "Warsaw", "Zurich",
}

// completableArguments lists, per prompt name or resource template URI, the arguments
// that take a city.
var completableArguments = map[protocol.CompletionReferenceType]map[string][]string{
	protocol.CompletionReferenceTypePrompt: {
		"weather_query_prompt":      {"city"},
		"weather_comparison_prompt": {"city1", "city2"},
	},
	protocol.CompletionReferenceTypeResource: {
		"weather://{city_name}": {"city_name"},
	},
}

func (s *Server) HandleComplete(ctx context.Context, req *protocol.CompleteRequestParams) (*mcp.CompleteResult, error) {
	key := req.Ref.Name
	if req.Ref.Type == protocol.CompletionReferenceTypeResource {
		key = req.Ref.URI
	}
	for _, arg := range completableArguments[req.Ref.Type][key] {
		if arg == req.Argument.Name {
			return completeCity(req.Argument.Value), nil
		}
	}
	return &mcp.CompleteResult{Values: []string{}}, nil
}

func completeCity(prefix string) *mcp.CompleteResult {
	fold := cases.Fold()
	p := fold.String(prefix)

	values := []string{}
	for _, c := range knownCities {
		if strings.HasPrefix(fold.String(c), p) {
			values = append(values, c)
		}
	}
	res := &mcp.CompleteResult{Values: values, Total: len(values)}
	if len(values) > maxCompletionValues {
		res.Values = values[:maxCompletionValues]
		res.HasMore = true
	}
	return res
}
