package weather

import "github.com/nimbus-tools/weather-mcp/codegen"

// ServerDefinition describes the tools, prompts and resources of the weather server.
// weather/mcp.gen.go is generated from it by cmd/mcpgen.
func ServerDefinition() *codegen.ServerDefinition {
	readOnly := &codegen.ToolAnnotations{ReadOnlyHint: true, OpenWorldHint: true}

	return &codegen.ServerDefinition{
		Capabilities: codegen.ServerCapabilities{
			Prompts:     &codegen.PromptCapability{},
			Resources:   &codegen.ResourceCapability{},
			Tools:       &codegen.ToolCapability{},
			Logging:     &codegen.LoggingCapability{},
			Completions: &codegen.CompletionsCapability{},
		},
		Implementation: codegen.Implementation{
			Name:    "Weather Server",
			Version: "1.0.0",
		},
		Instructions: "Current weather by city name. Use get_current_weather for JSON, get_weather for text, " +
			"compare_weather for two cities, or read weather://{city_name}.",
		Prompts: []codegen.Prompt{
			{
				Name:        "weather_query_prompt",
				Description: "Ask for the current weather of a city",
				Arguments: []codegen.PromptArgument{
					{Name: "city", Description: "Name of the city to query weather for", Required: true},
				},
			},
			{
				Name:        "weather_comparison_prompt",
				Description: "Compare the current weather of two cities",
				Arguments: []codegen.PromptArgument{
					{Name: "city1", Description: "First city to compare", Required: true},
					{Name: "city2", Description: "Second city to compare", Required: true},
				},
			},
		},
		Tools: []codegen.Tool{
			{
				Name:        "get_current_weather",
				Description: "Fetch the current weather for a city as JSON",
				InputSchema: struct {
					City string `json:"city" jsonschema:"description=Name of the city to get weather for,minLength=1"`
				}{},
				Annotations: readOnly,
			},
			{
				Name:        "get_weather",
				Description: "Get the current weather for a city as formatted text",
				InputSchema: struct {
					City string `json:"city" jsonschema:"description=The name of the city,minLength=1"`
				}{},
				Annotations: readOnly,
			},
			{
				Name:        "compare_weather",
				Description: "Compare the current weather of two cities",
				InputSchema: struct {
					City1 string `json:"city1" jsonschema:"description=First city name,minLength=1"`
					City2 string `json:"city2" jsonschema:"description=Second city name,minLength=1"`
				}{},
				Annotations: readOnly,
			},
			{
				Name:        "hello",
				Description: "Simple test tool that always works",
				InputSchema: struct{}{},
				Annotations: &codegen.ToolAnnotations{ReadOnlyHint: true, IdempotentHint: true},
			},
		},
		ResourceTemplates: []codegen.ResourceTemplate{
			{
				URITemplate: "weather://{city_name}",
				Name:        "Current Weather",
				Description: "Current weather report for a city, e.g. weather://London",
				MimeType:    "text/plain",
			},
		},
	}
}
