package codegen

// ServerCapabilities represents the capabilities that a server may support.
//
// https://modelcontextprotocol.io/specification/2025-03-26/basic/lifecycle
type ServerCapabilities struct {
	// Prompts is present if the server offers any prompt templates.
	Prompts *PromptCapability
	// Resources is present if the server offers any resources to read.
	Resources *ResourceCapability
	// Tools is present if the server offers any tools to call.
	Tools *ToolCapability
	// Completions is present if the server supports argument autocompletion suggestions.
	Completions *CompletionsCapability
	// Logging is present if the server supports sending log messages to the client.
	Logging *LoggingCapability
}

// PromptCapability represents server capability for prompts.
// The prompt list is fixed at generation time, so ListChanged is never announced.
type PromptCapability struct{}

// ResourceCapability represents server capability for resources.
// Resources are read on demand and never pushed, so neither subscriptions nor ListChanged are announced.
type ResourceCapability struct{}

// ToolCapability represents server capability for tools.
// The tool list is fixed at generation time, so ListChanged is never announced.
type ToolCapability struct{}

// LoggingCapability represents server capability for logging.
type LoggingCapability struct{}

// CompletionsCapability represents server capability for completions.
type CompletionsCapability struct{}

// Implementation describes the name and version of an MCP implementation.
type Implementation struct {
	Name    string
	Version string
}

// Prompt represents a prompt template that the server offers.
type Prompt struct {
	Name        string
	Description string
	Arguments   []PromptArgument
}

// PromptArgument describes an argument that a prompt can accept.
// Arguments are always strings. Required arguments must be non-empty.
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// Tool represents a definition for a tool the client can call.
type Tool struct {
	Name        string
	Description string
	// InputSchema is a Go struct value describing the tool's arguments.
	// Field tags follow https://github.com/invopop/jsonschema.
	InputSchema any
	// Annotations are optional hints about the tool's behavior.
	Annotations *ToolAnnotations
}

// ToolAnnotations are hints describing a tool to clients.
type ToolAnnotations struct {
	Title           string
	ReadOnlyHint    bool
	DestructiveHint bool
	IdempotentHint  bool
	OpenWorldHint   bool
}

// ResourceTemplate represents a template description for resources available on the server.
type ResourceTemplate struct {
	// URITemplate is an RFC 6570 URI template.
	URITemplate string
	Name        string
	Description string
	MimeType    string
}

// ServerDefinition represents the definition of an MCP server.
type ServerDefinition struct {
	Capabilities   ServerCapabilities
	Implementation Implementation
	// Instructions describe how to use the server. Sent in the initialize result.
	Instructions string

	Prompts           []Prompt
	ResourceTemplates []ResourceTemplate
	Tools             []Tool
}
