// Package protocol defines the Model Context Protocol messages exchanged by the weather server.
package protocol

import (
	"context"
	"encoding/json"
	"fmt"
)

const (
	ProtocolVersion20250326 = "2025-03-26"
	ProtocolVersion20241105 = "2024-11-05"

	LatestProtocolVersion = ProtocolVersion20250326
)

const (
	MethodPing = "ping"

	MethodInitialize = "initialize"

	MethodPromptsList = "prompts/list"
	MethodPromptsGet  = "prompts/get"

	MethodToolsList = "tools/list"
	MethodToolsCall = "tools/call"

	MethodResourcesList         = "resources/list"
	MethodResourcesRead         = "resources/read"
	MethodResourceTemplatesList = "resources/templates/list"
	MethodResourcesSubscribe    = "resources/subscribe"
	MethodResourcesUnsubscribe  = "resources/unsubscribe"

	MethodNotificationsInitialized = "notifications/initialized"
	MethodNotificationsMessage     = "notifications/message"
	MethodNotificationsCancelled   = "notifications/cancelled"

	MethodCompletionComplete = "completion/complete"

	MethodLoggingSetLevel = "logging/setLevel"
)

// AvailableProtocolVersions lists the protocol versions the server can speak.
var AvailableProtocolVersions = map[string]struct{}{
	ProtocolVersion20250326: {},
	ProtocolVersion20241105: {},
}

// NegotiateVersion returns requested if the server supports it and the latest version otherwise.
func NegotiateVersion(requested string) string {
	if _, ok := AvailableProtocolVersions[requested]; ok {
		return requested
	}
	return LatestProtocolVersion
}

// Implementation describes the name and version of an MCP implementation.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerHandlerFunc is an adapter to allow the use of functions as request handlers.
type ServerHandlerFunc[Req any] func(ctx context.Context, method string, req Req) (any, error)

func (f ServerHandlerFunc[Req]) Handle(ctx context.Context, method string, req Req) (any, error) {
	return f(ctx, method, req)
}

// InitializeRequestParams is sent from the client to the server when it first connects.
type InitializeRequestParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

// ClientCapabilities is the set of capabilities a client announces.
type ClientCapabilities struct {
	Experimental map[string]any   `json:"experimental,omitzero"`
	Roots        *RootsCapability `json:"roots,omitzero"`
}

// RootsCapability represents the client's capability to support roots.
type RootsCapability struct {
	ListChanged bool `json:"listChanged,omitzero"`
}

// InitializeResult is sent from the server in response to initialize.
type InitializeResult struct {
	// ProtocolVersion may differ from the one the client asked for.
	// If the client cannot support it, it must disconnect.
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	// Instructions describe how to use the server and its features.
	Instructions string `json:"instructions,omitempty"`
}

// ServerCapabilities is the set of capabilities a server announces.
type ServerCapabilities struct {
	Prompts      *PromptCapability      `json:"prompts,omitzero"`
	Resources    *ResourceCapability    `json:"resources,omitzero"`
	Tools        *ToolCapability        `json:"tools,omitzero"`
	Experimental map[string]any         `json:"experimental,omitzero"`
	Logging      *LoggingCapability     `json:"logging,omitzero"`
	Completions  *CompletionsCapability `json:"completions,omitzero"`
}

// PromptCapability represents server capabilities for prompts.
type PromptCapability struct {
	ListChanged bool `json:"listChanged,omitzero"`
}

// ResourceCapability represents server capabilities for resources.
type ResourceCapability struct {
	Subscribe   bool `json:"subscribe,omitzero"`
	ListChanged bool `json:"listChanged,omitzero"`
}

// ToolCapability represents server capabilities for tools.
type ToolCapability struct {
	ListChanged bool `json:"listChanged,omitzero"`
}

// LoggingCapability represents server capability for logging.
type LoggingCapability struct{}

// CompletionsCapability represents server capability for completions.
type CompletionsCapability struct{}

// CallToolRequestParams is used by the client to invoke a tool.
type CallToolRequestParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// GetPromptRequestParams is used by the client to render a prompt.
type GetPromptRequestParams struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// NotificationsCancelledRequestParams is sent to cancel a previously issued request.
type NotificationsCancelledRequestParams struct {
	// RequestID is a string or a number, matching the ID of the cancelled request.
	RequestID any    `json:"requestId"`
	Reason    string `json:"reason,omitzero"`
}

// RequestKey normalizes a JSON-RPC request ID into a map key.
// Numbers decoded as float64 and int64 produce the same key.
func RequestKey(id any) string {
	if f, ok := id.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", id)
}

// LoggingSetLevelRequestParams is sent by the client to adjust the log level.
type LoggingSetLevelRequestParams struct {
	Level LogLevel `json:"level"`
}

// Tool is a definition for a tool the client can call.
type Tool struct {
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	// InputSchema is a JSON Schema object defining the expected arguments.
	InputSchema any `json:"inputSchema"`

	Annotations *ToolAnnotations `json:"annotations,omitzero"`
}

// ToolAnnotations are hints describing a Tool to clients.
type ToolAnnotations struct {
	Title           string `json:"title,omitzero"`
	ReadOnlyHint    bool   `json:"readOnlyHint,omitzero"`
	DestructiveHint bool   `json:"destructiveHint,omitzero"`
	IdempotentHint  bool   `json:"idempotentHint,omitzero"`
	OpenWorldHint   bool   `json:"openWorldHint,omitzero"`
}

// Prompt is a prompt template that the server offers.
type Prompt struct {
	Name        string           `json:"name"`
	Description string           `json:"description,omitzero"`
	Arguments   []PromptArgument `json:"arguments,omitzero"`
}

// PromptArgument describes an argument that a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	Required    bool   `json:"required,omitzero"`
}

// DecodeArguments unmarshals tool or prompt arguments into v.
// Missing or null arguments leave v untouched.
func DecodeArguments(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
