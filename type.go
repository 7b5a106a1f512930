package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/nimbus-tools/weather-mcp/protocol"
)

var (
	// ErrToolNotFound is returned by tool handlers for an unknown tool name.
	ErrToolNotFound = errors.New("tool not found")
	// ErrPromptNotFound is returned by prompt handlers for an unknown prompt name.
	ErrPromptNotFound = errors.New("prompt not found")
	// ErrResourceNotFound is returned by resource handlers for a URI they do not serve.
	ErrResourceNotFound = errors.New("resource not found")
)

// ListResourcesResult is the server's response to resources/list.
type ListResourcesResult struct {
	NextCursor string     `json:"nextCursor,omitzero"`
	Resources  []Resource `json:"resources"`
}

type listResourceTemplatesResult struct {
	NextCursor        string             `json:"nextCursor,omitzero"`
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
}

// ServerResourceHandler handles resource requests.
type ServerResourceHandler interface {
	HandleResourcesList(ctx context.Context) (*ListResourcesResult, error)
	HandleResourcesRead(ctx context.Context, req *ReadResourceRequest) (*ReadResourceResult, error)
}

// ReadResourceRequest is sent from the client to read a specific resource URI.
type ReadResourceRequest struct {
	URI string `json:"uri"`
}

// ReadResourceResult is the server's response to resources/read.
type ReadResourceResult struct {
	Contents []TextResourceContent `json:"contents"`
}

// Resource is a concrete resource the server can read.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	MimeType    string `json:"mimeType,omitzero"`
}

// ResourceTemplate describes a family of resources addressed by an RFC 6570 URI template.
type ResourceTemplate struct {
	URITemplate string `json:"uriTemplate"`
	Name        string `json:"name"`
	Description string `json:"description,omitzero"`
	// MimeType is set only if every matching resource has the same type.
	MimeType string `json:"mimeType,omitzero"`
}

// TextResourceContent is the textual content of a resource.
type TextResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitzero"`
	Text     string `json:"text"`
}

type listPromptsResult struct {
	NextCursor string            `json:"nextCursor,omitzero"`
	Prompts    []protocol.Prompt `json:"prompts"`
}

// GetPromptResult is the server's response to prompts/get.
type GetPromptResult struct {
	Description string          `json:"description,omitzero"`
	Messages    []PromptMessage `json:"messages"`
}

// Role is the sender or recipient of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PromptMessage is a message returned as part of a prompt.
type PromptMessage struct {
	Role    Role        `json:"role"`
	Content TextContent `json:"content"`
}

// TextContent is a text content block.
type TextContent struct {
	Text string
}

func (t TextContent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}{
		Type: "text",
		Text: t.Text,
	})
}

func (t *TextContent) UnmarshalJSON(b []byte) error {
	var v struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	if v.Type != "text" {
		return errors.New("unsupported content type: " + v.Type)
	}
	t.Text = v.Text
	return nil
}

type listToolsResult struct {
	NextCursor string          `json:"nextCursor,omitzero"`
	Tools      []protocol.Tool `json:"tools"`
}

// CallToolResult is the server's response to a tool call.
// Errors that originate from the tool are reported here with IsError set,
// not as a protocol-level error, so the model can see them and self-correct.
type CallToolResult struct {
	Content []TextContent `json:"content"`
	IsError bool          `json:"isError,omitzero"`
}

// Text returns the concatenated text of the result's content blocks.
func (r *CallToolResult) Text() string {
	var s string
	for _, c := range r.Content {
		s += c.Text
	}
	return s
}

// NewToolResult returns a successful tool result carrying text.
func NewToolResult(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{{Text: text}}}
}

// NewToolErrorResult returns a failed tool result carrying text.
func NewToolErrorResult(text string) *CallToolResult {
	return &CallToolResult{Content: []TextContent{{Text: text}}, IsError: true}
}

// CompleteResult holds completion values for an argument.
type CompleteResult struct {
	// Values must not exceed 100 items.
	Values  []string `json:"values"`
	Total   int      `json:"total,omitzero"`
	HasMore bool     `json:"hasMore,omitzero"`
}

// ServerCompletionHandler handles completion/complete requests.
type ServerCompletionHandler interface {
	HandleComplete(ctx context.Context, req *protocol.CompleteRequestParams) (*CompleteResult, error)
}
