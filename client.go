package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nimbus-tools/weather-mcp/protocol"
	"golang.org/x/exp/jsonrpc2"
)

// LogMessage is a log notification received from a server.
type LogMessage struct {
	Level  protocol.LogLevel `json:"level"`
	Logger string            `json:"logger"`
	Data   json.RawMessage   `json:"data"`
}

// ClientOptions configures a Client.
type ClientOptions struct {
	// Framer defaults to jsonrpc2.RawFramer.
	Framer jsonrpc2.Framer
	// OnLog is called for every log notification from the server.
	OnLog func(LogMessage)
}

// Client is a minimal MCP client used to exercise servers.
type Client struct {
	conn *jsonrpc2.Connection
}

// Connect dials a server and returns a client. Call Initialize before anything else.
func Connect(ctx context.Context, dialer jsonrpc2.Dialer, opts *ClientOptions) (*Client, error) {
	var o ClientOptions
	if opts != nil {
		o = *opts
	}
	if o.Framer == nil {
		o.Framer = jsonrpc2.RawFramer()
	}

	conn, err := jsonrpc2.Dial(ctx, dialer, jsonrpc2.ConnectionOptions{
		Framer: o.Framer,
		Handler: jsonrpc2.HandlerFunc(func(ctx context.Context, req *jsonrpc2.Request) (any, error) {
			if req.Method != protocol.MethodNotificationsMessage {
				return nil, jsonrpc2.ErrMethodNotFound
			}
			if o.OnLog != nil {
				var msg LogMessage
				if err := json.Unmarshal(req.Params, &msg); err == nil {
					o.OnLog(msg)
				}
			}
			return nil, nil
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return &Client{conn: conn}, nil
}

// Close closes the connection.
func (c *Client) Close() error { return c.conn.Close() }

func (c *Client) call(ctx context.Context, method string, params, result any) error {
	if params == nil {
		params = struct{}{}
	}
	if err := c.conn.Call(ctx, method, params).Await(ctx, result); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// Initialize performs the initialization handshake.
func (c *Client) Initialize(ctx context.Context, info protocol.Implementation) (*protocol.InitializeResult, error) {
	var res protocol.InitializeResult
	err := c.call(ctx, protocol.MethodInitialize, &protocol.InitializeRequestParams{
		ProtocolVersion: protocol.LatestProtocolVersion,
		ClientInfo:      info,
	}, &res)
	if err != nil {
		return nil, err
	}
	if err := c.conn.Notify(ctx, protocol.MethodNotificationsInitialized, struct{}{}); err != nil {
		return nil, fmt.Errorf("%s: %w", protocol.MethodNotificationsInitialized, err)
	}
	return &res, nil
}

// Ping checks the server is alive.
func (c *Client) Ping(ctx context.Context) error {
	var res struct{}
	return c.call(ctx, protocol.MethodPing, nil, &res)
}

// ListTools lists the server's tools.
func (c *Client) ListTools(ctx context.Context) ([]protocol.Tool, error) {
	var res listToolsResult
	if err := c.call(ctx, protocol.MethodToolsList, nil, &res); err != nil {
		return nil, err
	}
	return res.Tools, nil
}

// CallTool calls the named tool with args.
func (c *Client) CallTool(ctx context.Context, name string, args any) (*CallToolResult, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	var res CallToolResult
	if err := c.call(ctx, protocol.MethodToolsCall, &protocol.CallToolRequestParams{Name: name, Arguments: raw}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListPrompts lists the server's prompts.
func (c *Client) ListPrompts(ctx context.Context) ([]protocol.Prompt, error) {
	var res listPromptsResult
	if err := c.call(ctx, protocol.MethodPromptsList, nil, &res); err != nil {
		return nil, err
	}
	return res.Prompts, nil
}

// GetPrompt renders the named prompt with args.
func (c *Client) GetPrompt(ctx context.Context, name string, args map[string]string) (*GetPromptResult, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arguments: %w", err)
	}
	var res GetPromptResult
	if err := c.call(ctx, protocol.MethodPromptsGet, &protocol.GetPromptRequestParams{Name: name, Arguments: raw}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListResourceTemplates lists the server's resource templates.
func (c *Client) ListResourceTemplates(ctx context.Context) ([]ResourceTemplate, error) {
	var res listResourceTemplatesResult
	if err := c.call(ctx, protocol.MethodResourceTemplatesList, nil, &res); err != nil {
		return nil, err
	}
	return res.ResourceTemplates, nil
}

// ListResources lists the server's concrete resources.
func (c *Client) ListResources(ctx context.Context) ([]Resource, error) {
	var res ListResourcesResult
	if err := c.call(ctx, protocol.MethodResourcesList, nil, &res); err != nil {
		return nil, err
	}
	return res.Resources, nil
}

// ReadResource reads the resource at uri.
func (c *Client) ReadResource(ctx context.Context, uri string) (*ReadResourceResult, error) {
	var res ReadResourceResult
	if err := c.call(ctx, protocol.MethodResourcesRead, &ReadResourceRequest{URI: uri}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Complete asks for completion values of an argument.
func (c *Client) Complete(ctx context.Context, params *protocol.CompleteRequestParams) (*CompleteResult, error) {
	var res struct {
		Completion CompleteResult `json:"completion"`
	}
	if err := c.call(ctx, protocol.MethodCompletionComplete, params, &res); err != nil {
		return nil, err
	}
	return &res.Completion, nil
}

// SetLogLevel sets the minimum level of log notifications the server sends.
func (c *Client) SetLogLevel(ctx context.Context, level protocol.LogLevel) error {
	var res struct{}
	return c.call(ctx, protocol.MethodLoggingSetLevel, &protocol.LoggingSetLevelRequestParams{Level: level}, &res)
}
