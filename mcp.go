// Package mcp serves Model Context Protocol requests over JSON-RPC 2.0.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nimbus-tools/weather-mcp/protocol"
	"golang.org/x/exp/jsonrpc2"
)

var (
	_ jsonrpc2.Handler   = (*Handler)(nil)
	_ jsonrpc2.Preempter = (*Handler)(nil)
)

// Handler is the main handler for MCP server implementation.
// Note that exported fields are exported for accessing by generated code. Do not modify them after serving starts.
type Handler struct {
	Capabilities   protocol.ServerCapabilities
	Implementation protocol.Implementation
	Instructions   string

	Prompts       []protocol.Prompt
	PromptHandler serverHandler[protocol.GetPromptRequestParams]

	Tools       []protocol.Tool
	ToolHandler serverHandler[protocol.CallToolRequestParams]

	ResourceHandler   ServerResourceHandler
	ResourceTemplates []ResourceTemplate

	CompletionHandler ServerCompletionHandler

	// cancelFuncByRequestID holds the cancel funcs of in-flight requests, keyed by connection and request id.
	cancelFuncByRequestID sync.Map
}

// serverHandler is a common interface for generated prompt and tool dispatchers.
type serverHandler[Req any] interface {
	Handle(ctx context.Context, method string, req Req) (any, error)
}

// Preempt handles cancellation notifications ahead of the request queue,
// so a request that is still running can be cancelled.
func (h *Handler) Preempt(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	if req.Method != protocol.MethodNotificationsCancelled {
		return nil, jsonrpc2.ErrNotHandled
	}
	var params protocol.NotificationsCancelledRequestParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, jsonrpc2.ErrInvalidParams
	}
	if v, ok := h.cancelFuncByRequestID.LoadAndDelete(requestKey(ctx, params.RequestID)); ok {
		v.(context.CancelFunc)()
	}
	return nil, nil
}

// Handle handles an incoming request.
func (h *Handler) Handle(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	cctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if req.IsCall() {
		key := requestKey(ctx, req.ID.Raw())
		h.cancelFuncByRequestID.Store(key, cancel)
		defer h.cancelFuncByRequestID.Delete(key)
	}

	logger := Logger(cctx, "weather-mcp")

	switch req.Method {
	case protocol.MethodPing:
		return struct{}{}, nil
	case protocol.MethodInitialize:
		var params protocol.InitializeRequestParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, jsonrpc2.ErrInvalidParams
		}
		return &protocol.InitializeResult{
			ProtocolVersion: protocol.NegotiateVersion(params.ProtocolVersion),
			Capabilities:    h.Capabilities,
			ServerInfo:      h.Implementation,
			Instructions:    h.Instructions,
		}, nil
	case protocol.MethodNotificationsInitialized:
		return nil, nil
	case protocol.MethodNotificationsCancelled:
		// Normally consumed by Preempt.
		return h.Preempt(cctx, req)
	case protocol.MethodPromptsList:
		if h.Capabilities.Prompts == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		return &listPromptsResult{Prompts: h.Prompts}, nil
	case protocol.MethodPromptsGet:
		if h.Capabilities.Prompts == nil || h.PromptHandler == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		var params protocol.GetPromptRequestParams
		if err := unmarshalParams(logger, req, &params); err != nil {
			return nil, err
		}
		res, err := h.PromptHandler.Handle(cctx, req.Method, params)
		if err != nil {
			if errors.Is(err, ErrPromptNotFound) {
				return nil, fmt.Errorf("%w: %w", jsonrpc2.ErrInvalidParams, err)
			}
			return nil, fmt.Errorf("failed to handle %s: %w", req.Method, err)
		}
		return res, nil
	case protocol.MethodResourcesList:
		if h.ResourceHandler == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		res, err := h.ResourceHandler.HandleResourcesList(cctx)
		if err != nil {
			return nil, fmt.Errorf("failed to handle %s: %w", req.Method, err)
		}
		return res, nil
	case protocol.MethodResourcesRead:
		if h.ResourceHandler == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		var params ReadResourceRequest
		if err := unmarshalParams(logger, req, &params); err != nil {
			return nil, err
		}
		res, err := h.ResourceHandler.HandleResourcesRead(cctx, &params)
		if err != nil {
			if errors.Is(err, ErrResourceNotFound) {
				return nil, fmt.Errorf("%w: %w", jsonrpc2.ErrInvalidParams, err)
			}
			return nil, fmt.Errorf("failed to handle %s: %w", req.Method, err)
		}
		return res, nil
	case protocol.MethodResourceTemplatesList:
		if h.Capabilities.Resources == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		return &listResourceTemplatesResult{ResourceTemplates: h.ResourceTemplates}, nil
	case protocol.MethodResourcesSubscribe, protocol.MethodResourcesUnsubscribe:
		// Resources are read on demand and never pushed.
		return nil, methodNotSupported(logger, req.Method)
	case protocol.MethodToolsList:
		if h.Capabilities.Tools == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		return &listToolsResult{Tools: h.Tools}, nil
	case protocol.MethodToolsCall:
		if h.Capabilities.Tools == nil || h.ToolHandler == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		var params protocol.CallToolRequestParams
		if err := unmarshalParams(logger, req, &params); err != nil {
			return nil, err
		}
		res, err := h.ToolHandler.Handle(cctx, req.Method, params)
		switch {
		case errors.Is(err, ErrToolNotFound):
			return nil, fmt.Errorf("%w: %w", jsonrpc2.ErrInvalidParams, err)
		case err != nil:
			logger.Warn("tool call failed", "tool", params.Name, "error", err)
			return NewToolErrorResult(err.Error()), nil
		}
		return res, nil
	case protocol.MethodLoggingSetLevel:
		if h.Capabilities.Logging == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		var params protocol.LoggingSetLevelRequestParams
		if err := unmarshalParams(logger, req, &params); err != nil {
			return nil, err
		}
		logLevelFromContext(cctx).Set(slog.Level(params.Level))
		return struct{}{}, nil
	case protocol.MethodCompletionComplete:
		if h.CompletionHandler == nil {
			return nil, methodNotSupported(logger, req.Method)
		}
		var params protocol.CompleteRequestParams
		if err := unmarshalParams(logger, req, &params); err != nil {
			return nil, err
		}
		res, err := h.CompletionHandler.HandleComplete(cctx, &params)
		if err != nil {
			return nil, fmt.Errorf("failed to handle %s: %w", req.Method, err)
		}
		return struct {
			Completion *CompleteResult `json:"completion"`
		}{
			Completion: res,
		}, nil
	default:
		logger.Error("unknown method", "method", req.Method)
		return nil, jsonrpc2.ErrMethodNotFound
	}
}

// connIDKey is a key for retrieving the id of the connection serving a request.
type connIDKey struct{}

func requestKey(ctx context.Context, id any) string {
	conn, _ := ctx.Value(connIDKey{}).(uint64)
	return fmt.Sprintf("%d/%s", conn, protocol.RequestKey(id))
}

func methodNotSupported(logger *slog.Logger, method string) error {
	logger.Error(method + " is not supported")
	return jsonrpc2.ErrMethodNotFound
}

func unmarshalParams(logger *slog.Logger, req *jsonrpc2.Request, v any) error {
	if err := json.Unmarshal(req.Params, v); err != nil {
		logger.Error("failed to unmarshal params", "method", req.Method, "error", err)
		return jsonrpc2.ErrInvalidParams
	}
	return nil
}
