// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "go-a2a/coord " + ProtocolVersion
)

// Client is an outbound JSON-RPC client for one remote A2A endpoint.
type Client struct {
	// HTTPClient is the HTTP client used for requests.
	HTTPClient *http.Client

	// URL is the JSON-RPC URL of the remote agent, derived from its
	// advertised endpoint plus [DefaultRPCPath].
	URL string

	// Logger for logging operations.
	Logger *slog.Logger

	// Tracer for OpenTelemetry tracing.
	Tracer trace.Tracer
}

// NewClient creates a Client for the agent at the given base endpoint,
// e.g. "http://host:port".
func NewClient(endpoint string) *Client {
	return &Client{
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		URL:    strings.TrimRight(endpoint, "/") + DefaultRPCPath,
		Logger: slog.Default(),
		Tracer: otel.GetTracerProvider().Tracer("github.com/go-a2a/coord"),
	}
}

// WithHTTPClient sets the HTTP client for the Client. The HTTP client's
// timeout bounds every outbound call.
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.HTTPClient = httpClient
	return c
}

// WithLogger sets the logger for the Client.
func (c *Client) WithLogger(logger *slog.Logger) *Client {
	c.Logger = logger
	return c
}

// WithTracer sets the tracer for the Client.
func (c *Client) WithTracer(tracer trace.Tracer) *Client {
	c.Tracer = tracer
	return c
}

// Handshake performs the "handshake" method against the remote agent.
// A transport failure is returned as-is; a JSON-RPC error or an
// unaccepted result must be classified by the caller.
func (c *Client) Handshake(ctx context.Context, params *HandshakeParams) (*HandshakeResult, error) {
	var result HandshakeResult
	if err := c.Call(ctx, MethodHandshake, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Discover performs the "discover" method against the remote agent.
func (c *Client) Discover(ctx context.Context, params *DiscoverParams) (*DiscoverResult, error) {
	var result DiscoverResult
	if err := c.Call(ctx, MethodDiscover, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SendTask performs the "task" method against the remote agent.
func (c *Client) SendTask(ctx context.Context, params *TaskParams) (*TaskResponse, error) {
	var result TaskResponse
	if err := c.Call(ctx, MethodTask, params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Call sends one JSON-RPC request and decodes the result into out.
// A JSON-RPC error response is returned as a [*JSONRPCError]; everything
// else is a transport-level failure.
func (c *Client) Call(ctx context.Context, method string, params, out any) error {
	id := uuid.NewString()
	ctx, span := c.Tracer.Start(ctx, "coord.client.Call",
		trace.WithAttributes(
			attribute.String("a2a.method", method),
			attribute.String("a2a.request_id", id),
		))
	defer span.End()

	data, err := makeRequest(method, params, id)
	if err != nil {
		c.Logger.ErrorContext(ctx, "failed to create request", "method", method, "error", err)
		return fmt.Errorf("failed to create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.ErrorContext(ctx, "request failed", "method", method, "url", c.URL, "error", err)
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	var rpcResp JSONRPCResponse
	if err := sonic.ConfigFastest.Unmarshal(body, &rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil && rpcResp.Result != nil {
		if err := sonic.ConfigFastest.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode result: %w", err)
		}
	}
	return nil
}

// makeRequest creates a JSON-RPC request body from a method and params.
func makeRequest(method string, params any, id string) ([]byte, error) {
	rawID, err := json.Marshal(id)
	if err != nil {
		return nil, err
	}

	var rawParams json.RawMessage
	if params != nil {
		rawParams, err = sonic.ConfigFastest.Marshal(params)
		if err != nil {
			return nil, err
		}
	}

	return sonic.ConfigFastest.Marshal(JSONRPCRequest{
		JSONRPCMessage: NewJSONRPCMessage(rawID),
		Method:         method,
		Params:         rawParams,
	})
}
