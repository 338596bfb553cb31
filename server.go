// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Server exposes the A2A coordination runtime over HTTP: the JSON-RPC
// endpoint, the agent card, registry and session listings, and the
// real-time observer endpoint.
type Server struct {
	// Host is the host to bind to.
	Host string

	// Port is the port to listen on.
	Port int

	// Endpoint is the URL path of the JSON-RPC endpoint.
	Endpoint string

	// AgentInfo is this service's own descriptor, served as its agent
	// card and used as the responder identity in accepted handshakes.
	AgentInfo *AgentInfo

	// Discovery handles handshake and discover methods.
	Discovery *DiscoveryService

	// Dispatcher handles the task method.
	Dispatcher *Dispatcher

	// Registry backs the agent listing endpoint.
	Registry *AgentRegistry

	// Sessions backs the active-session listing endpoint.
	Sessions *SessionStore

	// SessionTTL is the inactivity threshold applied when listing
	// active sessions.
	SessionTTL time.Duration

	// Observers serves the real-time event stream, typically an
	// [event.WSHandler]. Optional.
	Observers http.Handler

	// Logger is the logger to use.
	Logger *slog.Logger

	// Tracer is the tracer to use.
	Tracer trace.Tracer

	// Server is the HTTP server.
	Server *http.Server
}

// NewServer creates a Server with the default endpoint, session TTL,
// logger and tracer.
func NewServer(host string, port int, agentInfo *AgentInfo, discovery *DiscoveryService, dispatcher *Dispatcher, registry *AgentRegistry, sessions *SessionStore) *Server {
	return &Server{
		Host:       host,
		Port:       port,
		Endpoint:   DefaultRPCPath,
		AgentInfo:  agentInfo,
		Discovery:  discovery,
		Dispatcher: dispatcher,
		Registry:   registry,
		Sessions:   sessions,
		SessionTTL: DefaultSessionTTL,
		Logger:     slog.Default(),
		Tracer:     otel.GetTracerProvider().Tracer("github.com/go-a2a/coord"),
	}
}

// WithObservers sets the handler for the /ws observer endpoint.
func (s *Server) WithObservers(h http.Handler) *Server {
	s.Observers = h
	return s
}

// WithSessionTTL sets the inactivity threshold for active-session listing.
func (s *Server) WithSessionTTL(ttl time.Duration) *Server {
	if ttl > 0 {
		s.SessionTTL = ttl
	}
	return s
}

// WithLogger sets the logger for the Server.
func (s *Server) WithLogger(logger *slog.Logger) *Server {
	s.Logger = logger
	return s
}

// WithTracer sets the tracer for the Server.
func (s *Server) WithTracer(tracer trace.Tracer) *Server {
	s.Tracer = tracer
	return s
}

// Start starts the Server. It returns once the listener goroutine is
// launched; use Stop for graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	if err := s.AgentInfo.Validate(); err != nil {
		return fmt.Errorf("invalid agent info: %w", err)
	}
	if s.Discovery == nil || s.Dispatcher == nil {
		return fmt.Errorf("discovery service and dispatcher cannot be nil")
	}

	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	s.Logger.InfoContext(ctx, "starting A2A coordination server", "address", addr, "endpoint", s.Endpoint)

	go func() {
		if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.ErrorContext(ctx, "server error", "error", err)
		}
	}()

	return nil
}

// Stop stops the Server.
func (s *Server) Stop(ctx context.Context) error {
	if s.Server == nil {
		return nil
	}
	return s.Server.Shutdown(ctx)
}

// Handler returns the full route set as an http.Handler: the JSON-RPC
// endpoint plus the agent card, listing, health and observer routes. It
// is exposed for tests and integrators mounting the runtime into an
// existing server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.Endpoint, s.processRequest)
	mux.HandleFunc("/agent", s.handleAgentCard)
	mux.HandleFunc("/agents", s.handleListAgents)
	mux.HandleFunc("/sessions", s.handleListSessions)
	mux.HandleFunc("/health", s.handleHealth)
	if s.Observers != nil {
		mux.Handle("/ws", s.Observers)
	}
	return mux
}

// processRequest is the main handler for the JSON-RPC endpoint.
func (s *Server) processRequest(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.Tracer.Start(r.Context(), "coord.server.processRequest")
	defer span.End()

	// Fault isolation per call: a panic anywhere below surfaces as an
	// internal error on this request and the process keeps serving.
	var reqID []byte
	defer func() {
		if rec := recover(); rec != nil {
			s.Logger.ErrorContext(ctx, "panic while serving request", "panic", rec)
			s.writeError(w, reqID, NewInternalError())
		}
	}()

	if r.Method != http.MethodPost {
		s.writeError(w, nil, NewInvalidRequestError())
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeError(w, nil, NewJSONParseError())
		return
	}

	req, rpcErr := DecodeRequest(body)
	if rpcErr != nil {
		// An invalid envelope may still carry a parseable id; echo it.
		if req != nil {
			reqID = req.ID
		}
		s.writeError(w, reqID, rpcErr)
		return
	}
	reqID = req.ID

	span.SetAttributes(
		attribute.String("a2a.request_id", string(req.ID)),
		attribute.String("a2a.method", req.Method),
	)

	var result any
	switch req.Method {
	case MethodHandshake:
		result, rpcErr = s.handleHandshake(ctx, req)
	case MethodDiscover:
		result, rpcErr = s.handleDiscover(ctx, req)
	case MethodTask:
		result, rpcErr = s.handleTask(ctx, req)
	default:
		rpcErr = NewMethodNotFoundError()
	}

	if rpcErr != nil {
		s.writeError(w, req.ID, rpcErr)
		return
	}
	s.writeResult(w, req.ID, result)
}

// handleHandshake handles the "handshake" method.
func (s *Server) handleHandshake(ctx context.Context, req *JSONRPCRequest) (any, *JSONRPCError) {
	params, rpcErr := DecodeHandshakeParams(req.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.Logger.InfoContext(ctx, "received handshake", "agent_id", params.AgentInfo.AgentID)

	result, err := s.Discovery.AcceptHandshake(ctx, params, s.AgentInfo)
	if err != nil {
		s.Logger.ErrorContext(ctx, "handshake error", "agent_id", params.AgentInfo.AgentID, "error", err)
		return nil, &JSONRPCError{Code: ServerErrorCode, Message: err.Error()}
	}
	return result, nil
}

// handleDiscover handles the "discover" method.
func (s *Server) handleDiscover(ctx context.Context, req *JSONRPCRequest) (any, *JSONRPCError) {
	params, rpcErr := DecodeDiscoverParams(req.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	agents := s.Discovery.DiscoverAgents(ctx, params.AgentType, params.Capability)
	return &DiscoverResult{Agents: agents}, nil
}

// handleTask handles the "task" method.
func (s *Server) handleTask(ctx context.Context, req *JSONRPCRequest) (any, *JSONRPCError) {
	params, rpcErr := DecodeTaskParams(req.Params)
	if rpcErr != nil {
		return nil, rpcErr
	}

	s.Logger.InfoContext(ctx, "received task", "task_type", params.TaskType, "session_id", params.SessionID)

	resp, err := s.Dispatcher.Dispatch(ctx, &params.TaskRequest, params.SessionID)
	if err != nil {
		s.Logger.ErrorContext(ctx, "dispatch fault", "task_type", params.TaskType, "error", err)
		return nil, NewInternalError()
	}
	return resp, nil
}

// handleAgentCard serves this service's own descriptor.
func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.AgentInfo)
}

// handleListAgents serves the full agent registry.
func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, map[string]any{"agents": s.Registry.List(AgentFilter{})})
}

// handleListSessions serves the currently active sessions.
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, map[string]any{"sessions": s.Sessions.ListActive(s.SessionTTL)})
}

// handleHealth is the liveness endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"status": "healthy"})
}

// writeResult writes a JSON-RPC success response.
func (s *Server) writeResult(w http.ResponseWriter, id []byte, result any) {
	raw, err := sonic.ConfigFastest.Marshal(result)
	if err != nil {
		s.Logger.Error("failed to marshal result", "error", err)
		s.writeError(w, id, NewInternalError())
		return
	}

	resp := JSONRPCResponse{
		JSONRPCMessage: NewJSONRPCMessage(id),
		Result:         raw,
	}
	s.writeJSON(w, resp)
}

// writeError writes an error response in JSON-RPC format. The error is
// in the JSON-RPC body, not the HTTP status.
func (s *Server) writeError(w http.ResponseWriter, id []byte, rpcErr *JSONRPCError) {
	resp := JSONRPCResponse{
		JSONRPCMessage: NewJSONRPCMessage(id),
		Error:          rpcErr,
	}
	s.writeJSON(w, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	data, err := sonic.ConfigFastest.Marshal(v)
	if err != nil {
		s.Logger.Error("failed to marshal response", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		s.Logger.Error("failed to write response", "error", err)
	}
}
