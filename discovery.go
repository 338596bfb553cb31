// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/go-a2a/coord/event"
)

// DiscoveryService orchestrates handshake initiation and acceptance plus
// agent-discovery queries against the agent registry and session store.
//
// It performs no retries: handshake failures are reported to the caller,
// whose retry policy governs.
type DiscoveryService struct {
	registry  *AgentRegistry
	sessions  *SessionStore
	publisher event.Publisher

	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewDiscoveryService creates a DiscoveryService backed by the given
// registry and session store.
func NewDiscoveryService(registry *AgentRegistry, sessions *SessionStore) *DiscoveryService {
	return &DiscoveryService{
		registry: registry,
		sessions: sessions,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: slog.Default(),
		tracer: otel.GetTracerProvider().Tracer("github.com/go-a2a/coord"),
	}
}

// WithPublisher sets the event publisher. A nil publisher disables
// event emission.
func (d *DiscoveryService) WithPublisher(p event.Publisher) *DiscoveryService {
	d.publisher = p
	return d
}

// WithHTTPClient sets the HTTP client used for outbound handshake calls.
// The client's timeout bounds every call.
func (d *DiscoveryService) WithHTTPClient(httpClient *http.Client) *DiscoveryService {
	d.httpClient = httpClient
	return d
}

// WithLogger sets the logger for the DiscoveryService.
func (d *DiscoveryService) WithLogger(logger *slog.Logger) *DiscoveryService {
	d.logger = logger
	return d
}

// WithTracer sets the tracer for the DiscoveryService.
func (d *DiscoveryService) WithTracer(tracer trace.Tracer) *DiscoveryService {
	d.tracer = tracer
	return d
}

// InitiateHandshake sends a handshake request built from the initiator's
// descriptor to the agent at targetEndpoint. On acceptance it registers
// both agents, records the session under the responder-issued session id,
// and publishes a handshake_completed event.
//
// A remote decline is returned as a [*HandshakeRejectedError]; a
// transport failure as a [*HandshakeUnreachableError]. Neither is retried
// here.
func (d *DiscoveryService) InitiateHandshake(ctx context.Context, initiator *AgentInfo, targetEndpoint string) (*Session, error) {
	if err := initiator.Validate(); err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, "coord.discovery.InitiateHandshake",
		trace.WithAttributes(
			attribute.String("a2a.agent_id", initiator.AgentID),
			attribute.String("a2a.endpoint", targetEndpoint),
		))
	defer span.End()

	if err := d.registry.Register(initiator); err != nil {
		return nil, err
	}

	client := NewClient(targetEndpoint).
		WithHTTPClient(d.httpClient).
		WithLogger(d.logger).
		WithTracer(d.tracer)

	result, err := client.Handshake(ctx, &HandshakeParams{
		AgentInfo:       initiator,
		ProtocolVersion: ProtocolVersion,
	})
	if err != nil {
		var rpcErr *JSONRPCError
		if errors.As(err, &rpcErr) {
			d.logger.ErrorContext(ctx, "handshake declined",
				"agent_id", initiator.AgentID, "endpoint", targetEndpoint, "code", rpcErr.Code, "error", rpcErr.Message)
			return nil, &HandshakeRejectedError{Endpoint: targetEndpoint, Message: rpcErr.Message}
		}
		d.logger.ErrorContext(ctx, "handshake transport failure",
			"agent_id", initiator.AgentID, "endpoint", targetEndpoint, "error", err)
		return nil, &HandshakeUnreachableError{Endpoint: targetEndpoint, Err: err}
	}
	if !result.Accepted {
		d.logger.ErrorContext(ctx, "handshake rejected",
			"agent_id", initiator.AgentID, "endpoint", targetEndpoint, "message", result.Message)
		return nil, &HandshakeRejectedError{Endpoint: targetEndpoint, Message: result.Message}
	}

	responder := result.AgentInfo
	if err := responder.Validate(); err != nil {
		return nil, &HandshakeRejectedError{Endpoint: targetEndpoint, Message: "responder returned invalid agent info"}
	}
	if err := d.registry.Register(responder); err != nil {
		return nil, err
	}

	sess := d.sessions.CreateWithID(result.SessionID, initiator, responder)

	d.logger.InfoContext(ctx, "handshake established",
		"initiator", initiator.AgentID, "responder", responder.AgentID, "session_id", sess.SessionID)
	d.publish(event.TypeHandshakeCompleted, map[string]any{
		"initiator":  initiator.AgentID,
		"responder":  responder.AgentID,
		"session_id": sess.SessionID,
		"endpoint":   targetEndpoint,
	})

	return sess, nil
}

// AcceptHandshake is the receiving side of a handshake. The requester is
// recorded in the registry without any credential check
// (trust-on-registration) and a session is always created; the only
// rejection path is malformed input, which the envelope decoding layer
// handles before this point.
func (d *DiscoveryService) AcceptHandshake(ctx context.Context, params *HandshakeParams, responder *AgentInfo) (*HandshakeResult, error) {
	requester := params.AgentInfo
	if err := requester.Validate(); err != nil {
		return nil, err
	}

	ctx, span := d.tracer.Start(ctx, "coord.discovery.AcceptHandshake",
		trace.WithAttributes(attribute.String("a2a.agent_id", requester.AgentID)))
	defer span.End()
	if err := d.registry.Register(requester); err != nil {
		return nil, err
	}

	sess := d.sessions.Create(requester, responder)

	d.logger.InfoContext(ctx, "handshake accepted",
		"agent_id", requester.AgentID, "agent_type", requester.AgentType, "session_id", sess.SessionID)
	d.publish(event.TypeAgentConnected, map[string]any{
		"agent_id":   requester.AgentID,
		"agent_type": string(requester.AgentType),
		"session_id": sess.SessionID,
	})

	return &HandshakeResult{
		AgentInfo: responder,
		Accepted:  true,
		SessionID: sess.SessionID,
		Message:   "Handshake accepted successfully",
	}, nil
}

// DiscoverAgents returns all registered agents matching the given type
// and capability filters. An empty result is a normal outcome, never an
// error.
func (d *DiscoveryService) DiscoverAgents(ctx context.Context, agentType AgentType, capability string) []*AgentInfo {
	_, span := d.tracer.Start(ctx, "coord.discovery.DiscoverAgents",
		trace.WithAttributes(
			attribute.String("a2a.agent_type", string(agentType)),
			attribute.String("a2a.capability", capability),
		))
	defer span.End()

	return d.registry.List(AgentFilter{
		AgentType:  agentType,
		Capability: capability,
	})
}

func (d *DiscoveryService) publish(eventType string, data map[string]any) {
	if d.publisher == nil {
		return
	}
	d.publisher.Publish(eventType, data)
}
