// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

// Command coordd runs an A2A coordination server with the built-in
// supply-chain tools.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/go-a2a/coord"
	"github.com/go-a2a/coord/event"
	"github.com/go-a2a/coord/task"
	"github.com/go-a2a/coord/tools"
)

type cli struct {
	Host        string        `name:"host" env:"COORD_HOST" default:"0.0.0.0" help:"Host to bind to."`
	Port        int           `name:"port" env:"COORD_PORT" default:"8000" help:"Port to listen on."`
	AgentID     string        `name:"agent-id" env:"COORD_AGENT_ID" default:"coordd-001" help:"Agent ID served on the agent card."`
	AgentName   string        `name:"agent-name" env:"COORD_AGENT_NAME" default:"Coordination Service" help:"Agent display name."`
	AgentType   string        `name:"agent-type" env:"COORD_AGENT_TYPE" default:"tool_provider" enum:"orchestrator,logistics,compliance,knowledge,tool_provider" help:"Agent type served on the agent card."`
	Endpoint    string        `name:"endpoint" env:"COORD_ENDPOINT" default:"" help:"Externally reachable base URL. Defaults to http://<host>:<port>."`
	SessionTTL  time.Duration `name:"session-ttl" env:"COORD_SESSION_TTL" default:"30m" help:"Session inactivity expiry."`
	TaskTimeout time.Duration `name:"task-timeout" env:"COORD_TASK_TIMEOUT" default:"30s" help:"Per-task handler timeout."`
	EventBuffer int           `name:"event-buffer" env:"COORD_EVENT_BUFFER" default:"256" help:"Per-observer event buffer size."`
	LogLevel    string        `name:"log-level" env:"COORD_LOG_LEVEL" default:"info" enum:"debug,info,warn,error" help:"Log level."`
}

func main() {
	// Missing .env is fine; flags and real env still apply.
	_ = godotenv.Load()

	var flags cli
	kong.Parse(&flags,
		kong.Name("coordd"),
		kong.Description("A2A coordination server with built-in supply-chain tools."),
		kong.UsageOnError(),
	)

	if err := run(&flags); err != nil {
		fmt.Fprintf(os.Stderr, "coordd: %v\n", err)
		os.Exit(1)
	}
}

func run(flags *cli) error {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel(flags.LogLevel),
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoint := flags.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("http://%s:%d", flags.Host, flags.Port)
	}

	toolRegistry := tools.NewSupplyChainRegistry()

	agentInfo := &coord.AgentInfo{
		AgentID:      flags.AgentID,
		AgentType:    coord.AgentType(flags.AgentType),
		Name:         flags.AgentName,
		Version:      coord.ProtocolVersion,
		Capabilities: toolRegistry.Capabilities(),
		Endpoint:     endpoint,
		Status:       coord.AgentStatusActive,
	}

	registry := coord.NewAgentRegistry()
	if err := registry.Register(agentInfo); err != nil {
		return fmt.Errorf("registering own agent info: %w", err)
	}
	sessions := coord.NewSessionStore()

	broadcaster := event.NewBroadcaster(flags.EventBuffer).WithLogger(logger)
	observers := event.NewWSHandler(broadcaster).WithLogger(logger)

	discovery := coord.NewDiscoveryService(registry, sessions).
		WithPublisher(broadcaster).
		WithLogger(logger)

	dispatcher := coord.NewDispatcher(toolRegistry, sessions).
		WithPublisher(broadcaster).
		WithRecorder(task.NewMemoryStore()).
		WithTimeout(flags.TaskTimeout).
		WithLogger(logger)

	server := coord.NewServer(flags.Host, flags.Port, agentInfo, discovery, dispatcher, registry, sessions).
		WithObservers(observers).
		WithSessionTTL(flags.SessionTTL).
		WithLogger(logger)

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Stop(shutdownCtx)
}

func logLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
