// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package tools_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-a2a/coord"
	"github.com/go-a2a/coord/tools"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	t.Parallel()

	r := tools.NewRegistry()
	r.Register(tools.Definition{
		Name:     "noop",
		Category: "test",
	}, func(context.Context, map[string]any) (map[string]any, error) {
		return map[string]any{"ok": true}, nil
	})

	h, err := r.Lookup("noop")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	result, err := h(context.Background(), nil)
	if err != nil {
		t.Fatalf("handler error = %v", err)
	}
	if result["ok"] != true {
		t.Errorf("result = %v, want ok=true", result)
	}
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	t.Parallel()

	r := tools.NewRegistry()
	_, err := r.Lookup("teleport")
	var notFound *coord.HandlerNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("Lookup() error = %v, want *HandlerNotFoundError", err)
	}
	if notFound.TaskType != "teleport" {
		t.Errorf("TaskType = %s, want teleport", notFound.TaskType)
	}
}

func TestRegistry_List(t *testing.T) {
	t.Parallel()

	r := tools.NewSupplyChainRegistry()

	all := r.List("")
	if len(all) != 6 {
		t.Fatalf("List() returned %d tools, want 6", len(all))
	}
	// Registration order is preserved.
	if all[0].Name != "calculate_shipping_cost" {
		t.Errorf("List()[0] = %s, want calculate_shipping_cost", all[0].Name)
	}

	logistics := r.List("logistics")
	if len(logistics) != 4 {
		t.Errorf("List(logistics) returned %d tools, want 4", len(logistics))
	}
	compliance := r.List("compliance")
	if len(compliance) != 2 {
		t.Errorf("List(compliance) returned %d tools, want 2", len(compliance))
	}
}

func TestRegistry_Capabilities(t *testing.T) {
	t.Parallel()

	r := tools.NewSupplyChainRegistry()
	caps := r.Capabilities()
	if len(caps) != 6 {
		t.Fatalf("Capabilities() returned %d, want 6", len(caps))
	}

	info := &coord.AgentInfo{
		AgentID:      "tools-001",
		AgentType:    coord.AgentTypeToolProvider,
		Capabilities: caps,
	}
	if !info.HasCapability("track_shipment") {
		t.Error("HasCapability(track_shipment) = false, want true")
	}
}
