// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package coord_test

import (
	"encoding/json"
	"testing"

	gocmp "github.com/google/go-cmp/cmp"

	"github.com/go-a2a/coord"
)

func TestDecodeRequest(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body     string
		wantCode int
		// wantID is the raw id salvaged from an invalid envelope; empty
		// means no request is returned at all.
		wantID string
	}{
		"valid request": {
			body: `{"jsonrpc":"2.0","id":"1","method":"discover","params":{}}`,
		},
		"numeric id": {
			body: `{"jsonrpc":"2.0","id":7,"method":"discover"}`,
		},
		"null id": {
			body: `{"jsonrpc":"2.0","id":null,"method":"discover"}`,
		},
		"malformed json": {
			body:     `{"jsonrpc":"2.0",`,
			wantCode: coord.JSONParseErrorCode,
		},
		"wrong version": {
			body:     `{"jsonrpc":"1.0","id":"1","method":"discover"}`,
			wantCode: coord.InvalidRequestErrorCode,
			wantID:   `"1"`,
		},
		"missing version": {
			body:     `{"id":"2","method":"discover"}`,
			wantCode: coord.InvalidRequestErrorCode,
			wantID:   `"2"`,
		},
		"missing method": {
			body:     `{"jsonrpc":"2.0","id":3}`,
			wantCode: coord.InvalidRequestErrorCode,
			wantID:   `3`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req, rpcErr := coord.DecodeRequest([]byte(tt.body))
			if tt.wantCode != 0 {
				if rpcErr == nil {
					t.Fatal("DecodeRequest() error = nil, want error")
				}
				if rpcErr.Code != tt.wantCode {
					t.Errorf("DecodeRequest() error code = %d, want %d", rpcErr.Code, tt.wantCode)
				}
				switch {
				case tt.wantID == "":
					if req != nil {
						t.Errorf("DecodeRequest() = %v, want nil", req)
					}
				case req == nil:
					t.Error("DecodeRequest() = nil, want salvaged request")
				default:
					if got := string(req.ID); got != tt.wantID {
						t.Errorf("DecodeRequest() id = %s, want %s", got, tt.wantID)
					}
				}
				return
			}
			if rpcErr != nil {
				t.Fatalf("DecodeRequest() error = %v, want nil", rpcErr)
			}
			if req == nil {
				t.Fatal("DecodeRequest() = nil, want request")
			}
		})
	}
}

func TestDecodeRequest_PreservesRawID(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body   string
		wantID string
	}{
		"string id": {
			body:   `{"jsonrpc":"2.0","id":"req-001","method":"task"}`,
			wantID: `"req-001"`,
		},
		"numeric id": {
			body:   `{"jsonrpc":"2.0","id":42,"method":"task"}`,
			wantID: `42`,
		},
		"null id": {
			body:   `{"jsonrpc":"2.0","id":null,"method":"task"}`,
			wantID: `null`,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req, rpcErr := coord.DecodeRequest([]byte(tt.body))
			if rpcErr != nil {
				t.Fatalf("DecodeRequest() error = %v", rpcErr)
			}
			if got := string(req.ID); got != tt.wantID {
				t.Errorf("DecodeRequest() id = %s, want %s", got, tt.wantID)
			}
		})
	}
}

func TestDecodeHandshakeParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params  string
		wantErr bool
	}{
		"valid": {
			params: `{"agent_info":{"agent_id":"agent-1","agent_type":"logistics"},"protocol_version":"1.0"}`,
		},
		"missing agent info": {
			params:  `{"protocol_version":"1.0"}`,
			wantErr: true,
		},
		"missing agent id": {
			params:  `{"agent_info":{"agent_type":"logistics"}}`,
			wantErr: true,
		},
		"missing agent type": {
			params:  `{"agent_info":{"agent_id":"agent-1"}}`,
			wantErr: true,
		},
		"malformed": {
			params:  `{"agent_info":`,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, rpcErr := coord.DecodeHandshakeParams(json.RawMessage(tt.params))
			if tt.wantErr {
				if rpcErr == nil {
					t.Fatal("DecodeHandshakeParams() error = nil, want error")
				}
				if rpcErr.Code != coord.InvalidParamsErrorCode {
					t.Errorf("DecodeHandshakeParams() error code = %d, want %d", rpcErr.Code, coord.InvalidParamsErrorCode)
				}
				return
			}
			if rpcErr != nil {
				t.Fatalf("DecodeHandshakeParams() error = %v", rpcErr)
			}
			if p.AgentInfo.AgentID != "agent-1" {
				t.Errorf("AgentID = %s, want agent-1", p.AgentInfo.AgentID)
			}
		})
	}
}

func TestDecodeDiscoverParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params  string
		want    *coord.DiscoverParams
		wantErr bool
	}{
		"both filters": {
			params: `{"agent_type":"logistics","capability":"calculate_shipping_cost"}`,
			want: &coord.DiscoverParams{
				AgentType:  coord.AgentTypeLogistics,
				Capability: "calculate_shipping_cost",
			},
		},
		"empty object": {
			params: `{}`,
			want:   &coord.DiscoverParams{},
		},
		"absent params": {
			params: ``,
			want:   &coord.DiscoverParams{},
		},
		"malformed": {
			params:  `{"agent_type":`,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, rpcErr := coord.DecodeDiscoverParams(json.RawMessage(tt.params))
			if tt.wantErr {
				if rpcErr == nil {
					t.Fatal("DecodeDiscoverParams() error = nil, want error")
				}
				return
			}
			if rpcErr != nil {
				t.Fatalf("DecodeDiscoverParams() error = %v", rpcErr)
			}
			if diff := gocmp.Diff(tt.want, p); diff != "" {
				t.Errorf("DecodeDiscoverParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeTaskParams(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		params  string
		wantErr bool
	}{
		"valid": {
			params: `{"task_type":"calculate_shipping_cost","payload":{"weight_kg":10},"session_id":"sess-1"}`,
		},
		"no session": {
			params: `{"task_type":"track_shipment"}`,
		},
		"empty task type": {
			params:  `{"task_type":"","payload":{}}`,
			wantErr: true,
		},
		"missing task type": {
			params:  `{"payload":{}}`,
			wantErr: true,
		},
		"malformed": {
			params:  `{"task_type"`,
			wantErr: true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			p, rpcErr := coord.DecodeTaskParams(json.RawMessage(tt.params))
			if tt.wantErr {
				if rpcErr == nil {
					t.Fatal("DecodeTaskParams() error = nil, want error")
				}
				if rpcErr.Code != coord.InvalidParamsErrorCode {
					t.Errorf("DecodeTaskParams() error code = %d, want %d", rpcErr.Code, coord.InvalidParamsErrorCode)
				}
				return
			}
			if rpcErr != nil {
				t.Fatalf("DecodeTaskParams() error = %v", rpcErr)
			}
			if p.TaskType == "" {
				t.Error("TaskType is empty")
			}
		})
	}
}

func TestJSONRPCError_Error(t *testing.T) {
	t.Parallel()

	err := coord.NewMethodNotFoundError()
	want := "jsonrpc error -32601: Method not found"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestNewJSONRPCMessage_NullID(t *testing.T) {
	t.Parallel()

	// A response to an unparseable request must carry an explicit null id.
	msg := coord.NewJSONRPCMessage(nil)
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"jsonrpc":"2.0","id":null}`
	if string(data) != want {
		t.Errorf("Marshal() = %s, want %s", data, want)
	}
}
