package mcp_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/hazel/pkg/adapter"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/repository"
	"github.com/m-mizutani/hazel/pkg/service/mcp"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// connect spins up the server behind a streamable HTTP handler and
// returns a connected client session.
func connect(t *testing.T) *mcpsdk.ClientSession {
	ctx := context.Background()

	uc := memory.New(repository.NewMemory(), adapter.NewStaticEmbedder(64), config.New())
	server := mcp.New(uc)

	handler := mcpsdk.NewStreamableHTTPHandler(func(r *http.Request) *mcpsdk.Server {
		return server
	}, nil)
	testServer := httptest.NewServer(handler)
	t.Cleanup(testServer.Close)

	client := mcpsdk.NewClient(&mcpsdk.Implementation{
		Name:    "hazel-test-client",
		Version: "0.0.1",
	}, nil)

	session, err := client.Connect(ctx, &mcpsdk.StreamableClientTransport{
		Endpoint: testServer.URL,
	}, nil)
	gt.NoError(t, err)
	t.Cleanup(func() { session.Close() })

	return session
}

func callText(t *testing.T, result *mcpsdk.CallToolResult) string {
	gt.A(t, result.Content).Length(1)
	text, ok := result.Content[0].(*mcpsdk.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestToolRegistration(t *testing.T) {
	ctx := context.Background()
	session := connect(t)

	tools, err := session.ListTools(ctx, nil)
	gt.NoError(t, err)

	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"remember", "recall", "list", "update", "delete", "config"} {
		gt.True(t, names[want])
	}
}

func TestRememberRecallFlow(t *testing.T) {
	ctx := context.Background()
	session := connect(t)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "remember",
		Arguments: map[string]any{
			"text":     "the sky is blue today",
			"metadata": map[string]any{"source": "test"},
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("Stored memory")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "remember",
		Arguments: map[string]any{
			"text": "buy milk and eggs at the store",
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "recall",
		Arguments: map[string]any{
			"query": "what color is the sky",
			"limit": 1,
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("the sky is blue today")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "list",
		Arguments: map[string]any{},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("2 memories")
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	session := connect(t)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "remember",
		Arguments: map[string]any{"text": "first draft"},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	// Stored memory <id>
	text := callText(t, result)
	id := strings.TrimPrefix(text, "Stored memory ")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "update",
		Arguments: map[string]any{
			"id":   id,
			"text": "final draft",
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "delete",
		Arguments: map[string]any{"id": id},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	// Deleting again reports not_found as a tool error
	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "delete",
		Arguments: map[string]any{"id": id},
	})
	gt.NoError(t, err)
	gt.True(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("not_found")
}

func TestToolErrors(t *testing.T) {
	ctx := context.Background()
	session := connect(t)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "remember",
		Arguments: map[string]any{"text": ""},
	})
	gt.NoError(t, err)
	gt.True(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("validation")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "recall",
		Arguments: map[string]any{
			"query": "anything",
			"limit": 0,
		},
	})
	gt.NoError(t, err)
	gt.True(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("validation")
}

func TestConfigTool(t *testing.T) {
	ctx := context.Background()
	session := connect(t)

	result, err := session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name:      "config",
		Arguments: map[string]any{"action": "get"},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("similarity_top_k: 3")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "config",
		Arguments: map[string]any{
			"action": "set",
			"key":    "similarity_top_k",
			"value":  5,
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("was 3")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "config",
		Arguments: map[string]any{
			"action": "get",
			"key":    "similarity_top_k",
		},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("5")

	result, err = session.CallTool(ctx, &mcpsdk.CallToolParams{
		Name: "config",
		Arguments: map[string]any{
			"action": "set",
			"key":    "no_such_setting",
			"value":  "x",
		},
	})
	gt.NoError(t, err)
	gt.True(t, result.IsError)
	gt.S(t, callText(t, result)).Contains("configuration")
}
