package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/hazel/pkg/config"
	"github.com/m-mizutani/hazel/pkg/model"
	"github.com/m-mizutani/hazel/pkg/usecase/memory"
	"github.com/m-mizutani/hazel/pkg/utils/logging"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// handler binds the memory usecase to MCP tool calls
type handler struct {
	uc *memory.UseCase
}

// New builds the MCP server exposing the memory tools. The caller
// picks the transport (stdio or streamable HTTP) via Server.Run.
func New(uc *memory.UseCase) *mcp.Server {
	h := &handler{uc: uc}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "hazel",
		Version: "0.1.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "remember",
		Description: "Remember a piece of information for future recall",
	}, h.remember)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "recall",
		Description: "Retrieve memories semantically similar to a query",
	}, h.recall)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list",
		Description: "List stored memories in creation order",
	}, h.list)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "update",
		Description: "Edit the text and/or metadata of a stored memory",
	}, h.update)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "delete",
		Description: "Delete a stored memory by ID",
	}, h.deleteMemory)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "config",
		Description: "Inspect or update runtime configuration",
		InputSchema: configSchema(),
	}, h.configure)

	return server
}

// errResult reports a failed operation as a tool error carrying the
// taxonomy kind and message, never a stack trace.
func errResult(err error) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("%s: %s", model.ErrorKind(err), err.Error())},
		},
	}, nil, nil
}

func textResult(text string, payload any) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, payload, nil
}

type rememberParams struct {
	Text     string         `json:"text" jsonschema:"The text content to remember"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"Optional scalar annotations (string, number, or boolean values)"`
}

func (h *handler) remember(ctx context.Context, req *mcp.CallToolRequest, params *rememberParams) (*mcp.CallToolResult, any, error) {
	meta, err := model.MetaFromMap(params.Metadata)
	if err != nil {
		return errResult(err)
	}

	rec, err := h.uc.Remember(ctx, params.Text, meta)
	if err != nil {
		return errResult(err)
	}

	return textResult(fmt.Sprintf("Stored memory %s", rec.ID), rec)
}

type recallParams struct {
	Query string `json:"query" jsonschema:"The search query"`
	Limit *int   `json:"limit,omitempty" jsonschema:"Maximum number of memories to return (defaults to the configured similarity_top_k)"`
}

func (h *handler) recall(ctx context.Context, req *mcp.CallToolRequest, params *recallParams) (*mcp.CallToolResult, any, error) {
	results, err := h.uc.Recall(ctx, memory.RecallInput{
		Query: params.Query,
		Limit: params.Limit,
	})
	if err != nil {
		return errResult(err)
	}

	if len(results) == 0 {
		return textResult("No memories matched the query", results)
	}

	var sb strings.Builder
	sb.WriteString("Here's what I recall:\n\n")
	for i, hit := range results {
		fmt.Fprintf(&sb, "%d. %s\n   ID: %s (score %.4f)\n\n",
			i+1, hit.Memory.Text, hit.Memory.ID, hit.Score)
	}

	return textResult(sb.String(), results)
}

type listParams struct{}

func (h *handler) list(ctx context.Context, req *mcp.CallToolRequest, params *listParams) (*mcp.CallToolResult, any, error) {
	records, err := h.uc.ListMemories(ctx)
	if err != nil {
		return errResult(err)
	}

	if len(records) == 0 {
		return textResult("No memories stored yet", records)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d memories:\n\n", len(records))
	for i, rec := range records {
		fmt.Fprintf(&sb, "%d. %s\n   ID: %s\n\n", i+1, rec.Text, rec.ID)
	}

	return textResult(sb.String(), records)
}

type updateParams struct {
	ID       string         `json:"id" jsonschema:"The ID of the memory to update"`
	Text     *string        `json:"text,omitempty" jsonschema:"Replacement text content"`
	Metadata map[string]any `json:"metadata,omitempty" jsonschema:"Replacement metadata mapping"`
}

func (h *handler) update(ctx context.Context, req *mcp.CallToolRequest, params *updateParams) (*mcp.CallToolResult, any, error) {
	meta, err := model.MetaFromMap(params.Metadata)
	if err != nil {
		return errResult(err)
	}

	rec, err := h.uc.UpdateMemory(ctx, memory.UpdateInput{
		ID:       model.MemoryID(params.ID),
		Text:     params.Text,
		Metadata: meta,
	})
	if err != nil {
		return errResult(err)
	}

	return textResult(fmt.Sprintf("Updated memory %s", rec.ID), rec)
}

type deleteParams struct {
	ID string `json:"id" jsonschema:"The ID of the memory to delete"`
}

func (h *handler) deleteMemory(ctx context.Context, req *mcp.CallToolRequest, params *deleteParams) (*mcp.CallToolResult, any, error) {
	if err := h.uc.DeleteMemory(ctx, model.MemoryID(params.ID)); err != nil {
		return errResult(err)
	}

	return textResult(fmt.Sprintf("Deleted memory %s", params.ID), nil)
}

type configParams struct {
	Action string `json:"action"`
	Key    string `json:"key,omitempty"`
	Value  any    `json:"value,omitempty"`
}

func configSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"action": {
				Type:        "string",
				Enum:        []any{"get", "set"},
				Description: "get returns the effective settings (or one setting when key is given); set installs a runtime override",
			},
			"key": {
				Type:        "string",
				Description: "Setting name (log_level, db_path, embedding_model, similarity_top_k)",
			},
			"value": {
				Description: "New value for the setting (set only)",
			},
		},
		Required: []string{"action"},
	}
}

func (h *handler) configure(ctx context.Context, req *mcp.CallToolRequest, params *configParams) (*mcp.CallToolResult, any, error) {
	switch params.Action {
	case "get":
		if params.Key != "" {
			val, err := h.uc.GetConfig(config.Key(params.Key))
			if err != nil {
				return errResult(err)
			}
			return textResult(fmt.Sprintf("%s: %v", params.Key, val),
				map[string]any{params.Key: val})
		}

		all := h.uc.AllConfig()
		var sb strings.Builder
		sb.WriteString("Current configuration:\n\n")
		for _, key := range []config.Key{config.KeyDBPath, config.KeyEmbeddingModel, config.KeyLogLevel, config.KeySimilarityTopK} {
			fmt.Fprintf(&sb, "%s: %v\n", key, all[key])
		}
		return textResult(sb.String(), all)

	case "set":
		if params.Key == "" || params.Value == nil {
			return errResult(goerr.New("config set requires both key and value",
				goerr.T(model.TagValidation)))
		}

		prev, err := h.uc.SetConfig(config.Key(params.Key), params.Value)
		if err != nil {
			return errResult(err)
		}

		// Log level changes take effect immediately
		if config.Key(params.Key) == config.KeyLogLevel {
			if level, ok := params.Value.(string); ok {
				logging.SetDefault(logging.New(level, os.Stderr))
			}
		}

		return textResult(fmt.Sprintf("Updated %s to %v (was %v)", params.Key, params.Value, prev),
			map[string]any{"key": params.Key, "value": params.Value, "previous": prev})

	default:
		return errResult(goerr.New("unknown config action, use 'get' or 'set'",
			goerr.T(model.TagValidation), goerr.V("action", params.Action)))
	}
}
