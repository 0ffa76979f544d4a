package taskdoc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Server exposes an Engine as MCP tools.
//
// Every tool call is answered with a well-formed result. Caller mistakes
// produce an error result prefixed "invalid params:"; storage failures and
// unexpected panics produce one prefixed "internal error:".
//
// Example:
//
//	srv := taskdoc.NewServer(engine, taskdoc.WithServerName("taskdoc"))
//	err := srv.Run(ctx, &mcp.StdioTransport{})
type Server struct {
	engine *Engine
	log    zerolog.Logger
	mcp    *mcp.Server
}

// NewServer creates an MCP server with every task document tool
// registered.
func NewServer(engine *Engine, opts ...ServerOption) *Server {
	o := newServerOptions(opts)

	s := &Server{
		engine: engine,
		log:    o.Logger,
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    o.Name,
			Version: o.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server, for connecting custom
// transports.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Run serves tool calls on transport until the client disconnects or ctx
// is cancelled.
func (s *Server) Run(ctx context.Context, transport mcp.Transport) error {
	s.log.Info().Msg("serving task document tools")
	return s.mcp.Run(ctx, transport)
}

func (s *Server) registerTools() {
	e := s.engine

	addTool(s, &mcp.Tool{
		Name: "initialize_task",
		Description: "Start a new task, replacing the current document. Sets the " +
			"overarching goal, optional shared context, an optional initial " +
			"checklist and optional metadata. Notes and resources are cleared.",
	}, func(ctx context.Context, in InitializeTaskInput) (string, error) {
		doc, err := e.Initialize(ctx, in.params())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Task initialized: %s (%d checklist items)",
			doc.TaskDescription, len(doc.Checklist)), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "update_task_description",
		Description: "Replace the overarching goal of the current task.",
	}, func(ctx context.Context, in UpdateTaskDescriptionInput) (string, error) {
		if err := e.UpdateTaskDescription(ctx, in.TaskDescription); err != nil {
			return "", err
		}
		return "Task description updated", nil
	})

	addTool(s, &mcp.Tool{
		Name:        "update_context",
		Description: "Replace the context shared by every checklist item.",
	}, func(ctx context.Context, in UpdateContextInput) (string, error) {
		if err := e.UpdateContext(ctx, in.Context); err != nil {
			return "", err
		}
		return "Context updated", nil
	})

	addTool(s, &mcp.Tool{
		Name: "add_checklist_item",
		Description: "Add a step to the checklist. Inserts at position when it is " +
			"between 0 and the checklist length, otherwise appends.",
	}, func(ctx context.Context, in AddChecklistItemInput) (string, error) {
		index, err := e.AddChecklistItem(ctx, NewChecklistItem{
			Task:                in.Task,
			DetailedDescription: in.DetailedDescription,
			ContextAndPlan:      in.ContextAndPlan,
			Done:                in.Done,
			Position:            in.Position,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Added checklist item %d: %s", index, in.Task), nil
	})

	addTool(s, &mcp.Tool{
		Name: "update_checklist_item",
		Description: "Update fields of the checklist item at index. Omitted " +
			"fields keep their current value.",
	}, func(ctx context.Context, in UpdateChecklistItemInput) (string, error) {
		item, err := e.UpdateChecklistItem(ctx, in.Index, ChecklistItemPatch{
			Task:                in.Task,
			DetailedDescription: in.DetailedDescription,
			ContextAndPlan:      in.ContextAndPlan,
			Done:                in.Done,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Updated checklist item %d: %s", in.Index, item.Task), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "mark_task_done",
		Description: "Mark the checklist item at index as done.",
	}, func(ctx context.Context, in IndexInput) (string, error) {
		item, err := e.MarkTaskDone(ctx, in.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Marked item %d as done: %s", in.Index, item.Task), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "mark_task_undone",
		Description: "Mark the checklist item at index as not done.",
	}, func(ctx context.Context, in IndexInput) (string, error) {
		item, err := e.MarkTaskUndone(ctx, in.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Marked item %d as not done: %s", in.Index, item.Task), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "remove_checklist_item",
		Description: "Remove the checklist item at index. Later items shift up.",
	}, func(ctx context.Context, in IndexInput) (string, error) {
		item, err := e.RemoveChecklistItem(ctx, in.Index)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Removed checklist item %d: %s", in.Index, item.Task), nil
	})

	addTool(s, &mcp.Tool{
		Name: "reorder_checklist_item",
		Description: "Move the checklist item at from_index. The item is removed " +
			"and then inserted at to_index in the shortened list.",
	}, func(ctx context.Context, in ReorderChecklistItemInput) (string, error) {
		final, err := e.ReorderChecklistItem(ctx, in.FromIndex, in.ToIndex)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Moved checklist item from %d to %d", in.FromIndex, final), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "add_note",
		Description: "Record a timestamped note about the task.",
	}, func(ctx context.Context, in AddNoteInput) (string, error) {
		note, err := e.AddNote(ctx, in.Content)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Note added at %s", note.Timestamp.Format("2006-01-02 15:04:05")), nil
	})

	addTool(s, &mcp.Tool{
		Name:        "add_resource",
		Description: "Record a reference such as documentation, a URL or a file.",
	}, func(ctx context.Context, in AddResourceInput) (string, error) {
		res, err := e.AddResource(ctx, NewResource{
			Name:        in.Name,
			URL:         in.URL,
			Description: in.Description,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Resource added: %s", res.Name), nil
	})

	addTool(s, &mcp.Tool{
		Name: "update_metadata",
		Description: "Update tags, priority or the completion estimate. Omitted " +
			"fields keep their current value.",
	}, func(ctx context.Context, in MetadataInput) (string, error) {
		patch := in.patch()
		if _, err := e.UpdateMetadata(ctx, patch); err != nil {
			return "", err
		}
		if patch.Empty() {
			return "No metadata changes", nil
		}
		return "Metadata updated", nil
	})

	addTool(s, &mcp.Tool{
		Name:        "clear_task",
		Description: "Discard the current task and start from an empty document.",
	}, func(ctx context.Context, _ EmptyInput) (string, error) {
		if err := e.Clear(ctx); err != nil {
			return "", err
		}
		return "Task cleared", nil
	})

	addTool(s, &mcp.Tool{
		Name: "get_checklist_summary",
		Description: "Show the goal, progress and checklist as Markdown. Per-item " +
			"context and plans are omitted.",
	}, func(ctx context.Context, in ChecklistSummaryInput) (string, error) {
		return e.ChecklistSummary(ctx, SummaryOptions{
			IncludeDescriptions: in.IncludeDescriptions,
		}), nil
	})

	addTool(s, &mcp.Tool{
		Name: "get_current_task_details",
		Description: "Show the full task as JSON, focused on the first item that " +
			"is not done. Only that item includes its context and plan.",
	}, func(ctx context.Context, _ EmptyInput) (string, error) {
		return marshalText(e.CurrentTaskDetails(ctx))
	})
}

// addTool registers a tool whose handler returns text. Errors and panics
// are converted into error results so a call never fails at the protocol
// level once its arguments have been decoded.
func addTool[In any](s *Server, tool *mcp.Tool,
	handler func(ctx context.Context, in In) (string, error)) {

	mcp.AddTool(s.mcp, tool, func(ctx context.Context, _ *mcp.CallToolRequest,
		in In) (result *mcp.CallToolResult, _ any, _ error) {

		log := s.log.With().
			Str("call_id", uuid.NewString()).
			Str("tool", tool.Name).
			Logger()

		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("tool handler panicked")
				result = errorResult(fmt.Sprintf("internal error: %v", r))
			}
		}()

		log.Debug().Msg("tool call")

		text, err := handler(ctx, in)
		if err != nil {
			return toolError(log, err), nil, nil
		}
		return textResult(text), nil, nil
	})
}

// toolError converts an engine error into an error result.
func toolError(log zerolog.Logger, err error) *mcp.CallToolResult {
	if IsInvalidParams(err) {
		log.Warn().Err(err).Msg("invalid tool arguments")
		return errorResult("invalid params: " + err.Error())
	}

	var storageErr *ErrStorage
	if errors.As(err, &storageErr) {
		log.Error().Err(err).Msg("storage failure")
	} else {
		log.Error().Err(err).Msg("tool failed")
	}
	return errorResult("internal error: " + err.Error())
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

// marshalText renders v as indented JSON.
func marshalText(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal response: %w", err)
	}
	return string(data), nil
}
