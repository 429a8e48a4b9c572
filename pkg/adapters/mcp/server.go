package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botflow"
	"github.com/aretw0/botflow/internal/logging"
	"github.com/aretw0/botflow/internal/presentation/graph"
	"github.com/aretw0/botflow/pkg/domain"
	"github.com/aretw0/botflow/pkg/runner"
	"github.com/aretw0/botflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowsResponse is the result of list_flows.
type FlowsResponse struct {
	Flows []string `json:"flows" jsonschema_description:"IDs of the flows that can be started"`
}

// StartArgs are the arguments of start_session.
type StartArgs struct {
	FlowID     string            `json:"flow_id"`
	StartBlock string            `json:"start_block,omitempty"`
	Variables  map[string]string `json:"variables,omitempty"`
}

// AdvanceArgs are the arguments of advance.
type AdvanceArgs struct {
	SessionID string `json:"session_id"`
	EdgeID    string `json:"edge_id,omitempty"`
	BlockID   string `json:"block_id,omitempty"`
}

// CompleteArgs are the arguments of complete_step.
type CompleteArgs struct {
	SessionID string  `json:"session_id"`
	StepID    string  `json:"step_id"`
	Value     *string `json:"value,omitempty"`
}

// SessionArgs address one session.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

// Server wraps the botflow Engine and exposes its sessions as an MCP Server.
type Server struct {
	engine    *botflow.Engine
	sessions  *session.Manager
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. MCP over stdio owns stdout, so logs must go elsewhere.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine *botflow.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("botflow-mcp", botflow.Version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_flows",
		mcp.WithDescription("List the flows that can be started."),
		mcp.WithOutputSchema[FlowsResponse](),
	), mcp.NewStructuredToolHandler(s.handleListFlows))

	s.mcpServer.AddTool(mcp.NewTool("start_session",
		mcp.WithDescription("Start a conversation on a flow and return the first block to show."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow to start")),
		mcp.WithString("start_block", mcp.Description("Enter this block directly instead of following the flow's first edge")),
		mcp.WithObject("variables", mcp.Description("Predefined variables, matched by case-insensitive name")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("advance",
		mcp.WithDescription("Follow an edge, or display a block directly. With neither, resume queued continuations or finish."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to advance")),
		mcp.WithString("edge_id", mcp.Description("Edge to follow")),
		mcp.WithString("block_id", mcp.Description("Block to display directly")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.handleAdvance))

	s.mcpServer.AddTool(mcp.NewTool("complete_step",
		mcp.WithDescription("Finish a step of the current block, optionally answering an input step, and follow where it leads."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to advance")),
		mcp.WithString("step_id", mcp.Required(), mcp.Description("Step of the current block")),
		mcp.WithString("value", mcp.Description("Answer for an input step")),
		mcp.WithOutputSchema[runner.View](),
	), mcp.NewStructuredToolHandler(s.handleComplete))

	s.mcpServer.AddTool(mcp.NewTool("get_history",
		mcp.WithDescription("Return the blocks a session displayed and its bound variables."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session to inspect")),
		mcp.WithOutputSchema[domain.SessionSnapshot](),
	), mcp.NewStructuredToolHandler(s.handleHistory))

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get a Mermaid diagram of a flow."),
		mcp.WithString("flow_id", mcp.Required(), mcp.Description("Flow to draw")),
		mcp.WithString("session_id", mcp.Description("Highlight the blocks this session displayed")),
	), s.handleGraph)
}

func (s *Server) handleListFlows(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (FlowsResponse, error) {
	flows, err := s.engine.Flows(ctx)
	if err != nil {
		return FlowsResponse{}, fmt.Errorf("list flows failed: %w", err)
	}
	return FlowsResponse{Flows: flows}, nil
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args StartArgs) (runner.View, error) {
	predefined := make(map[string]string, len(args.Variables))
	for name, value := range args.Variables {
		clean, err := runner.SanitizeInput(value)
		if err != nil {
			s.logger.Warn("MCP start: variable rejected", "err", err, "variable", name)
			return runner.View{}, fmt.Errorf("variable %q rejected: %w", name, err)
		}
		predefined[name] = clean
	}

	sess, outcome, err := s.engine.Start(ctx, args.FlowID, domain.StartOptions{
		StartBlockID: args.StartBlock,
		Predefined:   predefined,
	})
	if err != nil {
		return runner.View{}, fmt.Errorf("start failed: %w", err)
	}
	if err := s.sessions.Add(ctx, sess); err != nil {
		return runner.View{}, fmt.Errorf("start failed: %w", err)
	}
	s.logger.Info("MCP session started", "session_id", sess.ID(), "flow_id", args.FlowID)
	return runner.ViewAfter(sess, outcome), nil
}

func (s *Server) handleAdvance(ctx context.Context, _ mcp.CallToolRequest, args AdvanceArgs) (runner.View, error) {
	if args.EdgeID != "" && args.BlockID != "" {
		return runner.View{}, fmt.Errorf("specify either edge_id or block_id, not both")
	}
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, sess *botflow.Session) (domain.Outcome, error) {
		if args.BlockID != "" {
			return s.engine.AdvanceBlock(ctx, sess, args.BlockID)
		}
		return s.engine.AdvanceEdge(ctx, sess, args.EdgeID)
	})
}

func (s *Server) handleComplete(ctx context.Context, _ mcp.CallToolRequest, args CompleteArgs) (runner.View, error) {
	return s.mutate(ctx, args.SessionID, func(ctx context.Context, sess *botflow.Session) (domain.Outcome, error) {
		if args.Value != nil {
			if err := runner.Answer(ctx, s.engine, sess, args.StepID, *args.Value); err != nil {
				return "", err
			}
		}
		return s.engine.CompleteStep(ctx, sess, args.StepID)
	})
}

func (s *Server) handleHistory(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (domain.SessionSnapshot, error) {
	snap, err := s.sessions.Snapshot(ctx, args.SessionID)
	if err != nil {
		return domain.SessionSnapshot{}, fmt.Errorf("history failed: %w", err)
	}
	return snap, nil
}

func (s *Server) handleGraph(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	flowID, err := request.RequireString("flow_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	g, err := s.engine.Flow(ctx, flowID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
	}

	var overlay *graph.GraphOverlay
	if sessionID := request.GetString("session_id", ""); sessionID != "" {
		err := s.sessions.WithLock(ctx, sessionID, func(_ context.Context, sess *botflow.Session) error {
			overlay = graph.OverlayFromHistory(sess.History(), flowID)
			return nil
		})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("graph failed: %v", err)), nil
		}
	}
	return mcp.NewToolResultText(graph.GenerateMermaid(g, overlay)), nil
}

func (s *Server) mutate(ctx context.Context, sessionID string, fn func(context.Context, *botflow.Session) (domain.Outcome, error)) (runner.View, error) {
	var view runner.View
	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context, sess *botflow.Session) error {
		outcome, err := fn(ctx, sess)
		if err != nil {
			return err
		}
		view = runner.ViewAfter(sess, outcome)
		return nil
	})
	if err != nil {
		return runner.View{}, fmt.Errorf("advance failed: %w", err)
	}
	return view, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource("botflow://flows", "Available flows",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		flows, err := s.engine.Flows(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list flows: %w", err)
		}
		jsonBytes, _ := json.Marshal(FlowsResponse{Flows: flows})

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      "botflow://flows",
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
