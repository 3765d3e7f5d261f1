package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/cypress-simulator/internal/platform/branding"
	"github.com/louisbranch/cypress-simulator/internal/platform/timeouts"
	"github.com/louisbranch/cypress-simulator/internal/services/mcp/domain"
	"github.com/louisbranch/cypress-simulator/internal/simulator/command"
)

const (
	serverVersion = "0.1.0"

	defaultHTTPAddr = "localhost:8081"
)

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves MCP over streamable HTTP.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is used by the HTTP transport. Defaults to localhost:8081.
	HTTPAddr string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer   *mcp.Server
	interpreter *command.Interpreter
}

// New creates an MCP server with the simulator tools and resources
// registered.
func New(interpreter *command.Interpreter) *Server {
	if interpreter == nil {
		interpreter = command.New(nil)
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, domain.SimulateCommandTool(), domain.SimulateCommandHandler(interpreter))
	mcp.AddTool(mcpServer, domain.ListCommandsTool(), domain.ListCommandsHandler(interpreter.Registry()))
	mcpServer.AddResource(domain.CommandsResource(), domain.CommandsResourceHandler(interpreter.Registry()))

	return &Server{mcpServer: mcpServer, interpreter: interpreter}
}

// Run is the service entrypoint for MCP and blocks until context
// cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, New(nil), &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, New(nil), cfg.HTTPAddr)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport serves a single session over transport until ctx ends or
// the peer disconnects.
func runWithTransport(ctx context.Context, server *Server, transport mcp.Transport) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	err := server.mcpServer.Run(ctx, transport)
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// Handler returns the streamable HTTP handler for this server.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)
}

func runWithHTTPTransport(ctx context.Context, server *Server, httpAddr string) error {
	httpAddr = strings.TrimSpace(httpAddr)
	if httpAddr == "" {
		httpAddr = defaultHTTPAddr
	}
	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("mcp http listening at %s", httpAddr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown mcp http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve mcp http: %w", err)
	}
}
