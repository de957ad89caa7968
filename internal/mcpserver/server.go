// Package mcpserver exposes a workspace engine as MCP tools over streamable
// HTTP on a loopback port.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mark3labs/tplvars/internal/engine"
	"github.com/mark3labs/tplvars/internal/logger"
)

// Server is an embedded MCP HTTP server bound to one engine.
type Server struct {
	eng        *engine.Engine
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	stdServer  *http.Server
	addr       string
	port       int
	mu         sync.Mutex
}

// New creates a server for eng. Nothing listens until Start.
func New(eng *engine.Engine) *Server {
	return &Server{eng: eng, addr: "127.0.0.1:0"}
}

// WithAddr sets the listen address, e.g. "127.0.0.1:7420". The default picks
// a free loopback port.
func (s *Server) WithAddr(addr string) *Server {
	s.addr = addr
	return s
}

// Start listens and serves in the background. It returns the bound port.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	s.mcpServer = server.NewMCPServer(
		"tplvars",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return 0, fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port

	// The listener is handed straight to Serve so the port cannot be lost
	mux := http.NewServeMux()
	s.httpServer = server.NewStreamableHTTPServer(s.mcpServer, server.WithStateLess(true))
	mux.Handle("/mcp", s.httpServer)
	s.stdServer = &http.Server{Handler: mux}

	stdServer := s.stdServer
	go func() {
		if err := stdServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("MCP server error: %v", err)
		}
	}()

	logger.Debug("MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stdServer == nil {
		return nil
	}
	if err := s.stdServer.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	s.httpServer = nil
	s.stdServer = nil
	s.mcpServer = nil
	logger.Debug("MCP server stopped")
	return nil
}

// URL returns the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}
