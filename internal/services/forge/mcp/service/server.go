// Package service serves the forge engine as MCP tools.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"

	platformgrpc "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/grpc"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/timeouts"
	forgeservice "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/api/grpc/forge"
)

const (
	serverName    = "forge-mcp"
	serverVersion = "0.1.0"
)

// Config configures the MCP server.
type Config struct {
	// GRPCAddr is the forge relay address the tools call.
	GRPCAddr string
	Logf     func(string, ...any)
}

// Server exposes forge tools over MCP.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
}

// New connects to the forge relay and registers the tools against it.
func New(ctx context.Context, cfg Config) (*Server, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := platformgrpc.Connect(ctx, platformgrpc.ConnectConfig{
		Addr:    cfg.GRPCAddr,
		Timeout: timeouts.MCPRelayConnect,
		Service: forgeservice.ServiceName,
		Logf:    cfg.Logf,
	})
	if err != nil {
		return nil, fmt.Errorf("connect forge relay: %w", err)
	}
	s := NewWithBackend(forgeservice.NewClient(conn))
	s.conn = conn
	return s, nil
}

// NewWithBackend registers the tools against backend without a relay.
func NewWithBackend(backend Backend) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)
	registerTools(mcpServer, backend)
	return &Server{mcpServer: mcpServer}
}

// Run connects to the relay and serves MCP on stdio until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	s, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Serve starts the MCP server on stdio and blocks until it stops or the context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// Close releases the relay connection held by the server.
func (s *Server) Close() error {
	if s == nil || s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}

func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if closeErr := s.Close(); closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
