// Package server wires the forge runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/config"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/platform/discovery"
	forgeservice "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/api/grpc/forge"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/app"
	"github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/settings"
	forgesqlite "github.com/Heliosiv/Forge-Operational-Improvements-Mod-sub001/internal/services/forge/storage/sqlite"
)

func loadPaths() (config.Paths, error) {
	var paths config.Paths
	if err := config.ParseEnv(&paths); err != nil {
		return config.Paths{}, err
	}
	if paths.DBPath == "" {
		paths.DBPath = filepath.Join("data", "forge.db")
	}
	return paths, nil
}

// Server hosts the forge gRPC relay and storage lifecycle.
type Server struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
	store      *forgesqlite.Store
}

// New creates a configured forge server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(discovery.ListenAddr(port))
}

// NewWithAddr creates a configured forge server for the provided address.
// Storage and settings paths come from FORGE_DB_PATH and FORGE_SETTINGS_PATH.
func NewWithAddr(addr string) (*Server, error) {
	paths, err := loadPaths()
	if err != nil {
		return nil, err
	}
	return NewWithPaths(addr, paths)
}

// NewWithPaths creates a configured forge server using explicit paths.
func NewWithPaths(addr string, paths config.Paths) (*Server, error) {
	cfg, err := settings.Load(paths.SettingsPath)
	if err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	store, err := openStore(paths.DBPath)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	svc := app.NewService(store, cfg, app.WithGenerationStore(store))
	healthServer := health.NewServer()
	forgeservice.RegisterForgeServiceServer(grpcServer, forgeservice.NewService(svc))
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(forgeservice.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		store:      store,
	}, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a forge server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	log.Printf("forge server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	var err error
	select {
	case <-ctx.Done():
		s.health.Shutdown()
		s.grpcServer.GracefulStop()
		err = <-serveErr
	case err = <-serveErr:
	}
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}

// Close releases forge server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			log.Printf("close forge store: %v", err)
		}
	}
}

func openStore(path string) (*forgesqlite.Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := forgesqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open forge sqlite store: %w", err)
	}
	return store, nil
}
