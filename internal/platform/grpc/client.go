// Package grpc holds client helpers shared by Forge relay callers.
package grpc

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// ConnectError reports which step of Connect failed.
type ConnectError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *ConnectError) Error() string {
	return fmt.Sprintf("gRPC %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectError) Unwrap() error {
	return e.Err
}

// ConnectConfig describes a relay connection.
type ConnectConfig struct {
	Addr string
	// Timeout bounds the health wait. Zero waits until ctx ends.
	Timeout time.Duration
	// Service is the health service name; empty checks the whole server.
	Service string
	Logf    func(string, ...any)
	Options []gogrpc.DialOption
}

// ClientOptions returns insecure transport options with trace propagation.
func ClientOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	}
}

// Connect creates a client for cfg.Addr and waits until its health check
// reports SERVING. The connection is closed when the wait fails.
func Connect(ctx context.Context, cfg ConnectConfig) (*gogrpc.ClientConn, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, &ConnectError{Step: "connect", Err: fmt.Errorf("address is required")}
	}
	opts := cfg.Options
	if len(opts) == 0 {
		opts = ClientOptions()
	}
	conn, err := gogrpc.NewClient(addr, opts...)
	if err != nil {
		return nil, &ConnectError{Step: "connect", Err: err}
	}

	waitCtx := ctx
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}
	if err := WaitForHealth(waitCtx, conn, cfg.Service, cfg.Logf); err != nil {
		_ = conn.Close()
		return nil, &ConnectError{Step: "health", Err: err}
	}
	return conn, nil
}

// WaitForHealth polls the health service with capped backoff until it
// reports SERVING or ctx ends.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return fmt.Errorf("gRPC connection is not configured")
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	backoff := 100 * time.Millisecond
	for {
		callCtx, cancel := context.WithTimeout(ctx, time.Second)
		resp, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
		cancel()
		switch {
		case err != nil:
			logf("waiting for forge relay: %v", err)
		case resp.GetStatus() == grpc_health_v1.HealthCheckResponse_SERVING:
			return nil
		default:
			logf("waiting for forge relay: status %s", resp.GetStatus())
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for health: %w", ctx.Err())
		case <-time.After(backoff):
		}
		backoff = min(2*backoff, time.Second)
	}
}
