// Package timeouts defines the timeout constants shared by forge commands.
package timeouts

import "time"

// RelayConnect caps the wait for the relay health check when the CLI dials.
const RelayConnect = 5 * time.Second

// MCPRelayConnect caps the same wait for the MCP server, which may start
// alongside the relay.
const MCPRelayConnect = 10 * time.Second

// ToolCall caps one MCP tool invocation.
const ToolCall = 10 * time.Second

// Shutdown limits how long telemetry may take to flush on exit.
const Shutdown = 5 * time.Second
