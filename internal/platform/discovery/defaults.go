// Package discovery holds the forge relay address conventions.
package discovery

import (
	"strconv"
	"strings"
)

// GRPCPort is the conventional forge relay port.
const GRPCPort = 8095

// DefaultRelayAddr is where local clients look for the relay.
var DefaultRelayAddr = "localhost:" + strconv.Itoa(GRPCPort)

// RelayAddr returns value when set, otherwise DefaultRelayAddr.
func RelayAddr(value string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultRelayAddr
}

// ListenAddr returns the listen address for port, falling back to GRPCPort
// for non-positive ports.
func ListenAddr(port int) string {
	if port <= 0 {
		port = GRPCPort
	}
	return ":" + strconv.Itoa(port)
}
