package daemon

import "github.com/fyrsmithlabs/mcpd/pkg/condition"

// ServerPrefix is the configuration block carrying the activation keys.
const ServerPrefix = "mcp.server"

// Transport identifies what the daemon serves on after activation.
type Transport int

const (
	// TransportNone means the server is disabled and nothing serves.
	TransportNone Transport = iota
	// TransportHTTP serves MCP over the streamable HTTP transport.
	TransportHTTP
	// TransportStdio serves MCP frames on stdin and stdout.
	TransportStdio
)

// String returns the transport's configuration spelling.
func (t Transport) String() string {
	switch t {
	case TransportHTTP:
		return "http"
	case TransportStdio:
		return "stdio"
	default:
		return "none"
	}
}

// Enabled matches when mcp.server.enabled is "true" or the key is absent.
// Any other present value, including "TRUE" or "1", disables the server.
var Enabled condition.Condition = condition.Property{
	Prefix:         ServerPrefix,
	Name:           "enabled",
	HavingValue:    "true",
	MatchIfMissing: true,
}

// HTTPActive matches when the server is enabled and mcp.server.stdio is
// "false" or absent. HTTP is the default transport.
var HTTPActive = condition.AllOf(Enabled, condition.Property{
	Prefix:         ServerPrefix,
	Name:           "stdio",
	HavingValue:    "false",
	MatchIfMissing: true,
})

// StdioActive matches when the server is enabled and mcp.server.stdio is
// exactly "true". Stdio is opt-in, never assumed from a missing key.
var StdioActive = condition.AllOf(Enabled, condition.Property{
	Prefix:         ServerPrefix,
	Name:           "stdio",
	HavingValue:    "true",
	MatchIfMissing: false,
})

// Decide evaluates the activation conditions against a configuration
// snapshot. A snapshot matching neither condition (server disabled, or a
// stdio value like "TRUE" that matches neither spelling) yields
// TransportNone.
func Decide(s condition.Settings) Transport {
	if StdioActive.Matches(s) {
		return TransportStdio
	}
	if HTTPActive.Matches(s) {
		return TransportHTTP
	}
	return TransportNone
}
