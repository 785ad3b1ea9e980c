// Package schema collects the protocol type graph and registers reflection
// metadata for it.
//
// MCP messages are encoded and decoded reflectively, so builds that strip
// unused reflective metadata need every protocol type declared ahead of
// time. NestedTypes walks a root type's exported structure and returns the
// flattened set of reachable named types; RegisterHints and RegisterTypes
// feed that set into a hints container or a runtime type registry. Both run
// once during initialization.
package schema

import (
	"reflect"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/viant/x"

	"github.com/fyrsmithlabs/mcpd/pkg/hints"
)

// jsonschemaPkg is the package holding the JSON schema representation the
// protocol embeds in tool definitions.
const jsonschemaPkg = "github.com/google/jsonschema-go/jsonschema"

// MessageSchema aggregates the protocol surface a server touches
// reflectively. It exists only as the root for metadata collection; the
// walk reaches everything else (contents, annotations, schema documents)
// through these entry points. Schema is listed explicitly because the SDK
// carries tool input schemas as `any`, which the walk cannot see through.
type MessageSchema struct {
	Implementation   mcp.Implementation
	Tool             mcp.Tool
	Resource         mcp.Resource
	ResourceTemplate mcp.ResourceTemplate
	ResourceContents mcp.ResourceContents
	Prompt           mcp.Prompt
	PromptMessage    mcp.PromptMessage
	Content          mcp.Content
	TextContent      mcp.TextContent
	Schema           jsonschema.Schema

	CallToolParams     mcp.CallToolParams
	CallToolResult     mcp.CallToolResult
	ReadResourceParams mcp.ReadResourceParams
	ReadResourceResult mcp.ReadResourceResult
	GetPromptResult    mcp.GetPromptResult
	CompleteResult     mcp.CompleteResult
	SubscribeParams    mcp.SubscribeParams
	UnsubscribeParams  mcp.UnsubscribeParams
	ResourceUpdated    mcp.ResourceUpdatedNotificationParams
}

// Packages returns the package scope for walking MessageSchema.
func Packages() []string {
	return []string{
		reflect.TypeOf(mcp.Implementation{}).PkgPath(),
		jsonschemaPkg,
	}
}

// CollectTypes returns every protocol type reachable from MessageSchema.
func CollectTypes() ([]reflect.Type, error) {
	return NestedTypes(reflect.TypeOf(MessageSchema{}), WithPackages(Packages()...))
}

// RegisterSchemaHints registers the full protocol surface with h.
func RegisterSchemaHints(h *hints.Hints) error {
	return RegisterHints(h, reflect.TypeOf(MessageSchema{}), WithPackages(Packages()...))
}

// RegisterSchemaTypes registers the full protocol surface with reg.
func RegisterSchemaTypes(reg *x.Registry) error {
	return RegisterTypes(reg, reflect.TypeOf(MessageSchema{}), WithPackages(Packages()...))
}
