package catalog

import (
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
)

// BuildTool converts an endpoint definition into an mcp.Tool. The input
// schema is assembled in three passes with first-assignment-wins semantics:
//
//  1. path params — always type "string", always required
//  2. declared query params — type and required flag from their declaration
//  3. any remaining parameters entries — added verbatim
//
// Existing configurations depend on this exact precedence, so a name that
// appears in more than one pass keeps the property from the earliest pass.
// BuildTool is total: any endpoint that survived Load produces a tool.
func BuildTool(ep *Endpoint) mcp.Tool {
	properties := make(map[string]any)
	var required []string

	for _, name := range ep.PathParams {
		if _, ok := properties[name]; ok {
			continue
		}
		properties[name] = map[string]any{
			"type":        "string",
			"description": paramDescription(ep, name, "Path parameter: "),
		}
		required = append(required, name)
	}

	for _, name := range ep.QueryParams {
		if _, ok := properties[name]; ok {
			continue
		}
		decl := ep.Parameters[name]
		if decl.Type == "" {
			decl.Type = "string"
		}
		if decl.Description == "" {
			decl.Description = "Query parameter: " + name
		}
		properties[name] = map[string]any{
			"type":        decl.Type,
			"description": decl.Description,
		}
		if decl.Required {
			required = append(required, name)
		}
	}

	// Leftover declared parameters, sorted for a deterministic required
	// list (body params, typically).
	var leftover []string
	for name := range ep.Parameters {
		if _, ok := properties[name]; !ok {
			leftover = append(leftover, name)
		}
	}
	sort.Strings(leftover)
	for _, name := range leftover {
		decl := ep.Parameters[name]
		prop := map[string]any{"type": decl.Type}
		if decl.Description != "" {
			prop["description"] = decl.Description
		}
		properties[name] = prop
		if decl.Required {
			required = append(required, name)
		}
	}

	return mcp.Tool{
		Name:        ep.Name,
		Description: ep.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: properties,
			Required:   required,
		},
	}
}

// Tools builds the tool list for every endpoint in catalog order.
// The result is a pure function of the catalog, so callers may cache it
// for the process lifetime.
func (c *Catalog) Tools() []mcp.Tool {
	tools := make([]mcp.Tool, len(c.Endpoints))
	for i := range c.Endpoints {
		tools[i] = BuildTool(&c.Endpoints[i])
	}
	return tools
}

// paramDescription returns the declared description for a parameter, or a
// generated fallback with the given prefix.
func paramDescription(ep *Endpoint, name, prefix string) string {
	if decl, ok := ep.Parameters[name]; ok && decl.Description != "" {
		return decl.Description
	}
	return prefix + name
}
