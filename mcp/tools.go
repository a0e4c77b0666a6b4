package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ToolDetectDataClumps is the name of the data clump detection tool
const ToolDetectDataClumps = "detect_data_clumps"

// RegisterTools registers all clumpscn MCP tools with the server
func RegisterTools(s *server.MCPServer, h *HandlerSet) {
	if h == nil {
		h = NewHandlerSet(nil)
	}

	s.AddTool(mcp.NewTool(ToolDetectDataClumps,
		mcp.WithDescription("Detect data clumps (groups of fields or parameters that repeatedly occur together) in a directory of extracted AST JSON files"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Directory (or single file) holding the AST JSON documents, one per class or interface")),
		mcp.WithNumber("fields_minimum",
			mcp.Description("Shared fields needed for a fields-to-fields clump (default: 3)")),
		mcp.WithNumber("parameters_minimum",
			mcp.Description("Shared parameters needed for a parameters-to-parameters clump (default: 3)")),
		mcp.WithNumber("parameters_to_fields_minimum",
			mcp.Description("Shared variables needed for a parameters-to-fields clump (default: 3)")),
		mcp.WithBoolean("fast_detection",
			mcp.Description("Prune candidates with the inverted index (default: true)")),
		mcp.WithString("format",
			mcp.Enum("json", "yaml", "csv", "text"),
			mcp.Description("Result format (default: json)")),
	), h.HandleDetectDataClumps)
}
