package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
)

// HandlerSet exposes MCP tool handlers with shared dependencies.
type HandlerSet struct {
	deps *Dependencies
}

// NewHandlerSet constructs a handler set.
func NewHandlerSet(deps *Dependencies) *HandlerSet {
	if deps == nil {
		deps = NewDependencies(nil, "")
	}
	return &HandlerSet{deps: deps}
}

// HandleDetectDataClumps handles the detect_data_clumps tool
func (h *HandlerSet) HandleDetectDataClumps(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return mcp.NewToolResultError("path parameter is required and must be a string"), nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return mcp.NewToolResultError(fmt.Sprintf("path does not exist: %s", path)), nil
	}

	req := domain.DataClumpRequest{
		Path:         path,
		OutputFormat: domain.OutputFormatJSON,
		OutputWriter: io.Discard,
		ConfigPath:   h.deps.ConfigPath(),
	}

	minimums := []struct {
		arg    string
		target *int
	}{
		{"fields_minimum", &req.SharedFieldsToFieldsAmountMinimum},
		{"parameters_minimum", &req.SharedParametersToParametersAmountMinimum},
		{"parameters_to_fields_minimum", &req.SharedParametersToFieldsAmountMinimum},
	}
	for _, m := range minimums {
		raw, present := args[m.arg]
		if !present {
			continue
		}
		value, ok := raw.(float64)
		if !ok || value < 1 || value != float64(int(value)) {
			return mcp.NewToolResultError(fmt.Sprintf("%s must be a positive integer", m.arg)), nil
		}
		*m.target = int(value)
	}

	if fd, ok := args["fast_detection"].(bool); ok {
		req.FastDetection = domain.BoolPtr(fd)
	}

	if f, ok := args["format"].(string); ok && f != "" {
		format := domain.OutputFormat(f)
		if !format.IsValid() {
			return mcp.NewToolResultError(fmt.Sprintf("unsupported format: %s", f)), nil
		}
		req.OutputFormat = format
	}

	useCase, err := h.deps.BuildDataClumpUseCase()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create detector: %v", err)), nil
	}

	response, err := useCase.DetectAndReturn(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("data clump detection failed: %v", err)), nil
	}

	h.deps.Logger().Info("data clumps detected",
		zap.String("path", path),
		zap.Int("data_clumps", len(response.SortedKeys)))

	output, err := h.deps.Formatter().Format(response, req.OutputFormat)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to format result: %v", err)), nil
	}

	return mcp.NewToolResultText(output), nil
}
