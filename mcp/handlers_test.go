package mcp_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ludo-technologies/clumpscn/domain"
	"github.com/ludo-technologies/clumpscn/mcp"
)

// setupAST writes two classes sharing three fields and returns the directory
func setupAST(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "ast")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"Invoice", "Order"} {
		fields := map[string]interface{}{}
		for _, f := range []string{"currency", "amount", "dueDate"} {
			fields[f] = map[string]interface{}{"name": f, "type": "String", "modifiers": []string{"private"}}
		}
		doc := map[string]interface{}{
			"key":       "src/" + name + ".java/class/" + name,
			"name":      name,
			"type":      "class",
			"file_path": "src/" + name + ".java",
			"fields":    fields,
			"methods":   map[string]interface{}{},
		}
		data, err := json.Marshal(doc)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), data, 0o644))
	}
	return dir
}

func callTool(t *testing.T, h *mcp.HandlerSet, arguments interface{}) *mcplib.CallToolResult {
	t.Helper()
	req := mcplib.CallToolRequest{
		Params: mcplib.CallToolParams{
			Name:      mcp.ToolDetectDataClumps,
			Arguments: arguments,
		},
	}
	res, err := h.HandleDetectDataClumps(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)
	return res
}

func resultText(t *testing.T, res *mcplib.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcplib.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])
	return text.Text
}

func TestHandleDetectDataClumps_Errors(t *testing.T) {
	astDir := setupAST(t)

	tests := map[string]struct {
		arguments    interface{}
		expectPrefix string
	}{
		"invalid_arguments_format": {
			arguments:    "not-a-map",
			expectPrefix: "invalid arguments format",
		},
		"path_missing": {
			arguments:    map[string]interface{}{},
			expectPrefix: "path parameter is required",
		},
		"path_not_exist": {
			arguments:    map[string]interface{}{"path": "/non/existing/path"},
			expectPrefix: "path does not exist",
		},
		"zero_minimum": {
			arguments:    map[string]interface{}{"path": astDir, "fields_minimum": float64(0)},
			expectPrefix: "fields_minimum must be a positive integer",
		},
		"fractional_minimum": {
			arguments:    map[string]interface{}{"path": astDir, "parameters_minimum": 2.5},
			expectPrefix: "parameters_minimum must be a positive integer",
		},
		"unsupported_format": {
			arguments:    map[string]interface{}{"path": astDir, "format": "html"},
			expectPrefix: "unsupported format",
		},
	}

	h := mcp.NewHandlerSet(mcp.NewDependencies(zap.NewNop(), ""))
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res := callTool(t, h, tt.arguments)
			assert.True(t, res.IsError)
			assert.True(t, strings.HasPrefix(resultText(t, res), tt.expectPrefix), resultText(t, res))
		})
	}
}

func TestHandleDetectDataClumps_JSON(t *testing.T) {
	h := mcp.NewHandlerSet(mcp.NewDependencies(zap.NewNop(), ""))
	res := callTool(t, h, map[string]interface{}{"path": setupAST(t)})
	require.False(t, res.IsError, resultText(t, res))

	var report domain.DataClumpsReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Len(t, report.DataClumps, 2)
	assert.Equal(t, domain.DetectorName, report.Detector.Name)
	for _, clump := range report.DataClumps {
		assert.Equal(t, domain.FieldsToFieldsDataClump, clump.DataClumpType)
		assert.Len(t, clump.DataClumpData, 3)
	}
}

func TestHandleDetectDataClumps_Options(t *testing.T) {
	astDir := setupAST(t)
	h := mcp.NewHandlerSet(nil)

	t.Run("raised minimum", func(t *testing.T) {
		res := callTool(t, h, map[string]interface{}{"path": astDir, "fields_minimum": float64(4)})
		require.False(t, res.IsError, resultText(t, res))

		var report domain.DataClumpsReport
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Empty(t, report.DataClumps)
		assert.Equal(t, float64(4), report.Detector.Options["sharedFieldsToFieldsAmountMinimum"])
	})

	t.Run("exhaustive search", func(t *testing.T) {
		res := callTool(t, h, map[string]interface{}{"path": astDir, "fast_detection": false})
		require.False(t, res.IsError, resultText(t, res))

		var report domain.DataClumpsReport
		require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
		assert.Len(t, report.DataClumps, 2, "the index never loses exact matches")
		assert.Equal(t, false, report.Detector.Options["fastDetection"])
	})

	t.Run("csv", func(t *testing.T) {
		res := callTool(t, h, map[string]interface{}{"path": astDir, "format": "csv"})
		require.False(t, res.IsError, resultText(t, res))
		lines := strings.Split(strings.TrimSpace(resultText(t, res)), "\n")
		assert.Len(t, lines, 3)
		assert.True(t, strings.HasPrefix(lines[0], "key,data_clump_type"))
	})
}

func TestHandleDetectDataClumps_RespectsConfigFile(t *testing.T) {
	astDir := setupAST(t)
	configPath := filepath.Join(t.TempDir(), "clumps.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[detector]\nshared_fields_to_fields_amount_minimum = 5\n"), 0o644))

	h := mcp.NewHandlerSet(mcp.NewDependencies(zap.NewNop(), configPath))
	res := callTool(t, h, map[string]interface{}{"path": astDir})
	require.False(t, res.IsError, resultText(t, res))

	var report domain.DataClumpsReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &report))
	assert.Empty(t, report.DataClumps)
	assert.Equal(t, float64(5), report.Detector.Options["sharedFieldsToFieldsAmountMinimum"])

	res = callTool(t, h, map[string]interface{}{"path": astDir, "fields_minimum": float64(3)})
	require.False(t, res.IsError, resultText(t, res))
	var overridden domain.DataClumpsReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &overridden))
	assert.Len(t, overridden.DataClumps, 2, "tool arguments beat the config file")
}
