package tools

import (
	"encoding/json"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// textResult returns a text-only ToolResult
func textResult(msg string) *sdkmcp.CallToolResult {
	return &sdkmcp.CallToolResult{
		Content: []sdkmcp.Content{
			&sdkmcp.TextContent{Text: msg},
		},
	}
}

// errorResult returns a text-only ToolResult flagged as a tool error
func errorResult(msg string) *sdkmcp.CallToolResult {
	res := textResult(msg)
	res.IsError = true
	return res
}

// jsonResult renders v as indented JSON text
func jsonResult(v any, isError bool) (*sdkmcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	res := textResult(string(raw))
	res.IsError = isError
	return res, nil
}
