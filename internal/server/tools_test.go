package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expected := []string{
		"digit_describe",
		"digit_compare",
		"digit_read",
		"model_train",
		"model_test",
		"model_classify",
		"model_train_idx",
		"model_test_idx",
		"model_baseline_idx",
		"model_stats",
		"model_reset",
	}

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, expected, names)
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			assert.NotEmpty(t, tool.Description)
			assert.Equal(t, "object", tool.InputSchema["type"])

			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			require.True(t, ok, "properties must be an object")

			required, _ := tool.InputSchema["required"].([]string)
			for _, name := range required {
				assert.Contains(t, props, name, "required property %s is not declared", name)
			}

			_, err := json.Marshal(tool)
			require.NoError(t, err)
		})
	}
}

func TestToolDefinitions_ImageToolsShareMatrixOptions(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		props := tool.InputSchema["properties"].(map[string]interface{})
		if tool.Name == "digit_read" {
			continue
		}
		if _, ok := props["path"]; !ok {
			if _, ok := props["path_a"]; !ok {
				continue
			}
		}
		for _, opt := range []string{"region", "polarity", "blur_radius", "threshold"} {
			assert.Contains(t, props, opt, "%s lacks %s", tool.Name, opt)
		}
	}
}

func TestHandleToolsList(t *testing.T) {
	s := newTestServer(t)
	resp := s.handleRequest(&MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	require.Nil(t, resp.Error)
	tools := resp.Result.(map[string]interface{})["tools"].([]Tool)
	assert.Len(t, tools, len(GetToolDefinitions()))
}
