package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": description,
	}
}

func labelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": "Class label of the digit (0-9 for MNIST)",
	}
}

// matrixProperties describes how an image file becomes a 28x28 matrix. The
// same options apply to every tool that reads an image.
func matrixProperties() map[string]interface{} {
	return map[string]interface{}{
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional crop rectangle applied before conversion (x2, y2 exclusive)",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"polarity": map[string]interface{}{
			"type":        "string",
			"enum":        []string{"auto", "light-ink", "dark-ink"},
			"description": "Ink polarity. auto inspects the image border. Default auto",
			"default":     "auto",
		},
		"blur_radius": map[string]interface{}{
			"type":        "number",
			"description": "Gaussian blur radius applied before fitting. Default 0 (off)",
		},
		"threshold": map[string]interface{}{
			"type":        "integer",
			"description": "Binarize at this intensity (1-255). Default 0 (off)",
		},
	}
}

func withMatrixProperties(props map[string]interface{}) map[string]interface{} {
	for k, v := range matrixProperties() {
		props[k] = v
	}
	return props
}

func datasetProperties() map[string]interface{} {
	return map[string]interface{}{
		"images": pathProperty("Path to an IDX image file (idx3-ubyte, optionally gzip-compressed)"),
		"labels": pathProperty("Path to the matching IDX label file (idx1-ubyte, optionally gzip-compressed)"),
		"limit": map[string]interface{}{
			"type":        "integer",
			"description": "Maximum number of samples to read. Default 0 (all)",
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Descriptor
		{
			Name:        "digit_describe",
			Description: "Convert a digit image to a 28x28 matrix and compute its rotation-normalized polar histogram descriptor.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withMatrixProperties(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"preview": map[string]interface{}{
						"type":        "boolean",
						"description": "Include the converted 28x28 matrix as base64-encoded PNG. Default false",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "digit_compare",
			Description: "Similarity of two digit images in (0,1], computed as 1/(1+distance) between their descriptors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withMatrixProperties(map[string]interface{}{
					"path_a": pathProperty("Absolute path to the first image"),
					"path_b": pathProperty("Absolute path to the second image"),
				}),
				"required": []string{"path_a", "path_b"},
			},
		},

		{
			Name:        "digit_read",
			Description: "Locate the digits in an image holding a row of them and classify each with the model, left to right.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
					"polarity": map[string]interface{}{
						"type":        "string",
						"enum":        []string{"auto", "light-ink", "dark-ink"},
						"description": "Ink polarity. Default auto",
					},
					"threshold": map[string]interface{}{
						"type":        "integer",
						"description": "Minimum ink intensity for segmentation (1-255). Default 128",
					},
					"min_pixels": map[string]interface{}{
						"type":        "integer",
						"description": "Ignore ink blobs smaller than this. Default 8",
					},
					"padding": map[string]interface{}{
						"type":        "integer",
						"description": "Pixels added around each located digit. Default 2",
					},
				},
				"required": []string{"path"},
			},
		},

		// Single-sample model operations
		{
			Name:        "model_train",
			Description: "Present one labeled digit image to the resonance model. Creates a new cluster when no same-label cluster resonates.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withMatrixProperties(map[string]interface{}{
					"path":  pathProperty("Absolute path to the image file"),
					"label": labelProperty(),
				}),
				"required": []string{"path", "label"},
			},
		},
		{
			Name:        "model_test",
			Description: "Classify a labeled digit image and count a success when the best cluster carries the label.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withMatrixProperties(map[string]interface{}{
					"path":  pathProperty("Absolute path to the image file"),
					"label": labelProperty(),
				}),
				"required": []string{"path", "label"},
			},
		},
		{
			Name:        "model_classify",
			Description: "Return the label of the best resonating cluster for a digit image without changing the model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": withMatrixProperties(map[string]interface{}{
					"path": pathProperty("Absolute path to the image file"),
				}),
				"required": []string{"path"},
			},
		},

		// Dataset operations
		{
			Name:        "model_train_idx",
			Description: "Train the model on an MNIST-format IDX dataset for one or more epochs.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": func() map[string]interface{} {
					props := datasetProperties()
					props["epochs"] = map[string]interface{}{
						"type":        "integer",
						"description": "Number of passes over the dataset. Default from configuration",
					}
					return props
				}(),
				"required": []string{"images", "labels"},
			},
		},
		{
			Name:        "model_test_idx",
			Description: "Test the model on an MNIST-format IDX dataset and report accuracy per label.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": datasetProperties(),
				"required":   []string{"images", "labels"},
			},
		},
		{
			Name:        "model_baseline_idx",
			Description: "Score a one-prototype-per-label classifier built from the first training sample of each label. Does not touch the model.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"train_images": pathProperty("Path to the training IDX image file"),
					"train_labels": pathProperty("Path to the training IDX label file"),
					"test_images":  pathProperty("Path to the test IDX image file"),
					"test_labels":  pathProperty("Path to the test IDX label file"),
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of samples per file. Default 0 (all)",
					},
				},
				"required": []string{"train_images", "train_labels", "test_images", "test_labels"},
			},
		},

		// Model state
		{
			Name:        "model_stats",
			Description: "Report cluster count, success count, clusters per label and the model hyperparameters.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "model_reset",
			Description: "Discard all clusters and start a new model, optionally with new hyperparameters.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"vigilance": map[string]interface{}{
						"type":        "number",
						"description": "Initial local vigilance of new clusters, in (0,1). Default from configuration",
					},
					"learning_rate": map[string]interface{}{
						"type":        "number",
						"description": "Prototype drift rate, in [0,1]. Default from configuration",
					},
				},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
