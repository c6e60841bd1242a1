package server

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
	"github.com/ironsheep/radial-resonance/internal/detection"
	"github.com/ironsheep/radial-resonance/internal/experiment"
	"github.com/ironsheep/radial-resonance/internal/imaging"
	"github.com/ironsheep/radial-resonance/internal/mnist"
	"github.com/ironsheep/radial-resonance/internal/resonance"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "digit_describe", "model_train").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(context.Background(), params.Name, params.Arguments)
	if err != nil {
		s.logger.Debug("tool failed", zap.String("tool", params.Name), zap.Error(err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	// Descriptor
	case "digit_describe":
		return s.handleDigitDescribe(args)
	case "digit_compare":
		return s.handleDigitCompare(args)
	case "digit_read":
		return s.handleDigitRead(args)

	// Single-sample model operations
	case "model_train":
		return s.handleModelTrain(args)
	case "model_test":
		return s.handleModelTest(args)
	case "model_classify":
		return s.handleModelClassify(args)

	// Dataset operations
	case "model_train_idx":
		return s.handleModelTrainIDX(ctx, args)
	case "model_test_idx":
		return s.handleModelTestIDX(ctx, args)
	case "model_baseline_idx":
		return s.handleModelBaselineIDX(ctx, args)

	// Model state
	case "model_stats":
		return s.handleModelStats()
	case "model_reset":
		return s.handleModelReset(args)

	default:
		return nil, errors.Newf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image conversion ===

type matrixArgs struct {
	Region     *imaging.Region `json:"region"`
	Polarity   string          `json:"polarity"`
	BlurRadius float64         `json:"blur_radius"`
	Threshold  int             `json:"threshold"`
}

func (a matrixArgs) options() (imaging.MatrixOptions, error) {
	if a.Threshold < 0 || a.Threshold > 255 {
		return imaging.MatrixOptions{}, errors.Newf("threshold must be in [0,255], got %d", a.Threshold)
	}
	return imaging.MatrixOptions{
		Region:     a.Region,
		Polarity:   imaging.Polarity(a.Polarity),
		BlurRadius: a.BlurRadius,
		Threshold:  uint8(a.Threshold),
	}, nil
}

// describe loads path and builds its descriptor with the configured geometry.
func (s *Server) describe(path string, m matrixArgs) (*descriptor.Descriptor, [][]int, error) {
	opts, err := m.options()
	if err != nil {
		return nil, nil, err
	}
	matrix, err := s.cache.LoadMatrix(path, opts)
	if err != nil {
		return nil, nil, err
	}
	d, err := descriptor.Build(matrix, s.cfg.Descriptor)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "describe %s", path)
	}
	return d, matrix, nil
}

// === Descriptor Handlers ===

type digitDescribeArgs struct {
	matrixArgs
	Path    string `json:"path"`
	Preview bool   `json:"preview"`
}

// DescribeResult is the digit_describe response.
type DescribeResult struct {
	Sectors        int       `json:"sectors"`
	Rings          int       `json:"rings"`
	Representation []float64 `json:"representation"`
	PointCount     int       `json:"point_count"`
	CentroidX      float64   `json:"centroid_x"`
	CentroidY      float64   `json:"centroid_y"`
	Rotation       float64   `json:"rotation_degrees"`
	MaxRadius      float64   `json:"max_radius"`
	Preview        string    `json:"preview_png_base64,omitempty"`
}

func (s *Server) handleDigitDescribe(args json.RawMessage) (interface{}, error) {
	var a digitDescribeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, matrix, err := s.describe(a.Path, a.matrixArgs)
	if err != nil {
		return nil, err
	}

	centroid := d.Centroid()
	result := DescribeResult{
		Sectors:        s.cfg.Descriptor.Sectors,
		Rings:          s.cfg.Descriptor.Rings,
		Representation: d.Representation(),
		PointCount:     d.PointCount(),
		CentroidX:      centroid.X,
		CentroidY:      centroid.Y,
		Rotation:       d.Rotation(),
		MaxRadius:      d.MaxRadius(),
	}
	if a.Preview {
		preview, err := imaging.EncodePNGBase64(imaging.MatrixImage(matrix))
		if err != nil {
			return nil, err
		}
		result.Preview = preview
	}
	return result, nil
}

type digitCompareArgs struct {
	matrixArgs
	PathA string `json:"path_a"`
	PathB string `json:"path_b"`
}

func (s *Server) handleDigitCompare(args json.RawMessage) (interface{}, error) {
	var a digitCompareArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	da, _, err := s.describe(a.PathA, a.matrixArgs)
	if err != nil {
		return nil, err
	}
	db, _, err := s.describe(a.PathB, a.matrixArgs)
	if err != nil {
		return nil, err
	}
	sim, err := da.Compare(db)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"similarity":      sim,
		"rotation_a":      da.Rotation(),
		"rotation_b":      db.Rotation(),
		"descriptor_size": da.Len(),
	}, nil
}

type digitReadArgs struct {
	Path      string `json:"path"`
	Polarity  string `json:"polarity"`
	Threshold int    `json:"threshold"`
	MinPixels int    `json:"min_pixels"`
	Padding   int    `json:"padding"`
}

// ReadDigit is one located digit in a digit_read response.
type ReadDigit struct {
	Bounds detection.Bounds `json:"bounds"`
	Found  bool             `json:"found"`
	Label  int              `json:"label"`
	Score  float64          `json:"score"`
	Error  string           `json:"error,omitempty"`
}

// ReadResult is the digit_read response. Text holds one character per
// located digit, '?' where no cluster resonated.
type ReadResult struct {
	Text   string      `json:"text"`
	Digits []ReadDigit `json:"digits"`
}

func (s *Server) handleDigitRead(args json.RawMessage) (interface{}, error) {
	var a digitReadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Threshold < 0 || a.Threshold > 255 {
		return nil, errors.Newf("threshold must be in [0,255], got %d", a.Threshold)
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	regions, err := detection.LocateDigits(img, detection.LocateOptions{
		Polarity:  imaging.Polarity(a.Polarity),
		Threshold: uint8(a.Threshold),
		MinPixels: a.MinPixels,
		Padding:   a.Padding,
	})
	if err != nil {
		return nil, err
	}

	model := s.currentRunner().Model()
	result := ReadResult{Digits: make([]ReadDigit, 0, len(regions))}
	text := make([]byte, 0, len(regions))
	for _, r := range regions {
		digit := ReadDigit{Bounds: r.Bounds, Label: -1}
		region := r.Bounds.Region()
		d, _, err := s.describe(a.Path, matrixArgs{Region: &region, Polarity: a.Polarity})
		if err == nil {
			var match resonance.Match
			match, err = model.Classify(d.Representation())
			if err == nil && match.Found {
				digit.Found, digit.Label, digit.Score = true, match.Label, match.Score
			}
		}
		if err != nil {
			digit.Error = err.Error()
		}

		if digit.Found && digit.Label >= 0 && digit.Label <= 9 {
			text = append(text, byte('0'+digit.Label))
		} else {
			text = append(text, '?')
		}
		result.Digits = append(result.Digits, digit)
	}
	result.Text = string(text)
	return result, nil
}

// === Single-sample Model Handlers ===

type labeledImageArgs struct {
	matrixArgs
	Path  string `json:"path"`
	Label *int   `json:"label"`
}

func (a labeledImageArgs) label() (int, error) {
	if a.Label == nil {
		return 0, errors.New("label is required")
	}
	if *a.Label < 0 {
		return 0, errors.Newf("label must not be negative, got %d", *a.Label)
	}
	return *a.Label, nil
}

func (s *Server) handleModelTrain(args json.RawMessage) (interface{}, error) {
	var a labeledImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	label, err := a.label()
	if err != nil {
		return nil, err
	}
	d, _, err := s.describe(a.Path, a.matrixArgs)
	if err != nil {
		return nil, err
	}

	model := s.currentRunner().Model()
	out, err := model.TrainSupervised(d.Representation(), label)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"outcome":  out,
		"clusters": model.ClusterCount(),
	}, nil
}

func (s *Server) handleModelTest(args json.RawMessage) (interface{}, error) {
	var a labeledImageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	label, err := a.label()
	if err != nil {
		return nil, err
	}
	d, _, err := s.describe(a.Path, a.matrixArgs)
	if err != nil {
		return nil, err
	}

	model := s.currentRunner().Model()
	match, success, err := model.TestSupervisedMatch(d.Representation(), label)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"success":       success,
		"match":         match,
		"success_count": model.SuccessCount(),
	}, nil
}

type imageArgs struct {
	matrixArgs
	Path string `json:"path"`
}

func (s *Server) handleModelClassify(args json.RawMessage) (interface{}, error) {
	var a imageArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	d, _, err := s.describe(a.Path, a.matrixArgs)
	if err != nil {
		return nil, err
	}
	return s.currentRunner().Model().Classify(d.Representation())
}

// === Dataset Handlers ===

type datasetArgs struct {
	Images string `json:"images"`
	Labels string `json:"labels"`
	Limit  int    `json:"limit"`
	Epochs int    `json:"epochs"`
}

func (s *Server) loadEncoded(ctx context.Context, r *experiment.Runner, images, labels string, limit int) ([]experiment.Encoded, int, error) {
	if images == "" || labels == "" {
		return nil, 0, errors.New("both images and labels paths are required")
	}
	if limit < 0 {
		return nil, 0, errors.Newf("limit must not be negative, got %d", limit)
	}
	samples, err := mnist.ReadDataset(images, labels, limit)
	if err != nil {
		return nil, 0, err
	}
	return r.Encode(ctx, samples)
}

func (s *Server) handleModelTrainIDX(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Epochs == 0 {
		a.Epochs = s.cfg.Run.Epochs
	}

	r := s.currentRunner()
	encoded, skipped, err := s.loadEncoded(ctx, r, a.Images, a.Labels, a.Limit)
	if err != nil {
		return nil, err
	}
	report, err := r.Train(ctx, encoded, a.Epochs)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"report":  report,
		"skipped": skipped,
		"summary": report.String(),
	}, nil
}

func (s *Server) handleModelTestIDX(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	r := s.currentRunner()
	encoded, skipped, err := s.loadEncoded(ctx, r, a.Images, a.Labels, a.Limit)
	if err != nil {
		return nil, err
	}
	report, err := r.Test(ctx, encoded)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"report":   report,
		"accuracy": report.Accuracy(),
		"skipped":  skipped,
		"summary":  report.String(),
	}, nil
}

type baselineArgs struct {
	TrainImages string `json:"train_images"`
	TrainLabels string `json:"train_labels"`
	TestImages  string `json:"test_images"`
	TestLabels  string `json:"test_labels"`
	Limit       int    `json:"limit"`
}

func (s *Server) handleModelBaselineIDX(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a baselineArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	r := s.currentRunner()
	train, _, err := s.loadEncoded(ctx, r, a.TrainImages, a.TrainLabels, a.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "training set")
	}
	test, _, err := s.loadEncoded(ctx, r, a.TestImages, a.TestLabels, a.Limit)
	if err != nil {
		return nil, errors.Wrap(err, "test set")
	}
	report, err := experiment.Baseline(ctx, train, test)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"report":   report,
		"accuracy": report.Accuracy(),
		"summary":  report.String(),
	}, nil
}

// === Model State Handlers ===

// StatsResult is the model_stats response.
type StatsResult struct {
	Clusters     int               `json:"clusters"`
	SuccessCount int               `json:"success_count"`
	LabelCounts  map[int]int       `json:"label_counts"`
	Vigilance    float64           `json:"vigilance"`
	LearningRate float64           `json:"learning_rate"`
	Dimension    int               `json:"dimension"`
	Descriptor   descriptor.Config `json:"descriptor"`
	CachedImages int               `json:"cached_images"`
}

func (s *Server) handleModelStats() (interface{}, error) {
	model := s.currentRunner().Model()
	return StatsResult{
		Clusters:     model.ClusterCount(),
		SuccessCount: model.SuccessCount(),
		LabelCounts:  model.LabelCounts(),
		Vigilance:    model.GlobalVigilance(),
		LearningRate: model.LearningRate(),
		Dimension:    model.Dimension(),
		Descriptor:   s.cfg.Descriptor,
		CachedImages: s.cache.Len(),
	}, nil
}

type modelResetArgs struct {
	Vigilance    *float64 `json:"vigilance"`
	LearningRate *float64 `json:"learning_rate"`
}

func (s *Server) handleModelReset(args json.RawMessage) (interface{}, error) {
	var a modelResetArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.runner.Model()
	vigilance, rate := old.GlobalVigilance(), old.LearningRate()
	if a.Vigilance != nil {
		vigilance = *a.Vigilance
	}
	if a.LearningRate != nil {
		rate = *a.LearningRate
	}

	runner, err := s.newRunner(vigilance, rate)
	if err != nil {
		return nil, err
	}
	s.runner = runner
	s.logger.Info("model reset",
		zap.Float64("vigilance", vigilance),
		zap.Float64("learning_rate", rate),
		zap.Int("discarded_clusters", old.ClusterCount()))

	return map[string]interface{}{
		"vigilance":     vigilance,
		"learning_rate": rate,
	}, nil
}
