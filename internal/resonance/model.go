package resonance

import (
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
)

// ErrInvalidHyperparameter is returned by New for out-of-range settings.
var ErrInvalidHyperparameter = errors.New("invalid resonance hyperparameter")

// Model is a supervised adaptive resonance classifier.
type Model struct {
	mu        sync.RWMutex
	clusters  []*Cluster
	dimension int

	globalVigilance float64
	learningRate    float64

	successes atomic.Int64
	logger    *zap.Logger
}

// Option configures a Model.
type Option func(*Model)

// WithLogger makes the model log cluster creation and vigilance raises at
// debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates an empty model. globalVigilance must lie in (0,1) and
// learningRate in [0,1]; both are fixed for the model's lifetime.
func New(globalVigilance, learningRate float64, opts ...Option) (*Model, error) {
	if !(globalVigilance > 0 && globalVigilance < 1) {
		return nil, errors.Wrapf(ErrInvalidHyperparameter,
			"global vigilance must be in (0,1), got %v", globalVigilance)
	}
	if !(learningRate >= 0 && learningRate <= 1) {
		return nil, errors.Wrapf(ErrInvalidHyperparameter,
			"learning rate must be in [0,1], got %v", learningRate)
	}

	m := &Model{
		globalVigilance: globalVigilance,
		learningRate:    learningRate,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// TrainOutcome describes what a training call did.
type TrainOutcome struct {
	// Accepted is true when at least one same-label cluster resonated.
	Accepted bool `json:"accepted"`

	// Cluster is the index of the most similar accepting cluster, or of the
	// newly created cluster when nothing accepted.
	Cluster int `json:"cluster"`

	// Similarity is the winning cluster's similarity, or 1 for a new cluster.
	Similarity float64 `json:"similarity"`

	// VigilanceRaises counts foreign-label clusters that became stricter.
	VigilanceRaises int `json:"vigilance_raises"`
}

// TrainSupervised offers input with its label to every cluster and appends a
// new cluster when none accepts. A representation whose length differs from
// the model's is rejected with descriptor.ErrDimensionMismatch before any
// cluster is touched.
func (m *Model) TrainSupervised(input []float64, label int) (TrainOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkDimension(input); err != nil {
		return TrainOutcome{}, err
	}

	out := TrainOutcome{Cluster: -1}
	for i, c := range m.clusters {
		before := c.localVigilance
		ok, err := c.attemptTrain(input, label, m.learningRate)
		if err != nil {
			return TrainOutcome{}, err
		}
		if c.localVigilance > before {
			out.VigilanceRaises++
			m.logger.Debug("raised cluster vigilance",
				zap.Int("cluster", i),
				zap.Int("cluster_label", c.label),
				zap.Int("input_label", label),
				zap.Float64("vigilance", c.localVigilance))
		}
		if ok && (!out.Accepted || c.lastSimilarity > out.Similarity) {
			out.Accepted = true
			out.Cluster = i
			out.Similarity = c.lastSimilarity
		}
	}

	if !out.Accepted {
		m.clusters = append(m.clusters, newCluster(input, label, m.globalVigilance))
		m.dimension = len(input)
		out.Cluster = len(m.clusters) - 1
		out.Similarity = 1
		m.logger.Debug("created cluster",
			zap.Int("cluster", out.Cluster),
			zap.Int("label", label),
			zap.Int("clusters", len(m.clusters)))
	}
	return out, nil
}

// Match is the result of scoring an input against the model.
type Match struct {
	// Found is false when no cluster scored above its local vigilance.
	Found   bool    `json:"found"`
	Label   int     `json:"label"`
	Cluster int     `json:"cluster"`
	Score   float64 `json:"score"`
}

// Classify returns the cluster with the strictly highest non-zero score. Ties
// keep the earliest created cluster. Clusters are not modified.
func (m *Model) Classify(input []float64) (Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.checkDimension(input); err != nil {
		return Match{}, err
	}

	best := Match{Cluster: -1}
	for i, c := range m.clusters {
		score, err := c.evaluate(input)
		if err != nil {
			return Match{}, err
		}
		if score > best.Score {
			best = Match{Found: true, Label: c.label, Cluster: i, Score: score}
		}
	}
	return best, nil
}

// TestSupervised classifies input and counts a success when the best match
// carries label. It reports whether this call was a success.
func (m *Model) TestSupervised(input []float64, label int) (bool, error) {
	_, ok, err := m.TestSupervisedMatch(input, label)
	return ok, err
}

// TestSupervisedMatch is TestSupervised that also returns the match the
// success was decided on.
func (m *Model) TestSupervisedMatch(input []float64, label int) (Match, bool, error) {
	match, err := m.Classify(input)
	if err != nil {
		return Match{}, false, err
	}
	if match.Found && match.Label == label {
		m.successes.Add(1)
		return match, true, nil
	}
	return match, false, nil
}

// checkDimension must be called with mu held.
func (m *Model) checkDimension(input []float64) error {
	if len(input) == 0 {
		return errors.Wrap(descriptor.ErrDimensionMismatch, "empty representation")
	}
	if len(m.clusters) > 0 && len(input) != m.dimension {
		return errors.Wrapf(descriptor.ErrDimensionMismatch,
			"model holds %d-element prototypes, got %d", m.dimension, len(input))
	}
	return nil
}

// ClusterCount returns the number of clusters.
func (m *Model) ClusterCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clusters)
}

// SuccessCount returns the number of successful TestSupervised calls.
func (m *Model) SuccessCount() int {
	return int(m.successes.Load())
}

// GlobalVigilance returns the vigilance new clusters start with.
func (m *Model) GlobalVigilance() float64 {
	return m.globalVigilance
}

// LearningRate returns the prototype drift rate.
func (m *Model) LearningRate() float64 {
	return m.learningRate
}

// Dimension returns the prototype length, or 0 before the first cluster.
func (m *Model) Dimension() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimension
}

// Clusters returns copies of all clusters in creation order.
func (m *Model) Clusters() []ClusterInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ClusterInfo, len(m.clusters))
	for i, c := range m.clusters {
		out[i] = c.info()
	}
	return out
}

// LabelCounts returns the number of clusters per label.
func (m *Model) LabelCounts() map[int]int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := make(map[int]int)
	for _, c := range m.clusters {
		counts[c.label]++
	}
	return counts
}
