package resonance

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
	"github.com/ironsheep/radial-resonance/internal/imaging"
)

// glyphVector builds the descriptor of a synthetic 28x28 digit.
func glyphVector(t *testing.T, digit int, opts imaging.GlyphOptions) []float64 {
	t.Helper()
	m, err := imaging.GlyphMatrix(digit, opts)
	require.NoError(t, err)
	d, err := descriptor.New(m)
	require.NoError(t, err)
	return d.Representation()
}

func newModel(t *testing.T, vigilance, rate float64) *Model {
	t.Helper()
	m, err := New(vigilance, rate)
	require.NoError(t, err)
	return m
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name      string
		vigilance float64
		rate      float64
		wantErr   bool
	}{
		{"typical", 0.98, 0.0, false},
		{"full learning rate", 0.5, 1.0, false},
		{"zero vigilance", 0, 0.1, true},
		{"vigilance of one", 1, 0.1, true},
		{"negative rate", 0.9, -0.1, true},
		{"rate above one", 0.9, 1.5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := New(tt.vigilance, tt.rate)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidHyperparameter)
				assert.Nil(t, m)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.vigilance, m.GlobalVigilance())
			assert.Equal(t, tt.rate, m.LearningRate())
			assert.Zero(t, m.ClusterCount())
			assert.Zero(t, m.SuccessCount())
		})
	}
}

func TestScenario_IdenticalSamplesShareCluster(t *testing.T) {
	m := newModel(t, 0.98, 0.0)
	v := glyphVector(t, 3, imaging.GlyphOptions{})

	first, err := m.TrainSupervised(v, 3)
	require.NoError(t, err)
	second, err := m.TrainSupervised(v, 3)
	require.NoError(t, err)

	assert.False(t, first.Accepted)
	assert.True(t, second.Accepted)
	assert.Equal(t, 0, second.Cluster)
	assert.Equal(t, 1.0, second.Similarity)

	require.Equal(t, 1, m.ClusterCount())
	assert.Equal(t, 3, m.Clusters()[0].Label)
}

func TestScenario_TrainThenTestSameSample(t *testing.T) {
	m := newModel(t, 0.98, 0.0)
	v := glyphVector(t, 0, imaging.GlyphOptions{})

	_, err := m.TrainSupervised(v, 0)
	require.NoError(t, err)
	ok, err := m.TestSupervised(v, 0)
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, 1, m.SuccessCount())
}

func TestScenario_ConflictingLabelsRaiseVigilance(t *testing.T) {
	m := newModel(t, 0.98, 0.0)
	v := glyphVector(t, 5, imaging.GlyphOptions{})

	_, err := m.TrainSupervised(v, 1)
	require.NoError(t, err)
	out, err := m.TrainSupervised(v, 2)
	require.NoError(t, err)

	assert.False(t, out.Accepted)
	assert.Equal(t, 1, out.VigilanceRaises)

	clusters := m.Clusters()
	require.Len(t, clusters, 2)
	assert.Equal(t, 1, clusters[0].Label, "the first cluster keeps its label")
	assert.Equal(t, 1.0, clusters[0].LocalVigilance)
	assert.Equal(t, 2, clusters[1].Label)
	assert.Equal(t, 0.98, clusters[1].LocalVigilance)
}

func TestTrainSupervised_NewLabelAppendsOneCluster(t *testing.T) {
	m := newModel(t, 0.6, 0.2)
	for digit := 0; digit <= 9; digit++ {
		before := m.ClusterCount()
		_, err := m.TrainSupervised(glyphVector(t, digit, imaging.GlyphOptions{}), digit)
		require.NoError(t, err)
		assert.Equal(t, before+1, m.ClusterCount(), "unseen label %d", digit)
	}
}

func TestTrainSupervised_LearningRateMovesTowardInput(t *testing.T) {
	m := newModel(t, 0.1, 0.25)

	_, err := m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	out, err := m.TrainSupervised([]float64{1, 0}, 1)
	require.NoError(t, err)

	require.True(t, out.Accepted)
	assert.InDelta(t, 0.5, out.Similarity, 1e-12)
	assert.InDeltaSlice(t, []float64{0.25, 0}, m.Clusters()[0].Centroid, 1e-12)
}

func TestTrainSupervised_ZeroLearningRateFreezesPrototype(t *testing.T) {
	m := newModel(t, 0.1, 0)

	_, err := m.TrainSupervised([]float64{0.2, 0.4}, 7)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{0.3, 0.1}, 7)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.2, 0.4}, m.Clusters()[0].Centroid)
}

func TestTrainSupervised_MostSimilarAcceptingCluster(t *testing.T) {
	m := newModel(t, 0.3, 0)
	// Seed two label-4 clusters: the second is created because the first
	// rejects the far vector as below vigilance.
	_, err := m.TrainSupervised([]float64{0, 0}, 4)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{3, 0}, 4)
	require.NoError(t, err)
	require.Equal(t, 2, m.ClusterCount())

	out, err := m.TrainSupervised([]float64{2, 0}, 4)
	require.NoError(t, err)

	assert.True(t, out.Accepted)
	assert.Equal(t, 1, out.Cluster)
	assert.InDelta(t, 0.5, out.Similarity, 1e-12)
	assert.Equal(t, 2, m.ClusterCount())
}

func TestTrainSupervised_BelowVigilanceLeavesClusterAlone(t *testing.T) {
	m := newModel(t, 0.9, 1)

	_, err := m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{1, 1}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{1, 1}, 2)
	require.NoError(t, err)

	clusters := m.Clusters()
	require.Len(t, clusters, 3)
	assert.Equal(t, []float64{0, 0}, clusters[0].Centroid)
	assert.Equal(t, 0.9, clusters[0].LocalVigilance, "a distant foreign label does not raise vigilance")
	assert.Equal(t, 1.0, clusters[1].LocalVigilance)
}

func TestTrainSupervised_VigilanceNeverDecreases(t *testing.T) {
	m := newModel(t, 0.2, 0.5)
	inputs := [][]float64{
		{0, 0}, {0.5, 0}, {0.1, 0.1}, {2, 2}, {0.05, 0}, {0.4, 0.4}, {0, 0}, {1, 0},
	}
	labels := []int{1, 2, 3, 1, 2, 3, 4, 1}

	last := map[int]float64{}
	for i, in := range inputs {
		_, err := m.TrainSupervised(in, labels[i])
		require.NoError(t, err)

		for j, c := range m.Clusters() {
			if prev, ok := last[j]; ok {
				assert.GreaterOrEqual(t, c.LocalVigilance, prev, "cluster %d after step %d", j, i)
			}
			last[j] = c.LocalVigilance
		}
	}
}

func TestTrainSupervised_DimensionMismatch(t *testing.T) {
	m := newModel(t, 0.9, 0.1)
	_, err := m.TrainSupervised([]float64{0.1, 0.2, 0.3}, 1)
	require.NoError(t, err)

	_, err = m.TrainSupervised([]float64{0.1, 0.2}, 1)
	require.ErrorIs(t, err, descriptor.ErrDimensionMismatch)

	_, err = m.TrainSupervised(nil, 1)
	require.ErrorIs(t, err, descriptor.ErrDimensionMismatch)

	assert.Equal(t, 1, m.ClusterCount())
	assert.Equal(t, 3, m.Dimension())
}

func TestTrainSupervised_OwnsCentroid(t *testing.T) {
	m := newModel(t, 0.5, 0)
	v := []float64{0.1, 0.2}

	_, err := m.TrainSupervised(v, 1)
	require.NoError(t, err)
	v[0] = 9

	assert.Equal(t, []float64{0.1, 0.2}, m.Clusters()[0].Centroid)

	m.Clusters()[0].Centroid[1] = 9
	assert.Equal(t, []float64{0.1, 0.2}, m.Clusters()[0].Centroid)
}

func TestClassify(t *testing.T) {
	m := newModel(t, 0.4, 0)
	_, err := m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{4, 0}, 2)
	require.NoError(t, err)

	tests := []struct {
		name      string
		input     []float64
		wantFound bool
		wantLabel int
	}{
		{"near first", []float64{0.2, 0}, true, 1},
		{"near second", []float64{3.9, 0}, true, 2},
		{"far from both", []float64{2, 0}, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, err := m.Classify(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFound, match.Found)
			if tt.wantFound {
				assert.Equal(t, tt.wantLabel, match.Label)
				assert.Greater(t, match.Score, 0.4)
			} else {
				assert.Equal(t, -1, match.Cluster)
			}
		})
	}
}

func TestClassify_TieKeepsEarliestCluster(t *testing.T) {
	m := newModel(t, 0.3, 0)
	_, err := m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{2, 0}, 2)
	require.NoError(t, err)

	match, err := m.Classify([]float64{1, 0})
	require.NoError(t, err)

	require.True(t, match.Found)
	assert.Equal(t, 0, match.Cluster)
	assert.Equal(t, 1, match.Label)
}

func TestTestSupervised_EmptyModel(t *testing.T) {
	m := newModel(t, 0.9, 0)

	ok, err := m.TestSupervised([]float64{1, 2}, 1)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.Zero(t, m.SuccessCount())
}

func TestTestSupervised_DoesNotMutateClusters(t *testing.T) {
	m := newModel(t, 0.5, 0.5)
	_, err := m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{0, 0.5}, 2)
	require.NoError(t, err)
	before := m.Clusters()

	for _, label := range []int{1, 2, 3} {
		_, err := m.TestSupervised([]float64{0, 0.3}, label)
		require.NoError(t, err)
	}

	assert.Equal(t, before, m.Clusters())
}

func TestTestSupervised_WrongLabelIsNotCounted(t *testing.T) {
	m := newModel(t, 0.98, 0)
	v := glyphVector(t, 6, imaging.GlyphOptions{})
	_, err := m.TrainSupervised(v, 6)
	require.NoError(t, err)

	ok, err := m.TestSupervised(v, 9)
	require.NoError(t, err)

	assert.False(t, ok)
	assert.Zero(t, m.SuccessCount())
}

func TestTestSupervisedMatch(t *testing.T) {
	m := newModel(t, 0.98, 0)
	v := []float64{0.2, 0.4, 0.1}
	_, err := m.TrainSupervised(v, 5)
	require.NoError(t, err)

	match, ok, err := m.TestSupervisedMatch(v, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, Match{Found: true, Label: 5, Cluster: 0, Score: 1}, match)

	match, ok, err = m.TestSupervisedMatch(v, 6)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 5, match.Label)
	assert.Equal(t, 1, m.SuccessCount(), "only the matching label is counted")
}

func TestTestSupervised_DimensionMismatch(t *testing.T) {
	m := newModel(t, 0.9, 0)
	_, err := m.TrainSupervised([]float64{1, 2}, 1)
	require.NoError(t, err)

	_, err = m.TestSupervised([]float64{1, 2, 3}, 1)
	require.ErrorIs(t, err, descriptor.ErrDimensionMismatch)
	assert.Zero(t, m.SuccessCount())
}

func TestTestSupervised_ConcurrentCounting(t *testing.T) {
	m := newModel(t, 0.98, 0)
	v := glyphVector(t, 8, imaging.GlyphOptions{})
	_, err := m.TrainSupervised(v, 8)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.TestSupervised(v, 8)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, m.SuccessCount())
}

func TestLabelCounts(t *testing.T) {
	m := newModel(t, 0.99, 0)
	for _, digit := range []int{1, 1, 7} {
		_, err := m.TrainSupervised(glyphVector(t, digit, imaging.GlyphOptions{}), digit)
		require.NoError(t, err)
	}
	_, err := m.TrainSupervised(glyphVector(t, 4, imaging.GlyphOptions{}), 1)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{1: 2, 7: 1}, m.LabelCounts())
}

func TestWithLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m, err := New(0.5, 0, WithLogger(zap.New(core)))
	require.NoError(t, err)

	_, err = m.TrainSupervised([]float64{0, 0}, 1)
	require.NoError(t, err)
	_, err = m.TrainSupervised([]float64{0, 0}, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, logs.FilterMessage("created cluster").Len())
	assert.Equal(t, 1, logs.FilterMessage("raised cluster vigilance").Len())
}
