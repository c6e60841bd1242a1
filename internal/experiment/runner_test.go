package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
	"github.com/ironsheep/radial-resonance/internal/mnist"
	"github.com/ironsheep/radial-resonance/internal/resonance"
)

func newRunner(t *testing.T, vigilance, rate float64, opts ...Option) *Runner {
	t.Helper()
	model, err := resonance.New(vigilance, rate)
	require.NoError(t, err)
	r, err := NewRunner(model, opts...)
	require.NoError(t, err)
	return r
}

func blank(size int) [][]int {
	m := make([][]int, size)
	for i := range m {
		m[i] = make([]int, size)
	}
	return m
}

func horizontalBar(size int) [][]int {
	m := blank(size)
	for j := 4; j < size-4; j++ {
		m[size/2][j] = 255
	}
	return m
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner(nil)
	require.Error(t, err)

	model, err := resonance.New(0.9, 0)
	require.NoError(t, err)
	bad := descriptor.DefaultConfig()
	bad.Rings = 0
	_, err = NewRunner(model, WithDescriptorConfig(bad))
	require.ErrorIs(t, err, descriptor.ErrInvalidConfig)
}

func TestEncode_PreservesOrderAndSkips(t *testing.T) {
	r := newRunner(t, 0.98, 0, WithWorkers(3))
	samples := SyntheticSamples(12, 1)
	samples = append(samples[:4:4],
		append([]mnist.Sample{
			{Pixels: blank(28), Label: 1},
			{Pixels: horizontalBar(28), Label: 2},
		}, samples[4:]...)...)

	encoded, skipped, err := r.Encode(context.Background(), samples)
	require.NoError(t, err)

	assert.Equal(t, 2, skipped)
	require.Len(t, encoded, 12)
	for i, e := range encoded {
		if i > 0 {
			assert.Greater(t, e.Index, encoded[i-1].Index)
		}
		assert.Equal(t, samples[e.Index].Label, e.Label)
		assert.Len(t, e.Vector, 80)
	}
	assert.Equal(t, 6, encoded[4].Index)
}

func TestEncode_MatchesSequentialBuild(t *testing.T) {
	r := newRunner(t, 0.98, 0, WithWorkers(4))
	samples := SyntheticSamples(20, 7)

	encoded, _, err := r.Encode(context.Background(), samples)
	require.NoError(t, err)

	for _, e := range encoded {
		d, err := descriptor.New(samples[e.Index].Pixels)
		require.NoError(t, err)
		assert.Equal(t, d.Representation(), e.Vector)
	}
}

func TestEncode_Canceled(t *testing.T) {
	r := newRunner(t, 0.98, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Encode(ctx, SyntheticSamples(5, 1))
	require.ErrorIs(t, err, context.Canceled)
}

func TestTrain_Epochs(t *testing.T) {
	r := newRunner(t, 0.98, 0)
	encoded, _, err := r.Encode(context.Background(), SyntheticSamples(10, 3))
	require.NoError(t, err)

	report, err := r.Train(context.Background(), encoded, 2)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Epochs)
	assert.Equal(t, len(encoded), report.Samples)
	assert.Equal(t, 2*len(encoded), report.Accepted+report.Created)
	assert.Equal(t, report.Created, report.Clusters)
	assert.GreaterOrEqual(t, report.Accepted, len(encoded), "the second epoch resonates with every first-epoch prototype")
}

func TestTrain_InvalidEpochs(t *testing.T) {
	r := newRunner(t, 0.98, 0)
	_, err := r.Train(context.Background(), nil, 0)
	require.Error(t, err)
}

func TestTest_TrainedSetIsRecognized(t *testing.T) {
	r := newRunner(t, 0.98, 0, WithWorkers(4))
	encoded, _, err := r.Encode(context.Background(), SyntheticSamples(30, 11))
	require.NoError(t, err)
	_, err = r.Train(context.Background(), encoded, 1)
	require.NoError(t, err)

	report, err := r.Test(context.Background(), encoded)
	require.NoError(t, err)

	assert.Equal(t, len(encoded), report.Samples)
	assert.Equal(t, report.Successes, r.Model().SuccessCount())
	assert.Greater(t, report.Accuracy(), 0.5)

	total := 0
	for _, s := range report.PerLabel {
		assert.LessOrEqual(t, s.Correct, s.Total)
		total += s.Total
	}
	assert.Equal(t, report.Samples, total)
}

func TestTest_EmptyModel(t *testing.T) {
	r := newRunner(t, 0.98, 0)
	encoded, _, err := r.Encode(context.Background(), SyntheticSamples(5, 2))
	require.NoError(t, err)

	report, err := r.Test(context.Background(), encoded)
	require.NoError(t, err)

	assert.Zero(t, report.Successes)
	assert.Zero(t, report.Accuracy())
}

func TestRun(t *testing.T) {
	r := newRunner(t, 0.95, 0.1)
	train := SyntheticSamples(40, 5)
	test := SyntheticSamples(20, 6)

	report, err := r.Run(context.Background(), train, test, 1)
	require.NoError(t, err)

	assert.Equal(t, 20, report.Test.Samples+report.TestSkipped)
	assert.Equal(t, 40, report.Train.Samples+report.TrainSkipped)
	assert.Positive(t, report.Train.Clusters)
	assert.Contains(t, report.String(), "accuracy")
}
