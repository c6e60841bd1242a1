package experiment

import (
	"context"
	"runtime"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
	"github.com/ironsheep/radial-resonance/internal/mnist"
	"github.com/ironsheep/radial-resonance/internal/resonance"
)

// Encoded is a labeled descriptor. Index is the sample's position in the
// input set.
type Encoded struct {
	Index  int
	Label  int
	Vector []float64
}

// Runner trains and tests one model.
type Runner struct {
	model   *resonance.Model
	cfg     descriptor.Config
	workers int
	logger  *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithDescriptorConfig sets the descriptor geometry (default
// descriptor.DefaultConfig()).
func WithDescriptorConfig(cfg descriptor.Config) Option {
	return func(r *Runner) { r.cfg = cfg }
}

// WithWorkers bounds encoding and testing concurrency (default NumCPU).
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithLogger sets the progress logger.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRunner returns a runner driving model.
func NewRunner(model *resonance.Model, opts ...Option) (*Runner, error) {
	if model == nil {
		return nil, errors.New("nil model")
	}
	r := &Runner{
		model:   model,
		cfg:     descriptor.DefaultConfig(),
		workers: runtime.NumCPU(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := r.cfg.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Model returns the driven model.
func (r *Runner) Model() *resonance.Model {
	return r.model
}

// Encode builds descriptors for samples, preserving input order. Samples
// with no ink or no spread along an axis are skipped and counted.
func (r *Runner) Encode(ctx context.Context, samples []mnist.Sample) ([]Encoded, int, error) {
	start := time.Now()
	vectors := make([][]float64, len(samples))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range samples {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := descriptor.Build(samples[i].Pixels, r.cfg)
			if errors.Is(err, descriptor.ErrEmptyMatrix) || errors.Is(err, descriptor.ErrDegenerateVariance) {
				r.logger.Debug("skipped sample", zap.Int("index", i), zap.Error(err))
				return nil
			}
			if err != nil {
				return errors.Wrapf(err, "sample %d", i)
			}
			vectors[i] = d.Representation()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	encoded := make([]Encoded, 0, len(samples))
	for i, v := range vectors {
		if v == nil {
			continue
		}
		encoded = append(encoded, Encoded{Index: i, Label: samples[i].Label, Vector: v})
	}
	skipped := len(samples) - len(encoded)

	r.logger.Info("encoded samples",
		zap.Int("samples", len(samples)),
		zap.Int("skipped", skipped),
		zap.Duration("elapsed", time.Since(start)))
	return encoded, skipped, nil
}

// Train presents encoded to the model epochs times, in order.
func (r *Runner) Train(ctx context.Context, encoded []Encoded, epochs int) (TrainReport, error) {
	if epochs < 1 {
		return TrainReport{}, errors.Newf("epochs must be at least 1, got %d", epochs)
	}
	start := time.Now()
	report := TrainReport{Epochs: epochs, Samples: len(encoded)}

	for epoch := 1; epoch <= epochs; epoch++ {
		before := r.model.ClusterCount()
		for _, e := range encoded {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			out, err := r.model.TrainSupervised(e.Vector, e.Label)
			if err != nil {
				return report, errors.Wrapf(err, "train sample %d", e.Index)
			}
			if out.Accepted {
				report.Accepted++
			} else {
				report.Created++
			}
			report.VigilanceRaises += out.VigilanceRaises
		}
		r.logger.Info("finished epoch",
			zap.Int("epoch", epoch),
			zap.Int("new_clusters", r.model.ClusterCount()-before),
			zap.Int("clusters", r.model.ClusterCount()))
	}

	report.Clusters = r.model.ClusterCount()
	report.Elapsed = time.Since(start)
	return report, nil
}

// Test classifies encoded in parallel and tallies successes per label.
func (r *Runner) Test(ctx context.Context, encoded []Encoded) (TestReport, error) {
	start := time.Now()
	hits := make([]bool, len(encoded))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i := range encoded {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			ok, err := r.model.TestSupervised(encoded[i].Vector, encoded[i].Label)
			if err != nil {
				return errors.Wrapf(err, "test sample %d", encoded[i].Index)
			}
			hits[i] = ok
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return TestReport{}, err
	}

	report := TestReport{Samples: len(encoded), PerLabel: make(map[int]LabelScore)}
	for i, e := range encoded {
		score := report.PerLabel[e.Label]
		score.Total++
		if hits[i] {
			score.Correct++
			report.Successes++
		}
		report.PerLabel[e.Label] = score
	}
	report.Elapsed = time.Since(start)

	r.logger.Info("tested samples",
		zap.Int("samples", report.Samples),
		zap.Int("successes", report.Successes),
		zap.Float64("accuracy", report.Accuracy()))
	return report, nil
}

// Run encodes both sets, trains for epochs and tests.
func (r *Runner) Run(ctx context.Context, train, test []mnist.Sample, epochs int) (Report, error) {
	trainSet, trainSkipped, err := r.Encode(ctx, train)
	if err != nil {
		return Report{}, errors.Wrap(err, "encode training set")
	}
	testSet, testSkipped, err := r.Encode(ctx, test)
	if err != nil {
		return Report{}, errors.Wrap(err, "encode test set")
	}

	trainReport, err := r.Train(ctx, trainSet, epochs)
	if err != nil {
		return Report{}, err
	}
	testReport, err := r.Test(ctx, testSet)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Train:        trainReport,
		Test:         testReport,
		TrainSkipped: trainSkipped,
		TestSkipped:  testSkipped,
	}, nil
}
