package commands

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/radial-resonance/internal/experiment"
	"github.com/ironsheep/radial-resonance/internal/mnist"
	"github.com/ironsheep/radial-resonance/internal/resonance"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Train and test the resonance model",
	Long: `Encode the training and test sets, train the model for the configured
number of epochs in dataset order and report test accuracy.

With --synthetic N the sets are N glyph digits each, rendered from two
different seeds, instead of IDX files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		train, test, err := loadSets(cmd)
		if err != nil {
			return err
		}
		runner, err := newRunner()
		if err != nil {
			return err
		}

		report, err := runner.Run(commandContext(cmd), train, test, cfg.Run.Epochs)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Score a one-prototype-per-label classifier",
	Long: `Use the first training descriptor of each label as its only prototype and
classify the test set by highest similarity. This gives a reference point
for the resonance model.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		train, test, err := loadSets(cmd)
		if err != nil {
			return err
		}
		runner, err := newRunner()
		if err != nil {
			return err
		}

		ctx := commandContext(cmd)
		trainSet, _, err := runner.Encode(ctx, train)
		if err != nil {
			return err
		}
		testSet, _, err := runner.Encode(ctx, test)
		if err != nil {
			return err
		}
		report, err := experiment.Baseline(ctx, trainSet, testSet)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{runCmd, baselineCmd} {
		addModelFlags(cmd)
		addDatasetFlags(cmd)
	}
	runCmd.Flags().Int("epochs", 1, "Training passes over the training set")
}

func newRunner() (*experiment.Runner, error) {
	model, err := resonance.New(cfg.Model.Vigilance, cfg.Model.LearningRate,
		resonance.WithLogger(logger.Named("model")))
	if err != nil {
		return nil, err
	}
	return experiment.NewRunner(model,
		experiment.WithDescriptorConfig(cfg.Descriptor),
		experiment.WithWorkers(cfg.Run.Workers),
		experiment.WithLogger(logger.Named("experiment")))
}

// loadSets reads the configured IDX files or renders synthetic digits.
func loadSets(cmd *cobra.Command) ([]mnist.Sample, []mnist.Sample, error) {
	n, _ := cmd.Flags().GetInt("synthetic")
	if n < 0 {
		return nil, nil, errors.Newf("--synthetic must not be negative, got %d", n)
	}
	if n > 0 {
		seed, _ := cmd.Flags().GetUint64("seed")
		logger.Info("rendering synthetic digits", zap.Int("count", n), zap.Uint64("seed", seed))
		return experiment.SyntheticSamples(n, seed), experiment.SyntheticSamples(n, seed+1), nil
	}

	ds := cfg.Dataset
	train, err := mnist.ReadDataset(ds.TrainImages, ds.TrainLabels, ds.Limit)
	if err != nil {
		return nil, nil, errors.Wrap(err, "training set")
	}
	test, err := mnist.ReadDataset(ds.TestImages, ds.TestLabels, ds.Limit)
	if err != nil {
		return nil, nil, errors.Wrap(err, "test set")
	}
	logger.Info("loaded datasets", zap.Int("train", len(train)), zap.Int("test", len(test)))
	return train, test, nil
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
