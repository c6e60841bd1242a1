// Package commands implements the radial-resonance command line.
package commands

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ironsheep/radial-resonance/internal/config"
	"github.com/ironsheep/radial-resonance/internal/logging"
)

var (
	cfgFile string
	cfg     config.Config
	logger  = zap.NewNop()
)

// flagKeys maps command line flags to configuration keys. A flag only
// overrides the configuration when it is set explicitly.
var flagKeys = map[string]string{
	"log-level":     "log.level",
	"json-log":      "log.json",
	"vigilance":     "model.vigilance",
	"learning-rate": "model.learning_rate",
	"rings":         "descriptor.rings",
	"sectors":       "descriptor.sectors",
	"epochs":        "run.epochs",
	"workers":       "run.workers",
	"limit":         "dataset.limit",
	"train-images":  "dataset.train_images",
	"train-labels":  "dataset.train_labels",
	"test-images":   "dataset.test_images",
	"test-labels":   "dataset.test_labels",
}

var rootCmd = &cobra.Command{
	Use:   "radial-resonance",
	Short: "Handwritten digit recognition with polar histograms and adaptive resonance",
	Long: `radial-resonance - polar histogram digit descriptors classified by a
supervised adaptive resonance model.

Commands:
  serve     - MCP server over stdio exposing descriptor and model tools
  run       - Train and test on MNIST IDX files (or synthetic digits)
  baseline  - One-prototype-per-label reference score
  synth     - Write a synthetic glyph dataset as IDX files
  show      - Print a sample from an IDX dataset with its descriptor
  version   - Print version information

Configuration is read from --config (YAML), RADIAL_* environment variables
and flags, in increasing precedence.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		v, err := config.NewViper(cfgFile)
		if err != nil {
			return err
		}
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		cfg, err = config.Load(v)
		if err != nil {
			return err
		}
		logger, err = logging.New(cfg.Log.Level, cfg.Log.JSON)
		if err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return errors.Wrapf(err, "bind --%s", name)
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json-log", false, "Write logs as JSON")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(baselineCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(versionCmd)
}

// addModelFlags registers the hyperparameter and descriptor flags.
func addModelFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Float64("vigilance", d.Model.Vigilance, "Initial local vigilance of new clusters, in (0,1)")
	cmd.Flags().Float64("learning-rate", d.Model.LearningRate, "Prototype drift rate, in [0,1]")
	cmd.Flags().Int("sectors", d.Descriptor.Sectors, "Angular sectors of the polar grid")
	cmd.Flags().Int("rings", d.Descriptor.Rings, "Rings per sector of the polar grid")
	cmd.Flags().Int("workers", d.Run.Workers, "Parallel descriptor workers")
}

// addDatasetFlags registers the IDX dataset flags.
func addDatasetFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().String("train-images", d.Dataset.TrainImages, "Training IDX image file")
	cmd.Flags().String("train-labels", d.Dataset.TrainLabels, "Training IDX label file")
	cmd.Flags().String("test-images", d.Dataset.TestImages, "Test IDX image file")
	cmd.Flags().String("test-labels", d.Dataset.TestLabels, "Test IDX label file")
	cmd.Flags().Int("limit", 0, "Maximum samples per file (0 = all)")
	cmd.Flags().Int("synthetic", 0, "Use this many synthetic glyph digits instead of IDX files")
	cmd.Flags().Uint64("seed", 1, "Seed for synthetic digits")
}
