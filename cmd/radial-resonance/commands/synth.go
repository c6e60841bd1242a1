package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ironsheep/radial-resonance/internal/experiment"
	"github.com/ironsheep/radial-resonance/internal/mnist"
)

var synthCmd = &cobra.Command{
	Use:   "synth IMAGES LABELS",
	Short: "Write synthetic glyph digits as IDX files",
	Long: `Render jittered glyph digits and write them in MNIST IDX format. Paths
ending in .gz are gzip-compressed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		seed, _ := cmd.Flags().GetUint64("seed")
		if count < 1 {
			return errors.Newf("--count must be positive, got %d", count)
		}

		samples := experiment.SyntheticSamples(count, seed)
		if err := mnist.WriteDataset(args[0], args[1], samples); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s samples to %s and %s\n",
			humanize.Comma(int64(count)), args[0], args[1])
		return nil
	},
}

func init() {
	synthCmd.Flags().Int("count", 1000, "Number of samples")
	synthCmd.Flags().Uint64("seed", 1, "Random seed")
}
