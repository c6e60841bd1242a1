package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
	"github.com/ironsheep/radial-resonance/internal/mnist"
)

var showCmd = &cobra.Command{
	Use:   "show IMAGES LABELS",
	Short: "Print a sample from an IDX dataset",
	Long: `Print the label and pixels of one sample, followed by its polar descriptor.
A negative --index counts from the end.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		index, _ := cmd.Flags().GetInt("index")

		limit := 0
		if index >= 0 {
			limit = index + 1
		}
		samples, err := mnist.ReadDataset(args[0], args[1], limit)
		if err != nil {
			return err
		}
		if index < 0 {
			index += len(samples)
		}
		if index < 0 || index >= len(samples) {
			return errors.Newf("index out of range: dataset holds %d samples", len(samples))
		}

		s := samples[index]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "label: %d\n", s.Label)
		fmt.Fprint(out, mnist.Render(s.Pixels))

		d, err := descriptor.Build(s.Pixels, cfg.Descriptor)
		if err != nil {
			fmt.Fprintf(out, "no descriptor: %v\n", err)
			return nil
		}
		fmt.Fprintf(out, "rotation: %.0f degrees, points: %d\n", d.Rotation(), d.PointCount())
		fmt.Fprintln(out, d)
		return nil
	},
}

func init() {
	showCmd.Flags().Int("index", 0, "Sample index")
}
