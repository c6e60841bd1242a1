package experiment

import (
	"math/rand/v2"

	"github.com/ironsheep/radial-resonance/internal/imaging"
	"github.com/ironsheep/radial-resonance/internal/mnist"
)

// SyntheticSamples renders n labeled glyph digits with seeded jitter in
// position, stroke scale and ink intensity. Labels cycle 0 through 9.
func SyntheticSamples(n int, seed uint64) []mnist.Sample {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	samples := make([]mnist.Sample, 0, n)
	for i := 0; i < n; i++ {
		digit := i % 10
		pixels, err := imaging.GlyphMatrix(digit, imaging.GlyphOptions{
			Scale:     3 + rng.IntN(2),
			RowOffset: rng.IntN(5) - 2,
			ColOffset: rng.IntN(5) - 2,
			Intensity: 160 + rng.IntN(96),
		})
		if err != nil {
			// digit is always 0-9
			panic(err)
		}
		samples = append(samples, mnist.Sample{Pixels: pixels, Label: digit})
	}
	return samples
}
