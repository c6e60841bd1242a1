package experiment

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
)

// Baseline uses the first training descriptor of each label as that label's
// only prototype and classifies test by the highest similarity. Ties keep
// the label whose prototype appeared first.
func Baseline(ctx context.Context, train, test []Encoded) (BaselineReport, error) {
	start := time.Now()

	var prototypes []Encoded
	seen := make(map[int]bool)
	for _, e := range train {
		if !seen[e.Label] {
			seen[e.Label] = true
			prototypes = append(prototypes, e)
		}
	}

	report := BaselineReport{Prototypes: len(prototypes), Samples: len(test)}
	if len(prototypes) == 0 {
		return report, errors.New("baseline needs at least one training sample")
	}

	var total float64
	for _, e := range test {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		bestLabel, bestScore := -1, -1.0
		for _, p := range prototypes {
			score, err := descriptor.Compare(p.Vector, e.Vector)
			if err != nil {
				return report, errors.Wrapf(err, "test sample %d", e.Index)
			}
			if score > bestScore {
				bestLabel, bestScore = p.Label, score
			}
		}
		if bestLabel == e.Label {
			report.Successes++
		}
		total += bestScore
	}
	if len(test) > 0 {
		report.MeanSimilarity = total / float64(len(test))
	}
	report.Elapsed = time.Since(start)
	return report, nil
}
