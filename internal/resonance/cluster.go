package resonance

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
)

// Cluster is a single resonance prototype.
type Cluster struct {
	centroid       []float64
	label          int
	localVigilance float64
	lastSimilarity float64
}

// newCluster copies seed so the cluster owns its prototype.
func newCluster(seed []float64, label int, vigilance float64) *Cluster {
	centroid := make([]float64, len(seed))
	copy(centroid, seed)
	return &Cluster{
		centroid:       centroid,
		label:          label,
		localVigilance: vigilance,
	}
}

// attemptTrain offers input to the cluster and reports whether it resonated.
// A matching label above vigilance moves the prototype toward input by
// learningRate. A foreign label above vigilance raises vigilance to the
// similarity.
func (c *Cluster) attemptTrain(input []float64, label int, learningRate float64) (bool, error) {
	sim, err := descriptor.Compare(c.centroid, input)
	if err != nil {
		return false, err
	}
	c.lastSimilarity = sim

	if sim <= c.localVigilance {
		return false, nil
	}
	if label != c.label {
		c.localVigilance = sim
		return false, nil
	}
	c.resonate(input, learningRate)
	return true, nil
}

// resonate applies centroid += rate * (input - centroid).
func (c *Cluster) resonate(input []float64, rate float64) {
	if rate == 0 {
		return
	}
	diff := make([]float64, len(input))
	floats.SubTo(diff, input, c.centroid)
	floats.AddScaled(c.centroid, rate, diff)
}

// evaluate returns the similarity to input when it exceeds the local
// vigilance and 0 otherwise.
func (c *Cluster) evaluate(input []float64) (float64, error) {
	sim, err := descriptor.Compare(c.centroid, input)
	if err != nil {
		return 0, err
	}
	if sim > c.localVigilance {
		return sim, nil
	}
	return 0, nil
}

// ClusterInfo is a read-only copy of a cluster's state.
type ClusterInfo struct {
	Label          int       `json:"label"`
	LocalVigilance float64   `json:"local_vigilance"`
	Centroid       []float64 `json:"centroid"`
}

func (c *Cluster) info() ClusterInfo {
	centroid := make([]float64, len(c.centroid))
	copy(centroid, c.centroid)
	return ClusterInfo{
		Label:          c.label,
		LocalVigilance: c.localVigilance,
		Centroid:       centroid,
	}
}
