package descriptor

import (
	"fmt"
	"math"
	"strings"

	"github.com/cockroachdb/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/ironsheep/radial-resonance/internal/geometry"
)

// maxIntensity maps raw pixel values onto [0,1].
const maxIntensity = 255.0

// Descriptor is an immutable polar histogram of a digit.
type Descriptor struct {
	representation []float64
	points         []geometry.Point
	centroid       geometry.Point
	rotation       float64
	maxRadius      float64
}

// New builds a descriptor with DefaultConfig.
func New(matrix [][]int) (*Descriptor, error) {
	return Build(matrix, DefaultConfig())
}

// Build runs extraction, normalization, rotation search and polar binning on
// matrix. It returns ErrEmptyMatrix or ErrDegenerateVariance (wrapped) when the
// matrix cannot be described.
func Build(matrix [][]int, cfg Config) (*Descriptor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	points := extractPoints(matrix)
	if len(points) == 0 {
		return nil, errors.Wrapf(ErrEmptyMatrix, "%d rows scanned", len(matrix))
	}

	centroid := geometry.Centroid(points)
	xDev, yDev := geometry.Deviation(points, centroid)
	if xDev == 0 || yDev == 0 {
		return nil, errors.Wrapf(ErrDegenerateVariance,
			"%d points, deviation x=%v y=%v", len(points), xDev, yDev)
	}
	geometry.NormalizeAll(points, centroid, xDev, yDev)

	// The reference center is the origin from here on.
	var origin geometry.Point
	rotation, _ := geometry.BestRotation(points, origin, cfg.Angles())
	geometry.RotateAll(points, origin, rotation)

	maxRadius := geometry.MaxAbsCoordinate(points)
	representation := polarHistogram(points, buildGrid(cfg, maxRadius))

	return &Descriptor{
		representation: representation,
		points:         points,
		centroid:       centroid,
		rotation:       rotation,
		maxRadius:      maxRadius,
	}, nil
}

// extractPoints scans matrix in row-major order and keeps every positive cell.
func extractPoints(matrix [][]int) []geometry.Point {
	var points []geometry.Point
	for i, row := range matrix {
		for j, v := range row {
			if v > 0 {
				points = append(points, geometry.Point{
					X:     float64(i + 1),
					Y:     float64(j + 1),
					Value: float64(v) / maxIntensity,
				})
			}
		}
	}
	return points
}

// buildGrid lays out the anchor of every histogram bin. Bin s*Rings+(k-1) sits
// in sector s at radius k/Rings*maxRadius.
func buildGrid(cfg Config, maxRadius float64) []geometry.Point {
	grid := make([]geometry.Point, 0, cfg.Size())
	step := 360.0 / float64(cfg.Sectors)
	for s := 0; s < cfg.Sectors; s++ {
		sin, cos := math.Sincos(float64(s) * step * math.Pi / 180)
		for k := 1; k <= cfg.Rings; k++ {
			r := float64(k) / float64(cfg.Rings) * maxRadius
			grid = append(grid, geometry.Point{X: r * cos, Y: r * sin})
		}
	}
	return grid
}

// polarHistogram accumulates each point's intensity into its nearest anchor and
// divides by the point count. Ties go to the lower bin index.
func polarHistogram(points, grid []geometry.Point) []float64 {
	hist := make([]float64, len(grid))
	for _, p := range points {
		best, bestDist := 0, math.Inf(1)
		for i, anchor := range grid {
			if d := p.DistanceTo(anchor); d < bestDist {
				best, bestDist = i, d
			}
		}
		hist[best] += p.Value
	}
	floats.Scale(1/float64(len(points)), hist)
	return hist
}

// Representation returns a copy of the histogram vector.
func (d *Descriptor) Representation() []float64 {
	out := make([]float64, len(d.representation))
	copy(out, d.representation)
	return out
}

// Len is the representation length.
func (d *Descriptor) Len() int {
	return len(d.representation)
}

// Points returns a copy of the normalized, rotated points.
func (d *Descriptor) Points() []geometry.Point {
	out := make([]geometry.Point, len(d.points))
	copy(out, d.points)
	return out
}

// PointCount is the number of positive cells the descriptor was built from.
func (d *Descriptor) PointCount() int {
	return len(d.points)
}

// Centroid is the pixel-space centroid measured before normalization.
func (d *Descriptor) Centroid() geometry.Point {
	return d.centroid
}

// Rotation is the committed rotation angle in degrees.
func (d *Descriptor) Rotation() float64 {
	return d.rotation
}

// MaxRadius is the grid radius: the largest absolute coordinate after rotation.
func (d *Descriptor) MaxRadius() float64 {
	return d.maxRadius
}

// Compare returns the similarity between d and other.
func (d *Descriptor) Compare(other *Descriptor) (float64, error) {
	return Compare(d.representation, other.representation)
}

// String renders the representation as tab-separated values between bars.
func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString("|\t")
	for _, v := range d.representation {
		fmt.Fprintf(&b, "%.4f\t", v)
	}
	b.WriteString("|")
	return b.String()
}

// Compare maps the Euclidean distance between a and b to 1/(1+distance).
func Compare(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, errors.Wrapf(ErrDimensionMismatch, "%d vs %d", len(a), len(b))
	}
	return 1 / (1 + floats.Distance(a, b, 2)), nil
}
