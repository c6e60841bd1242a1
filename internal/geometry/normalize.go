package geometry

import "math"

// extentTolerance is how much narrower a candidate rotation must be before it
// replaces the current best. Rotations of a symmetric shape produce extents
// that differ only by rounding, and those must not displace the first angle.
const extentTolerance = 1e-9

// Centroid returns the mean position of points with a zero value.
// The result for an empty slice is the origin.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}
	n := float64(len(points))
	return Point{X: sumX / n, Y: sumY / n}
}

// Deviation returns the population standard deviation of points about mean
// along each axis.
func Deviation(points []Point, mean Point) (xDev, yDev float64) {
	if len(points) == 0 {
		return 0, 0
	}
	for _, p := range points {
		dx := p.X - mean.X
		dy := p.Y - mean.Y
		xDev += dx * dx
		yDev += dy * dy
	}
	n := float64(len(points))
	return math.Sqrt(xDev / n), math.Sqrt(yDev / n)
}

// NormalizeAll centers every point on mean and scales each axis by its
// deviation. The caller guarantees both deviations are positive.
func NormalizeAll(points []Point, mean Point, xDev, yDev float64) {
	for i := range points {
		points[i].Normalize(mean, xDev, yDev)
	}
}

// ExtentX returns max(x) - min(x) of points rotated about center by angleDeg.
// The points are not modified.
func ExtentX(points []Point, center Point, angleDeg float64) float64 {
	if len(points) == 0 {
		return 0
	}
	minX, maxX := math.Inf(1), math.Inf(-1)
	for _, p := range points {
		x, _ := p.Rotated(center, angleDeg)
		minX = math.Min(minX, x)
		maxX = math.Max(maxX, x)
	}
	return maxX - minX
}

// BestRotation scans angles in order and returns the first angle whose rotation
// about center gives the smallest horizontal extent, along with that extent.
// Bounds are reset for every candidate. An empty angle list yields angle 0 and
// the unrotated extent.
func BestRotation(points []Point, center Point, angles []float64) (angle, extent float64) {
	if len(angles) == 0 {
		return 0, ExtentX(points, center, 0)
	}
	angle = angles[0]
	extent = ExtentX(points, center, angle)
	for _, candidate := range angles[1:] {
		e := ExtentX(points, center, candidate)
		if e < extent-extentTolerance {
			angle, extent = candidate, e
		}
	}
	return angle, extent
}

// RotateAll commits the rotation about center by angleDeg to every point.
func RotateAll(points []Point, center Point, angleDeg float64) {
	for i := range points {
		points[i].Rotate(center, angleDeg)
	}
}

// MaxAbsCoordinate returns the largest |x| or |y| found in points.
func MaxAbsCoordinate(points []Point) float64 {
	var m float64
	for _, p := range points {
		m = math.Max(m, math.Max(math.Abs(p.X), math.Abs(p.Y)))
	}
	return m
}
