package geometry

import "math"

// Point is a coordinate carrying an intensity value.
type Point struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Value float64 `json:"value"`
}

// Normalize replaces the coordinates with their offset from mean divided by the
// per-axis deviation. Both deviations must be positive.
func (p *Point) Normalize(mean Point, xDev, yDev float64) {
	p.X = (p.X - mean.X) / xDev
	p.Y = (p.Y - mean.Y) / yDev
}

// Rotated returns the position of p rotated about center by angleDeg degrees.
// p itself is left untouched.
func (p Point) Rotated(center Point, angleDeg float64) (x, y float64) {
	rad := angleDeg / 180 * math.Pi
	sin, cos := math.Sincos(rad)
	dx := p.X - center.X
	dy := p.Y - center.Y
	return center.X + dx*cos - dy*sin, center.Y + dx*sin + dy*cos
}

// Rotate moves p to its position rotated about center by angleDeg degrees.
func (p *Point) Rotate(center Point, angleDeg float64) {
	p.X, p.Y = p.Rotated(center, angleDeg)
}

// DistanceTo returns the Euclidean distance between p and other.
func (p Point) DistanceTo(other Point) float64 {
	return Distance(p.X, p.Y, other.X, other.Y)
}

// Distance returns the Euclidean distance between (x1,y1) and (x2,y2).
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
