// Package geometry provides the point primitives and population-wide transforms
// used to normalize a digit before it is described.
//
// A Point is a single "on" pixel: a 2-D coordinate plus the pixel intensity in
// [0,1]. The package-level functions operate on whole point sets: centroid and
// per-axis deviation, anisotropic normalization, and the search for the rotation
// that minimizes the horizontal extent of the shape.
//
// # Coordinate System
//
// Points are created from matrix indices, so X follows the row index and Y the
// column index. After normalization all coordinates are unitless and centered
// on the origin.
//
// # Thread Safety
//
// Functions that mutate points (Normalize, Rotate, NormalizeAll, RotateAll) must
// not be called concurrently on the same slice. Everything else is pure.
package geometry
