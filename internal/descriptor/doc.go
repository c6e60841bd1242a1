// Package descriptor builds the polar-histogram shape descriptor of a digit.
//
// A descriptor is computed from an integer pixel matrix in four phases:
//
//  1. Point extraction: every strictly positive cell (i,j) with value v becomes
//     a point at (i+1, j+1) with intensity v/255, in row-major order.
//  2. Normalization: points are centered on their centroid and each axis is
//     divided by its own standard deviation. The scaling is anisotropic on
//     purpose; it cancels size and stroke-width differences.
//  3. Rotation search: each candidate angle of Config.Angles is tried and the
//     one giving the smallest horizontal extent is committed.
//  4. Polar binning: every point adds its intensity to the nearest anchor of a
//     Sectors x Rings polar grid scaled to the largest absolute coordinate, and
//     the histogram is divided by the point count.
//
// # Similarity
//
// Compare is the only similarity function in the module: 1/(1+d) where d is
// the Euclidean distance between two representations. It lies in (0,1] and is
// 1 only for identical vectors.
//
// # Errors
//
// Build fails with ErrEmptyMatrix when no cell is positive and with
// ErrDegenerateVariance when every point shares a row or a column. Compare
// fails with ErrDimensionMismatch for vectors of different lengths.
package descriptor
