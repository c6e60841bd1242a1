package descriptor

import "github.com/cockroachdb/errors"

var (
	// ErrEmptyMatrix is returned when a pixel matrix has no positive cell.
	ErrEmptyMatrix = errors.New("pixel matrix has no positive cell")

	// ErrDegenerateVariance is returned when all points share a coordinate on
	// one axis, leaving nothing to scale by.
	ErrDegenerateVariance = errors.New("point set has zero deviation on an axis")

	// ErrDimensionMismatch is returned when two representations of different
	// lengths are compared.
	ErrDimensionMismatch = errors.New("representation lengths differ")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("invalid descriptor config")
)
