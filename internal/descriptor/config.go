package descriptor

import (
	"math"

	"github.com/cockroachdb/errors"
)

// Default grid and rotation search settings.
const (
	DefaultSectors   = 16
	DefaultRings     = 5
	DefaultMinAngle  = -30.0
	DefaultMaxAngle  = 30.0
	DefaultAngleStep = 1.0
)

// Config fixes the shape of a descriptor. Descriptors are only comparable when
// built with the same Sectors and Rings.
type Config struct {
	// Sectors is the number of evenly spaced angular sectors over 360 degrees.
	Sectors int `mapstructure:"sectors" json:"sectors"`

	// Rings is the number of radial subdivisions per sector.
	Rings int `mapstructure:"rings" json:"rings"`

	// MinAngle, MaxAngle and AngleStep define the candidate rotations in degrees.
	MinAngle  float64 `mapstructure:"min_angle" json:"min_angle"`
	MaxAngle  float64 `mapstructure:"max_angle" json:"max_angle"`
	AngleStep float64 `mapstructure:"angle_step" json:"angle_step"`
}

// DefaultConfig returns a 16x5 grid with a -30..+30 degree search in 1 degree steps.
func DefaultConfig() Config {
	return Config{
		Sectors:   DefaultSectors,
		Rings:     DefaultRings,
		MinAngle:  DefaultMinAngle,
		MaxAngle:  DefaultMaxAngle,
		AngleStep: DefaultAngleStep,
	}
}

// Size is the length of every representation built with this config.
func (c Config) Size() int {
	return c.Sectors * c.Rings
}

// Validate reports whether the config can build descriptors.
func (c Config) Validate() error {
	switch {
	case c.Sectors < 1:
		return errors.Wrapf(ErrInvalidConfig, "sectors must be positive, got %d", c.Sectors)
	case c.Rings < 1:
		return errors.Wrapf(ErrInvalidConfig, "rings must be positive, got %d", c.Rings)
	case !(c.AngleStep > 0):
		return errors.Wrapf(ErrInvalidConfig, "angle step must be positive, got %v", c.AngleStep)
	case c.MinAngle > c.MaxAngle:
		return errors.Wrapf(ErrInvalidConfig, "min angle %v exceeds max angle %v", c.MinAngle, c.MaxAngle)
	}
	return nil
}

// Angles returns the candidate rotations in scan order. Angle 0 is scanned
// first when it lies on the candidate lattice so that an unrotated shape wins
// every tie; the remaining angles follow in ascending order.
func (c Config) Angles() []float64 {
	n := int(math.Floor((c.MaxAngle-c.MinAngle)/c.AngleStep+1e-9)) + 1
	angles := make([]float64, 0, n)
	zero := -1
	for i := 0; i < n; i++ {
		a := c.MinAngle + float64(i)*c.AngleStep
		if math.Abs(a) < 1e-9 {
			a = 0
			zero = i
		}
		angles = append(angles, a)
	}
	if zero > 0 {
		copy(angles[1:zero+1], angles[:zero])
		angles[0] = 0
	}
	return angles
}
