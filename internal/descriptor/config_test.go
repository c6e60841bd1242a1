package descriptor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"six rings", func(c *Config) { c.Rings = 6 }, false},
		{"single angle", func(c *Config) { c.MinAngle, c.MaxAngle = 0, 0 }, false},
		{"zero sectors", func(c *Config) { c.Sectors = 0 }, true},
		{"negative rings", func(c *Config) { c.Rings = -1 }, true},
		{"zero step", func(c *Config) { c.AngleStep = 0 }, true},
		{"inverted range", func(c *Config) { c.MinAngle, c.MaxAngle = 10, -10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_Angles(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []float64
	}{
		{
			"zero moved to front",
			Config{MinAngle: -2, MaxAngle: 2, AngleStep: 1},
			[]float64{0, -2, -1, 1, 2},
		},
		{
			"zero already first",
			Config{MinAngle: 0, MaxAngle: 3, AngleStep: 1.5},
			[]float64{0, 1.5, 3},
		},
		{
			"zero not on lattice",
			Config{MinAngle: -3, MaxAngle: 3, AngleStep: 2},
			[]float64{-3, -1, 1, 3},
		},
		{
			"step overshoots max",
			Config{MinAngle: 5, MaxAngle: 9, AngleStep: 3},
			[]float64{5, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.Angles())
		})
	}
}

func TestConfig_DefaultAngles(t *testing.T) {
	angles := DefaultConfig().Angles()

	require.Len(t, angles, 61)
	assert.Equal(t, 0.0, angles[0])
	assert.Equal(t, -30.0, angles[1])
	assert.Equal(t, 30.0, angles[60])
	for i := 2; i < len(angles); i++ {
		assert.Less(t, angles[i-1], angles[i], "candidates after zero are ascending")
	}
}

func TestConfig_Size(t *testing.T) {
	assert.Equal(t, 80, DefaultConfig().Size())
	assert.Equal(t, 96, Config{Sectors: 16, Rings: 6}.Size())
}
