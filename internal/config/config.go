// Package config holds the runtime configuration: model hyperparameters,
// descriptor geometry, dataset locations, run settings and logging. Values
// come from defaults, an optional YAML file, RADIAL_* environment variables
// and command line flags, in increasing precedence.
package config

import (
	"runtime"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	"github.com/ironsheep/radial-resonance/internal/descriptor"
)

// EnvPrefix is prepended to environment variable names, e.g.
// RADIAL_MODEL_VIGILANCE.
const EnvPrefix = "RADIAL"

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the complete runtime configuration.
type Config struct {
	Model      ModelConfig       `mapstructure:"model" json:"model"`
	Descriptor descriptor.Config `mapstructure:"descriptor" json:"descriptor"`
	Dataset    DatasetConfig     `mapstructure:"dataset" json:"dataset"`
	Run        RunConfig         `mapstructure:"run" json:"run"`
	Log        LogConfig         `mapstructure:"log" json:"log"`
}

// ModelConfig holds the resonance hyperparameters.
type ModelConfig struct {
	// Vigilance is the initial local vigilance of new clusters, in (0,1).
	Vigilance float64 `mapstructure:"vigilance" json:"vigilance"`
	// LearningRate is the prototype drift rate, in [0,1].
	LearningRate float64 `mapstructure:"learning_rate" json:"learning_rate"`
}

// DatasetConfig locates IDX files. Limit caps samples per file; 0 means all.
type DatasetConfig struct {
	TrainImages string `mapstructure:"train_images" json:"train_images"`
	TrainLabels string `mapstructure:"train_labels" json:"train_labels"`
	TestImages  string `mapstructure:"test_images" json:"test_images"`
	TestLabels  string `mapstructure:"test_labels" json:"test_labels"`
	Limit       int    `mapstructure:"limit" json:"limit"`
}

// RunConfig controls the experiment harness.
type RunConfig struct {
	Epochs  int `mapstructure:"epochs" json:"epochs"`
	Workers int `mapstructure:"workers" json:"workers"`
}

// LogConfig controls logger construction.
type LogConfig struct {
	Level string `mapstructure:"level" json:"level"`
	JSON  bool   `mapstructure:"json" json:"json"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Model: ModelConfig{
			Vigilance:    0.98,
			LearningRate: 0.0,
		},
		Descriptor: descriptor.DefaultConfig(),
		Dataset: DatasetConfig{
			TrainImages: "data/train-images-idx3-ubyte",
			TrainLabels: "data/train-labels-idx1-ubyte",
			TestImages:  "data/t10k-images-idx3-ubyte",
			TestLabels:  "data/t10k-labels-idx1-ubyte",
		},
		Run: RunConfig{
			Epochs:  1,
			Workers: runtime.NumCPU(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers Default() with v so that every key is known to
// viper and can be bound to environment variables.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("model.vigilance", d.Model.Vigilance)
	v.SetDefault("model.learning_rate", d.Model.LearningRate)
	v.SetDefault("descriptor.sectors", d.Descriptor.Sectors)
	v.SetDefault("descriptor.rings", d.Descriptor.Rings)
	v.SetDefault("descriptor.min_angle", d.Descriptor.MinAngle)
	v.SetDefault("descriptor.max_angle", d.Descriptor.MaxAngle)
	v.SetDefault("descriptor.angle_step", d.Descriptor.AngleStep)
	v.SetDefault("dataset.train_images", d.Dataset.TrainImages)
	v.SetDefault("dataset.train_labels", d.Dataset.TrainLabels)
	v.SetDefault("dataset.test_images", d.Dataset.TestImages)
	v.SetDefault("dataset.test_labels", d.Dataset.TestLabels)
	v.SetDefault("dataset.limit", d.Dataset.Limit)
	v.SetDefault("run.epochs", d.Run.Epochs)
	v.SetDefault("run.workers", d.Run.Workers)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// NewViper returns a viper instance with defaults and environment binding.
// A non-empty file is read as the config file.
func NewViper(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", file)
		}
	}
	return v, nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges across all sections.
func (c Config) Validate() error {
	if !(c.Model.Vigilance > 0 && c.Model.Vigilance < 1) {
		return errors.Wrapf(ErrInvalid, "model.vigilance must be in (0,1), got %v", c.Model.Vigilance)
	}
	if !(c.Model.LearningRate >= 0 && c.Model.LearningRate <= 1) {
		return errors.Wrapf(ErrInvalid, "model.learning_rate must be in [0,1], got %v", c.Model.LearningRate)
	}
	if err := c.Descriptor.Validate(); err != nil {
		return errors.WithSecondaryError(errors.Wrapf(ErrInvalid, "descriptor: %v", err), err)
	}
	if c.Dataset.Limit < 0 {
		return errors.Wrapf(ErrInvalid, "dataset.limit must not be negative, got %d", c.Dataset.Limit)
	}
	if c.Run.Epochs < 1 {
		return errors.Wrapf(ErrInvalid, "run.epochs must be at least 1, got %d", c.Run.Epochs)
	}
	if c.Run.Workers < 1 {
		return errors.Wrapf(ErrInvalid, "run.workers must be at least 1, got %d", c.Run.Workers)
	}
	return nil
}
