// Package config defines the structures to configure the try-on renderer.
package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"go.viam.com/tryon/logging"
	"go.viam.com/tryon/rimage"
	"go.viam.com/tryon/rimage/transform"
	"go.viam.com/tryon/services/tryon"
	"go.viam.com/tryon/vision/pose"
)

// DefaultMaxTextureSize bounds the longest side of a loaded texture.
const DefaultMaxTextureSize = 2048

// Config is the file level configuration.
type Config struct {
	// TexturePath is resolved relative to the config file.
	TexturePath    string `json:"texture_path" validate:"required"`
	MaxTextureSize int    `json:"max_texture_size,omitempty" validate:"gte=0" jsonschema:"minimum=0"`
	Interpolation  string `json:"interpolation,omitempty" validate:"omitempty,oneof=nearest bilinear bicubic" jsonschema:"enum=nearest,enum=bilinear,enum=bicubic"`

	// ConfidenceThreshold defaults to pose.DefaultConfidenceThreshold when unset. Zero accepts
	// every landmark.
	ConfidenceThreshold *float64 `json:"confidence_threshold,omitempty" validate:"omitempty,gte=0,lte=1" jsonschema:"minimum=0,maximum=1"`

	// Scale of zero selects transform.DefaultScale.
	Scale   float64    `json:"scale,omitempty" validate:"gte=0,lte=2" jsonschema:"minimum=0,maximum=2"`
	OffsetX float64    `json:"offset_x,omitempty"`
	OffsetY float64    `json:"offset_y,omitempty"`
	Align   string     `json:"align,omitempty" validate:"omitempty,oneof=left center right" jsonschema:"enum=left,enum=center,enum=right"`
	Fit     *FitConfig `json:"fit,omitempty"`
	Mirror  bool       `json:"mirror,omitempty"`

	DebugMarkers bool       `json:"debug_markers,omitempty"`
	LogLevel     string     `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn warning error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	LogFile      *LogConfig `json:"log_file,omitempty"`
}

// FitConfig sizes the overlay independently of the torso's extent.
type FitConfig struct {
	Width         float64 `json:"width" validate:"gt=0"`
	Height        float64 `json:"height" validate:"gt=0"`
	CenterOffsetX float64 `json:"center_offset_x,omitempty"`
	CenterOffsetY float64 `json:"center_offset_y,omitempty"`
}

// LogConfig describes a rotating log file.
type LogConfig struct {
	Path       string `json:"path" validate:"required"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty" validate:"gte=0"`
	MaxBackups int    `json:"max_backups,omitempty" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ApplyDefaults fills in every unset field that has a default.
func (c *Config) ApplyDefaults() {
	if c.MaxTextureSize == 0 {
		c.MaxTextureSize = DefaultMaxTextureSize
	}
	if c.Interpolation == "" {
		c.Interpolation = rimage.Bilinear.String()
	}
	if c.ConfidenceThreshold == nil {
		threshold := pose.DefaultConfidenceThreshold
		c.ConfidenceThreshold = &threshold
	}
	if c.Scale == 0 {
		c.Scale = transform.DefaultScale
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFile != nil {
		if c.LogFile.MaxSizeMB == 0 {
			c.LogFile.MaxSizeMB = 100
		}
		if c.LogFile.MaxBackups == 0 {
			c.LogFile.MaxBackups = 3
		}
	}
}

// Validate checks field ranges and that the rendering parameters are consistent.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.Params(); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}

// Params converts the rendering settings.
func (c *Config) Params() (tryon.Params, error) {
	kernel, err := rimage.ParseKernel(c.Interpolation)
	if err != nil {
		return tryon.Params{}, err
	}
	align, err := tryon.ParseAlignment(c.Align)
	if err != nil {
		return tryon.Params{}, err
	}
	params := tryon.Params{
		Scale:        c.Scale,
		OffsetX:      c.OffsetX,
		OffsetY:      c.OffsetY,
		Align:        align,
		Kernel:       kernel,
		DebugMarkers: c.DebugMarkers,
	}
	if c.Fit != nil {
		params.Fit = &tryon.FitSize{
			Width:         c.Fit.Width,
			Height:        c.Fit.Height,
			CenterOffsetX: c.Fit.CenterOffsetX,
			CenterOffsetY: c.Fit.CenterOffsetY,
		}
	}
	return params, params.Validate()
}

// Threshold is the configured landmark confidence threshold.
func (c *Config) Threshold() float64 {
	if c.ConfidenceThreshold == nil {
		return pose.DefaultConfidenceThreshold
	}
	return *c.ConfidenceThreshold
}

// Level is the configured log level.
func (c *Config) Level() (logging.Level, error) {
	return logging.LevelFromString(c.LogLevel)
}
