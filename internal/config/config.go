package config

import (
	"github.com/kelseyhightower/envconfig"
)

// Tuning holds the interaction-engine knobs the host can override through
// the environment. Distances suffixed Px are screen pixels; the rest are
// world units.
type Tuning struct {
	BucketSize           float64 `envconfig:"BUCKET_SIZE" default:"256"`
	ZoomMin              float64 `envconfig:"ZOOM_MIN" default:"0.1"`
	ZoomMax              float64 `envconfig:"ZOOM_MAX" default:"10"`
	ZoomStep             float64 `envconfig:"ZOOM_STEP" default:"1.1"`
	MinShapeSize         float64 `envconfig:"MIN_SHAPE_SIZE" default:"2"`
	HandleRadiusPx       float64 `envconfig:"HANDLE_RADIUS_PX" default:"8"`
	RotateHandleOffsetPx float64 `envconfig:"ROTATE_HANDLE_OFFSET_PX" default:"24"`
	EdgeAttachSnapPx     float64 `envconfig:"EDGE_ATTACH_SNAP_PX" default:"16"`
}

// Load reads tuning from the environment, falling back to the defaults.
func Load() (*Tuning, error) {
	var cfg Tuning
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the built-in tuning for embedded use.
func Default() *Tuning {
	return &Tuning{
		BucketSize:           256,
		ZoomMin:              0.1,
		ZoomMax:              10,
		ZoomStep:             1.1,
		MinShapeSize:         2,
		HandleRadiusPx:       8,
		RotateHandleOffsetPx: 24,
		EdgeAttachSnapPx:     16,
	}
}
