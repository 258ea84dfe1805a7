// Package config defines the configuration of the local planner's cost functions.
package config

import (
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// default values for obstacle cost parameters.
const (
	// maximum translational speed of the robot, in m/s.
	defaultMaxTransVel = 0.55

	// footprint grows by up to this fraction of its size at maxTransVel.
	defaultMaxScalingFactor = 0.2

	// speed in m/s above which the footprint starts to grow.
	defaultScalingSpeed = 0.25
)

// ObstacleCostConfig configures the speed-dependent footprint scaling of the obstacle cost function.
type ObstacleCostConfig struct {
	MaxTransVel      float64 `json:"max_trans_vel"`
	MaxScalingFactor float64 `json:"max_scaling_factor"`
	ScalingSpeed     float64 `json:"scaling_speed"`

	// SumScores accumulates the cost of every pose instead of reporting only the last one.
	SumScores bool `json:"sum_scores,omitempty"`
}

// NewDefaultObstacleCostConfig returns the default obstacle cost parameters.
func NewDefaultObstacleCostConfig() *ObstacleCostConfig {
	return &ObstacleCostConfig{
		MaxTransVel:      defaultMaxTransVel,
		MaxScalingFactor: defaultMaxScalingFactor,
		ScalingSpeed:     defaultScalingSpeed,
	}
}

// Validate ensures all parts of the config are valid. The scaling ramp divides by
// max_trans_vel - scaling_speed, so max_trans_vel must exceed scaling_speed.
func (conf *ObstacleCostConfig) Validate(path string) error {
	var err error
	if conf.MaxTransVel <= 0 {
		err = multierr.Append(err, errors.Errorf(`"max_trans_vel" must be positive, got %v`, conf.MaxTransVel))
	}
	if conf.MaxScalingFactor < 0 {
		err = multierr.Append(err, errors.Errorf(`"max_scaling_factor" must not be negative, got %v`, conf.MaxScalingFactor))
	}
	if conf.ScalingSpeed < 0 {
		err = multierr.Append(err, errors.Errorf(`"scaling_speed" must not be negative, got %v`, conf.ScalingSpeed))
	}
	if conf.MaxTransVel <= conf.ScalingSpeed {
		err = multierr.Append(err, errors.Errorf(
			`"max_trans_vel" (%v) must be greater than "scaling_speed" (%v)`, conf.MaxTransVel, conf.ScalingSpeed))
	}
	if err != nil {
		return NewConfigValidationError(path, err)
	}
	return nil
}

// ParseObstacleCostConfig decodes an attribute map on top of the defaults and validates the result.
// Unknown attributes are rejected.
func ParseObstacleCostConfig(path string, attributes map[string]interface{}) (*ObstacleCostConfig, error) {
	conf := NewDefaultObstacleCostConfig()
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           conf,
		Metadata:         &md,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, NewConfigValidationError(path, err)
	}
	if len(md.Unused) > 0 {
		return nil, NewConfigValidationError(path, errors.Errorf("unknown attributes %v", md.Unused))
	}
	if err := conf.Validate(path); err != nil {
		return nil, err
	}
	return conf, nil
}
