package scoring

// ScalingFactor returns the factor by which the footprint is grown for a trajectory moving at speed.
// Below scalingSpeed the footprint is unscaled. Above it the factor ramps linearly, reaching
// 1+maxScalingFactor at maxTransVel and continuing past it unclamped.
//
// maxTransVel must be greater than scalingSpeed; this is not checked here.
func ScalingFactor(speed, scalingSpeed, maxTransVel, maxScalingFactor float64) float64 {
	scale := 1.0
	if speed > scalingSpeed {
		ratio := (speed - scalingSpeed) / (maxTransVel - scalingSpeed)
		scale = maxScalingFactor*ratio + 1.0
	}
	return scale
}
