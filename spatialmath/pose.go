// Package spatialmath defines the planar poses and footprint polygons used by the local planner.
package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r2"
)

// Pose2D is a planar pose: a position in meters and a heading in radians, measured counter-clockwise
// from the world x axis.
type Pose2D struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Theta float64 `json:"theta"`
}

// NewPose2D returns a pose at (x, y) facing theta.
func NewPose2D(x, y, theta float64) Pose2D {
	return Pose2D{X: x, Y: y, Theta: theta}
}

// Point returns the position component of the pose.
func (p Pose2D) Point() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// TransformPoint maps a point in the pose's local frame, scaled by scale, into the world frame.
func (p Pose2D) TransformPoint(local r2.Point, scale float64) r2.Point {
	sin, cos := math.Sincos(p.Theta)
	return r2.Point{
		X: p.X + (scale*local.X*cos - scale*local.Y*sin),
		Y: p.Y + (scale*local.X*sin + scale*local.Y*cos),
	}
}

func (p Pose2D) String() string {
	return fmt.Sprintf("(x: %.3f, y: %.3f, theta: %.3f)", p.X, p.Y, p.Theta)
}
