// Package trajectory defines the candidate trajectories produced by a trajectory generator and
// scored by the local planner.
package trajectory

import (
	"math"

	"github.com/pkg/errors"

	"go.viam.com/localplanner/spatialmath"
)

// Trajectory is a finite, ordered sequence of poses produced by holding one velocity command for a
// short horizon.
type Trajectory struct {
	// XV, YV and ThetaV are the commanded velocity for the whole trajectory, in the robot frame.
	XV     float64 `json:"xv"`
	YV     float64 `json:"yv"`
	ThetaV float64 `json:"thetav"`

	// TimeDelta is the time between consecutive poses in seconds.
	TimeDelta float64 `json:"time_delta"`

	// Cost is the last score assigned to the trajectory. Negative values mark illegal trajectories.
	Cost float64 `json:"cost"`

	Poses []spatialmath.Pose2D `json:"poses"`
}

// NewTrajectory returns an empty trajectory for the given velocity, with room for numPoses poses.
func NewTrajectory(xv, yv, thetav, timeDelta float64, numPoses int) *Trajectory {
	return &Trajectory{
		XV:        xv,
		YV:        yv,
		ThetaV:    thetav,
		TimeDelta: timeDelta,
		Poses:     make([]spatialmath.Pose2D, 0, numPoses),
	}
}

// NewPoseIndexError is returned when a pose index is outside the trajectory.
func NewPoseIndexError(index, length int) error {
	return errors.Errorf("pose index %d out of range for trajectory with %d poses", index, length)
}

// AddPoint appends a pose to the end of the trajectory.
func (t *Trajectory) AddPoint(x, y, theta float64) {
	t.Poses = append(t.Poses, spatialmath.NewPose2D(x, y, theta))
}

// Point returns the pose at index.
func (t *Trajectory) Point(index int) (spatialmath.Pose2D, error) {
	if index < 0 || index >= len(t.Poses) {
		return spatialmath.Pose2D{}, NewPoseIndexError(index, len(t.Poses))
	}
	return t.Poses[index], nil
}

// EndPoint returns the final pose.
func (t *Trajectory) EndPoint() (spatialmath.Pose2D, error) {
	return t.Point(len(t.Poses) - 1)
}

// Len returns the number of poses.
func (t *Trajectory) Len() int {
	return len(t.Poses)
}

// Speed is the magnitude of the planar velocity.
func (t *Trajectory) Speed() float64 {
	return math.Hypot(t.XV, t.YV)
}

// Reset removes every pose while keeping the underlying storage.
func (t *Trajectory) Reset() {
	t.Poses = t.Poses[:0]
	t.Cost = 0
}
