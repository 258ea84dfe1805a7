// Package scoring assigns costs to candidate trajectories of a mobile base so that a trajectory
// selection loop can pick a safe velocity command.
package scoring

import (
	"context"

	"go.viam.com/localplanner/trajectory"
)

// Scores returned for trajectories that must never be selected. All other scores are non-negative,
// with larger values being worse.
const (
	// CollisionCost means the footprint collides with an obstacle at some pose.
	CollisionCost = -6.0
	// OffMapCost means some pose lies outside the grid.
	OffMapCost = -7.0
)

// TrajectoryCostFunction scores trajectories against the state of the world captured by the most
// recent Prepare.
type TrajectoryCostFunction interface {
	// Prepare captures the state needed for scoring. It is called once per planning cycle, before
	// any trajectory of that cycle is scored.
	Prepare(ctx context.Context) error

	// ScoreTrajectory returns the cost of a trajectory, or a negative sentinel cost if it is
	// illegal. It does not modify the trajectory.
	ScoreTrajectory(traj *trajectory.Trajectory) (float64, error)
}

// IsIllegal reports whether a cost marks a trajectory that must not be executed.
func IsIllegal(cost float64) bool {
	return cost < 0
}
