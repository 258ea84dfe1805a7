package scoring

import "github.com/pkg/errors"

var (
	// ErrNotPrepared is returned when a trajectory is scored before a successful Prepare.
	ErrNotPrepared = errors.New("cost function must be prepared before scoring trajectories")

	// ErrNoCostmapProvider is returned by Prepare when the cost function was built without a grid.
	ErrNoCostmapProvider = errors.New("cost function has no costmap provider")
)
