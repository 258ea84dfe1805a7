package scoring

import (
	"context"

	"golang.org/x/sync/errgroup"

	"go.viam.com/localplanner/trajectory"
)

// ScoreAll scores every trajectory with costFn using at most parallelism goroutines (unlimited if
// parallelism <= 0). costFn must already be prepared and must be safe for concurrent scoring, which
// ObstacleCostFunction is. Results are returned in input order.
func ScoreAll(
	ctx context.Context,
	costFn TrajectoryCostFunction,
	trajs []*trajectory.Trajectory,
	parallelism int,
) ([]float64, error) {
	scores := make([]float64, len(trajs))
	g, gctx := errgroup.WithContext(ctx)
	if parallelism > 0 {
		g.SetLimit(parallelism)
	}
	for i, traj := range trajs {
		i, traj := i, traj
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			score, err := costFn.ScoreTrajectory(traj)
			if err != nil {
				return err
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
