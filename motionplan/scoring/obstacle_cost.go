package scoring

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"

	"go.viam.com/localplanner/collision"
	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/spatialmath"
	"go.viam.com/localplanner/trajectory"
)

var _ TrajectoryCostFunction = (*ObstacleCostFunction)(nil)

// ObstacleCostFunction scores a trajectory by placing the robot footprint, grown according to the
// trajectory speed, at each of its poses on a grid snapshot.
//
// By default only the last pose determines the score; earlier poses can only make a trajectory
// illegal. Enable SumScores to accumulate the cost of every pose instead.
type ObstacleCostFunction struct {
	provider costmap.Provider
	logger   logging.Logger

	// mu guards all fields below it; scoring only takes the read lock.
	mu               sync.RWMutex
	newChecker       collision.NewCheckerFunc
	maxTransVel      float64
	maxScalingFactor float64
	scalingSpeed     float64
	sumScores        bool

	costmap   *costmap.Costmap
	footprint spatialmath.Polygon
	checker   collision.FootprintChecker
}

// NewObstacleCostFunction returns an unprepared ObstacleCostFunction. A nil provider yields a cost
// function that can never be prepared. A nil conf uses the default parameters and a nil logger
// logs to the global logger.
func NewObstacleCostFunction(
	provider costmap.Provider,
	conf *config.ObstacleCostConfig,
	logger logging.Logger,
) *ObstacleCostFunction {
	if conf == nil {
		conf = config.NewDefaultObstacleCostConfig()
	}
	if logger == nil {
		logger = logging.Global().Sublogger("obstacle_cost")
	}
	return &ObstacleCostFunction{
		provider:         provider,
		newChecker:       collision.NewCostmapModel,
		logger:           logger,
		maxTransVel:      conf.MaxTransVel,
		maxScalingFactor: conf.MaxScalingFactor,
		scalingSpeed:     conf.ScalingSpeed,
		sumScores:        conf.SumScores,
	}
}

// SetParams sets the footprint scaling parameters. maxTransVel must be greater than scalingSpeed.
func (o *ObstacleCostFunction) SetParams(maxTransVel, maxScalingFactor, scalingSpeed float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.maxTransVel = maxTransVel
	o.maxScalingFactor = maxScalingFactor
	o.scalingSpeed = scalingSpeed
}

// SetSumScores selects whether pose costs are summed or only the last pose is reported.
func (o *ObstacleCostFunction) SetSumScores(sumScores bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sumScores = sumScores
}

// SetFootprintChecker replaces the collision backend used from the next Prepare on.
func (o *ObstacleCostFunction) SetFootprintChecker(newChecker collision.NewCheckerFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.newChecker = newChecker
}

// Prepare takes a fresh grid snapshot and footprint from the provider. If it fails the cost function
// is left unprepared.
func (o *ObstacleCostFunction) Prepare(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.costmap, o.footprint, o.checker = nil, nil, nil

	if o.provider == nil {
		return ErrNoCostmapProvider
	}
	cm, err := o.provider.CostmapCopy()
	if err != nil {
		return errors.Wrap(err, "cannot get costmap copy")
	}
	if cm == nil {
		return errors.New("costmap provider returned no costmap")
	}
	footprint, err := o.provider.RobotFootprint()
	if err != nil {
		return errors.Wrap(err, "cannot get robot footprint")
	}

	o.costmap = cm
	o.footprint = footprint.Clone()
	o.checker = o.newChecker(cm)
	o.logger.CDebugw(ctx, "prepared obstacle cost function",
		"costmap", cm.ID().String(),
		"footprint_size", len(o.footprint),
		"inscribed_radius", cm.InscribedRadius(),
		"circumscribed_radius", cm.CircumscribedRadius(),
	)
	return nil
}

// Prepared reports whether the last Prepare succeeded.
func (o *ObstacleCostFunction) Prepared() bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.costmap != nil
}

// ScoreTrajectory returns the obstacle cost of traj, CollisionCost or OffMapCost. It returns
// ErrNotPrepared if called before a successful Prepare.
func (o *ObstacleCostFunction) ScoreTrajectory(traj *trajectory.Trajectory) (float64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.costmap == nil {
		return 0, ErrNotPrepared
	}

	scale := ScalingFactor(traj.Speed(), o.scalingSpeed, o.maxTransVel, o.maxScalingFactor)
	cost := 0.
	for i, pose := range traj.Poses {
		poseCost := o.footprintCost(pose, scale)
		if IsIllegal(poseCost) {
			o.logger.Debugw("illegal trajectory", "pose_index", i, "pose", pose.String(), "cost", poseCost)
			return poseCost, nil
		}
		if o.sumScores {
			cost += poseCost
		} else {
			cost = poseCost
		}
	}
	return cost, nil
}

// FootprintCost returns the cost of placing the footprint, grown by scale, at pose. It returns
// ErrNotPrepared if called before a successful Prepare.
func (o *ObstacleCostFunction) FootprintCost(pose spatialmath.Pose2D, scale float64) (float64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.costmap == nil {
		return 0, ErrNotPrepared
	}
	return o.footprintCost(pose, scale), nil
}

// footprintCost checks the footprint one vertex at a time: after each transformed vertex is added,
// the partial outline built so far is handed to the checker. The pose cost is the highest of the
// checker results and the cost of the cell under the robot origin.
func (o *ObstacleCostFunction) footprintCost(pose spatialmath.Pose2D, scale float64) float64 {
	cx, cy, ok := o.costmap.WorldToCell(pose.X, pose.Y)
	if !ok {
		return OffMapCost
	}
	cellCost := o.costmap.Cost(cx, cy)
	if len(o.footprint) == 0 {
		return cellCost
	}

	origin := pose.Point()
	inscribed, circumscribed := o.costmap.InscribedRadius(), o.costmap.CircumscribedRadius()
	occCost := 0.
	scaled := make(spatialmath.Polygon, 0, len(o.footprint))
	for _, vertex := range o.footprint {
		scaled = append(scaled, pose.TransformPoint(vertex, scale))
		fc := o.checker.FootprintCost(origin, scaled, inscribed, circumscribed)
		if fc < 0 {
			return CollisionCost
		}
		occCost = math.Max(occCost, math.Max(fc, cellCost))
	}
	return occCost
}
