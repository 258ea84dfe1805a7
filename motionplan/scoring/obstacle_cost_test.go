package scoring

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/localplanner/collision"
	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/spatialmath"
	"go.viam.com/localplanner/testutils/inject"
	"go.viam.com/localplanner/trajectory"
)

var testConfig = &config.ObstacleCostConfig{MaxTransVel: 1.0, MaxScalingFactor: 2.0, ScalingSpeed: 0.3}

// 4m x 4m grid at 10cm resolution with a 40cm square robot. At (2.05, 2.05) the unscaled footprint
// outline runs through cells 18 and 22; at full speed (scale 3) through cells 14 and 26.
func newTestMap(t *testing.T, cells map[[2]int]float64) *costmap.Map {
	t.Helper()
	m, err := costmap.NewMap(40, 40, 0.1, 0, 0)
	test.That(t, err, test.ShouldBeNil)
	m.SetFootprint(spatialmath.NewRectangle(0.4, 0.4))
	for cell, cost := range cells {
		test.That(t, m.SetCost(cell[0], cell[1], cost), test.ShouldBeNil)
	}
	return m
}

func newPreparedCostFunction(t *testing.T, provider costmap.Provider) *ObstacleCostFunction {
	t.Helper()
	costFn := NewObstacleCostFunction(provider, testConfig, logging.NewTestLogger(t))
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
	return costFn
}

func newTraj(xv float64, poses ...[3]float64) *trajectory.Trajectory {
	traj := trajectory.NewTrajectory(xv, 0, 0, 0.1, len(poses))
	for _, p := range poses {
		traj.AddPoint(p[0], p[1], p[2])
	}
	return traj
}

func TestUnprepared(t *testing.T) {
	costFn := NewObstacleCostFunction(nil, testConfig, logging.NewTestLogger(t))
	test.That(t, costFn.Prepared(), test.ShouldBeFalse)

	_, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{1, 1, 0}))
	test.That(t, err, test.ShouldBeError, ErrNotPrepared)
	_, err = costFn.FootprintCost(spatialmath.NewPose2D(1, 1, 0), 1)
	test.That(t, err, test.ShouldBeError, ErrNotPrepared)

	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeError, ErrNoCostmapProvider)
	test.That(t, costFn.Prepared(), test.ShouldBeFalse)
	_, err = costFn.ScoreTrajectory(newTraj(0, [3]float64{1, 1, 0}))
	test.That(t, err, test.ShouldBeError, ErrNotPrepared)
}

func TestPrepareFailure(t *testing.T) {
	m := newTestMap(t, nil)
	provider := &inject.CostmapProvider{Provider: m}
	costFn := newPreparedCostFunction(t, provider)
	test.That(t, costFn.Prepared(), test.ShouldBeTrue)

	errBoom := errors.New("map not initialized")
	provider.CostmapCopyFunc = func() (*costmap.Costmap, error) { return nil, errBoom }
	err := costFn.Prepare(context.Background())
	test.That(t, errors.Cause(err), test.ShouldEqual, errBoom)
	test.That(t, costFn.Prepared(), test.ShouldBeFalse)
	_, err = costFn.ScoreTrajectory(newTraj(0, [3]float64{1, 1, 0}))
	test.That(t, err, test.ShouldBeError, ErrNotPrepared)

	provider.CostmapCopyFunc = func() (*costmap.Costmap, error) { return nil, nil }
	test.That(t, costFn.Prepare(context.Background()), test.ShouldNotBeNil)

	provider.CostmapCopyFunc = nil
	provider.RobotFootprintFunc = func() (spatialmath.Polygon, error) { return nil, errBoom }
	err = costFn.Prepare(context.Background())
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot get robot footprint")
	test.That(t, costFn.Prepared(), test.ShouldBeFalse)

	provider.RobotFootprintFunc = nil
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
	test.That(t, costFn.Prepared(), test.ShouldBeTrue)
}

func TestPrepareLogging(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	costFn := NewObstacleCostFunction(newTestMap(t, nil), testConfig, logger)
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)

	entries := logs.FilterMessage("prepared obstacle cost function").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["footprint_size"], test.ShouldEqual, int64(4))
	test.That(t, entries[0].ContextMap()["inscribed_radius"], test.ShouldAlmostEqual, 0.2)
}

func TestScoreFreeSpace(t *testing.T) {
	costFn := newPreparedCostFunction(t, newTestMap(t, nil))
	traj := newTraj(0.5, [3]float64{1.05, 2.05, 0}, [3]float64{1.55, 2.05, 0}, [3]float64{2.05, 2.05, 0})
	score, err := costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)
	test.That(t, traj.Cost, test.ShouldEqual, 0)

	score, err = costFn.ScoreTrajectory(newTraj(0))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)
}

func TestScoreCellCosts(t *testing.T) {
	t.Run("cell under the origin", func(t *testing.T) {
		costFn := newPreparedCostFunction(t, newTestMap(t, map[[2]int]float64{{20, 20}: 50}))
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, 50)
	})

	t.Run("cell under the outline", func(t *testing.T) {
		costFn := newPreparedCostFunction(t, newTestMap(t, map[[2]int]float64{{22, 20}: 30, {20, 20}: 10}))
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, 30)
	})
}

func TestScoreLastPoseWins(t *testing.T) {
	m := newTestMap(t, map[[2]int]float64{{10, 20}: 100})
	traj := newTraj(0, [3]float64{1.05, 2.05, 0}, [3]float64{2.05, 2.05, 0})

	costFn := newPreparedCostFunction(t, m)
	score, err := costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)

	reversed := newTraj(0, [3]float64{2.05, 2.05, 0}, [3]float64{1.05, 2.05, 0})
	score, err = costFn.ScoreTrajectory(reversed)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 100)

	costFn.SetSumScores(true)
	score, err = costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 100)
}

func TestScoreCollision(t *testing.T) {
	t.Run("final pose outline on an obstacle", func(t *testing.T) {
		m := newTestMap(t, map[[2]int]float64{{22, 20}: costmap.LethalObstacle, {10, 20}: 100})
		costFn := newPreparedCostFunction(t, m)
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{1.05, 2.05, 0}, [3]float64{2.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, CollisionCost)
	})

	t.Run("earlier pose on an obstacle", func(t *testing.T) {
		m := newTestMap(t, map[[2]int]float64{{10, 20}: costmap.LethalObstacle})
		costFn := newPreparedCostFunction(t, m)
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{1.05, 2.05, 0}, [3]float64{2.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, CollisionCost)
		test.That(t, IsIllegal(score), test.ShouldBeTrue)
	})

	t.Run("unknown cells are illegal", func(t *testing.T) {
		m := newTestMap(t, map[[2]int]float64{{18, 20}: costmap.NoInformation})
		costFn := newPreparedCostFunction(t, m)
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, CollisionCost)
	})

	t.Run("outline leaving the map", func(t *testing.T) {
		costFn := newPreparedCostFunction(t, newTestMap(t, nil))
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{0.05, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, CollisionCost)
	})
}

func TestScoreSpeedInflatesFootprint(t *testing.T) {
	// just outside the unscaled footprint, on the outline once scaled by 3
	m := newTestMap(t, map[[2]int]float64{{26, 20}: costmap.LethalObstacle})
	costFn := newPreparedCostFunction(t, m)

	slow := newTraj(0.2, [3]float64{2.05, 2.05, 0})
	score, err := costFn.ScoreTrajectory(slow)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)

	fast := newTraj(1.0, [3]float64{2.05, 2.05, 0})
	score, err = costFn.ScoreTrajectory(fast)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, CollisionCost)

	// a square turned by pi/2 lays down the same outline
	turned := newTraj(1.0, [3]float64{2.05, 2.05, math.Pi / 2})
	score, err = costFn.ScoreTrajectory(turned)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, CollisionCost)

	costFn.SetParams(1.0, 0, 0.3)
	score, err = costFn.ScoreTrajectory(fast)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)
}

func TestScoreOffMap(t *testing.T) {
	var calls int
	costFn := NewObstacleCostFunction(newTestMap(t, nil), testConfig, logging.NewTestLogger(t))
	costFn.SetFootprintChecker(func(cm *costmap.Costmap) collision.FootprintChecker {
		return &inject.FootprintChecker{
			FootprintChecker: collision.NewCostmapModel(cm),
			FootprintCostFunc: func(origin r2.Point, footprint spatialmath.Polygon, inscribed, circumscribed float64) float64 {
				calls++
				return 0
			},
		}
	})
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)

	score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}, [3]float64{4.5, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, OffMapCost)
	test.That(t, calls, test.ShouldEqual, 4)

	calls = 0
	score, err = costFn.ScoreTrajectory(newTraj(0, [3]float64{-1, 2.05, 0}, [3]float64{2.05, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, OffMapCost)
	test.That(t, calls, test.ShouldEqual, 0)
}

func TestScoreNonFinitePoses(t *testing.T) {
	costFn := newPreparedCostFunction(t, newTestMap(t, nil))

	for _, x := range []float64{1e20, -1e20, math.Inf(1), math.NaN()} {
		score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{x, 2.05, 0}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, score, test.ShouldEqual, OffMapCost)
	}

	// equal max_trans_vel and scaling_speed make the scale infinite, pushing every vertex off the grid
	costFn.SetParams(0.3, 2.0, 0.3)
	score, err := costFn.ScoreTrajectory(newTraj(0.5, [3]float64{2.05, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, CollisionCost)
}

func TestScoreEmptyFootprint(t *testing.T) {
	m := newTestMap(t, map[[2]int]float64{{20, 20}: costmap.LethalObstacle, {10, 20}: 40})
	m.SetFootprint(nil)

	var calls int
	costFn := NewObstacleCostFunction(m, testConfig, logging.NewTestLogger(t))
	costFn.SetFootprintChecker(func(cm *costmap.Costmap) collision.FootprintChecker {
		return &inject.FootprintChecker{
			FootprintCostFunc: func(origin r2.Point, footprint spatialmath.Polygon, inscribed, circumscribed float64) float64 {
				calls++
				return collision.LethalCost
			},
		}
	})
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)

	score, err := costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, costmap.LethalObstacle)

	score, err = costFn.ScoreTrajectory(newTraj(0, [3]float64{2.05, 2.05, 0}, [3]float64{1.05, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 40)

	score, err = costFn.ScoreTrajectory(newTraj(0, [3]float64{-2.05, 2.05, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, OffMapCost)
	test.That(t, calls, test.ShouldEqual, 0)
}

func TestFootprintGrowsOneVertexAtATime(t *testing.T) {
	m := newTestMap(t, map[[2]int]float64{{10, 10}: 5})
	footprint := spatialmath.NewRectangle(0.4, 0.4)

	var origins []r2.Point
	var polygons []spatialmath.Polygon
	var radii [][2]float64
	costFn := NewObstacleCostFunction(m, testConfig, logging.NewTestLogger(t))
	costFn.SetFootprintChecker(func(cm *costmap.Costmap) collision.FootprintChecker {
		return &inject.FootprintChecker{
			FootprintCostFunc: func(origin r2.Point, polygon spatialmath.Polygon, inscribed, circumscribed float64) float64 {
				origins = append(origins, origin)
				polygons = append(polygons, polygon.Clone())
				radii = append(radii, [2]float64{inscribed, circumscribed})
				return float64(3 * len(polygon))
			},
		}
	})
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)

	traj := newTraj(0.5, [3]float64{1, 1, 0})
	score, err := costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 12)

	scale := 1 + 2*(0.5-0.3)/(1.0-0.3)
	test.That(t, polygons, test.ShouldHaveLength, 4)
	for i, poly := range polygons {
		test.That(t, poly, test.ShouldHaveLength, i+1)
		test.That(t, origins[i], test.ShouldResemble, r2.Point{X: 1, Y: 1})
		test.That(t, radii[i][0], test.ShouldAlmostEqual, 0.2)
		test.That(t, radii[i][1], test.ShouldAlmostEqual, math.Sqrt(0.08))
	}
	first := polygons[0][0]
	test.That(t, first.X, test.ShouldAlmostEqual, 1+0.2*scale)
	test.That(t, first.Y, test.ShouldAlmostEqual, 1+0.2*scale)
	test.That(t, first.X, test.ShouldAlmostEqual, 1.3142857, 1e-6)

	expected := footprint.Transform(spatialmath.NewPose2D(1, 1, 0), scale)
	test.That(t, cmp.Diff(expected, polygons[3], cmpopts.EquateApprox(0, 1e-9)), test.ShouldBeEmpty)

	// the origin cell cost wins when it exceeds every checker result
	m2 := newTestMap(t, map[[2]int]float64{{10, 10}: 50})
	costFn.provider = m2
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
	score, err = costFn.FootprintCost(spatialmath.NewPose2D(1.05, 1.05, 0), scale)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 50)
}

func TestPrepareRefreshesSnapshot(t *testing.T) {
	m := newTestMap(t, nil)
	costFn := newPreparedCostFunction(t, m)
	traj := newTraj(0, [3]float64{2.05, 2.05, 0})

	test.That(t, m.SetCost(22, 20, costmap.LethalObstacle), test.ShouldBeNil)
	score, err := costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)

	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
	score, err = costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, CollisionCost)

	// shrinking the footprint takes effect on the next cycle too
	m.SetFootprint(spatialmath.NewRectangle(0.2, 0.2))
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
	score, err = costFn.ScoreTrajectory(traj)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, score, test.ShouldEqual, 0)
}

func TestDefaultConfigAndLogger(t *testing.T) {
	costFn := NewObstacleCostFunction(newTestMap(t, nil), nil, nil)
	test.That(t, costFn.maxTransVel, test.ShouldEqual, 0.55)
	test.That(t, costFn.scalingSpeed, test.ShouldEqual, 0.25)
	test.That(t, costFn.maxScalingFactor, test.ShouldEqual, 0.2)
	test.That(t, costFn.Prepare(context.Background()), test.ShouldBeNil)
}
