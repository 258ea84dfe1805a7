package main

import (
	"image/color"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/motionplan/scoring"
	"go.viam.com/localplanner/spatialmath"
	"go.viam.com/localplanner/trajectory"
)

var (
	legalColor   = color.RGBA{G: 160, B: 255, A: 255}
	illegalColor = color.RGBA{R: 255, A: 255}
)

// renderScenario draws the grid as a heat map with the scaled footprint outline at every pose of
// every trajectory, colored by whether the trajectory was legal.
func renderScenario(
	path string,
	cm *costmap.Costmap,
	footprint spatialmath.Polygon,
	conf *config.ObstacleCostConfig,
	trajs []*trajectory.Trajectory,
	scores []float64,
) error {
	p := plot.New()
	p.Title.Text = cm.String()
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"

	hm := plotter.NewHeatMap(&costmap.HeatMapGrid{Costmap: cm}, palette.Heat(64, 1))
	hm.Min, hm.Max = costmap.FreeSpace, costmap.NoInformation
	p.Add(hm)

	if len(footprint) == 0 {
		return save(p, path)
	}
	for i, traj := range trajs {
		scale := scoring.ScalingFactor(traj.Speed(), conf.ScalingSpeed, conf.MaxTransVel, conf.MaxScalingFactor)
		for _, pose := range traj.Poses {
			xys := lo.Map(footprint.Transform(pose, scale), func(v r2.Point, _ int) plotter.XY {
				return plotter.XY{X: v.X, Y: v.Y}
			})
			poly, err := plotter.NewPolygon(plotter.XYs(xys))
			if err != nil {
				return errors.Wrapf(err, "cannot plot trajectory %d", i)
			}
			poly.Color = nil
			poly.LineStyle.Color = legalColor
			if scoring.IsIllegal(scores[i]) {
				poly.LineStyle.Color = illegalColor
			}
			p.Add(poly)
		}
	}
	return save(p, path)
}

func save(p *plot.Plot, path string) error {
	return errors.Wrap(p.Save(6*vg.Inch, 6*vg.Inch, path), "cannot save plot")
}
