// Package main scores trajectories from a scenario file against a map, for tuning the obstacle cost
// function offline.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/localplanner/config"
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/logging"
	"go.viam.com/localplanner/motionplan/scoring"
	"go.viam.com/localplanner/spatialmath"
	"go.viam.com/localplanner/trajectory"
)

const (
	flagMap         = "map"
	flagScenario    = "scenario"
	flagPlot        = "plot"
	flagParallelism = "parallel"
	flagTable       = "table"
	flagDebug       = "debug"
)

// scenario is the file format read by the score command.
type scenario struct {
	Footprint    [][2]float64             `json:"footprint"`
	Params       map[string]interface{}   `json:"params"`
	Trajectories []*trajectory.Trajectory `json:"trajectories"`
}

type scoredTrajectory struct {
	Index   int     `json:"index"`
	Cost    float64 `json:"cost"`
	Illegal bool    `json:"illegal"`
}

var app = &cli.App{
	Name:            "obstaclecost",
	Usage:           "score candidate trajectories against an occupancy map",
	HideHelpCommand: true,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    flagDebug,
			Aliases: []string{"vvv"},
			Usage:   "enable debug logging",
		},
	},
	Commands: []*cli.Command{
		{
			Name:      "score",
			Usage:     "score every trajectory in a scenario",
			UsageText: "obstaclecost score --map <map.yaml> --scenario <scenario.json> [--plot <out.png>]",
			Flags: []cli.Flag{
				&cli.PathFlag{
					Name:     flagMap,
					Required: true,
					Usage:    "map metadata `FILE` (yaml)",
				},
				&cli.PathFlag{
					Name:     flagScenario,
					Required: true,
					Usage:    "scenario `FILE` (json) with footprint, params and trajectories",
				},
				&cli.PathFlag{
					Name:  flagPlot,
					Usage: "render the map and scaled footprints to `FILE` (png, svg or pdf)",
				},
				&cli.BoolFlag{
					Name:  flagTable,
					Usage: "print results as a table instead of json lines",
				},
				&cli.IntFlag{
					Name:  flagParallelism,
					Value: 4,
					Usage: "number of trajectories scored concurrently",
				},
			},
			Action: scoreAction,
		},
	},
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func scoreAction(c *cli.Context) error {
	logger := logging.NewLogger("obstaclecost")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("obstaclecost")
	}
	//nolint:errcheck
	defer logger.Sync()

	return runScore(
		c.Context,
		c.Path(flagMap),
		c.Path(flagScenario),
		c.Path(flagPlot),
		c.Int(flagParallelism),
		c.Bool(flagTable),
		c.App.Writer,
		logger,
	)
}

func runScore(
	ctx context.Context,
	mapPath, scenarioPath, plotPath string,
	parallelism int,
	asTable bool,
	out io.Writer,
	logger logging.Logger,
) error {
	sc, err := readScenario(scenarioPath)
	if err != nil {
		return err
	}
	conf, err := config.ParseObstacleCostConfig("params", sc.Params)
	if err != nil {
		return err
	}

	m, err := costmap.LoadMap(mapPath)
	if err != nil {
		return err
	}
	m.SetFootprint(spatialmath.NewPolygon(sc.Footprint...))

	costFn := scoring.NewObstacleCostFunction(m, conf, logger.Sublogger("obstacle_cost"))
	if err := costFn.Prepare(ctx); err != nil {
		return err
	}
	scores, err := scoring.ScoreAll(ctx, costFn, sc.Trajectories, parallelism)
	if err != nil {
		return err
	}

	results := make([]scoredTrajectory, 0, len(scores))
	for i, score := range scores {
		results = append(results, scoredTrajectory{Index: i, Cost: score, Illegal: scoring.IsIllegal(score)})
	}
	if err := writeResults(out, results, asTable); err != nil {
		return err
	}
	if summary, ok := summarize(results); ok {
		logger.Infow("scored trajectories", summary...)
	}

	if plotPath == "" {
		return nil
	}
	cm, err := m.CostmapCopy()
	if err != nil {
		return err
	}
	fp, err := m.RobotFootprint()
	if err != nil {
		return err
	}
	if err := renderScenario(plotPath, cm, fp, conf, sc.Trajectories, scores); err != nil {
		return err
	}
	logger.Infof("wrote plot to %s", plotPath)
	return nil
}

func readScenario(path string) (*scenario, error) {
	//nolint:gosec
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot read scenario")
	}
	var sc scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return nil, errors.Wrapf(err, "cannot parse scenario %q", path)
	}
	if len(sc.Trajectories) == 0 {
		return nil, config.NewConfigValidationFieldRequiredError(path, "trajectories")
	}
	for i, traj := range sc.Trajectories {
		if traj == nil {
			return nil, config.NewConfigValidationFieldRequiredError(path, fmt.Sprintf("trajectories[%d]", i))
		}
	}
	return &sc, nil
}

func writeResults(out io.Writer, results []scoredTrajectory, asTable bool) error {
	if asTable {
		t := table.NewWriter()
		t.SetOutputMirror(out)
		t.AppendHeader(table.Row{"#", "cost", "status"})
		for _, res := range results {
			status := "ok"
			switch res.Cost {
			case scoring.CollisionCost:
				status = "collision"
			case scoring.OffMapCost:
				status = "off map"
			}
			t.AppendRow(table.Row{res.Index, res.Cost, status})
		}
		t.Render()
		return nil
	}

	enc := json.NewEncoder(out)
	for _, res := range results {
		if err := enc.Encode(res); err != nil {
			return err
		}
	}
	return nil
}

// summarize returns log fields describing the legal costs. ok is false if no trajectory was legal.
func summarize(results []scoredTrajectory) ([]interface{}, bool) {
	var legal stats.Float64Data
	for _, res := range results {
		if !res.Illegal {
			legal = append(legal, res.Cost)
		}
	}
	minCost, err := legal.Min()
	if err != nil {
		return nil, false
	}
	maxCost, err := legal.Max()
	if err != nil {
		return nil, false
	}
	mean, err := legal.Mean()
	if err != nil {
		return nil, false
	}
	return []interface{}{
		"total", len(results),
		"legal", len(legal),
		"min_cost", minCost,
		"max_cost", maxCost,
		"mean_cost", mean,
	}, true
}
