package collision

import (
	"math"

	"github.com/golang/geo/r2"

	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// CostmapModel is a FootprintChecker that rasterizes the footprint outline onto the grid and reports
// the highest cell cost under it.
type CostmapModel struct {
	cm *costmap.Costmap
}

// NewCostmapModel returns a CostmapModel over the given snapshot.
func NewCostmapModel(cm *costmap.Costmap) FootprintChecker {
	return &CostmapModel{cm: cm}
}

// FootprintCost returns the maximum cost of cells along the footprint outline. Footprints with fewer
// than three vertices are treated as a circular robot and only the cell under the origin is checked,
// in which case an inscribed-inflated cell counts as lethal.
func (m *CostmapModel) FootprintCost(
	origin r2.Point,
	footprint spatialmath.Polygon,
	inscribedRadius, circumscribedRadius float64,
) float64 {
	cx, cy, ok := m.cm.WorldToCell(origin.X, origin.Y)
	if !ok {
		return OffMapCost
	}

	if len(footprint) < 3 {
		cost := m.cm.Cost(cx, cy)
		switch cost {
		case costmap.NoInformation:
			return UnknownCost
		case costmap.LethalObstacle, costmap.InscribedInflatedObstacle:
			return LethalCost
		}
		return cost
	}

	footprintCost := 0.
	footprint.Edges(func(a, b r2.Point) {
		if footprintCost < 0 {
			return
		}
		lc := m.lineCost(a, b)
		if lc < 0 {
			footprintCost = lc
			return
		}
		footprintCost = math.Max(footprintCost, lc)
	})
	return footprintCost
}

func (m *CostmapModel) lineCost(a, b r2.Point) float64 {
	x0, y0, ok := m.cm.WorldToCell(a.X, a.Y)
	if !ok {
		return OffMapCost
	}
	x1, y1, ok := m.cm.WorldToCell(b.X, b.Y)
	if !ok {
		return OffMapCost
	}

	lineCost := 0.
	bresenham(x0, y0, x1, y1, func(x, y int) bool {
		pc := m.pointCost(x, y)
		if pc < 0 {
			lineCost = pc
			return false
		}
		lineCost = math.Max(lineCost, pc)
		return true
	})
	return lineCost
}

func (m *CostmapModel) pointCost(x, y int) float64 {
	cost := m.cm.Cost(x, y)
	switch cost {
	case costmap.NoInformation:
		return UnknownCost
	case costmap.LethalObstacle:
		return LethalCost
	}
	return cost
}

// bresenham visits every cell on the line from (x0, y0) to (x1, y1) inclusive, stopping early if
// visit returns false.
func bresenham(x0, y0, x1, y1 int, visit func(x, y int) bool) {
	dx := absInt(x1 - x0)
	dy := -absInt(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		if !visit(x0, y0) {
			return
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
