package costmap

import "gonum.org/v1/plot/plotter"

var _ plotter.GridXYZ = (*HeatMapGrid)(nil)

// HeatMapGrid adapts a Costmap to plotter.GridXYZ so a snapshot can be drawn with plotter.NewHeatMap.
type HeatMapGrid struct {
	*Costmap
}

// Dims returns the number of columns and rows.
func (g *HeatMapGrid) Dims() (int, int) {
	return g.SizeInCells()
}

// Z returns the cost of cell (c, r).
func (g *HeatMapGrid) Z(c, r int) float64 {
	return g.Cost(c, r)
}

// X returns the world x of the center of column c.
func (g *HeatMapGrid) X(c int) float64 {
	x, _ := g.CellToWorld(c, 0)
	return x
}

// Y returns the world y of the center of row r.
func (g *HeatMapGrid) Y(r int) float64 {
	_, y := g.CellToWorld(0, r)
	return y
}
