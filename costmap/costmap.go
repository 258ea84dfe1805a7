package costmap

import (
	"fmt"
	"math"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"
)

// Costmap is an immutable snapshot of a cost grid. Cell (0, 0) covers the world rectangle starting at
// the origin; x indexes columns and y indexes rows.
type Costmap struct {
	id         uuid.UUID
	resolution float64
	originX    float64
	originY    float64
	costs      *mat.Dense

	inscribedRadius     float64
	circumscribedRadius float64
}

// ID identifies the snapshot, so that logs from one planning cycle can be correlated.
func (cm *Costmap) ID() uuid.UUID {
	return cm.id
}

// Resolution is the side length of one cell in meters.
func (cm *Costmap) Resolution() float64 {
	return cm.resolution
}

// Origin is the world position of the lower-left corner of cell (0, 0).
func (cm *Costmap) Origin() (float64, float64) {
	return cm.originX, cm.originY
}

// SizeInCells returns the number of columns and rows in the grid.
func (cm *Costmap) SizeInCells() (int, int) {
	rows, cols := cm.costs.Dims()
	return cols, rows
}

// InscribedRadius is the radius of the largest circle that fits inside the robot footprint.
func (cm *Costmap) InscribedRadius() float64 {
	return cm.inscribedRadius
}

// CircumscribedRadius is the radius of the smallest circle that contains the robot footprint.
func (cm *Costmap) CircumscribedRadius() float64 {
	return cm.circumscribedRadius
}

// WorldToCell converts a world position to cell coordinates. The bool is false when the position
// lies outside the grid or is not a finite number.
func (cm *Costmap) WorldToCell(wx, wy float64) (int, int, bool) {
	fx := math.Floor((wx - cm.originX) / cm.resolution)
	fy := math.Floor((wy - cm.originY) / cm.resolution)
	width, height := cm.SizeInCells()
	// Bounds are checked before the int conversion; the negated form also rejects NaN.
	if !(fx >= 0 && fx < float64(width)) || !(fy >= 0 && fy < float64(height)) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}

// CellToWorld returns the world position of the center of a cell.
func (cm *Costmap) CellToWorld(cx, cy int) (float64, float64) {
	return cm.originX + (float64(cx)+0.5)*cm.resolution, cm.originY + (float64(cy)+0.5)*cm.resolution
}

// Cost returns the cost of a cell. It panics if the cell is outside the grid; callers obtain cell
// coordinates from WorldToCell.
func (cm *Costmap) Cost(cx, cy int) float64 {
	return cm.costs.At(cy, cx)
}

func (cm *Costmap) String() string {
	width, height := cm.SizeInCells()
	return fmt.Sprintf("costmap %s (%dx%d @ %.3fm)", cm.id, width, height, cm.resolution)
}
