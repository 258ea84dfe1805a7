package costmap

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/localplanner/spatialmath"
)

// Provider supplies the grid and robot footprint that trajectory scoring works against.
type Provider interface {
	// CostmapCopy returns a snapshot that the caller owns exclusively.
	CostmapCopy() (*Costmap, error)
	// RobotFootprint returns the robot outline in the robot's own frame.
	RobotFootprint() (spatialmath.Polygon, error)
}

// NewCellOutOfBoundsError is returned when a cell index lies outside the grid.
func NewCellOutOfBoundsError(cx, cy, width, height int) error {
	return errors.Errorf("cell (%d, %d) is outside the %dx%d grid", cx, cy, width, height)
}

// Map is a live, mutable cost grid shared between a producer updating obstacles and the planner
// taking snapshots. It is safe for concurrent use.
type Map struct {
	mu         sync.RWMutex
	resolution float64
	originX    float64
	originY    float64
	costs      *mat.Dense
	footprint  spatialmath.Polygon
}

// NewMap returns a grid of width x height free cells.
func NewMap(width, height int, resolution, originX, originY float64) (*Map, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, errors.Errorf("grid resolution must be positive, got %f", resolution)
	}
	return &Map{
		resolution: resolution,
		originX:    originX,
		originY:    originY,
		costs:      mat.NewDense(height, width, nil),
	}, nil
}

// SetCost sets the cost of a single cell.
func (m *Map) SetCost(cx, cy int, cost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, cols := m.costs.Dims()
	if cx < 0 || cy < 0 || cx >= cols || cy >= rows {
		return NewCellOutOfBoundsError(cx, cy, cols, rows)
	}
	m.costs.Set(cy, cx, cost)
	return nil
}

// SetWorldCost sets the cost of the cell containing the world position (wx, wy).
func (m *Map) SetWorldCost(wx, wy, cost float64) error {
	m.mu.RLock()
	cx := int((wx - m.originX) / m.resolution)
	cy := int((wy - m.originY) / m.resolution)
	if wx < m.originX || wy < m.originY {
		cx, cy = -1, -1
	}
	m.mu.RUnlock()
	return m.SetCost(cx, cy, cost)
}

// Fill sets every cell to cost.
func (m *Map) Fill(cost float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, cols := m.costs.Dims()
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			m.costs.Set(r, c, cost)
		}
	}
}

// SetFootprint replaces the robot footprint.
func (m *Map) SetFootprint(footprint spatialmath.Polygon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.footprint = footprint.Clone()
}

// RobotFootprint returns a copy of the current robot footprint.
func (m *Map) RobotFootprint() (spatialmath.Polygon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.footprint.Clone(), nil
}

// CostmapCopy deep copies the grid into an immutable snapshot. The footprint radii are computed from
// the footprint at the time of the copy.
func (m *Map) CostmapCopy() (*Costmap, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return &Costmap{
		id:                  uuid.New(),
		resolution:          m.resolution,
		originX:             m.originX,
		originY:             m.originY,
		costs:               mat.DenseCopyOf(m.costs),
		inscribedRadius:     m.footprint.InscribedRadius(),
		circumscribedRadius: m.footprint.CircumscribedRadius(),
	}, nil
}
