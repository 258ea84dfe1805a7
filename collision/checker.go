// Package collision checks robot footprints against a cost grid.
package collision

import (
	"github.com/golang/geo/r2"

	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// Negative results of FootprintCost. Any negative value means the footprint may not be placed there.
const (
	LethalCost  = -1.
	UnknownCost = -2.
	OffMapCost  = -3.
)

// FootprintChecker computes the cost of placing a footprint, already transformed into world
// coordinates, with its robot origin at origin. A negative result means the placement is in
// collision or otherwise invalid.
type FootprintChecker interface {
	FootprintCost(origin r2.Point, footprint spatialmath.Polygon, inscribedRadius, circumscribedRadius float64) float64
}

// NewCheckerFunc builds a FootprintChecker bound to a grid snapshot.
type NewCheckerFunc func(cm *costmap.Costmap) FootprintChecker
