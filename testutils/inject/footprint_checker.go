package inject

import (
	"github.com/golang/geo/r2"

	"go.viam.com/localplanner/collision"
	"go.viam.com/localplanner/spatialmath"
)

// FootprintChecker is an injected collision.FootprintChecker.
type FootprintChecker struct {
	collision.FootprintChecker
	FootprintCostFunc func(origin r2.Point, footprint spatialmath.Polygon, inscribedRadius, circumscribedRadius float64) float64
}

// FootprintCost calls the injected FootprintCost or the real version.
func (c *FootprintChecker) FootprintCost(
	origin r2.Point,
	footprint spatialmath.Polygon,
	inscribedRadius, circumscribedRadius float64,
) float64 {
	if c.FootprintCostFunc == nil {
		return c.FootprintChecker.FootprintCost(origin, footprint, inscribedRadius, circumscribedRadius)
	}
	return c.FootprintCostFunc(origin, footprint, inscribedRadius, circumscribedRadius)
}
