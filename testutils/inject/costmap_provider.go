package inject

import (
	"go.viam.com/localplanner/costmap"
	"go.viam.com/localplanner/spatialmath"
)

// CostmapProvider is an injected costmap.Provider.
type CostmapProvider struct {
	costmap.Provider
	CostmapCopyFunc    func() (*costmap.Costmap, error)
	RobotFootprintFunc func() (spatialmath.Polygon, error)
}

// CostmapCopy calls the injected CostmapCopy or the real version.
func (p *CostmapProvider) CostmapCopy() (*costmap.Costmap, error) {
	if p.CostmapCopyFunc == nil {
		return p.Provider.CostmapCopy()
	}
	return p.CostmapCopyFunc()
}

// RobotFootprint calls the injected RobotFootprint or the real version.
func (p *CostmapProvider) RobotFootprint() (spatialmath.Polygon, error) {
	if p.RobotFootprintFunc == nil {
		return p.Provider.RobotFootprint()
	}
	return p.RobotFootprintFunc()
}
