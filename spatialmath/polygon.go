package spatialmath

import (
	"math"

	"github.com/golang/geo/r2"
)

// Polygon is an ordered list of vertices. A robot footprint is a Polygon expressed in the robot's
// own frame; the closing edge from the last vertex back to the first is implicit.
type Polygon []r2.Point

// NewPolygon builds a polygon from flat (x, y) pairs.
func NewPolygon(xy ...[2]float64) Polygon {
	poly := make(Polygon, 0, len(xy))
	for _, pt := range xy {
		poly = append(poly, r2.Point{X: pt[0], Y: pt[1]})
	}
	return poly
}

// NewRectangle returns the axis-aligned rectangle centered on the origin with the given extents.
func NewRectangle(length, width float64) Polygon {
	hl, hw := length/2, width/2
	return NewPolygon([2]float64{hl, hw}, [2]float64{-hl, hw}, [2]float64{-hl, -hw}, [2]float64{hl, -hw})
}

// Clone returns a deep copy of the polygon. A nil polygon clones to nil.
func (poly Polygon) Clone() Polygon {
	if poly == nil {
		return nil
	}
	out := make(Polygon, len(poly))
	copy(out, poly)
	return out
}

// Transform returns a new polygon with every vertex scaled, rotated by pose.Theta and translated to
// the pose position.
func (poly Polygon) Transform(pose Pose2D, scale float64) Polygon {
	out := make(Polygon, 0, len(poly))
	for _, v := range poly {
		out = append(out, pose.TransformPoint(v, scale))
	}
	return out
}

// Edges calls fn for every edge of the polygon including the closing edge. Polygons with fewer than
// two vertices have no edges.
func (poly Polygon) Edges(fn func(a, b r2.Point)) {
	if len(poly) < 2 {
		return
	}
	for i := 0; i < len(poly)-1; i++ {
		fn(poly[i], poly[i+1])
	}
	fn(poly[len(poly)-1], poly[0])
}

// InscribedRadius is the distance from the origin to the nearest edge of the polygon: the radius of
// the largest origin-centered circle fully inside a convex footprint. A single vertex yields its
// distance from the origin, and an empty polygon yields 0.
func (poly Polygon) InscribedRadius() float64 {
	switch len(poly) {
	case 0:
		return 0
	case 1:
		return poly[0].Norm()
	}
	minDist := math.Inf(1)
	poly.Edges(func(a, b r2.Point) {
		minDist = math.Min(minDist, ClosestPointSegmentPoint(a, b, r2.Point{}).Norm())
	})
	return minDist
}

// CircumscribedRadius is the distance from the origin to the furthest vertex of the polygon.
func (poly Polygon) CircumscribedRadius() float64 {
	maxDist := 0.
	for _, v := range poly {
		maxDist = math.Max(maxDist, v.Norm())
	}
	return maxDist
}

// ClosestPointSegmentPoint takes a line segment defined by two points and a third point, and returns
// the point on the segment closest to the third point.
func ClosestPointSegmentPoint(segA, segB, query r2.Point) r2.Point {
	ab := segB.Sub(segA)
	denom := ab.Dot(ab)
	if denom == 0 {
		return segA
	}
	t := query.Sub(segA).Dot(ab) / denom
	t = math.Max(0, math.Min(1, t))
	return segA.Add(ab.Mul(t))
}
