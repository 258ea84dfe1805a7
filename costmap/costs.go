// Package costmap provides the 2D cost grid consumed by trajectory scoring: a live, mutable Map and
// the immutable Costmap snapshots taken from it once per planning cycle.
package costmap

// Cell cost values. Costs between FreeSpace and InscribedInflatedObstacle are traversable with
// increasing penalty.
const (
	FreeSpace                 = 0.
	InscribedInflatedObstacle = 253.
	LethalObstacle            = 254.
	NoInformation             = 255.
)
