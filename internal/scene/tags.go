package scene

import (
	"marble-derby/internal/phys"
)

// Team identifies ball affiliation for the goal census.
type Team string

const (
	TeamNone Team = ""
	TeamA    Team = "A"
	TeamB    Team = "B"
)

// Role classifies what a body is in the scene.
type Role uint8

const (
	RoleBall Role = iota
	RolePeg
	RolePlatform
	RoleWall
)

// Tag is the domain metadata for one engine body. Tags live in a side
// table keyed by body handle rather than on the engine's body objects,
// so the recording layers never depend on the engine representation
// being open to extension.
type Tag struct {
	Role          Role
	Team          Team
	IsPrimary     bool
	PlatformIndex int    // sequence index of an indexed obstacle, -1 otherwise
	Fill          string // hex fill color, e.g. "#ff3e3e"
	Stroked       bool   // platforms get an outline pass in the compositor
}

// GoalZone is an axis-aligned region whose instantaneous ball census
// feeds the per-team counters.
type GoalZone struct {
	Team Team
	Min  phys.Vec
	Max  phys.Vec
}

// Contains reports whether a centroid lies inside the zone.
func (z GoalZone) Contains(p phys.Vec) bool {
	return p.X >= z.Min.X && p.X <= z.Max.X && p.Y >= z.Min.Y && p.Y <= z.Max.Y
}
