// Package scene constructs the deterministic initial world: static
// boundaries and obstacles plus the dynamic balls, all tagged through
// a side table. No randomness is consumed outside the single seeded
// stream, and the stream is consumed in a fixed order so reruns are
// identical.
package scene

import (
	"hash/fnv"
	"math"
	"math/rand"

	"marble-derby/internal/config"
	"marble-derby/internal/phys"
)

// Scene is the built world plus everything the trace generator needs
// to derive counters, camera focus and collision classification.
type Scene struct {
	Kind   config.SceneKind
	Width  int // canvas width in px
	Height int // canvas height in px

	World *phys.World
	Tags  map[*phys.Body]Tag

	Zones         []GoalZone
	GoalThreshold int

	// Tracked is the camera-followed primary ball (course scenes).
	// Nil for static-camera scenes.
	Tracked *phys.Body

	// FinishX decides the course outcome when the tracked ball passes it.
	FinishX float64

	// WorldWidth exceeds Width for camera-following scenes.
	WorldWidth float64
}

// Ball and obstacle materials. Restitution on pegs is what makes the
// plinko board lively; platforms stay comparatively dead so balls roll.
var (
	ballMat     = phys.Material{Density: 1.0, Friction: 0.3, Restitution: 0.3}
	pegMat      = phys.Material{Friction: 0.2, Restitution: 0.4}
	platformMat = phys.Material{Friction: 0.25, Restitution: 0.1}
	wallMat     = phys.Material{Friction: 0.4, Restitution: 0.1}
)

var teamPalettes = map[Team][]string{
	TeamA: {"#ff3e3e", "#ff6b6b", "#ff8787", "#e03131"},
	TeamB: {"#339af0", "#4dabf7", "#74c0fc", "#1971c2"},
}

const (
	pegFill      = "#adb5bd"
	wallFill     = "#343a40"
	platformFill = "#845ef7"
	primaryFill  = "#ffd43b"
	ballRadius   = 9.0
	pegRadius    = 8.0
)

// Build constructs the world for the configured scene kind.
// The same seed, dimensions and scene parameters always produce an
// identical world.
func Build(sc config.SceneConfig, vc config.VideoConfig) *Scene {
	rng := rand.New(rand.NewSource(seedToInt64(sc.Seed)))

	s := &Scene{
		Kind:          sc.Kind,
		Width:         vc.Width,
		Height:        vc.Height,
		World:         phys.NewWorld(),
		Tags:          make(map[*phys.Body]Tag),
		GoalThreshold: sc.GoalThreshold,
		WorldWidth:    float64(vc.Width),
	}

	switch sc.Kind {
	case config.SceneCourse:
		s.buildCourse(sc, rng)
	default:
		s.buildPlinko(sc, rng)
	}
	return s
}

// seedToInt64 maps the seed string onto the engine's seed space.
func seedToInt64(seed string) int64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	return int64(h.Sum64())
}

// buildPlinko creates the peg-pyramid board: floor, tall side walls, a
// center divider splitting two goal zones, a triangular pyramid of pegs
// and the team-tagged balls staggered above the visible area.
func (s *Scene) buildPlinko(sc config.SceneConfig, rng *rand.Rand) {
	w := float64(s.Width)
	h := float64(s.Height)

	// Walls extend above the tallest staggered spawn so no ball can
	// drift out of the board before falling into view.
	spawnExtent := 60.0 + float64(sc.BallCount)*26
	wallH := h + spawnExtent + h
	wallY := h - wallH/2
	s.addWall(phys.Vec{X: w / 2, Y: h - 10}, w, 20, 0)  // floor
	s.addWall(phys.Vec{X: 10, Y: wallY}, 20, wallH, 0)  // left wall
	s.addWall(phys.Vec{X: w - 10, Y: wallY}, 20, wallH, 0) // right wall

	// Center divider separates the two goal zones.
	dividerH := 170.0
	s.addWall(phys.Vec{X: w / 2, Y: h - 20 - dividerH/2}, 14, dividerH, 0)

	// Goal zones hug the floor on either side of the divider.
	zoneTop := h - 20 - dividerH
	s.Zones = []GoalZone{
		{Team: TeamA, Min: phys.Vec{X: 20, Y: zoneTop}, Max: phys.Vec{X: w/2 - 7, Y: h}},
		{Team: TeamB, Min: phys.Vec{X: w/2 + 7, Y: zoneTop}, Max: phys.Vec{X: w - 20, Y: h}},
	}

	// Triangular pyramid of pegs, widening downward. Each peg carries its
	// sequence index so collision events can identify which peg was struck.
	pegIndex := 0
	rowSpacing := 62.0
	colSpacing := 84.0
	topY := h * 0.22
	for row := 0; row < sc.PegRows; row++ {
		count := row + 3
		rowWidth := float64(count-1) * colSpacing
		startX := w/2 - rowWidth/2
		y := topY + float64(row)*rowSpacing
		for i := 0; i < count; i++ {
			peg := s.World.AddCircle(phys.Vec{X: startX + float64(i)*colSpacing, Y: y}, pegRadius, true, pegMat)
			s.Tags[peg] = Tag{Role: RolePeg, PlatformIndex: pegIndex, Fill: pegFill}
			pegIndex++
		}
	}

	// Balls spawn in a staggered column above the board so they fall into
	// view progressively. Teams alternate; shades come from the stream.
	for i := 0; i < sc.BallCount; i++ {
		team := TeamA
		if i%2 == 1 {
			team = TeamB
		}
		x := w*0.2 + rng.Float64()*w*0.6
		y := -40.0 - float64(i)*26 - rng.Float64()*10
		fill := teamPalettes[team][rng.Intn(len(teamPalettes[team]))]

		ball := s.World.AddCircle(phys.Vec{X: x, Y: y}, ballRadius, false, ballMat)
		s.Tags[ball] = Tag{Role: RoleBall, Team: team, PlatformIndex: -1, Fill: fill}
	}
}

// buildCourse creates the camera-following run: a chain of slanted
// platform segments along a descending sinusoidal base curve, a tracked
// primary ball and a small chase pack behind it.
func (s *Scene) buildCourse(sc config.SceneConfig, rng *rand.Rand) {
	w := float64(s.Width)
	h := float64(s.Height)
	s.WorldWidth = w * float64(sc.CourseScale)

	descent := h * 1.5
	amp := h * 0.12
	wavelength := s.WorldWidth / 6

	baseY := func(x float64) float64 {
		return h*0.5 + descent*(x/s.WorldWidth) + amp*math.Sin(2*math.Pi*x/wavelength)
	}

	segLen := s.WorldWidth / float64(sc.Segments)
	for i := 0; i < sc.Segments; i++ {
		x0 := float64(i) * segLen
		x1 := x0 + segLen
		p0 := phys.Vec{X: x0, Y: baseY(x0)}
		p1 := phys.Vec{X: x1, Y: baseY(x1)}

		mid := phys.Vec{X: (p0.X + p1.X) / 2, Y: (p0.Y + p1.Y) / 2}
		length := math.Hypot(p1.X-p0.X, p1.Y-p0.Y)
		angle := math.Atan2(p1.Y-p0.Y, p1.X-p0.X)

		seg := s.World.AddBox(mid, length+4, 14, angle, true, platformMat)
		s.Tags[seg] = Tag{Role: RolePlatform, PlatformIndex: i, Fill: platformFill, Stroked: true}
	}

	// End stop so nothing rolls off the world.
	endX := s.WorldWidth - 10
	s.addWall(phys.Vec{X: endX, Y: baseY(endX) - h/2}, 20, h*2, 0)
	s.FinishX = s.WorldWidth - segLen*0.25

	// Primary tracked ball starts above the first segment with a nudge
	// down the slope.
	start := phys.Vec{X: segLen * 0.2, Y: baseY(segLen*0.2) - 120}
	primary := s.World.AddCircle(start, 14, false, ballMat)
	s.Tags[primary] = Tag{Role: RoleBall, IsPrimary: true, PlatformIndex: -1, Fill: primaryFill}
	s.World.SetVelocity(primary, phys.Vec{X: 160, Y: 0})
	s.Tracked = primary

	// Chase pack staggered behind and above the primary.
	packSize := sc.BallCount - 1
	if packSize > 5 {
		packSize = 5
	}
	for i := 0; i < packSize; i++ {
		team := TeamA
		if i%2 == 1 {
			team = TeamB
		}
		x := start.X - 60 - float64(i)*40 - rng.Float64()*20
		if x < 20 {
			x = 20 + rng.Float64()*10
		}
		y := baseY(x) - 160 - rng.Float64()*60
		fill := teamPalettes[team][rng.Intn(len(teamPalettes[team]))]

		ball := s.World.AddCircle(phys.Vec{X: x, Y: y}, ballRadius, false, ballMat)
		s.Tags[ball] = Tag{Role: RoleBall, Team: team, PlatformIndex: -1, Fill: fill}
		s.World.SetVelocity(ball, phys.Vec{X: 120, Y: 0})
	}
}

func (s *Scene) addWall(center phys.Vec, w, h, angle float64) {
	wall := s.World.AddBox(center, w, h, angle, true, wallMat)
	s.Tags[wall] = Tag{Role: RoleWall, PlatformIndex: -1, Fill: wallFill}
}
