// Package phys is the boundary to the rigid-body engine (Box2D).
// Everything outside this package works in screen pixels; the engine
// itself runs in meters. Nothing above this package imports box2d.
package phys

import (
	"math"

	"github.com/ByteArena/box2d"
)

// PixelsPerMeter converts between screen space and simulation space.
// Box2D is tuned for objects in the 0.1-10m range, so pixel-sized
// bodies must be scaled down before stepping.
const PixelsPerMeter = 50.0

// Gravity is the downward acceleration in m/s². +y is down (screen space).
const Gravity = 9.8

// GravityPx is gravity expressed in pixel units, for callers reasoning
// about fall speeds in screen space.
const GravityPx = Gravity * PixelsPerMeter

// Solver iteration counts per step (Box2D recommended defaults).
const (
	velocityIterations = 8
	positionIterations = 3
)

// circleRingVertices is the vertex count used to approximate a circle
// when snapshotting. Matches what the compositor expects for the
// centroid-to-vertex radius reconstruction.
const circleRingVertices = 16

// Vec is a 2D point or vector in pixel space.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Material bundles the fixture properties the scene builder cares about.
type Material struct {
	Density     float64
	Friction    float64
	Restitution float64
}

// Body is an opaque handle to one engine body plus the local shape
// description needed to reconstruct its world-space vertex ring.
type Body struct {
	b2     *box2d.B2Body
	static bool

	// Exactly one of these describes the shape.
	radius    float64 // circle radius in px, 0 for boxes
	halfW     float64 // box half extents in px
	halfH     float64
	boxOffset float64 // local angle baked into the fixture
}

// Static reports whether the body was created as a static obstacle.
func (b *Body) Static() bool { return b.static }

// Position returns the body centroid in pixel space.
func (b *Body) Position() Vec {
	p := b.b2.GetPosition()
	return Vec{X: p.X * PixelsPerMeter, Y: p.Y * PixelsPerMeter}
}

// Velocity returns the body's linear velocity in pixels per second.
func (b *Body) Velocity() Vec {
	v := b.b2.GetLinearVelocity()
	return Vec{X: v.X * PixelsPerMeter, Y: v.Y * PixelsPerMeter}
}

// Angle returns the body rotation in radians.
func (b *Body) Angle() float64 { return b.b2.GetAngle() }

// Radius returns the circle radius in pixels, 0 for box bodies.
func (b *Body) Radius() float64 { return b.radius }

// VertexRing returns the body outline in world pixel space.
// Circles come back as a regular 16-gon, so radius can be recovered
// as the centroid-to-vertex distance.
func (b *Body) VertexRing() []Vec {
	pos := b.Position()
	angle := b.b2.GetAngle()

	if b.radius > 0 {
		ring := make([]Vec, circleRingVertices)
		for i := range ring {
			a := angle + 2*math.Pi*float64(i)/circleRingVertices
			ring[i] = Vec{
				X: pos.X + b.radius*math.Cos(a),
				Y: pos.Y + b.radius*math.Sin(a),
			}
		}
		return ring
	}

	// Box corners in local space, rotated into world space.
	a := angle + b.boxOffset
	sin, cos := math.Sin(a), math.Cos(a)
	corners := [4][2]float64{
		{-b.halfW, -b.halfH},
		{b.halfW, -b.halfH},
		{b.halfW, b.halfH},
		{-b.halfW, b.halfH},
	}
	ring := make([]Vec, 4)
	for i, c := range corners {
		ring[i] = Vec{
			X: pos.X + c[0]*cos - c[1]*sin,
			Y: pos.Y + c[0]*sin + c[1]*cos,
		}
	}
	return ring
}

// World wraps one Box2D world. Bodies are kept in creation order so that
// trace generation observes them in a fixed, position-independent order.
type World struct {
	b2       box2d.B2World
	bodies   []*Body
	byHandle map[*box2d.B2Body]*Body
	contact  func(a, b *Body)
}

// NewWorld creates an empty world with standard downward gravity.
func NewWorld() *World {
	w := &World{
		b2:       box2d.MakeB2World(box2d.MakeB2Vec2(0, Gravity)),
		byHandle: make(map[*box2d.B2Body]*Body),
	}
	w.b2.SetContactListener(&contactBridge{world: w})
	return w
}

// AddCircle creates a circular body centered at the given pixel position.
func (w *World) AddCircle(center Vec, radiusPx float64, isStatic bool, mat Material) *Body {
	bd := box2d.MakeB2BodyDef()
	if !isStatic {
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bd.Position.Set(center.X/PixelsPerMeter, center.Y/PixelsPerMeter)

	b2body := w.b2.CreateBody(&bd)

	shape := box2d.MakeB2CircleShape()
	shape.M_radius = radiusPx / PixelsPerMeter

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = mat.Density
	fd.Friction = mat.Friction
	fd.Restitution = mat.Restitution
	b2body.CreateFixtureFromDef(&fd)

	body := &Body{b2: b2body, static: isStatic, radius: radiusPx}
	w.register(body)
	return body
}

// AddBox creates a rectangular body centered at the given pixel position,
// rotated by angle radians.
func (w *World) AddBox(center Vec, widthPx, heightPx, angle float64, isStatic bool, mat Material) *Body {
	bd := box2d.MakeB2BodyDef()
	if !isStatic {
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bd.Position.Set(center.X/PixelsPerMeter, center.Y/PixelsPerMeter)
	bd.Angle = angle

	b2body := w.b2.CreateBody(&bd)

	shape := box2d.MakeB2PolygonShape()
	shape.SetAsBox(widthPx/2/PixelsPerMeter, heightPx/2/PixelsPerMeter)

	fd := box2d.MakeB2FixtureDef()
	fd.Shape = &shape
	fd.Density = mat.Density
	fd.Friction = mat.Friction
	fd.Restitution = mat.Restitution
	b2body.CreateFixtureFromDef(&fd)

	body := &Body{b2: b2body, static: isStatic, halfW: widthPx / 2, halfH: heightPx / 2}
	w.register(body)
	return body
}

// SetVelocity sets the body's linear velocity in pixels per second.
func (w *World) SetVelocity(b *Body, v Vec) {
	b.b2.SetLinearVelocity(box2d.MakeB2Vec2(v.X/PixelsPerMeter, v.Y/PixelsPerMeter))
}

func (w *World) register(b *Body) {
	w.bodies = append(w.bodies, b)
	w.byHandle[b.b2] = b
}

// Bodies returns all bodies in creation order. The slice is owned by the
// world; callers must not mutate it.
func (w *World) Bodies() []*Body { return w.bodies }

// Advance steps the simulation by dtMillis of simulated time.
// Contact callbacks fire synchronously inside this call.
func (w *World) Advance(dtMillis float64) {
	w.b2.Step(dtMillis/1000.0, velocityIterations, positionIterations)
}

// OnContactBegin registers the callback invoked once for every
// newly-begun contact pair during Advance.
func (w *World) OnContactBegin(cb func(a, b *Body)) {
	w.contact = cb
}

// contactBridge adapts Box2D's listener interface to the plain
// pair callback the recorder consumes.
type contactBridge struct {
	world *World
}

func (c *contactBridge) BeginContact(contact box2d.B2ContactInterface) {
	if c.world.contact == nil {
		return
	}
	a := c.world.byHandle[contact.GetFixtureA().GetBody()]
	b := c.world.byHandle[contact.GetFixtureB().GetBody()]
	if a != nil && b != nil {
		c.world.contact(a, b)
	}
}

func (c *contactBridge) EndContact(contact box2d.B2ContactInterface) {}

func (c *contactBridge) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {}

func (c *contactBridge) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
}
