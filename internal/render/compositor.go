// Package render rasterizes trace snapshots into output frames. It
// holds only read references to the trace; the HUD is derived purely
// from snapshot aggregates so visual and logical state cannot diverge.
package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"marble-derby/internal/phys"
	"marble-derby/internal/scene"
	"marble-derby/internal/sim"
)

// Compositor turns one snapshot into one raster frame. Stateless
// between calls apart from cached fonts, so identical snapshots
// always produce identical pixels.
type Compositor struct {
	width  int
	height int

	// Static scene overlay data. Configuration, not geometry: the HUD
	// never consults body positions, only snapshot aggregates.
	zones     []scene.GoalZone
	threshold int

	fonts *fontSet
}

// New creates a compositor for the given canvas and scene overlays.
func New(width, height int, zones []scene.GoalZone, threshold int) *Compositor {
	return &Compositor{
		width:     width,
		height:    height,
		zones:     zones,
		threshold: threshold,
		fonts:     loadFonts(),
	}
}

// Camera placement: the tracked body sits at the horizontal center and
// 40% down the viewport.
const cameraVerticalAnchor = 0.4

// Render rasterizes one snapshot into a fully rendered frame of
// exactly width x height pixels.
func (c *Compositor) Render(snap sim.Snapshot) image.Image {
	dc := gg.NewContext(c.width, c.height)

	c.drawBackground(dc)

	// Camera translation for following scenes. The visible world
	// rectangle is used for the cheap bounding-box cull below.
	var offX, offY float64
	if snap.HasCamera {
		offX = float64(c.width)/2 - snap.CameraFocus.X
		offY = float64(c.height)*cameraVerticalAnchor - snap.CameraFocus.Y
	}
	viewMinX := -offX
	viewMinY := -offY
	viewMaxX := viewMinX + float64(c.width)
	viewMaxY := viewMinY + float64(c.height)

	dc.Push()
	dc.Translate(offX, offY)

	for _, b := range snap.Bodies {
		if culled(b.Vertices, viewMinX, viewMinY, viewMaxX, viewMaxY) {
			continue
		}
		if b.Role == scene.RoleBall && b.IsPrimary {
			c.drawTrackedBall(dc, b)
			continue
		}
		c.drawBody(dc, b)
	}

	dc.Pop()

	c.drawHUD(dc, snap)

	return dc.Image()
}

// culled reports whether the body's bounding box lies entirely outside
// the visible viewport (still above the frame, or off past the camera).
func culled(verts []phys.Vec, minX, minY, maxX, maxY float64) bool {
	if len(verts) == 0 {
		return true
	}
	bMinX, bMinY := verts[0].X, verts[0].Y
	bMaxX, bMaxY := bMinX, bMinY
	for _, v := range verts[1:] {
		bMinX = math.Min(bMinX, v.X)
		bMinY = math.Min(bMinY, v.Y)
		bMaxX = math.Max(bMaxX, v.X)
		bMaxY = math.Max(bMaxY, v.Y)
	}
	return bMaxX < minX || bMinX > maxX || bMaxY < minY || bMinY > maxY
}

func (c *Compositor) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{16, 18, 28, 255})
	dc.DrawRectangle(0, 0, float64(c.width), float64(c.height))
	dc.Fill()

	// Sparse fixed starfield, same trick as a hashed pattern: cheap
	// and identical every frame.
	dc.SetColor(color.RGBA{255, 255, 255, 40})
	for i := 0; i < 40; i++ {
		x := float64((i * 67) % c.width)
		y := float64((i * 47) % c.height)
		dc.DrawCircle(x, y, 1)
		dc.Fill()
	}
}

func (c *Compositor) drawBody(dc *gg.Context, b sim.BodySnapshot) {
	if len(b.Vertices) < 3 {
		return
	}
	dc.MoveTo(b.Vertices[0].X, b.Vertices[0].Y)
	for _, v := range b.Vertices[1:] {
		dc.LineTo(v.X, v.Y)
	}
	dc.ClosePath()

	fill := parseHexColor(b.Fill)
	dc.SetColor(fill)
	if b.Stroked {
		dc.FillPreserve()
		dc.SetColor(darken(fill, 0.55))
		dc.SetLineWidth(3)
		dc.Stroke()
		return
	}
	dc.Fill()
}

// drawTrackedBall gives the camera-followed ball its distinguishing
// radial shading and highlight. Radius is the centroid-to-vertex
// distance; valid because the ball ring is a regular polygon.
func (c *Compositor) drawTrackedBall(dc *gg.Context, b sim.BodySnapshot) {
	cx, cy := centroid(b.Vertices)
	r := math.Hypot(b.Vertices[0].X-cx, b.Vertices[0].Y-cy)

	base := parseHexColor(b.Fill)
	grad := gg.NewRadialGradient(cx-r*0.35, cy-r*0.35, r*0.1, cx, cy, r)
	grad.AddColorStop(0, lighten(base, 0.6))
	grad.AddColorStop(1, darken(base, 0.7))

	dc.SetFillStyle(grad)
	dc.DrawCircle(cx, cy, r)
	dc.Fill()

	// Specular highlight.
	dc.SetColor(color.RGBA{255, 255, 255, 160})
	dc.DrawCircle(cx-r*0.35, cy-r*0.4, r*0.22)
	dc.Fill()

	dc.SetColor(color.RGBA{0, 0, 0, 90})
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, r)
	dc.Stroke()
}

// drawHUD overlays goal bands, score counters and the win banner,
// using only the snapshot's precomputed aggregates.
func (c *Compositor) drawHUD(dc *gg.Context, snap sim.Snapshot) {
	// Goal-zone bands (static-camera scenes only; zone rects are in
	// screen space there).
	if !snap.HasCamera {
		for _, z := range c.zones {
			band := zoneColor(z.Team)
			band.A = 50
			dc.SetColor(band)
			dc.DrawRectangle(z.Min.X, z.Min.Y, z.Max.X-z.Min.X, z.Max.Y-z.Min.Y)
			dc.Fill()
		}
	}

	if len(c.zones) > 0 {
		c.drawScorePanel(dc, snap)
	}

	if snap.Outcome != "" {
		c.drawBanner(dc, snap)
	}
}

func (c *Compositor) drawScorePanel(dc *gg.Context, snap sim.Snapshot) {
	panelW, panelH := 240.0, 64.0
	x := float64(c.width)/2 - panelW/2
	y := 18.0

	dc.SetColor(color.RGBA{0, 0, 0, 150})
	dc.DrawRoundedRectangle(x, y, panelW, panelH, 10)
	dc.Fill()

	dc.SetFontFace(c.fonts.medium)
	dc.SetColor(zoneColor(scene.TeamA))
	dc.DrawStringAnchored(fmt.Sprintf("A  %d", snap.CensusA), x+panelW*0.25, y+panelH/2, 0.5, 0.35)
	dc.SetColor(zoneColor(scene.TeamB))
	dc.DrawStringAnchored(fmt.Sprintf("%d  B", snap.CensusB), x+panelW*0.75, y+panelH/2, 0.5, 0.35)

	dc.SetFontFace(c.fonts.small)
	dc.SetColor(color.RGBA{255, 255, 255, 170})
	dc.DrawStringAnchored(fmt.Sprintf("first to %d", c.threshold), x+panelW/2, y+panelH-12, 0.5, 0.35)
}

func (c *Compositor) drawBanner(dc *gg.Context, snap sim.Snapshot) {
	text := "FINISH!"
	banner := color.RGBA{255, 212, 59, 255}
	switch snap.Outcome {
	case string(scene.TeamA):
		text = "TEAM A WINS!"
		banner = zoneColor(scene.TeamA)
	case string(scene.TeamB):
		text = "TEAM B WINS!"
		banner = zoneColor(scene.TeamB)
	}

	w := float64(c.width)
	h := float64(c.height)

	dc.SetColor(color.RGBA{0, 0, 0, 180})
	dc.DrawRectangle(0, h*0.38, w, h*0.16)
	dc.Fill()

	dc.SetFontFace(c.fonts.large)
	dc.SetColor(banner)
	dc.DrawStringAnchored(text, w/2, h*0.46, 0.5, 0.35)
}

func centroid(verts []phys.Vec) (float64, float64) {
	var sx, sy float64
	for _, v := range verts {
		sx += v.X
		sy += v.Y
	}
	n := float64(len(verts))
	return sx / n, sy / n
}

func zoneColor(team scene.Team) color.RGBA {
	if team == scene.TeamB {
		return color.RGBA{51, 154, 240, 255}
	}
	return color.RGBA{255, 62, 62, 255}
}

func parseHexColor(hex string) color.RGBA {
	if len(hex) != 7 || hex[0] != '#' {
		return color.RGBA{255, 255, 255, 255}
	}

	var r, g, b uint8
	fmt.Sscanf(hex[1:], "%02x%02x%02x", &r, &g, &b)
	return color.RGBA{r, g, b, 255}
}

func darken(c color.RGBA, f float64) color.RGBA {
	return color.RGBA{uint8(float64(c.R) * f), uint8(float64(c.G) * f), uint8(float64(c.B) * f), c.A}
}

func lighten(c color.RGBA, f float64) color.RGBA {
	l := func(v uint8) uint8 {
		return uint8(math.Min(255, float64(v)+(255-float64(v))*f))
	}
	return color.RGBA{l(c.R), l(c.G), l(c.B), c.A}
}
