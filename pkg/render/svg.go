package render

import (
	"bytes"
	"fmt"

	"github.com/malarbase/mermaid-floorplan-sub010/pkg/resolve"
)

const roomInteractionCSS = `
    .room { transition: stroke-width 0.2s ease; }
    .room:hover { stroke-width: 3; }
    .room-label { font-family: sans-serif; pointer-events: none; }`

// SVGOption configures floor plan rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	scale   float64 // pixels per meter
	margin  float64 // meters of padding around each floor
	grid    bool
	overlap map[string]bool // "floor/room" keys flagged by overlap warnings
}

// WithScale sets the pixels-per-meter scale factor (default 20).
func WithScale(s float64) SVGOption { return func(r *svgRenderer) { r.scale = s } }

// WithGrid draws 1-meter grid lines behind each floor.
func WithGrid() SVGOption { return func(r *svgRenderer) { r.grid = true } }

// WithMargin sets the padding around each floor in meters (default 1).
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// RenderSVG renders every floor of the layout as a single SVG document.
// Floors are stacked vertically in document order, each with its own
// coordinate frame. Rooms flagged by overlap warnings are stroked in the
// warning color.
func RenderSVG(l *resolve.Layout, opts ...SVGOption) []byte {
	r := svgRenderer{scale: 20, margin: 1}
	for _, opt := range opts {
		opt(&r)
	}
	r.overlap = overlapSet(l)

	frames := make([]floorFrame, len(l.Floors))
	width, height := 0.0, 0.0
	for i, f := range l.Floors {
		frames[i] = frameFor(f, r.margin)
		if w := frames[i].width(r.scale); w > width {
			width = w
		}
		height += frames[i].height(r.scale) + floorTitleHeight
	}
	if width == 0 {
		width = 100
	}
	if height == 0 {
		height = 40
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", roomInteractionCSS)

	offsetY := 0.0
	for i, f := range l.Floors {
		r.renderFloor(&buf, f, frames[i], offsetY)
		offsetY += frames[i].height(r.scale) + floorTitleHeight
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

const floorTitleHeight = 24.0

// floorFrame is the bounding box of a floor in meters, including margin.
type floorFrame struct {
	minX, minZ, maxX, maxZ float64
}

func (f floorFrame) width(scale float64) float64  { return (f.maxX - f.minX) * scale }
func (f floorFrame) height(scale float64) float64 { return (f.maxZ - f.minZ) * scale }

func frameFor(f resolve.FloorLayout, margin float64) floorFrame {
	if len(f.Rooms) == 0 {
		return floorFrame{0, 0, 2 * margin, 2 * margin}
	}
	frame := floorFrame{
		minX: f.Rooms[0].X, minZ: f.Rooms[0].Z,
		maxX: f.Rooms[0].X + f.Rooms[0].Width,
		maxZ: f.Rooms[0].Z + f.Rooms[0].Depth,
	}
	for _, room := range f.Rooms[1:] {
		frame.minX = min(frame.minX, room.X)
		frame.minZ = min(frame.minZ, room.Z)
		frame.maxX = max(frame.maxX, room.X+room.Width)
		frame.maxZ = max(frame.maxZ, room.Z+room.Depth)
	}
	frame.minX -= margin
	frame.minZ -= margin
	frame.maxX += margin
	frame.maxZ += margin
	return frame
}

func (r *svgRenderer) renderFloor(buf *bytes.Buffer, f resolve.FloorLayout, frame floorFrame, offsetY float64) {
	fmt.Fprintf(buf, "  <g id=\"floor-%s\" transform=\"translate(0,%.1f)\">\n", f.ID, offsetY)
	fmt.Fprintf(buf, "    <text x=\"4\" y=\"16\" class=\"room-label\" font-size=\"14\" font-weight=\"bold\">%s</text>\n",
		escapeText(f.ID))

	// Maps floor meters to pixels inside this floor's group.
	px := func(x float64) float64 { return (x - frame.minX) * r.scale }
	pz := func(z float64) float64 { return (z-frame.minZ)*r.scale + floorTitleHeight }

	if r.grid {
		r.renderGrid(buf, frame, px, pz)
	}

	for _, room := range f.Rooms {
		stroke := "#4a4a4a"
		if r.overlap[string(f.ID)+"/"+string(room.ID)] {
			stroke = "#d97706"
		}
		fmt.Fprintf(buf, "    <rect id=\"room-%s-%s\" class=\"room\" x=\"%.1f\" y=\"%.1f\" width=\"%.1f\" height=\"%.1f\" fill=\"#f5f0e8\" fill-opacity=\"0.85\" stroke=\"%s\" stroke-width=\"1.5\"/>\n",
			f.ID, room.ID, px(room.X), pz(room.Z), room.Width*r.scale, room.Depth*r.scale, stroke)
	}

	// Labels after all rects so overlapping rooms never cover text.
	for _, room := range f.Rooms {
		cx := px(room.X) + room.Width*r.scale/2
		cy := pz(room.Z) + room.Depth*r.scale/2
		fmt.Fprintf(buf, "    <text x=\"%.1f\" y=\"%.1f\" class=\"room-label\" font-size=\"11\" text-anchor=\"middle\">%s</text>\n",
			cx, cy-2, escapeText(string(room.ID)))
		fmt.Fprintf(buf, "    <text x=\"%.1f\" y=\"%.1f\" class=\"room-label\" font-size=\"9\" text-anchor=\"middle\" fill=\"#6b6b6b\">%.4gx%.4g</text>\n",
			cx, cy+10, room.Width, room.Depth)
	}

	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderGrid(buf *bytes.Buffer, frame floorFrame, px, pz func(float64) float64) {
	buf.WriteString("    <g stroke=\"#d8d8d8\" stroke-width=\"0.5\">\n")
	for x := float64(int(frame.minX)); x <= frame.maxX; x++ {
		if x < frame.minX {
			continue
		}
		fmt.Fprintf(buf, "      <line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
			px(x), pz(frame.minZ), px(x), pz(frame.maxZ))
	}
	for z := float64(int(frame.minZ)); z <= frame.maxZ; z++ {
		if z < frame.minZ {
			continue
		}
		fmt.Fprintf(buf, "      <line x1=\"%.1f\" y1=\"%.1f\" x2=\"%.1f\" y2=\"%.1f\"/>\n",
			px(frame.minX), pz(z), px(frame.maxX), pz(z))
	}
	buf.WriteString("    </g>\n")
}

// overlapSet collects "floor/room" keys named by overlap warnings.
func overlapSet(l *resolve.Layout) map[string]bool {
	set := make(map[string]bool)
	for _, d := range l.Diagnostics {
		if d.Code != resolve.CodeOverlap {
			continue
		}
		for _, id := range d.Rooms {
			set[d.Floor+"/"+string(id)] = true
		}
	}
	return set
}

func escapeText(s string) string {
	var buf bytes.Buffer
	for _, r := range s {
		switch r {
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '&':
			buf.WriteString("&amp;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
