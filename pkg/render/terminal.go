package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// TerminalRenderer provides a simple ASCII-based top-down rendering for
// terminals. World X maps to columns and world Z to rows; Y is flattened.
type TerminalRenderer struct {
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos mgl64.Vec2
	glyphs    map[MeshID]rune
	out       io.Writer
}

// DefaultGlyph marks meshes without a registered glyph.
const DefaultGlyph = '*'

// NewTerminalRenderer creates a new terminal renderer with the specified
// dimensions. scale is world units per character cell.
func NewTerminalRenderer(width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}

	r := &TerminalRenderer{
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
		glyphs: make(map[MeshID]rune),
		out:    os.Stdout,
	}
	r.Clear()
	return r
}

// SetOutput redirects Present.
func (r *TerminalRenderer) SetOutput(w io.Writer) {
	r.out = w
}

// SetGlyph sets the character a mesh is drawn with.
func (r *TerminalRenderer) SetGlyph(mesh MeshID, glyph rune) {
	r.glyphs[mesh] = glyph
}

// SetCenter sets the world (x, z) shown at the middle of the view.
func (r *TerminalRenderer) SetCenter(pos mgl64.Vec2) {
	r.centerPos = pos
}

// SetScale sets world units per cell. Non-positive values are ignored.
func (r *TerminalRenderer) SetScale(scale float64) {
	if scale > 0 {
		r.scale = scale
	}
}

// Scale returns world units per cell.
func (r *TerminalRenderer) Scale() float64 {
	return r.scale
}

// Size returns the view size in cells.
func (r *TerminalRenderer) Size() (int, int) {
	return r.width, r.height
}

// worldToScreen converts world coordinates to screen coordinates
func (r *TerminalRenderer) worldToScreen(pos mgl64.Vec3) (int, int) {
	screenX := int((pos.X()-r.centerPos.X())/r.scale + float64(r.width)/2)
	screenY := int((pos.Z()-r.centerPos.Y())/r.scale + float64(r.height)/2)
	return screenX, screenY
}

// Clear implements Renderer.
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// Submit implements Renderer.
func (r *TerminalRenderer) Submit(mesh MeshID, inst Instance) {
	x, y := r.worldToScreen(inst.Position())
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return
	}
	glyph, ok := r.glyphs[mesh]
	if !ok {
		glyph = DefaultGlyph
	}
	r.buffer[y][x] = glyph
}

// Rows returns the current buffer, one string per row.
func (r *TerminalRenderer) Rows() []string {
	rows := make([]string, len(r.buffer))
	for y := range r.buffer {
		rows[y] = string(r.buffer[y])
	}
	return rows
}

// Cell returns the glyph at (x, y), or a space outside the view.
func (r *TerminalRenderer) Cell(x, y int) rune {
	if x < 0 || x >= r.width || y < 0 || y >= r.height {
		return ' '
	}
	return r.buffer[y][x]
}

// Present implements Renderer by printing the framed buffer.
func (r *TerminalRenderer) Present() {
	var b strings.Builder
	// Clear terminal
	b.WriteString("\033[H\033[2J")
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	b.WriteString(border)
	for _, row := range r.Rows() {
		b.WriteString("|" + row + "|\n")
	}
	b.WriteString(border)
	fmt.Fprint(r.out, b.String())
}
