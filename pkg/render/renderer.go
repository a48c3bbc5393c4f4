// pkg/render/renderer.go
package render

import (
	"context"

	"github.com/opd-ai/go-flightsim/pkg/logging"
)

// Renderer consumes one frame of draw instances.
type Renderer interface {
	Clear()
	Submit(mesh MeshID, inst Instance)
	Present()
}

// NullRenderer is a Renderer that only logs.
type NullRenderer struct {
	logger    *logging.Logger
	submitted int
	frames    int
}

// NewNullRenderer creates a new NullRenderer with structured logging.
func NewNullRenderer(logger *logging.Logger) *NullRenderer {
	if logger == nil {
		logger = logging.NewLogger()
	}
	return &NullRenderer{logger: logger}
}

// Clear implements Renderer.
func (d *NullRenderer) Clear() {
	d.submitted = 0
	d.logger.Debug(context.Background(), "Clear called")
}

// Submit implements Renderer.
func (d *NullRenderer) Submit(mesh MeshID, inst Instance) {
	d.submitted++
	pos := inst.Position()
	d.logger.Debug(context.Background(), "Submit called",
		"mesh", string(mesh),
		"x", pos.X(),
		"y", pos.Y(),
		"z", pos.Z(),
	)
}

// Present implements Renderer.
func (d *NullRenderer) Present() {
	d.frames++
	d.logger.Debug(context.Background(), "Present called",
		"instances", d.submitted,
		"frame", d.frames,
	)
}

// Submitted returns the number of instances since the last Clear.
func (d *NullRenderer) Submitted() int {
	return d.submitted
}

// Frames returns the number of presented frames.
func (d *NullRenderer) Frames() int {
	return d.frames
}
