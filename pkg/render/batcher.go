// Package render turns simulated bodies into per-mesh draw instances and
// hands them to a Renderer. GPU upload and mesh loading live behind the
// Renderer interface.
package render

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// MaxInstances is the per-mesh instance cap for a single frame.
const MaxInstances = 10000

// MeshID names a mesh known to the renderer.
type MeshID string

// Instance is one draw of a mesh. Model is column-major: scale, then
// rotation, then translation.
type Instance struct {
	Model mgl64.Mat4
	Color mgl64.Vec4
}

// Position returns the translation column of the model matrix.
func (i Instance) Position() mgl64.Vec3 {
	return mgl64.Vec3{i.Model[12], i.Model[13], i.Model[14]}
}

// Batcher groups a frame's instances by mesh.
type Batcher struct {
	limit   int
	batches map[MeshID][]Instance
	dropped int
}

// NewBatcher creates a batcher holding up to limit instances per mesh.
// A limit <= 0 uses MaxInstances.
func NewBatcher(limit int) *Batcher {
	if limit <= 0 {
		limit = MaxInstances
	}
	return &Batcher{
		limit:   limit,
		batches: make(map[MeshID][]Instance),
	}
}

// Add queues an instance. It returns false and counts the instance as
// dropped when the mesh batch is full.
func (b *Batcher) Add(mesh MeshID, inst Instance) bool {
	batch := b.batches[mesh]
	if len(batch) >= b.limit {
		b.dropped++
		return false
	}
	b.batches[mesh] = append(batch, inst)
	return true
}

// Meshes returns the meshes with at least one instance, sorted by id.
func (b *Batcher) Meshes() []MeshID {
	meshes := make([]MeshID, 0, len(b.batches))
	for id, batch := range b.batches {
		if len(batch) > 0 {
			meshes = append(meshes, id)
		}
	}
	sort.Slice(meshes, func(i, j int) bool { return meshes[i] < meshes[j] })
	return meshes
}

// Instances returns the queued instances of mesh.
func (b *Batcher) Instances(mesh MeshID) []Instance {
	return b.batches[mesh]
}

// Len returns the total number of queued instances.
func (b *Batcher) Len() int {
	n := 0
	for _, batch := range b.batches {
		n += len(batch)
	}
	return n
}

// Dropped returns how many instances were rejected since the last Reset.
func (b *Batcher) Dropped() int {
	return b.dropped
}

// Reset empties every batch, keeping the allocated slices.
func (b *Batcher) Reset() {
	for id, batch := range b.batches {
		b.batches[id] = batch[:0]
	}
	b.dropped = 0
}

// Flush draws one frame: Clear, every instance in mesh order, Present.
func (b *Batcher) Flush(r Renderer) {
	r.Clear()
	for _, mesh := range b.Meshes() {
		for _, inst := range b.batches[mesh] {
			r.Submit(mesh, inst)
		}
	}
	r.Present()
}
