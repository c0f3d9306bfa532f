package sim

import (
	"sync"

	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/potential"
)

// SnapshotPool recycles per-step neighbour snapshots.
type SnapshotPool struct {
	pool sync.Pool
	size int
}

func NewSnapshotPool(size int) *SnapshotPool {
	return &SnapshotPool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]potential.Neighbor, size)
			},
		},
	}
}

func (p *SnapshotPool) Get() []potential.Neighbor {
	return p.pool.Get().([]potential.Neighbor)
}

func (p *SnapshotPool) Put(s []potential.Neighbor) {
	if len(s) == p.size {
		clear(s)
		p.pool.Put(s)
	}
}

// Snapshot captures the current state of cones in a pooled slice.
func (p *SnapshotPool) Snapshot(cones []*cone.GrowthCone) []potential.Neighbor {
	dst := p.Get()
	for i, gc := range cones {
		dst[i] = potential.NeighborOf(gc)
	}
	return dst
}
