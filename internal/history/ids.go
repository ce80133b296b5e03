package history

import (
	"sync"

	"github.com/google/uuid"
)

// IDGenerator produces entry IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-ordered UUIDv7 IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator returns predetermined IDs in order. For tests.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixedGenerator creates a generator that returns ids in order.
func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

// Generate returns the next predetermined ID. It panics once every ID has
// been handed out.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
