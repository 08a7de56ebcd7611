package dynamo

import (
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDGenerator allocates oscillator ids. Implementations must never return
// the same id twice for the lifetime of the generator.
type IDGenerator interface {
	Generate(prefix string) string
}

// SequenceGenerator yields "prefix:0", "prefix:1", ... from one counter
// shared by every prefix. Safe for concurrent use.
type SequenceGenerator struct {
	seq atomic.Int64
}

func NewSequenceGenerator() *SequenceGenerator {
	return &SequenceGenerator{}
}

// NewSequenceGeneratorAt starts the counter at start.
func NewSequenceGeneratorAt(start int64) *SequenceGenerator {
	g := &SequenceGenerator{}
	g.seq.Store(start)
	return g
}

func (g *SequenceGenerator) Generate(prefix string) string {
	n := g.seq.Add(1) - 1
	return prefix + ":" + strconv.FormatInt(n, 10)
}

// UUIDGenerator yields "prefix:<uuidv7>". Useful when ids from several
// engines end up in the same store.
type UUIDGenerator struct{}

func (UUIDGenerator) Generate(prefix string) string {
	return prefix + ":" + uuid.Must(uuid.NewV7()).String()
}

// FixedGenerator hands out predetermined ids in order, ignoring the prefix.
// It panics once the ids are exhausted.
type FixedGenerator struct {
	mu  sync.Mutex
	ids []string
	idx int
}

func NewFixedGenerator(ids ...string) *FixedGenerator {
	return &FixedGenerator{ids: ids}
}

func (g *FixedGenerator) Generate(string) string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("FixedGenerator: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
