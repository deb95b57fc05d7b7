package metrics

import (
	"sync/atomic"
	"time"
)

// SearchMetric summarizes the work of one move search.
type SearchMetric struct {
	Depth     int
	Duration  time.Duration
	Nodes     int // positions expanded
	Leaves    int // terminal or depth-cutoff positions evaluated
	CacheHits int
	Cutoffs   int // sibling lists abandoned by alpha-beta
	CacheSize int
}

type MoveMetric struct {
	Ply    int
	Player int
	SearchMetric
}

type GameMetric struct {
	ID        string
	Players   []string
	Winner    int // -1 when drawn or faulted
	Fault     string
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
	Moves     int
	Scores    []float64
}

// Collector counts search events. Implementations must be safe for
// concurrent use: an abandoned search may still be reporting.
type Collector interface {
	Start(depth int)
	AddNode()
	AddLeaf()
	AddCacheHit()
	AddCutoff()
	Complete(cacheSize int) SearchMetric
}

type collector struct {
	depth     atomic.Int64
	startTime atomic.Int64
	nodes     atomic.Int32
	leaves    atomic.Int32
	cacheHits atomic.Int32
	cutoffs   atomic.Int32
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start(depth int) {
	m.depth.Store(int64(depth))
	m.startTime.Store(time.Now().UnixNano())
	m.nodes.Store(0)
	m.leaves.Store(0)
	m.cacheHits.Store(0)
	m.cutoffs.Store(0)
}

func (m *collector) AddNode() {
	m.nodes.Add(1)
}

func (m *collector) AddLeaf() {
	m.leaves.Add(1)
}

func (m *collector) AddCacheHit() {
	m.cacheHits.Add(1)
}

func (m *collector) AddCutoff() {
	m.cutoffs.Add(1)
}

func (m *collector) Complete(cacheSize int) SearchMetric {
	return SearchMetric{
		Depth:     int(m.depth.Load()),
		Duration:  time.Since(time.Unix(0, m.startTime.Load())),
		Nodes:     int(m.nodes.Load()),
		Leaves:    int(m.leaves.Load()),
		CacheHits: int(m.cacheHits.Load()),
		Cutoffs:   int(m.cutoffs.Load()),
		CacheSize: cacheSize,
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start(depth int)                     {}
func (m *dummyCollector) AddNode()                            {}
func (m *dummyCollector) AddLeaf()                            {}
func (m *dummyCollector) AddCacheHit()                        {}
func (m *dummyCollector) AddCutoff()                          {}
func (m *dummyCollector) Complete(cacheSize int) SearchMetric { return SearchMetric{} }
