package enrich

import (
	"sync"

	"github.com/corvidlabs/quill/core"
	"github.com/google/uuid"
)

// Correlation attaches a per-goroutine correlation ID to every record,
// generating one with google/uuid the first time a goroutine logs and
// reusing it until Clear is called. This is the goroutine-keyed
// substitute for thread-local storage mtlog's correlation enricher uses.
type Correlation struct {
	mu  sync.Mutex
	ids map[string]string
}

// NewCorrelation builds an empty Correlation enricher.
func NewCorrelation() *Correlation {
	return &Correlation{ids: make(map[string]string)}
}

// Set assigns an explicit correlation ID for the current goroutine.
func (c *Correlation) Set(id string) {
	gid := currentGoroutineID()
	if gid == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids[gid] = id
}

// Clear removes the current goroutine's correlation ID.
func (c *Correlation) Clear() {
	gid := currentGoroutineID()
	if gid == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.ids, gid)
}

// Enrich implements core.Enricher, assigning a fresh UUID the first time
// a goroutine is seen and reusing it thereafter.
func (c *Correlation) Enrich(_ *core.Record, add func(name, value string)) {
	gid := currentGoroutineID()
	if gid == "" {
		add("correlationId", uuid.NewString())
		return
	}

	c.mu.Lock()
	id, ok := c.ids[gid]
	if !ok {
		id = uuid.NewString()
		c.ids[gid] = id
	}
	c.mu.Unlock()

	add("correlationId", id)
}
