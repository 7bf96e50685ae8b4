package order

import (
	"fmt"
	"sync"
	"time"
)

// idGenerator issues timestamp-derived order identifiers of the form
// DD20060102150405. Identifiers within the same second get a sequence
// suffix so they stay unique within the process.
type idGenerator struct {
	mu   sync.Mutex
	last string
	seq  int
}

func (g *idGenerator) next(now time.Time) string {
	stamp := now.Format("20060102150405")

	g.mu.Lock()
	defer g.mu.Unlock()

	if stamp == g.last {
		g.seq++
		return fmt.Sprintf("DD%s-%d", stamp, g.seq)
	}

	g.last = stamp
	g.seq = 0
	return "DD" + stamp
}
