package resolver

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// DebugLevel is the progress log's own verbosity knob, independent of
// ambient logrus logging. Log drops every entry whose level is above
// the Progress's MinLevel; callers may inspect the entries after a
// failed merge to see which datasets were attempted and in what order.
type DebugLevel int

const (
	LevelSilent DebugLevel = iota
	LevelSummary
	LevelVerbose
)

// Entry is one append-only progress record.
type Entry struct {
	Round   int
	Level   DebugLevel
	Message string
}

// Progress is the append-only diagnostic log for one Merge/Evaluate
// call, correlated by a per-call UUID. It is purely observational:
// nothing here feeds back into resolution decisions.
type Progress struct {
	CorrelationID uuid.UUID
	MinLevel      DebugLevel

	mu      sync.Mutex
	entries []Entry
	ended   bool
}

// NewProgress starts a new correlated log at the given minimum level.
func NewProgress(minLevel DebugLevel) *Progress {
	return &Progress{CorrelationID: uuid.New(), MinLevel: minLevel}
}

func (p *Progress) Log(round int, level DebugLevel, format string, args ...any) {
	if level > p.MinLevel {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, Entry{Round: round, Level: level, Message: fmt.Sprintf(format, args...)})
}

// End marks the log closed. A Progress that is read after a merge
// without End having been called indicates the driver exited via an
// unexpected path (panic recovery, early return). End is idempotent,
// so defer-based cleanup can call it unconditionally.
func (p *Progress) End() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ended = true
}

func (p *Progress) Ended() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ended
}

func (p *Progress) Entries() []Entry {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}
