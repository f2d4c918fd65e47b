// Package dedupe finds, compares and merges duplicate politician records.
package dedupe

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Sentinel errors, matched with eris.Is.
var (
	// ErrMissingSeed is returned when a seed record carries no name to match on.
	ErrMissingSeed = eris.New("dedupe: seed record has no name")
	// ErrRecordNotFound is returned when a merge or comparison addresses an
	// identifier that does not resolve to a record.
	ErrRecordNotFound = eris.New("dedupe: record not found")
	// ErrNeedsHumanDecision is returned when a merge is requested while
	// conflicts remain unresolved.
	ErrNeedsHumanDecision = eris.New("dedupe: conflicts need a human decision")
)

// Diagnostics collects human-readable problems across a call chain so that
// a caller can keep going and report everything at the end. A nil
// *Diagnostics discards entries.
type Diagnostics struct {
	mu      sync.Mutex
	entries []string
}

// NewDiagnostics returns an empty collector.
func NewDiagnostics() *Diagnostics {
	return &Diagnostics{}
}

// Addf records a formatted message.
func (d *Diagnostics) Addf(format string, args ...any) {
	if d == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	zap.L().Debug("dedupe: diagnostic", zap.String("message", msg))

	d.mu.Lock()
	d.entries = append(d.entries, msg)
	d.mu.Unlock()
}

// AddError records err with a short context prefix.
func (d *Diagnostics) AddError(op string, err error) {
	if err == nil {
		return
	}
	d.Addf("%s: %v", op, err)
}

// Messages returns a copy of the recorded messages in order.
func (d *Diagnostics) Messages() []string {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.entries...)
}

// Len is the number of recorded messages.
func (d *Diagnostics) Len() int {
	if d == nil {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}

func (d *Diagnostics) String() string {
	return strings.Join(d.Messages(), "; ")
}
