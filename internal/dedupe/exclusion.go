package dedupe

// Exclusion is the set of politician identifiers a run has already
// handled. The run owns it and passes it to every Finder call.
type Exclusion struct {
	ids   map[string]struct{}
	order []string
}

// NewExclusion returns a set holding ids.
func NewExclusion(ids ...string) *Exclusion {
	e := &Exclusion{ids: make(map[string]struct{}, len(ids))}
	e.Add(ids...)
	return e
}

// Add inserts ids, ignoring blanks and repeats.
func (e *Exclusion) Add(ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := e.ids[id]; ok {
			continue
		}
		e.ids[id] = struct{}{}
		e.order = append(e.order, id)
	}
}

// Contains reports whether id is in the set.
func (e *Exclusion) Contains(id string) bool {
	if e == nil {
		return false
	}
	_, ok := e.ids[id]
	return ok
}

// IDs returns the identifiers in insertion order.
func (e *Exclusion) IDs() []string {
	if e == nil {
		return nil
	}
	return append([]string(nil), e.order...)
}

// Len is the number of identifiers in the set.
func (e *Exclusion) Len() int {
	if e == nil {
		return 0
	}
	return len(e.order)
}
