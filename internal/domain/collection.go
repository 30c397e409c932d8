package domain

import (
	"cmp"
	"slices"
	"strings"

	"github.com/MrSnakeDoc/stamp/internal/idgen"
)

// Snapshot is the durable subset of a collection: what the persistence
// gateway stores per resource. Loop state is never part of it.
type Snapshot struct {
	Entries map[string]Mark `json:"entries"`
	Order   []string        `json:"order"`
}

// Valid reports whether the snapshot carries both entries and order.
func (s *Snapshot) Valid() bool {
	return s != nil && s.Entries != nil && s.Order != nil
}

// Collection owns the marks of one resource and their display order.
//
// Invariant: order is always a permutation of the keys of entries.
// Collection does no I/O; callers persist after each mutation.
type Collection struct {
	entries map[string]Mark
	order   []string
	newID   idgen.Generator
}

// NewCollection returns an empty collection that names new marks with gen.
func NewCollection(gen idgen.Generator) *Collection {
	if gen == nil {
		gen = idgen.UUIDv7()
	}
	return &Collection{
		entries: make(map[string]Mark),
		order:   []string{},
		newID:   gen,
	}
}

// FromSnapshot hydrates a collection from a stored snapshot.
// A stored order that is not a permutation of the entries is repaired.
func FromSnapshot(snap *Snapshot, gen idgen.Generator) *Collection {
	c := NewCollection(gen)
	if !snap.Valid() {
		return c
	}
	for id, m := range snap.Entries {
		m.ID = id
		c.entries[id] = m
	}
	c.order = c.normalize(snap.Order)
	return c
}

// Add records a new mark at the given position and re-sorts the display
// order by seconds. Marks sharing the same second keep their relative order.
func (c *Collection) Add(position float64, label string) (Mark, error) {
	seconds, err := TruncateSeconds(position)
	if err != nil {
		return Mark{}, err
	}

	m := Mark{
		ID:          c.newID(),
		Seconds:     seconds,
		DisplayTime: FormatTime(seconds),
		Label:       label,
	}
	c.entries[m.ID] = m
	c.order = append(c.order, m.ID)
	c.sortByTime()

	return m, nil
}

// Edit replaces the label of a mark. It returns false when the mark is
// unknown or the label is unchanged, in which case nothing needs persisting.
func (c *Collection) Edit(id, label string) bool {
	m, ok := c.entries[id]
	if !ok || m.Label == label {
		return false
	}
	m.Label = label
	c.entries[id] = m
	return true
}

// Remove deletes a mark. Removing an unknown id is a no-op returning false.
func (c *Collection) Remove(id string) bool {
	if _, ok := c.entries[id]; !ok {
		return false
	}
	delete(c.entries, id)
	c.order = slices.DeleteFunc(c.order, func(x string) bool { return x == id })
	return true
}

// Reorder replaces the display order with ids as reported by a reordering
// surface. Unknown and duplicate ids are dropped; marks the report omitted
// are appended in their previous relative order.
func (c *Collection) Reorder(ids []string) {
	c.order = c.normalize(ids)
}

// Get returns the mark with the given id.
func (c *Collection) Get(id string) (Mark, bool) {
	m, ok := c.entries[id]
	return m, ok
}

// Len returns the number of marks.
func (c *Collection) Len() int {
	return len(c.entries)
}

// Order returns a copy of the display order.
func (c *Collection) Order() []string {
	return slices.Clone(c.order)
}

// Marks returns the marks in display order.
func (c *Collection) Marks() []Mark {
	marks := make([]Mark, 0, len(c.order))
	for _, id := range c.order {
		marks = append(marks, c.entries[id])
	}
	return marks
}

// Snapshot returns a deep copy of the durable state.
func (c *Collection) Snapshot() Snapshot {
	entries := make(map[string]Mark, len(c.entries))
	for id, m := range c.entries {
		entries[id] = m
	}
	return Snapshot{
		Entries: entries,
		Order:   slices.Clone(c.order),
	}
}

func (c *Collection) sortByTime() {
	slices.SortStableFunc(c.order, func(a, b string) int {
		return cmp.Compare(c.entries[a].Seconds, c.entries[b].Seconds)
	})
}

// normalize turns ids into a permutation of the entry keys.
func (c *Collection) normalize(ids []string) []string {
	order := make([]string, 0, len(c.entries))
	seen := make(map[string]bool, len(c.entries))

	for _, id := range ids {
		if _, ok := c.entries[id]; !ok || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}

	// Missing keys: keep the previous relative order first, then anything
	// that was never ordered (hydration of a damaged snapshot) by time.
	for _, id := range c.order {
		if _, ok := c.entries[id]; ok && !seen[id] {
			seen[id] = true
			order = append(order, id)
		}
	}
	var rest []string
	for id := range c.entries {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.SortFunc(rest, func(a, b string) int {
		return cmp.Or(
			cmp.Compare(c.entries[a].Seconds, c.entries[b].Seconds),
			strings.Compare(a, b),
		)
	})

	return append(order, rest...)
}
