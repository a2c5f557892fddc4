// Package history keeps the recency log of viewed entities.
//
// Entries live in a slab of nodes linked by slot index, with an id->slot map,
// so both Add and Remove run in constant time. The tracker is not safe for
// concurrent use; the owning store serializes access to it.
package history

import "github.com/fastygo/tracker/domain"

const nilSlot = -1

type node struct {
	entity domain.Entity
	prev   int
	next   int
}

// Tracker is an ordered, deduplicated log ordered from least to most recently viewed.
type Tracker struct {
	nodes []node
	free  []int
	index map[int]int
	head  int
	tail  int
}

// New returns an empty tracker.
func New() *Tracker {
	return &Tracker{
		index: make(map[int]int),
		head:  nilSlot,
		tail:  nilSlot,
	}
}

// Add records a view of entity, moving an existing entry for the same id to
// the most recent position.
func (t *Tracker) Add(entity domain.Entity) {
	if entity == nil {
		return
	}
	id := entity.Identity()
	t.Remove(id)

	slot := t.alloc(entity)
	t.linkLast(slot)
	t.index[id] = slot
}

// Remove drops the entry for id. Unknown ids are ignored.
func (t *Tracker) Remove(id int) {
	slot, ok := t.index[id]
	if !ok {
		return
	}
	delete(t.index, id)
	t.unlink(slot)
	t.nodes[slot] = node{prev: nilSlot, next: nilSlot}
	t.free = append(t.free, slot)
}

// Len returns the number of entries.
func (t *Tracker) Len() int {
	return len(t.index)
}

// Entries returns a copy of the log, least recent first.
func (t *Tracker) Entries() []domain.Entity {
	out := make([]domain.Entity, 0, len(t.index))
	for slot := t.head; slot != nilSlot; slot = t.nodes[slot].next {
		out = append(out, t.nodes[slot].entity)
	}
	return out
}

// Clone returns an independent tracker with the same entries in the same order.
func (t *Tracker) Clone() *Tracker {
	c := New()
	for _, e := range t.Entries() {
		c.Add(e)
	}
	return c
}

func (t *Tracker) alloc(entity domain.Entity) int {
	n := node{entity: entity, prev: nilSlot, next: nilSlot}
	if last := len(t.free) - 1; last >= 0 {
		slot := t.free[last]
		t.free = t.free[:last]
		t.nodes[slot] = n
		return slot
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

func (t *Tracker) linkLast(slot int) {
	if t.tail == nilSlot {
		t.head = slot
	} else {
		t.nodes[slot].prev = t.tail
		t.nodes[t.tail].next = slot
	}
	t.tail = slot
}

func (t *Tracker) unlink(slot int) {
	prev, next := t.nodes[slot].prev, t.nodes[slot].next
	if prev == nilSlot {
		t.head = next
	} else {
		t.nodes[prev].next = next
	}
	if next == nilSlot {
		t.tail = prev
	} else {
		t.nodes[next].prev = prev
	}
}
