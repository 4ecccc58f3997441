// Package atom provides interned property keys ("atoms"), mirroring the
// engine-level atom table that backs every property lookup. Interning
// collapses repeated property names (and the well-known Symbols) down to a
// small integer, so that property access compares integers instead of
// strings once a name has been seen.
package atom

import (
	"sync"

	"github.com/dop251/goja"
)

// Atom is an interned identifier: either a string property name or a
// well-known JS Symbol. The zero Atom is invalid; use Predefined constants
// or Table.Intern to obtain one.
type Atom struct {
	id uint32
}

// Valid reports whether a has been interned.
func (a Atom) Valid() bool { return a.id != 0 }

// Table interns strings (and the handful of well-known Symbols) into dense
// Atom ids, one per engine. Concurrent use is safe; the expected access
// pattern is many reads (property lookups) against occasional writes
// (first sight of a new property name).
type Table struct {
	mu      sync.RWMutex
	byName  map[string]uint32
	bySym   map[*goja.Symbol]uint32
	entries []entry
}

type kind uint8

const (
	kindString kind = iota
	kindSymbol
)

type entry struct {
	kind kind
	name string
	sym  *goja.Symbol
}

// NewTable returns a Table pre-populated with the predefined atoms of
// predefined.go, so that looking one of them up never needs to take the
// write lock.
func NewTable() *Table {
	t := &Table{
		byName:  make(map[string]uint32, len(predefinedNames)+16),
		bySym:   make(map[*goja.Symbol]uint32, 8),
		entries: make([]entry, 1, len(predefinedNames)+16), // index 0 reserved, invalid
	}
	for _, name := range predefinedNames {
		t.internNameLocked(name)
	}
	return t
}

// Intern returns the Atom for name, allocating a new id on first sight.
func (t *Table) Intern(name string) Atom {
	t.mu.RLock()
	if id, ok := t.byName[name]; ok {
		t.mu.RUnlock()
		return Atom{id}
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	// Re-check: another goroutine may have interned name while we waited
	// for the write lock.
	if id, ok := t.byName[name]; ok {
		return Atom{id}
	}
	return t.internNameLocked(name)
}

func (t *Table) internNameLocked(name string) Atom {
	id := uint32(len(t.entries))
	t.entries = append(t.entries, entry{kind: kindString, name: name})
	t.byName[name] = id
	return Atom{id}
}

// InternSymbol returns the Atom for a *goja.Symbol, such as one of the
// well-known iterator protocol symbols. Symbols are interned by pointer
// identity, matching the well-known-symbol singleton pattern goja itself
// uses for Symbol.iterator and friends.
func (t *Table) InternSymbol(sym *goja.Symbol) Atom {
	t.mu.RLock()
	if id, ok := t.bySym[sym]; ok {
		t.mu.RUnlock()
		return Atom{id}
	}
	t.mu.RUnlock()

	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.bySym[sym]; ok {
		return Atom{id}
	}
	id := uint32(len(t.entries))
	t.entries = append(t.entries, entry{kind: kindSymbol, sym: sym})
	t.bySym[sym] = id
	return Atom{id}
}

// Name returns the string this Atom interns, or "" if it interns a Symbol.
func (t *Table) Name(a Atom) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a.id) >= len(t.entries) {
		return ""
	}
	e := t.entries[a.id]
	if e.kind != kindString {
		return ""
	}
	return e.name
}

// Symbol returns the *goja.Symbol this Atom interns, or nil if it interns
// a string.
func (t *Table) Symbol(a Atom) *goja.Symbol {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a.id) >= len(t.entries) {
		return nil
	}
	e := t.entries[a.id]
	if e.kind != kindSymbol {
		return nil
	}
	return e.sym
}

// ToValue converts a to whatever goja.Value a property key uses: a plain
// string for string atoms, or the *goja.Symbol itself for symbol atoms.
func (t *Table) ToValue(rt *goja.Runtime, a Atom) goja.Value {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if int(a.id) >= len(t.entries) {
		return goja.Undefined()
	}
	e := t.entries[a.id]
	if e.kind == kindSymbol {
		return e.sym
	}
	return rt.ToValue(e.name)
}
