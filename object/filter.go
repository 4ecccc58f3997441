package object

import (
	"github.com/dop251/goja"

	"github.com/gojsembed/qjsgo/value"
)

// Filter controls which keys Keys/Values/Entries include, mirroring
// spec.md's "string keys, symbol keys, private keys, enumerable-only".
type Filter uint8

const (
	FilterStringKeys Filter = 1 << iota
	FilterSymbolKeys
	FilterPrivateKeys
	FilterEnumerableOnly
)

// FilterDefault matches plain JS for-in semantics: own, enumerable,
// string-keyed properties.
const FilterDefault = FilterStringKeys | FilterEnumerableOnly

func (f Filter) has(bit Filter) bool { return f&bit != 0 }

// Keys returns the own string-keyed property names of o selected by
// filter: none unless filter includes FilterStringKeys, and non-enumerable
// names too unless it includes FilterEnumerableOnly. Symbol keys are
// returned by Symbols. The names are read in the same
// acquire-once-then-release-remaining shape spec.md describes for
// iterators ("acquires an enum array from the engine once").
func (o Object) Keys(filter Filter) []string {
	if !filter.has(FilterStringKeys) {
		return nil
	}
	if filter.has(FilterEnumerableOnly) {
		return o.obj.Keys()
	}
	return o.obj.GetOwnPropertyNames()
}

// Symbols returns the own symbol-keyed properties of o, non-empty only
// when filter requests symbol keys.
func (o Object) Symbols(filter Filter) []*goja.Symbol {
	if !filter.has(FilterSymbolKeys) {
		return nil
	}
	return o.obj.Symbols()
}

// Values returns the values of o's own string-keyed properties selected
// by filter, in Keys(filter) order.
func (o Object) Values(filter Filter) []value.Value {
	keys := o.Keys(filter)
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = o.Get(k)
	}
	return out
}

// Entries returns (key, value) pairs for o's own properties selected by
// filter.
func (o Object) Entries(filter Filter) []Entry {
	keys := o.Keys(filter)
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Value: o.Get(k)}
	}
	return out
}

// Entry is a single (key, value) pair from Object.Entries.
type Entry struct {
	Key   string
	Value value.Value
}
