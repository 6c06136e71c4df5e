/*
Package taxon provides the dictionary that maps taxon names to small dense
integer ids.

A Dictionary is filled once, either from the TAXLABELS of a NEXUS file or
from the leaf labels of the first trees read, and then frozen. A frozen
Dictionary never changes again and may be shared by any number of trees and
goroutines without locking. Trees store only ids; names live here, once.
*/
package taxon

import (
	"github.com/joklawitter/algo-phylo/parseerr"
)

// ID identifies a taxon within one Dictionary. Ids are assigned densely from
// zero in insertion order.
type ID uint32

// Dictionary is an append-only, bidirectional mapping between taxon names
// and ids. Names are case sensitive.
//
// A Dictionary is not safe for concurrent use while it is being filled.
// After Freeze it is read-only and safe for concurrent use.
type Dictionary struct {
	names  []string
	ids    map[string]ID
	frozen bool
}

// NewDictionary returns an empty, unfrozen dictionary.
func NewDictionary() *Dictionary {
	return &Dictionary{ids: make(map[string]ID)}
}

// Insert adds a new name and returns its id. It fails with
// parseerr.DuplicateName if the name is already present and with
// parseerr.DictionaryFrozen after Freeze.
func (d *Dictionary) Insert(name string) (ID, error) {
	if d.frozen {
		return 0, &parseerr.Error{
			Kind: parseerr.DictionaryFrozen,
			Msg:  "Cannot add taxon '" + name + "' to a frozen dictionary.",
		}
	}
	if _, ok := d.ids[name]; ok {
		return 0, &parseerr.Error{
			Kind: parseerr.DuplicateName,
			Msg:  "Taxon '" + name + "' is declared more than once.",
		}
	}
	id := ID(len(d.names))
	d.names = append(d.names, name)
	d.ids[name] = id
	return id, nil
}

// ID returns the id of name, failing with parseerr.UnknownTaxonName if the
// name is not in the dictionary.
func (d *Dictionary) ID(name string) (ID, error) {
	id, ok := d.ids[name]
	if !ok {
		return 0, &parseerr.Error{
			Kind: parseerr.UnknownTaxonName,
			Msg:  "Taxon '" + name + "' is not in the dictionary.",
		}
	}
	return id, nil
}

// Lookup is like ID but reports a missing name with a boolean.
func (d *Dictionary) Lookup(name string) (ID, bool) {
	id, ok := d.ids[name]
	return id, ok
}

// Name returns the name of id. It panics if id is not valid in d.
func (d *Dictionary) Name(id ID) string {
	return d.names[id]
}

// Valid reports whether id belongs to d.
func (d *Dictionary) Valid(id ID) bool {
	return int(id) < len(d.names)
}

// Len returns the number of taxa.
func (d *Dictionary) Len() int {
	return len(d.names)
}

// Names returns all names in id order. The returned slice is a copy.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.names))
	copy(names, d.names)
	return names
}

// Freeze makes the dictionary immutable. Freezing twice is harmless.
func (d *Dictionary) Freeze() {
	d.frozen = true
}

// Frozen reports whether Freeze has been called.
func (d *Dictionary) Frozen() bool {
	return d.frozen
}
