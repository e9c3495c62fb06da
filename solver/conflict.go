package solver

import "math/bits"

// VarId is a dense integer handle for any decision variable the search can
// assign: a QualifiedPackageName, a FlagVar, or a StanzaVar. The Driver
// allocates VarIds from a VarTable as goals are first encountered, so they
// are stable only within one solve.
type VarId uint32

// VarTable interns decision variables to VarIds and back, so ConflictSet
// can work with a compact bitset instead of carrying variable identities
// directly. There is no third-party bitset library anywhere in the
// example corpus (see DESIGN.md); ConflictSet is therefore one of the few
// parts of this package built directly on the standard library, using
// math/bits for population count and bit scanning.
type VarTable struct {
	ids   map[interface{}]VarId
	names []string
}

// NewVarTable returns an empty VarTable.
func NewVarTable() *VarTable {
	return &VarTable{ids: make(map[interface{}]VarId)}
}

func (t *VarTable) intern(key interface{}, name string) VarId {
	if id, ok := t.ids[key]; ok {
		return id
	}
	id := VarId(len(t.names))
	t.ids[key] = id
	t.names = append(t.names, name)
	return id
}

// PackageVar interns the variable representing "which PackageSource does
// this QualifiedPackageName resolve to".
func (t *VarTable) PackageVar(name QualifiedPackageName) VarId {
	return t.intern(name, name.String())
}

// FlagVarId interns a flag-decision variable.
func (t *VarTable) FlagVarId(fv FlagVar) VarId {
	return t.intern(fv, fv.String())
}

// StanzaVarId interns a stanza-decision variable.
func (t *VarTable) StanzaVarId(sv StanzaVar) VarId {
	return t.intern(sv, sv.String())
}

// Name returns the variable's display name, for diagnostics.
func (t *VarTable) Name(id VarId) string {
	if int(id) < len(t.names) {
		return t.names[id]
	}
	return "?"
}

const wordBits = 64

// ConflictSet is an immutable set of VarIds, represented as a packed
// bitset. Search nodes along a branch build these up by unioning the
// ConflictSets of every constraint consulted in reaching a Fail, which is
// exactly the set the backjumper needs to decide how far up the tree it is
// safe to jump.
type ConflictSet struct {
	words []uint64
}

// EmptyConflictSet returns the empty ConflictSet.
func EmptyConflictSet() ConflictSet { return ConflictSet{} }

// SingletonConflictSet returns a ConflictSet containing exactly id.
func SingletonConflictSet(id VarId) ConflictSet {
	cs := ConflictSet{}
	cs = cs.with(id)
	return cs
}

func (cs ConflictSet) with(id VarId) ConflictSet {
	w := int(id) / wordBits
	b := uint(id) % wordBits
	words := cs.words
	if w >= len(words) {
		grown := make([]uint64, w+1)
		copy(grown, words)
		words = grown
	} else {
		grown := make([]uint64, len(words))
		copy(grown, words)
		words = grown
	}
	words[w] |= 1 << b
	return ConflictSet{words: words}
}

// Add returns a ConflictSet containing every member of cs plus id.
func (cs ConflictSet) Add(id VarId) ConflictSet { return cs.with(id) }

// Union returns the ConflictSet containing every member of either set.
func (cs ConflictSet) Union(o ConflictSet) ConflictSet {
	n := len(cs.words)
	if len(o.words) > n {
		n = len(o.words)
	}
	words := make([]uint64, n)
	for i := range words {
		var a, b uint64
		if i < len(cs.words) {
			a = cs.words[i]
		}
		if i < len(o.words) {
			b = o.words[i]
		}
		words[i] = a | b
	}
	return ConflictSet{words: words}
}

// Contains reports whether id is a member of cs.
func (cs ConflictSet) Contains(id VarId) bool {
	w := int(id) / wordBits
	if w >= len(cs.words) {
		return false
	}
	return cs.words[w]&(1<<(uint(id)%wordBits)) != 0
}

// IsEmpty reports whether cs has no members.
func (cs ConflictSet) IsEmpty() bool {
	for _, w := range cs.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len reports the number of members, using math/bits' population count.
func (cs ConflictSet) Len() int {
	n := 0
	for _, w := range cs.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Vars returns the members of cs in ascending VarId order.
func (cs ConflictSet) Vars() []VarId {
	var out []VarId
	for wi, w := range cs.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, VarId(wi*wordBits+bit))
			w &^= 1 << uint(bit)
		}
	}
	return out
}

// Deepest returns the highest-numbered VarId in cs, that is, of the
// variables implicated in the conflict, the one the Driver's VarTable
// interned last. The backjumper itself does not use it: it tests a branch
// point's own VarId with Contains.
func (cs ConflictSet) Deepest() (VarId, bool) {
	for wi := len(cs.words) - 1; wi >= 0; wi-- {
		w := cs.words[wi]
		if w == 0 {
			continue
		}
		top := bits.Len64(w) - 1
		return VarId(wi*wordBits + top), true
	}
	return 0, false
}
