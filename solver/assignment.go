package solver

// PartialAssignment is the set of decisions committed to along one branch
// of the search: which PackageSource each decided QualifiedPackageName
// resolved to, plus the flag and stanza assignments in force for it. It is
// persistent: extending it returns a new value sharing the old one's
// backing storage, so that backtracking is just discarding a reference,
// never an undo log, matching the immutable-tree style the Search tree
// itself is built around.
type PartialAssignment struct {
	parent *PartialAssignment

	// depth is this node's own decision depth; the root has depth 0.
	depth int
	// varId is the variable this node decided.
	varId VarId
	kind  decisionKind

	pkgName QualifiedPackageName
	pkg     PackageSource
	flags   FlagAssignment
	stanzas StanzaSet

	flagVar   FlagVar
	flagValue bool

	stanzaVar   StanzaVar
	stanzaValue bool
}

type decisionKind uint8

const (
	decidePackage decisionKind = iota
	decideFlag
	decideStanza
)

// EmptyAssignment returns the root PartialAssignment, with no decisions
// made.
func EmptyAssignment() *PartialAssignment {
	return &PartialAssignment{}
}

// Depth reports how many decisions separate this node from the root.
func (pa *PartialAssignment) Depth() int {
	if pa == nil {
		return 0
	}
	return pa.depth
}

// WithPackage extends pa with a decision that name resolves to src, with
// the given flag and stanza assignments for that package instance.
func (pa *PartialAssignment) WithPackage(id VarId, name QualifiedPackageName, src PackageSource, flags FlagAssignment, stanzas StanzaSet) *PartialAssignment {
	return &PartialAssignment{
		parent: pa, depth: pa.Depth() + 1, varId: id, kind: decidePackage,
		pkgName: name, pkg: src, flags: flags, stanzas: stanzas,
	}
}

// WithFlag extends pa with a single flag decision.
func (pa *PartialAssignment) WithFlag(id VarId, fv FlagVar, value bool) *PartialAssignment {
	return &PartialAssignment{
		parent: pa, depth: pa.Depth() + 1, varId: id, kind: decideFlag,
		flagVar: fv, flagValue: value,
	}
}

// WithStanza extends pa with a single stanza-inclusion decision.
func (pa *PartialAssignment) WithStanza(id VarId, sv StanzaVar, value bool) *PartialAssignment {
	return &PartialAssignment{
		parent: pa, depth: pa.Depth() + 1, varId: id, kind: decideStanza,
		stanzaVar: sv, stanzaValue: value,
	}
}

// Ancestor walks back to the PartialAssignment node at depth d, for use
// when the backjumper has decided to discard everything below a
// particular decision.
func (pa *PartialAssignment) Ancestor(d int) *PartialAssignment {
	for pa != nil && pa.Depth() > d {
		pa = pa.parent
	}
	return pa
}

// Lookup searches pa and its ancestors for the most recent decision about
// name, returning ok == false if name is still undecided along this
// branch.
func (pa *PartialAssignment) Lookup(name QualifiedPackageName) (PackageSource, FlagAssignment, StanzaSet, bool) {
	for n := pa; n != nil; n = n.parent {
		if n.kind == decidePackage && n.pkgName.equal(name) {
			return n.pkg, n.flags, n.stanzas, true
		}
	}
	return PackageSource{}, nil, nil, false
}

// LookupFlag searches for the most recent decision about fv.
func (pa *PartialAssignment) LookupFlag(fv FlagVar) (bool, bool) {
	for n := pa; n != nil; n = n.parent {
		if n.kind == decideFlag && n.flagVar == fv {
			return n.flagValue, true
		}
	}
	return false, false
}

// LookupStanza searches for the most recent decision about sv.
func (pa *PartialAssignment) LookupStanza(sv StanzaVar) (bool, bool) {
	for n := pa; n != nil; n = n.parent {
		if n.kind == decideStanza && n.stanzaVar == sv {
			return n.stanzaValue, true
		}
	}
	return false, false
}

// DecidedPackages collects every QualifiedPackageName decided along this
// branch, most recent first, deduplicated so that only the latest decision
// for a name is returned. PartialAssignment nodes never overwrite an
// ancestor in place, and every source package is decided twice on its
// branch (a provisional commit before its flags and stanzas are chosen,
// then the final one), so the chain routinely holds more than one
// decision per name.
func (pa *PartialAssignment) DecidedPackages() []QualifiedPackageName {
	seen := make(map[QualifiedPackageName]bool)
	var out []QualifiedPackageName
	for n := pa; n != nil; n = n.parent {
		if n.kind != decidePackage {
			continue
		}
		if seen[n.pkgName] {
			continue
		}
		seen[n.pkgName] = true
		out = append(out, n.pkgName)
	}
	return out
}
