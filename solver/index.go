package solver

import (
	"sort"

	radix "github.com/armon/go-radix"
)

// Index is the read-only catalogue of installed and source packages,
// queryable by name. It is built once per solver invocation and never
// mutated afterward; any number of solver runs may share one Index
// concurrently.
//
// Lookups are backed by a radix tree keyed on PackageName, the structure
// golang/dep's gps used for import-path matching over ProjectRoots. Only
// exact-name lookups and a full walk are performed on it; no prefix scan
// is made, and qualifier derivation does not consult the Index.
type Index struct {
	byUnit map[UnitId]InstalledPackage
	tree   *radix.Tree
}

type indexEntry struct {
	installed []InstalledPackage
	// sourceVersions is kept sorted high-to-low by the builder so that
	// callers requesting that ordering don't re-sort on every query.
	sourceVersions []SourcePackage
}

// NewIndex builds an Index from the full set of installed and source
// packages known to the caller. It is the only place package data enters
// the solver; everything downstream treats it as frozen.
func NewIndex(installed []InstalledPackage, source []SourcePackage) *Index {
	idx := &Index{
		byUnit: make(map[UnitId]InstalledPackage, len(installed)),
		tree:   radix.New(),
	}

	grouped := make(map[PackageName]*indexEntry)
	get := func(n PackageName) *indexEntry {
		e, ok := grouped[n]
		if !ok {
			e = &indexEntry{}
			grouped[n] = e
		}
		return e
	}

	for _, p := range installed {
		idx.byUnit[p.Unit] = p
		e := get(p.Name)
		e.installed = append(e.installed, p)
	}
	for _, p := range source {
		e := get(p.Id.Name)
		e.sourceVersions = append(e.sourceVersions, p)
	}

	for name, e := range grouped {
		sort.Slice(e.sourceVersions, func(i, j int) bool {
			return e.sourceVersions[i].Id.Version.Compare(e.sourceVersions[j].Id.Version) > 0
		})
		idx.tree.Insert(string(name), e)
	}

	return idx
}

// Lookup returns every PackageSource known for name: installed packages
// first, then source versions ordered high-to-low.
func (idx *Index) Lookup(name PackageName) []PackageSource {
	raw, ok := idx.tree.Get(string(name))
	if !ok {
		return nil
	}
	e := raw.(*indexEntry)
	out := make([]PackageSource, 0, len(e.installed)+len(e.sourceVersions))
	for _, p := range e.installed {
		out = append(out, installedSource(p))
	}
	for _, p := range e.sourceVersions {
		out = append(out, buildableSource(p))
	}
	return out
}

// SourceVersions returns just the buildable source versions for name,
// ordered high-to-low. The Driver builds its PChoice branches from Lookup
// instead, which also includes installed packages.
func (idx *Index) SourceVersions(name PackageName) []SourcePackage {
	raw, ok := idx.tree.Get(string(name))
	if !ok {
		return nil
	}
	return raw.(*indexEntry).sourceVersions
}

// InstalledByUnitId resolves a UnitId back to the InstalledPackage it
// names.
func (idx *Index) InstalledByUnitId(u UnitId) (InstalledPackage, bool) {
	p, ok := idx.byUnit[u]
	return p, ok
}

// KnownNames reports whether any installed or source package is known
// under name; used to distinguish UnknownPackage failures from ordinary
// version-range exhaustion.
func (idx *Index) KnownNames(name PackageName) bool {
	_, ok := idx.tree.Get(string(name))
	return ok
}

// ExecutableProviders returns every source version across the whole Index
// that declares name among its Executables, ordered high-to-low. The
// Driver does not call it: a BuildToolDependency goal is resolved by
// looking up the executable's own name as a package name.
func (idx *Index) ExecutableProviders(name PackageName) []SourcePackage {
	var out []SourcePackage
	idx.tree.Walk(func(_ string, raw interface{}) bool {
		e := raw.(*indexEntry)
		for _, sp := range e.sourceVersions {
			for _, exe := range sp.Executables {
				if exe == name {
					out = append(out, sp)
					break
				}
			}
		}
		return false
	})
	sort.Slice(out, func(i, j int) bool {
		return out[i].Id.Version.Compare(out[j].Id.Version) > 0
	})
	return out
}
