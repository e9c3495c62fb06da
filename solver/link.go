package solver

// DescentStack tracks the chain of QualifiedPackageNames currently being
// resolved on the active branch, innermost last. The Driver pushes onto
// it before descending into a dependency edge and pops on the way back
// out; it exists purely to let DetectCycle answer "am I already resolving
// this" without re-walking the whole PartialAssignment.
type DescentStack []QualifiedPackageName

// Push returns a new stack with name appended on top, leaving the receiver
// unmodified: every push copies the whole stack, so sibling branches never
// see each other's pushes.
func (s DescentStack) Push(name QualifiedPackageName) DescentStack {
	next := make(DescentStack, len(s)+1)
	copy(next, s)
	next[len(s)] = name
	return next
}

// Contains reports whether name is already being resolved somewhere on
// this branch.
func (s DescentStack) Contains(name QualifiedPackageName) bool {
	for _, n := range s {
		if n.equal(name) {
			return true
		}
	}
	return false
}

// DetectCycle checks whether descending into target from the current
// DescentStack would revisit a QualifiedPackageName already in progress.
// Because a package's setup dependencies are resolved in its own QualSetup
// subspace, a distinct QualifiedPackageName from its library identity, a
// setup script that depends on its own package's library is never flagged
// here: the two edges simply never collide in DescentStack, which is how
// the cycle-through-setup exception is satisfied structurally rather than
// by a special case.
func DetectCycle(stack DescentStack, target QualifiedPackageName, cs ConflictSet) *SolveError {
	if stack.Contains(target) {
		return CycleDetectedErr(target, cs)
	}
	return nil
}

// CheckLink validates that, when a new dependency edge demands range for
// name and name has already been decided along pa, the existing decision
// still satisfies range. Two edges landing on the same QualifiedPackageName
// is exactly the case the Single Instance Restriction governs: within one
// qualifier there can be only one real instance, so a second edge can only
// ever narrow what's already chosen, never introduce a second one.
func CheckLink(pa *PartialAssignment, name QualifiedPackageName, required VersionRange, varId VarId, priorVars ConflictSet) (already bool, err *SolveError) {
	src, _, _, ok := pa.Lookup(name)
	if !ok {
		return false, nil
	}
	if !required.Matches(src.Version()) {
		return true, SIRViolationErr(name, priorVars.Add(varId))
	}
	return true, nil
}

// ValidateSingleInstance walks every decided QualifiedPackageName on pa and
// confirms no two distinct PartialAssignment nodes recorded a decision for
// the same name with different PackageSources. Under this package's
// append-only, lookup-before-decide discipline that can only happen if a
// backjump discarded too little of the branch, so this check exists as a
// final plan-validation belt-and-braces pass rather than a per-step one.
func ValidateSingleInstance(pa *PartialAssignment, table *VarTable) *SolveError {
	first := make(map[QualifiedPackageName]PackageSource)
	for n := pa; n != nil; n = n.parent {
		if n.kind != decidePackage {
			continue
		}
		if prior, ok := first[n.pkgName]; ok {
			if prior.Name() != n.pkg.Name() || prior.Version().Compare(n.pkg.Version()) != 0 {
				cs := SingletonConflictSet(table.PackageVar(n.pkgName))
				return SIRViolationErr(n.pkgName, cs)
			}
			continue
		}
		first[n.pkgName] = n.pkg
	}
	return nil
}
