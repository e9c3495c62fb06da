package solver

import "sort"

// Driver owns one solve: the frozen Index and ConstraintModel it searches
// over, the Options tuning that search, and the mutable bookkeeping
// (variable table, conflict-count heuristic state, trace sink, backjump
// counter) that accumulates while walking the Search tree. A Driver value
// is used for exactly one Solve call; build a fresh one per solve the way
// golang-dep's solver built a fresh solver struct per Solve invocation
// rather than reusing one across runs.
type Driver struct {
	Index       *Index
	Constraints *ConstraintModel
	Compiler    CompilerInfo
	PkgConfig   PkgConfigDb
	Options     Options

	vars      *VarTable
	trace     TraceSink
	conflicts map[VarId]int
	backjumps int
}

// NewDriver constructs a Driver ready to Solve against idx, with
// constraints cm, for the given compiler and pkg-config views.
func NewDriver(idx *Index, cm *ConstraintModel, compiler CompilerInfo, pkgConfig PkgConfigDb, opts Options) *Driver {
	return &Driver{
		Index: idx, Constraints: cm, Compiler: compiler, PkgConfig: pkgConfig, Options: opts,
		vars:      NewVarTable(),
		trace:     &SliceTraceSink{},
		conflicts: make(map[VarId]int),
	}
}

// SetTraceSink replaces the Driver's trace destination; call before Solve.
func (d *Driver) SetTraceSink(sink TraceSink) { d.trace = sink }

// Solve resolves targets into an InstallPlan, or explains why it couldn't.
func (d *Driver) Solve(targets []PackageDependency) SolveOutcome {
	cm := d.Constraints
	var goals []Goal
	for i, t := range targets {
		q := Top(t.Name)
		if d.Options.IndependentGoals {
			q = Indep(i, t.Name)
		}
		cm = cm.withConstraint(LabeledConstraint{Package: q, Range: t.Range, Source: SourceUser})
		goals = append(goals, Goal{
			Kind: GoalPackage, Package: q,
			VarId: d.vars.PackageVar(q), Depth: 0,
		})
	}

	node := d.buildGoalChoice(EmptyAssignment(), cm, goals, nil)
	pa, err := d.explore(node)

	sink, _ := d.trace.(*SliceTraceSink)
	var events []TraceEvent
	if sink != nil {
		events = sink.Events
	}

	if err != nil {
		if err.Kind == FailBudgetExhausted {
			return SolveOutcome{Kind: OutcomeBudgetExhausted, Err: err, Trace: events, Attempts: d.backjumps}
		}
		return SolveOutcome{Kind: OutcomeFailure, Err: err, Trace: events, Attempts: d.backjumps}
	}
	if linkErr := ValidateSingleInstance(pa, d.vars); linkErr != nil {
		return SolveOutcome{Kind: OutcomeFailure, Err: linkErr, Trace: events, Attempts: d.backjumps}
	}
	return SolveOutcome{Kind: OutcomeSuccess, Plan: PlanFromAssignment(pa), Trace: events, Attempts: d.backjumps}
}

// explore walks node, applying conflict-directed backjumping at every
// choice point. It returns the PartialAssignment of the first Done node
// reached, or the SolveError accumulated if every branch fails.
func (d *Driver) explore(node *Node) (*PartialAssignment, *SolveError) {
	if d.Options.MaxBackjumps > 0 && d.backjumps > d.Options.MaxBackjumps {
		return nil, BudgetExhaustedErr(d.backjumps)
	}

	switch node.Kind {
	case NodeDone:
		d.trace.Emit(TraceEvent{Kind: TraceDone})
		return node.Assignment, nil

	case NodeFail:
		d.trace.Emit(TraceEvent{Kind: TraceFail, Err: node.Err})
		for _, v := range node.Err.Set.Vars() {
			d.conflicts[v]++
		}
		return nil, node.Err

	case NodePChoice:
		return d.exploreChoices(node.PackageGoal, len(node.PChoices), func(i int) (*Node, bool) {
			return node.PChoices[i].Child(), true
		})

	case NodeFChoice:
		return d.exploreChoices(node.FlagGoal, len(node.FChoices), func(i int) (*Node, bool) {
			return node.FChoices[i].Child(), true
		})

	case NodeSChoice:
		return d.exploreChoices(node.StanzaGoal, len(node.SChoices), func(i int) (*Node, bool) {
			return node.SChoices[i].Child(), true
		})

	case NodeGoalChoice:
		if len(node.Goals) == 0 {
			return nil, &SolveError{Kind: FailVersionConflict, Detail: "no goals and no Done node"}
		}
		// A GoalChoice node has exactly one live alternative per goal
		// slot (picking which goal to expand next isn't itself
		// something a ConflictSet can implicate), so there is nothing
		// to backjump over here: just run the selected goal's subtree.
		var cs ConflictSet
		var lastErr *SolveError
		for i := range node.GoalChildren {
			child := node.GoalChildren[i]()
			pa, err := d.explore(child)
			if err == nil {
				return pa, nil
			}
			lastErr = err
			cs = cs.Union(err.Set)
			if d.Options.EnableBackjumping && !cs.Contains(node.Goals[i].VarId) {
				// The failure had nothing to do with this goal's own
				// ordering; don't bother trying the remaining
				// goal-order alternatives.
				break
			}
		}
		return nil, lastErr
	}

	return nil, &SolveError{Kind: FailVersionConflict, Detail: "malformed search tree node"}
}

// exploreChoices drives a PChoice/FChoice/SChoice node's alternatives in
// order, implementing the backjump itself: once every alternative at this
// variable has failed, the union of their ConflictSets (plus this
// variable) is what gets reported upward. If EnableBackjumping is off the
// Driver still tries every alternative (so results match a naive
// backtracker) but never widens the reported set early.
func (d *Driver) exploreChoices(goal Goal, n int, get func(int) (*Node, bool)) (*PartialAssignment, *SolveError) {
	var union ConflictSet
	for i := 0; i < n; i++ {
		child, ok := get(i)
		if !ok {
			continue
		}
		pa, err := d.explore(child)
		if err == nil {
			return pa, nil
		}
		if err.Kind == FailBudgetExhausted {
			return nil, err
		}
		union = union.Union(err.Set)
		if d.Options.EnableBackjumping && !union.Contains(goal.VarId) {
			// None of the alternatives tried so far implicate this
			// variable; jumping straight up without trying the rest
			// is sound and counts as one backjump.
			d.backjumps++
			d.trace.Emit(TraceEvent{Kind: TraceBackjump, Package: goal.Package, JumpToDepth: -1})
			return nil, &SolveError{Kind: FailVersionConflict, Package: goal.Package, Detail: "no alternative implicated by the conflict", Set: union}
		}
	}
	return nil, &SolveError{Kind: FailVersionConflict, Package: goal.Package, Detail: "every alternative failed", Set: union.Add(goal.VarId)}
}

// pickGoal selects the index of the next goal to expand out of goals,
// following Options: an explicit GoalOrder wins outright and sees every
// goal, weak flags included, since the caller asked for full control.
// Otherwise a weak flag goal (one no dependency in its package reads)
// always sorts behind every non-weak goal; StrongFlags then further
// restricts the pool to flag goals when any non-weak one remains, so
// flag conflicts surface before the package goals they'd otherwise hide
// behind; CountConflicts then picks the goal that has shown up in the most
// conflicts so far (ties keep declaration order); otherwise ReorderGoals
// applies nearest-goal-first; with neither set, goals are expanded in
// declaration order.
func (d *Driver) pickGoal(goals []Goal) int {
	if d.Options.GoalOrder != nil {
		best := 0
		for i := 1; i < len(goals); i++ {
			if d.Options.GoalOrder(goals[i], goals[best]) {
				best = i
			}
		}
		return best
	}

	candidates := nonWeakGoals(goals)
	if d.Options.StrongFlags {
		if flagsOnly := filterByKind(goals, candidates, GoalFlag); len(flagsOnly) > 0 {
			candidates = flagsOnly
		}
	}

	if d.Options.CountConflicts {
		best := candidates[0]
		for _, i := range candidates[1:] {
			if d.conflicts[goals[i].VarId] > d.conflicts[goals[best].VarId] {
				best = i
			}
		}
		return best
	}
	if d.Options.ReorderGoals {
		best := candidates[0]
		for _, i := range candidates[1:] {
			if goals[i].Depth < goals[best].Depth {
				best = i
			}
		}
		return best
	}
	return candidates[0]
}

// nonWeakGoals returns the indices of every goal that isn't a weak flag,
// in declaration order, or every index if all of them are weak flags (a
// pool that's entirely weak still has to pick something).
func nonWeakGoals(goals []Goal) []int {
	var strong []int
	for i, g := range goals {
		if !(g.Kind == GoalFlag && g.Weak) {
			strong = append(strong, i)
		}
	}
	if len(strong) > 0 {
		return strong
	}
	all := make([]int, len(goals))
	for i := range goals {
		all[i] = i
	}
	return all
}

// filterByKind narrows domain (indices into goals) down to those of kind.
func filterByKind(goals []Goal, domain []int, kind GoalKind) []int {
	var out []int
	for _, i := range domain {
		if goals[i].Kind == kind {
			out = append(out, i)
		}
	}
	return out
}

// buildGoalChoice constructs a GoalChoice node over the pending goals,
// ordering them via pickGoal at construction time so that any
// CountConflicts feedback from sibling failures already explored is
// reflected before this node's own alternatives are built. cm is this
// branch's effective ConstraintModel: the base model narrowed by every
// dependency edge crossed to reach pa, threaded down the same way pa and
// stack are.
func (d *Driver) buildGoalChoice(pa *PartialAssignment, cm *ConstraintModel, goals []Goal, stack DescentStack) *Node {
	if len(goals) == 0 {
		return doneNode(pa)
	}

	i := d.pickGoal(goals)
	chosen := goals[i]
	rest := make([]Goal, 0, len(goals)-1)
	rest = append(rest, goals[:i]...)
	rest = append(rest, goals[i+1:]...)

	child := func() *Node {
		switch chosen.Kind {
		case GoalPackage:
			return d.buildPChoice(pa, cm, chosen, rest, stack)
		case GoalFlag:
			return d.buildFlagChoice(pa, cm, chosen, rest, stack)
		case GoalStanza:
			return d.buildStanzaChoice(pa, cm, chosen, rest, stack)
		default:
			return failNode(&SolveError{Detail: "malformed goal"})
		}
	}

	return goalChoiceNode([]Goal{chosen}, []func() *Node{child})
}

// buildPChoice expands a package goal into a PChoice node, one branch per
// candidate PackageSource surviving cm's version range for this name,
// ordered installed-or-latest-first per InstalledPreferenceFor, then by
// PackagePreference ranges, then by descending version.
func (d *Driver) buildPChoice(pa *PartialAssignment, cm *ConstraintModel, goal Goal, rest []Goal, stack DescentStack) *Node {
	name := goal.Package

	if cycleErr := DetectCycle(stack, name, SingletonConflictSet(goal.VarId)); cycleErr != nil {
		return failNode(cycleErr)
	}

	if _, _, _, ok := pa.Lookup(name); ok {
		rng, cs := cm.VersionRange(name)
		if already, linkErr := CheckLink(pa, name, rng, goal.VarId, unionSources(d.vars, cs)); linkErr != nil {
			return failNode(linkErr)
		} else if already {
			return d.buildGoalChoice(pa, cm, rest, stack)
		}
	}

	if !d.Index.KnownNames(name.Name) {
		return failNode(UnknownPackageErr(name, SingletonConflictSet(goal.VarId)))
	}

	rng, labeled := cm.VersionRange(name)
	if rng.IsEmpty() {
		return failNode(NoMatchingVersion(name, unionSources(d.vars, labeled)))
	}

	candidates := d.orderCandidates(cm, name, rng)
	if len(candidates) == 0 {
		return failNode(NoMatchingVersion(name, unionSources(d.vars, labeled)))
	}

	choices := make([]PChoice, 0, len(candidates))
	for _, cand := range candidates {
		cand := cand
		choices = append(choices, PChoice{
			Source: cand,
			Child: func() *Node {
				return d.commitPackage(pa, cm, goal, rest, stack, cand)
			},
		})
	}
	return pChoiceNode(name, goal, choices)
}

// orderCandidates lists the PackageSources for name whose version matches
// rng, ordered by InstalledPreferenceFor, then versions matching one of
// name's PackagePreference ranges ahead of the rest, then descending
// version, with AvoidReinstalls demoting a source build that duplicates an
// installed version to the back of the list rather than excluding it
// outright.
func (d *Driver) orderCandidates(cm *ConstraintModel, name QualifiedPackageName, rng VersionRange) []PackageSource {
	all := d.Index.Lookup(name.Name)
	var installed, source []PackageSource
	installedVersions := make(map[string]bool)
	for _, ps := range all {
		if !rng.Matches(ps.Version()) {
			continue
		}
		if ps.Kind == SourceInstalled {
			installed = append(installed, ps)
			installedVersions[ps.Version().String()] = true
		} else {
			source = append(source, ps)
		}
	}
	if prefs := cm.Preferences(name.Name); len(prefs) > 0 {
		preferred := func(ps PackageSource) bool {
			for _, p := range prefs {
				if p.Matches(ps.Version()) {
					return true
				}
			}
			return false
		}
		for _, list := range [][]PackageSource{installed, source} {
			sort.SliceStable(list, func(i, j int) bool { return preferred(list[i]) && !preferred(list[j]) })
		}
	}
	if d.Options.AvoidReinstalls {
		var fresh, reinstalls []PackageSource
		for _, ps := range source {
			if installedVersions[ps.Version().String()] {
				reinstalls = append(reinstalls, ps)
			} else {
				fresh = append(fresh, ps)
			}
		}
		source = append(fresh, reinstalls...)
	}

	pref := cm.InstalledPreferenceFor(name.Name)
	if pref == PreferLatest || d.Options.ShadowInstalledPackages {
		return append(source, installed...)
	}
	return append(installed, source...)
}

func unionSources(vars *VarTable, labeled []LabeledConstraint) ConflictSet {
	var cs ConflictSet
	for _, c := range labeled {
		cs = cs.Add(vars.PackageVar(c.Package))
		if c.Source == SourceDependency || c.Source == SourceSetupScript {
			cs = cs.Add(vars.PackageVar(c.From))
		}
	}
	return cs
}

// commitPackage extends pa with the decision that goal.Package resolves to
// src. For a buildable source package, its declared flags become GoalFlag
// entries in the shared pool rather than being decided inline: they still
// have to all land a value before finishSourceCommit can compute which
// dependencies actually apply (ConditionalDependency needs a concrete
// assignment), but which flag gets decided next, and in what order
// relative to other packages' pending goals, is now pickGoal's call
// instead of always following declaration order.
func (d *Driver) commitPackage(pa *PartialAssignment, cm *ConstraintModel, goal Goal, rest []Goal, stack DescentStack, src PackageSource) *Node {
	d.trace.Emit(TraceEvent{Kind: TraceTryPackage, Package: goal.Package, Source: src})

	if src.Kind == SourceInstalled {
		next := pa.WithPackage(goal.VarId, goal.Package, src, nil, nil)
		nextStack := stack.Push(goal.Package)
		nextCm, depGoals := d.goalsFromDependencies(cm, goal.Package, nextStack, depsToResolve(src.Installed.Depends, d.Index))
		return d.buildGoalChoice(next, nextCm, append(rest, depGoals...), nextStack)
	}

	sp := src.Source
	if sp.MinCompilerVersion != nil && d.Compiler.Version.Compare(sp.MinCompilerVersion) < 0 {
		return failNode(&SolveError{Kind: FailMissingLanguage, Package: goal.Package, Detail: "compiler version below package minimum", Set: SingletonConflictSet(goal.VarId)})
	}

	next := pa.WithPackage(goal.VarId, goal.Package, src, nil, nil)
	flagGoals := d.flagGoalsFor(goal.Package, sp, goal.Depth+1)
	if len(flagGoals) == 0 {
		return d.afterFlagsDecided(next, cm, goal.Package, sp, rest, stack)
	}
	return d.buildGoalChoice(next, cm, append(rest, flagGoals...), stack)
}

// flagGoalsFor builds one GoalFlag per sp.Flags entry, marking a flag Weak
// when no dependency anywhere in sp's tree (library or stanza) reads it.
func (d *Driver) flagGoalsFor(pkg QualifiedPackageName, sp *SourcePackage, depth int) []Goal {
	if len(sp.Flags) == 0 {
		return nil
	}
	referenced := referencedFlags(sp)
	goals := make([]Goal, 0, len(sp.Flags))
	for _, fd := range sp.Flags {
		fv := FlagVar{Package: pkg, Flag: fd.Name}
		goals = append(goals, Goal{
			Kind: GoalFlag, FlagVar: fv, VarId: d.vars.FlagVarId(fv), Depth: depth,
			Weak: !referenced[fd.Name],
		})
	}
	return goals
}

// referencedFlags collects every FlagName any ConditionalDependency in
// sp's library or stanza dependency trees actually tests.
func referencedFlags(sp *SourcePackage) map[FlagName]bool {
	names := FlagsIn(sp.Depends)
	for _, sd := range sp.Stanzas {
		names = append(names, FlagsIn(sd.Depends)...)
	}
	out := make(map[FlagName]bool, len(names))
	for _, n := range names {
		out[n] = true
	}
	return out
}

// buildFlagChoice expands a single GoalFlag goal into an FChoice node,
// trying the declared default first. sp (and the flag's declaration) are
// recovered from pa's provisional commit for the flag's owning package,
// made by commitPackage before any of its flags reached the pool.
func (d *Driver) buildFlagChoice(pa *PartialAssignment, cm *ConstraintModel, goal Goal, rest []Goal, stack DescentStack) *Node {
	fv := goal.FlagVar
	src, _, _, ok := pa.Lookup(fv.Package)
	if !ok || src.Kind != SourceBuildable {
		return failNode(&SolveError{Detail: "flag goal for an undecided package", Set: SingletonConflictSet(goal.VarId)})
	}
	sp := src.Source
	var fd *FlagDecl
	for i := range sp.Flags {
		if sp.Flags[i].Name == fv.Flag {
			fd = &sp.Flags[i]
			break
		}
	}
	if fd == nil {
		return failNode(&SolveError{Detail: "flag goal with no matching declaration", Set: SingletonConflictSet(goal.VarId)})
	}
	trivial := !referencedFlags(sp)[fv.Flag]
	forbidden := cm.ForbiddenFlagValue(fv)

	order := []bool{fd.Default, !fd.Default}
	var choices []FChoice
	for _, val := range order {
		if forbidden[val] {
			continue
		}
		val := val
		choices = append(choices, FChoice{
			Value: val, Weak: goal.Weak, Trivial: trivial,
			Child: func() *Node {
				d.trace.Emit(TraceEvent{Kind: TraceTryFlag, FlagVar: fv, FlagValue: val})
				next := pa.WithFlag(goal.VarId, fv, val)
				return d.afterOneFlagDecided(next, cm, fv.Package, rest, stack)
			},
		})
	}
	if len(choices) == 0 {
		return failNode(FlagConflictErr(fv, SingletonConflictSet(goal.VarId)))
	}
	var arr [2]FChoice
	copy(arr[:], choices)
	if len(choices) == 1 {
		arr[1] = choices[0]
	}
	return fChoiceNode(fv, goal, arr)
}

// afterOneFlagDecided checks whether any other GoalFlag for the same
// package is still pending in rest; if so, the pool decides what's next.
// Once none remain, every flag on this package has a value and its
// stanza goals (if any) are queued the same way.
func (d *Driver) afterOneFlagDecided(pa *PartialAssignment, cm *ConstraintModel, pkg QualifiedPackageName, rest []Goal, stack DescentStack) *Node {
	for _, g := range rest {
		if g.Kind == GoalFlag && g.FlagVar.Package.equal(pkg) {
			return d.buildGoalChoice(pa, cm, rest, stack)
		}
	}
	src, _, _, ok := pa.Lookup(pkg)
	if !ok || src.Kind != SourceBuildable {
		return failNode(&SolveError{Detail: "package vanished mid-flag-resolution"})
	}
	return d.afterFlagsDecided(pa, cm, pkg, src.Source, rest, stack)
}

// afterFlagsDecided runs once every flag on sp has a value: it queues
// stanza goals the same way commitPackage queues flag goals, or, if sp
// declares none, goes straight to finishSourceCommit.
func (d *Driver) afterFlagsDecided(pa *PartialAssignment, cm *ConstraintModel, pkg QualifiedPackageName, sp *SourcePackage, rest []Goal, stack DescentStack) *Node {
	if len(sp.Stanzas) == 0 {
		return d.finishSourceCommit(pa, cm, d.packageGoal(pkg), sp, rest, stack)
	}
	stanzaGoals := make([]Goal, 0, len(sp.Stanzas))
	for _, sd := range sp.Stanzas {
		sv := StanzaVar{Package: pkg, Stanza: sd.Stanza}
		stanzaGoals = append(stanzaGoals, Goal{Kind: GoalStanza, Stanza: sv, VarId: d.vars.StanzaVarId(sv)})
	}
	return d.buildGoalChoice(pa, cm, append(rest, stanzaGoals...), stack)
}

// buildStanzaChoice expands a single GoalStanza goal into an SChoice node:
// a stanza forced on by GlobalStanzaPolicy gets only the enabled branch, a
// stanza in the package's StanzaPreference tries enabled first, and any
// other stanza tries disabled first.
func (d *Driver) buildStanzaChoice(pa *PartialAssignment, cm *ConstraintModel, goal Goal, rest []Goal, stack DescentStack) *Node {
	sv := goal.Stanza
	src, _, _, ok := pa.Lookup(sv.Package)
	if !ok || src.Kind != SourceBuildable {
		return failNode(&SolveError{Detail: "stanza goal for an undecided package", Set: SingletonConflictSet(goal.VarId)})
	}
	sp := src.Source

	allTests, allBenches := cm.GlobalStanzaPolicy()
	forced := (sv.Stanza == StanzaTests && allTests) || (sv.Stanza == StanzaBenchmarks && allBenches)
	prefers := cm.StanzaPreference(sv.Package.Name).Has(sv.Stanza)

	order := []bool{false, true}
	if forced || prefers {
		order = []bool{true, false}
	}
	if forced {
		order = []bool{true}
	}

	var choices []SChoice
	for _, val := range order {
		val := val
		choices = append(choices, SChoice{
			Value: val,
			Child: func() *Node {
				d.trace.Emit(TraceEvent{Kind: TraceTryStanza, StanzaVar: sv, StanzaValue: val})
				next := pa.WithStanza(goal.VarId, sv, val)
				return d.afterOneStanzaDecided(next, cm, sv.Package, sp, rest, stack)
			},
		})
	}
	var arr [2]SChoice
	copy(arr[:], choices)
	if len(choices) == 1 {
		arr[1] = choices[0]
	}
	return sChoiceNode(sv, goal, arr)
}

// afterOneStanzaDecided mirrors afterOneFlagDecided for stanza goals: once
// none remain pending for pkg, finishSourceCommit runs.
func (d *Driver) afterOneStanzaDecided(pa *PartialAssignment, cm *ConstraintModel, pkg QualifiedPackageName, sp *SourcePackage, rest []Goal, stack DescentStack) *Node {
	for _, g := range rest {
		if g.Kind == GoalStanza && g.Stanza.Package.equal(pkg) {
			return d.buildGoalChoice(pa, cm, rest, stack)
		}
	}
	return d.finishSourceCommit(pa, cm, d.packageGoal(pkg), sp, rest, stack)
}

// packageGoal reconstructs the GoalPackage value finishSourceCommit needs
// once pkg's flags and stanzas have all been decided via the shared pool;
// finishSourceCommit only ever reads Kind, Package, and VarId from it, and
// VarId is stable under VarTable's intern-by-name-key discipline, so this
// is exactly the Goal commitPackage would have been called with.
func (d *Driver) packageGoal(pkg QualifiedPackageName) Goal {
	return Goal{Kind: GoalPackage, Package: pkg, VarId: d.vars.PackageVar(pkg)}
}

// finishSourceCommit runs once sp's flags and stanzas all have values: it
// re-records the package decision with the concrete flag/stanza
// assignment (superseding the provisional nil/nil recorded by
// commitPackage, which PartialAssignment.Lookup's most-recent-wins search
// will now see instead), resolves sp's conditional dependencies and any
// enabled stanza's own dependencies against that assignment, and queues
// the result as goals.
func (d *Driver) finishSourceCommit(pa *PartialAssignment, cm *ConstraintModel, goal Goal, sp *SourcePackage, rest []Goal, stack DescentStack) *Node {
	fa := make(FlagAssignment, len(sp.Flags))
	for _, fd := range sp.Flags {
		fv := FlagVar{Package: goal.Package, Flag: fd.Name}
		v, _ := pa.LookupFlag(fv)
		fa[fd.Name] = v
	}

	enabled := make(StanzaSet, len(sp.Stanzas))
	deps := Resolve(sp.Depends, fa)
	for _, sd := range sp.Stanzas {
		sv := StanzaVar{Package: goal.Package, Stanza: sd.Stanza}
		v, _ := pa.LookupStanza(sv)
		enabled[sd.Stanza] = v
		if v {
			deps = append(deps, Resolve(sd.Depends, fa)...)
		}
	}

	if failErr := d.checkPlatformDependencies(goal, deps); failErr != nil {
		return failNode(failErr)
	}

	next := pa.WithPackage(goal.VarId, goal.Package, PackageSource{Kind: SourceBuildable, Source: sp}, fa, enabled)
	nextStack := stack.Push(goal.Package)
	nextCm, depGoals := d.goalsFromDependencies(cm, goal.Package, nextStack, deps)
	// A package's setup dependencies are only unfolded once, for the
	// package as reached from an ordinary library edge; something
	// already inside a Setup subspace is being built there purely as a
	// library, so its own SetupDepends don't get a second, nested
	// subspace of their own. Without this, a benign setup-level cycle
	// (P's setup needs Q, Q's library needs P's library) would recurse
	// forever instead of bottoming out.
	if goal.Package.Qualifier.Kind != QualSetup {
		var setupGoals []Goal
		nextCm, setupGoals = d.goalsFromSetupDependencies(nextCm, goal.Package, nextStack, Resolve(sp.SetupDepends, fa))
		depGoals = append(depGoals, setupGoals...)
	}
	return d.buildGoalChoice(next, nextCm, append(rest, depGoals...), nextStack)
}

// goalsFromSetupDependencies is goalsFromDependencies' counterpart for a
// package's own setup/build-driver dependencies: each lands in that
// package's QualSetup subspace rather than inheriting its owner's
// qualifier, so a setup dependency back on the owning package's library
// identity is a distinct QualifiedPackageName and never collides with it
// in a DescentStack. Each edge's declared Range is folded into cm exactly
// like an ordinary dependency edge, labeled SourceSetupScript rather than
// SourceDependency so diagnostics can tell the two apart.
func (d *Driver) goalsFromSetupDependencies(cm *ConstraintModel, owner QualifiedPackageName, stack DescentStack, deps []Dependency) (*ConstraintModel, []Goal) {
	var goals []Goal
	depth := len(stack)
	for _, dep := range deps {
		if dep.Kind != DepPackage {
			continue
		}
		q := Setup(owner.Name, dep.Package.Name)
		cm = cm.withConstraint(LabeledConstraint{Package: q, Range: dep.Package.Range, Source: SourceSetupScript, From: owner})
		goals = append(goals, Goal{Kind: GoalPackage, Package: q, VarId: d.vars.PackageVar(q), Depth: depth})
	}
	return cm, goals
}

// checkPlatformDependencies validates the DepExtension, DepLanguage, and
// DepPkgConfig entries of deps against the Driver's CompilerInfo and
// PkgConfigDb, the three dependency kinds that never become a further
// goal, because they are resolved against facts about the target platform
// rather than against the Index.
func (d *Driver) checkPlatformDependencies(goal Goal, deps []Dependency) *SolveError {
	cs := SingletonConflictSet(goal.VarId)
	for _, dep := range deps {
		switch dep.Kind {
		case DepExtension:
			if !d.Compiler.SupportsExtension(dep.Extension) {
				return MissingExtensionErr(goal.Package, dep.Extension, cs)
			}
		case DepLanguage:
			if !d.Compiler.SupportsLanguage(dep.Language) {
				return MissingLanguageErr(goal.Package, dep.Language, cs)
			}
		case DepPkgConfig:
			if d.PkgConfig == nil {
				return MissingPkgConfigErr(goal.Package, dep.PkgConfig.SystemLib, cs)
			}
			v, ok := d.PkgConfig.Lookup(dep.PkgConfig.SystemLib)
			if !ok || !dep.PkgConfig.Range.Matches(v) {
				return MissingPkgConfigErr(goal.Package, dep.PkgConfig.SystemLib, cs)
			}
		}
	}
	return nil
}

// goalsFromDependencies turns a flattened dependency list into pending
// Goals, scoping each by the qualifier edge kind it represents. Every
// DepPackage/DepBuildTool edge's declared Range is folded into cm via
// withConstraint as it's discovered, labeled SourceDependency, so the
// version actually chosen for that QualifiedPackageName is constrained
// by the edge and not just by whatever the caller supplied up front.
func (d *Driver) goalsFromDependencies(cm *ConstraintModel, owner QualifiedPackageName, stack DescentStack, deps []Dependency) (*ConstraintModel, []Goal) {
	var goals []Goal
	depth := len(stack)
	for _, dep := range deps {
		switch dep.Kind {
		case DepPackage:
			q := QualifiedPackageName{Qualifier: owner.Qualifier, Name: dep.Package.Name}
			cm = cm.withConstraint(LabeledConstraint{Package: q, Range: dep.Package.Range, Source: SourceDependency, From: owner})
			goals = append(goals, Goal{Kind: GoalPackage, Package: q, VarId: d.vars.PackageVar(q), Depth: depth})
		case DepBuildTool:
			q := Exe(owner.Name, dep.BuildTool.Exe, dep.BuildTool.Exe)
			cm = cm.withConstraint(LabeledConstraint{Package: q, Range: dep.BuildTool.Range, Source: SourceDependency, From: owner})
			goals = append(goals, Goal{Kind: GoalPackage, Package: q, VarId: d.vars.PackageVar(q), Depth: depth})
		}
	}
	return cm, goals
}

// depsToResolve adapts an InstalledPackage's UnitId dependency list into
// Dependency values the goal builder understands, by resolving each unit
// back to its InstalledPackage's name.
func depsToResolve(units []UnitId, idx *Index) []Dependency {
	var out []Dependency
	for _, u := range units {
		if p, ok := idx.InstalledByUnitId(u); ok {
			out = append(out, Dependency{Kind: DepPackage, Package: &PackageDependency{Name: p.Name, Range: Exactly(p.Version)}})
		}
	}
	return out
}
