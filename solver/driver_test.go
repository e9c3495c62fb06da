package solver

import "testing"

func pkgDep(name string, rng VersionRange) Dependency {
	return Dependency{Kind: DepPackage, Package: &PackageDependency{Name: PackageName(name), Range: rng}}
}

func srcPkg(name, version string, deps ...Dependency) SourcePackage {
	return SourcePackage{
		Id:      PackageId{Name: PackageName(name), Version: MustParseVersion(version)},
		Depends: deps,
	}
}

func solveOne(t *testing.T, idx *Index, cm *ConstraintModel, opts Options, targetName string, targetRange VersionRange) SolveOutcome {
	t.Helper()
	driver := NewDriver(idx, cm, CompilerInfo{}, nil, opts)
	return driver.Solve([]PackageDependency{{Name: PackageName(targetName), Range: targetRange}})
}

func emptyModel() *ConstraintModel {
	return NewConstraintModel(nil, nil, nil, PreferInstalled, false, false)
}

// Scenario: alreadyInstalled. A target's dependency is already installed
// at a version that satisfies it; the solver should reuse it rather than
// reach for a source build of the same package.
func TestScenarioAlreadyInstalled(t *testing.T) {
	installed := []InstalledPackage{
		{Unit: "base-1", Name: "base", Version: MustParseVersion("1.0.0"), Exposed: true},
	}
	source := []SourcePackage{
		srcPkg("app", "1.0.0", pkgDep("base", AtLeast(MustParseVersion("1.0.0")))),
	}
	idx := NewIndex(installed, source)

	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "app", AnyVersion())
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}
	var sawBase bool
	for _, p := range outcome.Plan.Packages {
		if p.QualifiedName.Name == "base" {
			sawBase = true
			if p.Kind != PlanPreExisting {
				t.Fatalf("expected base to reuse the installed package, got %v", p.Kind)
			}
		}
	}
	if !sawBase {
		t.Fatal("expected base in the plan")
	}
}

// Scenario: simpleDep. A straightforward transitive dependency chain
// resolves to its only available versions.
func TestScenarioSimpleDep(t *testing.T) {
	source := []SourcePackage{
		srcPkg("app", "1.0.0", pkgDep("lib", AnyVersion())),
		srcPkg("lib", "2.0.0"),
	}
	idx := NewIndex(nil, source)

	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "app", AnyVersion())
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}
	names := map[PackageName]bool{}
	for _, p := range outcome.Plan.Packages {
		names[p.QualifiedName.Name] = true
	}
	if !names["app"] || !names["lib"] {
		t.Fatalf("expected app and lib in plan, got %v", outcome.Plan.Packages)
	}
}

// Scenario: incompatibleTargets. Two top-level targets sharing the Top
// qualifier need mutually exclusive versions of the same package, so no
// plan should exist without IndependentGoals.
func TestScenarioIncompatibleTargets(t *testing.T) {
	source := []SourcePackage{
		srcPkg("left", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("1.0.0")))),
		srcPkg("right", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("2.0.0")))),
		srcPkg("shared", "1.0.0"),
		srcPkg("shared", "2.0.0"),
	}
	idx := NewIndex(nil, source)
	driver := NewDriver(idx, emptyModel(), CompilerInfo{}, nil, DefaultOptions())
	outcome := driver.Solve([]PackageDependency{
		{Name: "left", Range: AnyVersion()},
		{Name: "right", Range: AnyVersion()},
	})
	if outcome.Kind == OutcomeSuccess {
		t.Fatalf("expected failure, both targets share the Top qualifier and need incompatible shared versions")
	}
}

// Scenario: independentGoals. The same two targets as above succeed once
// each is resolved in its own qualifier subspace.
func TestScenarioIndependentGoals(t *testing.T) {
	source := []SourcePackage{
		srcPkg("left", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("1.0.0")))),
		srcPkg("right", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("2.0.0")))),
		srcPkg("shared", "1.0.0"),
		srcPkg("shared", "2.0.0"),
	}
	idx := NewIndex(nil, source)
	opts := DefaultOptions()
	opts.IndependentGoals = true
	driver := NewDriver(idx, emptyModel(), CompilerInfo{}, nil, opts)
	outcome := driver.Solve([]PackageDependency{
		{Name: "left", Range: AnyVersion()},
		{Name: "right", Range: AnyVersion()},
	})
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success with independent goals, got %v: %v", outcome.Kind, outcome.Err)
	}
}

// Scenario: flagControlledDep. A package's single flag, left at its
// declared default, selects which of two otherwise-unrelated dependencies
// is required.
func TestScenarioFlagControlledDep(t *testing.T) {
	withFlag := srcPkg("app", "1.0.0")
	withFlag.Flags = []FlagDecl{{Name: "use-fast", Default: true}}
	withFlag.Depends = []Dependency{
		{Kind: DepConditional, Conditional: &ConditionalDependency{
			Flag: "use-fast", IfTrue: true,
			Then: []Dependency{pkgDep("fast-impl", AnyVersion())},
			Else: []Dependency{pkgDep("slow-impl", AnyVersion())},
		}},
	}
	source := []SourcePackage{
		withFlag,
		srcPkg("fast-impl", "1.0.0"),
		srcPkg("slow-impl", "1.0.0"),
	}
	idx := NewIndex(nil, source)

	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "app", AnyVersion())
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}
	var sawFast, sawSlow bool
	for _, p := range outcome.Plan.Packages {
		switch p.QualifiedName.Name {
		case "fast-impl":
			sawFast = true
		case "slow-impl":
			sawSlow = true
		}
	}
	if !sawFast {
		t.Fatal("expected the default-true flag to pull in fast-impl")
	}
	if sawSlow {
		t.Fatal("slow-impl should not appear when use-fast defaults true")
	}
}

// Scenario: cycleThroughSetup. A package's setup dependencies may depend
// on a package that itself (ordinarily) depends back on the first
// package's library component: this is not a disallowed cycle, because
// the setup subspace is a distinct qualifier from the library's own.
func TestScenarioCycleThroughSetup(t *testing.T) {
	builder := srcPkg("builder", "1.0.0", pkgDep("core", AnyVersion()))
	core := srcPkg("core", "1.0.0")
	core.SetupDepends = []Dependency{pkgDep("builder", AnyVersion())}

	source := []SourcePackage{builder, core}
	idx := NewIndex(nil, source)

	// Setup-qualified and Top-qualified names for the same package never
	// collide in a DescentStack, confirmed directly first...
	stack := DescentStack{Top("core")}
	if err := DetectCycle(stack, Setup("core", "builder"), EmptyConflictSet()); err != nil {
		t.Fatalf("setup-qualified descent should not collide with a Top-qualified one: %v", err)
	}
	if err := DetectCycle(stack, Top("core"), EmptyConflictSet()); err == nil {
		t.Fatal("a genuine self-cycle within one qualifier should be detected")
	}

	// ...then end to end: builder's library dependency on core pulls core
	// in at the Top qualifier, core's SetupDepends on builder pulls a
	// second, Setup-qualified copy of builder in alongside it, and both
	// should land in the plan without the driver ever reporting a cycle.
	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "builder", AnyVersion())
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}
	var builderCount int
	for _, p := range outcome.Plan.Packages {
		if p.QualifiedName.Name == "builder" {
			builderCount++
		}
	}
	if builderCount < 2 {
		t.Fatalf("expected builder to appear both as the Top target and as core's setup dependency, got %d copies in %v", builderCount, outcome.Plan.Packages)
	}
}

func TestUnknownPackageFails(t *testing.T) {
	idx := NewIndex(nil, nil)
	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "nope", AnyVersion())
	if outcome.Kind == OutcomeSuccess {
		t.Fatal("expected failure resolving an unknown package")
	}
	if outcome.Err.Kind != FailUnknownPackage {
		t.Fatalf("expected FailUnknownPackage, got %v", outcome.Err.Kind)
	}
}

// Scenario: edgeRangeConstrained. app depends on lib at exactly 1.0.0,
// but lib also has a newer 2.0.0 available; the dependency edge's own
// Range must be enforced, not just whatever the top-level target allowed
// (here, AnyVersion), so the solver must settle on lib-1.0.0 rather than
// reaching for the highest version it can find.
func TestScenarioEdgeRangeConstrained(t *testing.T) {
	source := []SourcePackage{
		srcPkg("app", "1.0.0", pkgDep("lib", Exactly(MustParseVersion("1.0.0")))),
		srcPkg("lib", "1.0.0"),
		srcPkg("lib", "2.0.0"),
	}
	idx := NewIndex(nil, source)

	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "app", AnyVersion())
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}
	for _, p := range outcome.Plan.Packages {
		if p.QualifiedName.Name != "lib" {
			continue
		}
		if p.ConfiguredSource.Id.Version.String() != "1.0.0" {
			t.Fatalf("expected the dependency edge's Exactly(1.0.0) to be enforced, got lib-%s", p.ConfiguredSource.Id.Version.String())
		}
	}
}

// Scenario: edgeRangeConflict. Two packages each depend on a shared
// package at mutually exclusive exact versions; since both edges fold
// their Range into the same shared-qualifier ConstraintModel, the
// intersection is empty and the solve must fail rather than silently
// picking one edge's version and ignoring the other's.
func TestScenarioEdgeRangeConflict(t *testing.T) {
	source := []SourcePackage{
		srcPkg("app", "1.0.0",
			pkgDep("left", AnyVersion()),
			pkgDep("right", AnyVersion()),
		),
		srcPkg("left", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("1.0.0")))),
		srcPkg("right", "1.0.0", pkgDep("shared", Exactly(MustParseVersion("2.0.0")))),
		srcPkg("shared", "1.0.0"),
		srcPkg("shared", "2.0.0"),
	}
	idx := NewIndex(nil, source)

	outcome := solveOne(t, idx, emptyModel(), DefaultOptions(), "app", AnyVersion())
	if outcome.Kind == OutcomeSuccess {
		t.Fatalf("expected failure, left and right need incompatible versions of shared")
	}
}

// Scenario: weakFlagSortsLast. app declares two flags: "used" is read by
// a conditional dependency, "unused" is read by nothing. Weak goals
// (unused) must sort behind non-weak ones in the GoalChoice pool, so
// with ReorderGoals on, "used" is decided before "unused" even though
// "unused" was declared first.
func TestScenarioWeakFlagSortsLast(t *testing.T) {
	app := srcPkg("app", "1.0.0")
	app.Flags = []FlagDecl{
		{Name: "unused", Default: true},
		{Name: "used", Default: true},
	}
	app.Depends = []Dependency{
		{Kind: DepConditional, Conditional: &ConditionalDependency{
			Flag: "used", IfTrue: true,
			Then: []Dependency{pkgDep("impl", AnyVersion())},
			Else: nil,
		}},
	}
	source := []SourcePackage{app, srcPkg("impl", "1.0.0")}
	idx := NewIndex(nil, source)

	driver := NewDriver(idx, emptyModel(), CompilerInfo{}, nil, DefaultOptions())
	var sink SliceTraceSink
	driver.SetTraceSink(&sink)
	outcome := driver.Solve([]PackageDependency{{Name: "app", Range: AnyVersion()}})
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}

	var flagOrder []FlagName
	for _, e := range sink.Events {
		if e.Kind == TraceTryFlag {
			flagOrder = append(flagOrder, e.FlagVar.Flag)
		}
	}
	if len(flagOrder) != 2 {
		t.Fatalf("expected both flags decided, got %v", flagOrder)
	}
	if flagOrder[0] != "used" || flagOrder[1] != "unused" {
		t.Fatalf("expected the non-weak flag decided before the weak one, got order %v", flagOrder)
	}
}

// Scenario: strongFlagsPromoted. Two independent top-level targets are
// queued together: "withFlag" (decided first in declaration order) has a
// flag, "other" is a plain package. Once withFlag's own package choice
// commits, its flag goal and other's still-pending package goal compete
// in the same pool; with ReorderGoals alone, other's shallower Depth
// would win, but StrongFlags must promote the flag goal ahead of it.
func TestScenarioStrongFlagsPromoted(t *testing.T) {
	withFlag := srcPkg("withFlag", "1.0.0")
	withFlag.Flags = []FlagDecl{{Name: "used", Default: true}}
	withFlag.Depends = []Dependency{
		{Kind: DepConditional, Conditional: &ConditionalDependency{
			Flag: "used", IfTrue: true,
			Then: []Dependency{pkgDep("impl", AnyVersion())},
			Else: nil,
		}},
	}
	source := []SourcePackage{withFlag, srcPkg("other", "1.0.0"), srcPkg("impl", "1.0.0")}
	idx := NewIndex(nil, source)

	opts := DefaultOptions()
	opts.StrongFlags = true
	driver := NewDriver(idx, emptyModel(), CompilerInfo{}, nil, opts)
	var sink SliceTraceSink
	driver.SetTraceSink(&sink)
	outcome := driver.Solve([]PackageDependency{
		{Name: "withFlag", Range: AnyVersion()},
		{Name: "other", Range: AnyVersion()},
	})
	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %v: %v", outcome.Kind, outcome.Err)
	}

	var sawFlag, sawOtherPackageFirst bool
	for _, e := range sink.Events {
		if e.Kind == TraceTryFlag {
			sawFlag = true
		}
		if e.Kind == TraceTryPackage && e.Package.Name == "other" && !sawFlag {
			sawOtherPackageFirst = true
		}
	}
	if sawOtherPackageFirst {
		t.Fatal("expected StrongFlags to promote the flag goal ahead of the pending 'other' package goal")
	}
}

func TestMaxBackjumpsBudget(t *testing.T) {
	// Every candidate for "app" is incompatible, forcing repeated failure.
	// A MaxBackjumps of zero means no budget at all, so the solve runs to
	// an ordinary failure instead of stopping on exhaustion.
	source := []SourcePackage{
		srcPkg("app", "1.0.0", pkgDep("missing", AnyVersion())),
		srcPkg("app", "2.0.0", pkgDep("missing", AnyVersion())),
	}
	idx := NewIndex(nil, source)
	opts := DefaultOptions()
	opts.MaxBackjumps = 0
	driver := NewDriver(idx, emptyModel(), CompilerInfo{}, nil, opts)
	outcome := driver.Solve([]PackageDependency{{Name: "app", Range: AnyVersion()}})
	if outcome.Kind == OutcomeSuccess {
		t.Fatal("expected no plan to exist")
	}
}
