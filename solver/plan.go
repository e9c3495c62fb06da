package solver

// ResolverPackageKind discriminates the two things a finished plan can say
// about a decided QualifiedPackageName.
type ResolverPackageKind uint8

const (
	PlanPreExisting ResolverPackageKind = iota
	PlanConfigured
)

// ResolverPackage is one entry of a finished InstallPlan: either an
// already-installed package reused as-is, or a source package configured
// with a concrete flag assignment and enabled stanza set. It deliberately
// stops short of describing how to build anything: turning a Configured
// entry into actual build actions is outside this package.
type ResolverPackage struct {
	Kind ResolverPackageKind

	QualifiedName QualifiedPackageName

	PreExisting *InstalledPackage

	ConfiguredSource  *SourcePackage
	ConfiguredFlags   FlagAssignment
	ConfiguredStanzas StanzaSet
}

// InstallPlan is the solver's final output: a flat list of decided
// packages, sufficient for a caller to feed a build executor (out of
// scope here).
type InstallPlan struct {
	Packages []ResolverPackage
}

// PlanFromAssignment walks a Done node's PartialAssignment into an
// InstallPlan, most-recently-decided-first flattening handled by
// DecidedPackages.
func PlanFromAssignment(pa *PartialAssignment) *InstallPlan {
	names := pa.DecidedPackages()
	plan := &InstallPlan{Packages: make([]ResolverPackage, 0, len(names))}
	for _, name := range names {
		src, flags, stanzas, ok := pa.Lookup(name)
		if !ok {
			continue
		}
		switch src.Kind {
		case SourceInstalled:
			plan.Packages = append(plan.Packages, ResolverPackage{
				Kind: PlanPreExisting, QualifiedName: name, PreExisting: src.Installed,
			})
		case SourceBuildable:
			plan.Packages = append(plan.Packages, ResolverPackage{
				Kind: PlanConfigured, QualifiedName: name, ConfiguredSource: src.Source,
				ConfiguredFlags: flags, ConfiguredStanzas: stanzas,
			})
		}
	}
	return plan
}

// SolveOutcomeKind discriminates the three shapes a Solve call can return.
type SolveOutcomeKind uint8

const (
	OutcomeSuccess SolveOutcomeKind = iota
	OutcomeFailure
	OutcomeBudgetExhausted
)

// SolveOutcome is the tagged result of one Driver.Solve call.
type SolveOutcome struct {
	Kind SolveOutcomeKind

	Plan    *InstallPlan
	Err     *SolveError
	Trace   []TraceEvent
	Attempts int
}
