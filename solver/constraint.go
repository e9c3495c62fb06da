package solver

// ConstraintSource labels where a constraint came from. Source labels are
// carried through the whole solve and surfaced in diagnostics; they must
// never influence what the solver decides, only how it explains a
// decision afterward.
type ConstraintSource uint8

const (
	SourceUser ConstraintSource = iota
	SourceDependency
	SourceSetupScript
	SourceInstalledPackage
	SourceSandbox
)

func (s ConstraintSource) String() string {
	switch s {
	case SourceUser:
		return "user constraint"
	case SourceDependency:
		return "dependency"
	case SourceSetupScript:
		return "setup script"
	case SourceInstalledPackage:
		return "installed package"
	case SourceSandbox:
		return "project sandbox"
	default:
		return "unknown source"
	}
}

// LabeledConstraint pairs a version range on a qualified name with the
// label explaining where it came from.
type LabeledConstraint struct {
	Package QualifiedPackageName
	Range   VersionRange
	Source  ConstraintSource
	// From, when Source is SourceDependency, names the decided package
	// whose dependency introduced this constraint; used only for
	// explanations.
	From QualifiedPackageName
}

// InstalledPreference says whether the driver should prefer keeping an
// already-installed version or upgrading to the latest available.
type InstalledPreference uint8

const (
	PreferInstalled InstalledPreference = iota
	PreferLatest
)

// PackagePreference is a soft (non-pruning) version-range preference for a
// package name.
type PackagePreference struct {
	Name  PackageName
	Range VersionRange
}

// ForbiddenFlagValues records which of {true,false} are disallowed for a
// flag on a qualified package, e.g. because a user constraint or an
// installed package's own recorded configuration pins it.
type ForbiddenFlagValues map[bool]bool

// ConstraintModel computes, from the accumulated LabeledConstraints, the
// effective version range, forbidden flag values, and preferences for any
// QualifiedPackageName. It is immutable once built: when the search folds
// in a dependency edge's constraint it derives a new ConstraintModel for
// that branch (withConstraint) and never changes an existing one.
type ConstraintModel struct {
	byPackage map[QualifiedPackageName][]LabeledConstraint
	byFlag    map[FlagVar][]bool

	prefs           map[PackageName][]VersionRange
	installedPref   map[PackageName]InstalledPreference
	defaultInstPref InstalledPreference
	stanzaPref      map[PackageName]StanzaSet

	enableAllTests      bool
	enableAllBenchmarks bool
}

// NewConstraintModel builds a ConstraintModel from the user's declared
// constraints and preferences, plus the global stanza policy.
func NewConstraintModel(constraints []LabeledConstraint, prefs []PackagePreference, stanzaPrefs map[PackageName]StanzaSet, defaultInstalledPref InstalledPreference, enableAllTests, enableAllBenchmarks bool) *ConstraintModel {
	cm := &ConstraintModel{
		byPackage:           make(map[QualifiedPackageName][]LabeledConstraint),
		byFlag:              make(map[FlagVar][]bool),
		prefs:               make(map[PackageName][]VersionRange),
		installedPref:       make(map[PackageName]InstalledPreference),
		defaultInstPref:     defaultInstalledPref,
		stanzaPref:          stanzaPrefs,
		enableAllTests:      enableAllTests,
		enableAllBenchmarks: enableAllBenchmarks,
	}
	for _, c := range constraints {
		cm.byPackage[c.Package] = append(cm.byPackage[c.Package], c)
	}
	for _, p := range prefs {
		cm.prefs[p.Name] = append(cm.prefs[p.Name], p.Range)
	}
	return cm
}

// withConstraint folds in one more labeled constraint, as happens when the
// search descends into a new dependency edge. Because ConstraintModel
// values are otherwise immutable, callers always operate on a derived
// copy scoped to the current search branch (see PartialAssignment): the
// Driver threads the result of this call down through the rest of that
// branch's goal expansion rather than mutating any shared model.
func (cm *ConstraintModel) withConstraint(c LabeledConstraint) *ConstraintModel {
	next := &ConstraintModel{
		byPackage:           cm.byPackage,
		byFlag:              cm.byFlag,
		prefs:               cm.prefs,
		installedPref:       cm.installedPref,
		defaultInstPref:      cm.defaultInstPref,
		stanzaPref:          cm.stanzaPref,
		enableAllTests:      cm.enableAllTests,
		enableAllBenchmarks: cm.enableAllBenchmarks,
	}
	cp := make(map[QualifiedPackageName][]LabeledConstraint, len(cm.byPackage)+1)
	for k, v := range cm.byPackage {
		cp[k] = v
	}
	cp[c.Package] = append(append([]LabeledConstraint{}, cp[c.Package]...), c)
	next.byPackage = cp
	return next
}

// VersionRange returns the intersection of every constraint applied so far
// to name. An empty intersection is a range violation; the caller
// (validation) is responsible for turning that into a Fail node with a
// conflict set equal to the union of the contributing sources.
func (cm *ConstraintModel) VersionRange(name QualifiedPackageName) (VersionRange, []LabeledConstraint) {
	cs := cm.byPackage[name]
	if len(cs) == 0 {
		return AnyVersion(), nil
	}
	r := AnyVersion()
	for _, c := range cs {
		r = r.Intersect(c.Range)
	}
	return r, cs
}

// ForbiddenFlagValue reports which boolean values of Flag are disallowed
// for the given qualified package, derived from any equality-style
// constraints recorded against that flag variable.
func (cm *ConstraintModel) ForbiddenFlagValue(fv FlagVar) ForbiddenFlagValues {
	forbidden, ok := cm.byFlag[fv]
	if !ok {
		return nil
	}
	out := make(ForbiddenFlagValues, len(forbidden))
	for _, v := range forbidden {
		out[v] = true
	}
	return out
}

// Preferences returns the soft version-range preferences declared for
// name, in declaration order. Preferences only affect branch ordering;
// they never prune a branch the way a VersionRange constraint does.
func (cm *ConstraintModel) Preferences(name PackageName) []VersionRange {
	return cm.prefs[name]
}

// InstalledPreferenceFor reports whether already-installed versions of
// name should be preferred over the latest source version.
func (cm *ConstraintModel) InstalledPreferenceFor(name PackageName) InstalledPreference {
	if p, ok := cm.installedPref[name]; ok {
		return p
	}
	return cm.defaultInstPref
}

// StanzaPreference reports the soft stanza preference for name: stanzas in
// the returned set are tried enabled first but may fall back to disabled;
// everything else defaults to disabled unless the global policy forces it.
func (cm *ConstraintModel) StanzaPreference(name PackageName) StanzaSet {
	return cm.stanzaPref[name]
}

// GlobalStanzaPolicy reports whether tests/benchmarks are force-enabled
// across the whole plan.
func (cm *ConstraintModel) GlobalStanzaPolicy() (enableAllTests, enableAllBenchmarks bool) {
	return cm.enableAllTests, cm.enableAllBenchmarks
}
