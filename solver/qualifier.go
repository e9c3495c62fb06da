package solver

import "fmt"

// QualifierKind distinguishes the namespaces a package name can be
// resolved in. Goals in distinct qualifiers are allowed to pick distinct
// versions of the same PackageName; goals within one qualifier must share
// a version, flag assignment, and stanza set (the Single Instance
// Restriction, SIR).
type QualifierKind uint8

const (
	// QualTop is the root namespace: the user's own build targets.
	QualTop QualifierKind = iota
	// QualIndep is an independent-goal namespace, numbered per top-level
	// target when Options.IndependentGoals is set.
	QualIndep
	// QualSetup is the subspace used to resolve a package's own
	// setup/build-driver dependencies, distinct from its library deps.
	QualSetup
	// QualExe is the build-tool subspace: an executable produced by some
	// version of a same-named package, consumed as a tool rather than a
	// library.
	QualExe
)

// Qualifier is a namespace tag on a PackageName. Two QualifiedPackageNames
// with equal Qualifier values must resolve to a single shared assignment;
// distinct qualifiers may diverge freely.
type Qualifier struct {
	Kind QualifierKind
	// Index is the independent-goal number for QualIndep.
	Index int
	// Of is the owning package for QualSetup and QualExe.
	Of PackageName
	// Exe is the build-tool executable name for QualExe.
	Exe PackageName
}

func (q Qualifier) String() string {
	switch q.Kind {
	case QualTop:
		return "top"
	case QualIndep:
		return fmt.Sprintf("indep(%d)", q.Index)
	case QualSetup:
		return fmt.Sprintf("setup(%s)", q.Of)
	case QualExe:
		return fmt.Sprintf("exe(%s,%s)", q.Of, q.Exe)
	default:
		return "?"
	}
}

func (q Qualifier) equal(o Qualifier) bool {
	return q.Kind == o.Kind && q.Index == o.Index && q.Of == o.Of && q.Exe == o.Exe
}

// QualifiedPackageName names a package within a particular Qualifier
// namespace. It is the unit the solver actually decides over: two
// QualifiedPackageNames with the same Name but different Qualifier are
// entirely independent variables.
type QualifiedPackageName struct {
	Qualifier Qualifier
	Name      PackageName
}

func (q QualifiedPackageName) String() string {
	if q.Qualifier.Kind == QualTop {
		return string(q.Name)
	}
	return fmt.Sprintf("%s/%s", q.Qualifier, q.Name)
}

func (q QualifiedPackageName) equal(o QualifiedPackageName) bool {
	return q.Name == o.Name && q.Qualifier.equal(o.Qualifier)
}

// Top builds a QualifiedPackageName in the root namespace.
func Top(name PackageName) QualifiedPackageName {
	return QualifiedPackageName{Name: name}
}

// Indep builds a QualifiedPackageName in independent-goal namespace n.
func Indep(n int, name PackageName) QualifiedPackageName {
	return QualifiedPackageName{Qualifier: Qualifier{Kind: QualIndep, Index: n}, Name: name}
}

// Setup builds a QualifiedPackageName in the setup-dependency subspace of
// package owner.
func Setup(owner PackageName, name PackageName) QualifiedPackageName {
	return QualifiedPackageName{Qualifier: Qualifier{Kind: QualSetup, Of: owner}, Name: name}
}

// Exe builds a QualifiedPackageName in the build-tool subspace producing
// executable exe out of package owner.
func Exe(owner, exe PackageName, name PackageName) QualifiedPackageName {
	return QualifiedPackageName{Qualifier: Qualifier{Kind: QualExe, Of: owner, Exe: exe}, Name: name}
}

// FlagVar names a flag-decision variable, scoped like a QualifiedPackageName
// but further scoped by flag name.
type FlagVar struct {
	Package QualifiedPackageName
	Flag    FlagName
}

func (f FlagVar) String() string { return fmt.Sprintf("%s?%s", f.Package, f.Flag) }

// StanzaVar names a stanza-inclusion decision variable.
type StanzaVar struct {
	Package QualifiedPackageName
	Stanza  Stanza
}

func (s StanzaVar) String() string { return fmt.Sprintf("%s+%s", s.Package, s.Stanza) }
