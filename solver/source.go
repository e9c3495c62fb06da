package solver

// UnitId identifies one concrete, already-built unit: an installed package,
// or (after configuration) a to-be-built one. Installed packages are keyed
// by their real UnitId; source packages are assigned one once configured.
type UnitId string

// FlagDecl is one flag a source package version declares, along with its
// documented default. An assignment is total over a version's FlagDecls.
type FlagDecl struct {
	Name    FlagName
	Default bool
}

// StanzaDecl is one conditionally-declared stanza on a source package
// version: the extra dependencies and build metadata that apply only when
// the stanza is enabled.
type StanzaDecl struct {
	Stanza  Stanza
	Depends []Dependency
	// Optional marks a stanza whose governing package may be entirely
	// absent from the plan (e.g. a benchmark harness nobody requires).
	// The Driver does not read it: every SChoice has only the enable and
	// disable branches, and no PChoice gets a "skip" branch.
	Optional bool
}

// InstalledPackage is an already-built, immutable unit already present
// wherever the solver's caller is operating. Installed packages are
// pre-validated: they are considered pre-chosen, contribute no flag or
// stanza goals, and are described purely by their own already-resolved
// dependency set.
type InstalledPackage struct {
	Unit    UnitId
	Name    PackageName
	Version Version
	// Depends names the UnitIds this installed package was itself built
	// against.
	Depends []UnitId
	// Exposed indicates whether this installed package's library
	// component is importable (vs. an executable-only install).
	Exposed bool
}

// SourcePackage is one version of a buildable package: its declared flags
// and stanzas, its dependency expression tree, and metadata needed to
// validate compiler/language requirements.
type SourcePackage struct {
	Id SourcePackageId

	Flags   []FlagDecl
	Stanzas []StanzaDecl

	// Depends is the unconditional + conditional dependency tree for the
	// package's library component.
	Depends []Dependency
	// SetupDepends is the dependency tree needed to build this package's
	// own setup/configure script, resolved in a distinct Setup qualifier
	// so that a setup-only cycle through the same package is permitted.
	SetupDepends []Dependency
	// Executables lists build-tool executables this source package
	// produces, each satisfiable as a BuildToolDependency target.
	Executables []PackageName

	// MinCompilerVersion is the lowest compiler version this source
	// package declares support for; nil means no declared floor.
	MinCompilerVersion Version
}

// SourcePackageId is the (name, version) pair identifying a SourcePackage,
// kept distinct from the general PackageId alias for readability at call
// sites that specifically mean "a source package's own identity".
type SourcePackageId = PackageId

// PackageSourceKind discriminates PackageSource's two variants.
type PackageSourceKind uint8

const (
	SourceInstalled PackageSourceKind = iota
	SourceBuildable
)

// PackageSource is either an already-installed package or a buildable
// source package version. The Index yields these, never a bare
// InstalledPackage or SourcePackage on its own, so callers always know
// which variant they're holding.
type PackageSource struct {
	Kind      PackageSourceKind
	Installed *InstalledPackage
	Source    *SourcePackage
}

func installedSource(p InstalledPackage) PackageSource {
	return PackageSource{Kind: SourceInstalled, Installed: &p}
}

func buildableSource(p SourcePackage) PackageSource {
	return PackageSource{Kind: SourceBuildable, Source: &p}
}

// Version reports the version carried by either variant.
func (ps PackageSource) Version() Version {
	if ps.Kind == SourceInstalled {
		return ps.Installed.Version
	}
	return ps.Source.Id.Version
}

// Name reports the package name carried by either variant.
func (ps PackageSource) Name() PackageName {
	if ps.Kind == SourceInstalled {
		return ps.Installed.Name
	}
	return ps.Source.Id.Name
}
