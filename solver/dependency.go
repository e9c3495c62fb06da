package solver

// Dependency is a structured dependency expression. Exactly one of the
// DepXxx fields is meaningful, selected by Kind: a closed sum type over a
// fixed set of dependency shapes, rather than an open-ended interface, so
// every consumer can exhaustively switch on Kind.
type Dependency struct {
	Kind DependencyKind

	// DepPackage is populated when Kind == DepPackage.
	Package *PackageDependency
	// DepBuildTool is populated when Kind == DepBuildTool.
	BuildTool *BuildToolDependency
	// DepExtension is populated when Kind == DepExtension.
	Extension ExtensionName
	// DepLanguage is populated when Kind == DepLanguage.
	Language LanguageName
	// DepPkgConfig is populated when Kind == DepPkgConfig.
	PkgConfig *PkgConfigDependency
	// DepConditional is populated when Kind == DepConditional.
	Conditional *ConditionalDependency
}

// DependencyKind discriminates the variants of Dependency.
type DependencyKind uint8

const (
	DepPackage DependencyKind = iota
	DepBuildTool
	DepExtension
	DepLanguage
	DepPkgConfig
	DepConditional
)

// PackageDependency is a dependency on some version range of another
// package, optionally requiring a named internal component of it.
type PackageDependency struct {
	Name      PackageName
	Range     VersionRange
	Component string // optional; "" means the package's default component
}

// BuildToolDependency is satisfied by a distinct, executable-producing
// build of a same-named package, resolved in the Exe qualifier subspace.
type BuildToolDependency struct {
	Exe   PackageName
	Range VersionRange
}

// PkgConfigDependency is satisfied by consulting an external pkg-config
// database for a system library, rather than the package Index.
type PkgConfigDependency struct {
	SystemLib string
	Range     VersionRange
}

// ConditionalDependency nests a flag test: If the package's flag Flag is
// assigned IfTrue, Then applies; otherwise Else applies. Conditionals may
// nest arbitrarily inside Then/Else.
type ConditionalDependency struct {
	Flag   FlagName
	IfTrue bool
	Then   []Dependency
	Else   []Dependency
}

// Resolve flattens a dependency tree, given a concrete flag assignment,
// into the leaf dependencies actually in force. Flags absent from
// assignment default to false, matching "undecided means not yet
// committed", callers that need a flag's declared default should resolve
// it into assignment before calling Resolve.
func Resolve(deps []Dependency, assignment FlagAssignment) []Dependency {
	var out []Dependency
	for _, d := range deps {
		if d.Kind != DepConditional {
			out = append(out, d)
			continue
		}
		c := d.Conditional
		branch := c.Else
		if assignment[c.Flag] == c.IfTrue {
			branch = c.Then
		}
		out = append(out, Resolve(branch, assignment)...)
	}
	return out
}

// FlagsIn collects every flag name referenced by a conditional anywhere in
// the dependency tree, in first-encountered order.
func FlagsIn(deps []Dependency) []FlagName {
	seen := make(map[FlagName]bool)
	var out []FlagName
	var walk func([]Dependency)
	walk = func(ds []Dependency) {
		for _, d := range ds {
			if d.Kind != DepConditional {
				continue
			}
			if !seen[d.Conditional.Flag] {
				seen[d.Conditional.Flag] = true
				out = append(out, d.Conditional.Flag)
			}
			walk(d.Conditional.Then)
			walk(d.Conditional.Else)
		}
	}
	walk(deps)
	return out
}
