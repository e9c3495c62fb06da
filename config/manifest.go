package config

import (
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"github.com/pkgsolve/modsolve/solver"
)

// Manifest is the on-disk, human-edited description of what to resolve and
// how: the build targets, any user-supplied version constraints and
// preferences, flag overrides, and solver Options. pelletier/go-toml/v2
// does the actual decoding; this package only shapes the result into the
// solver's own types.
type Manifest struct {
	Targets     []TargetSpec         `toml:"targets"`
	Constraints map[string]string    `toml:"constraints"`
	Preferences map[string]string    `toml:"preferences"`
	Installed   map[string]string    `toml:"installed_preference"`
	Flags       map[string]bool      `toml:"flags"`
	Stanzas     map[string][]string  `toml:"stanzas"`
	Options     OptionsSpec          `toml:"options"`
}

// TargetSpec is one top-level build target the manifest asks to resolve.
type TargetSpec struct {
	Name      string `toml:"name"`
	Component string `toml:"component"`
	Range     string `toml:"range"`
}

// OptionsSpec mirrors solver.Options in manifest-friendly, TOML-tagged
// form.
type OptionsSpec struct {
	IndependentGoals        bool `toml:"independent_goals"`
	ReorderGoals             bool `toml:"reorder_goals"`
	CountConflicts          bool `toml:"count_conflicts"`
	StrongFlags             bool `toml:"strong_flags"`
	AvoidReinstalls         bool `toml:"avoid_reinstalls"`
	ShadowInstalledPackages bool `toml:"shadow_installed_packages"`
	EnableBackjumping       *bool `toml:"enable_backjumping"`
	MaxBackjumps            int  `toml:"max_backjumps"`
	EnableAllTests          bool `toml:"enable_all_tests"`
	EnableAllBenchmarks     bool `toml:"enable_all_benchmarks"`
}

// LoadManifest reads and decodes the TOML manifest at path.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading manifest %s", path)
	}
	var m Manifest
	if err := toml.Unmarshal(raw, &m); err != nil {
		return nil, errors.Wrapf(err, "parsing manifest %s", path)
	}
	return &m, nil
}

// ResolveTargets converts the manifest's TargetSpecs into PackageDependency
// values ready for Driver.Solve.
func (m *Manifest) ResolveTargets() ([]solver.PackageDependency, error) {
	out := make([]solver.PackageDependency, 0, len(m.Targets))
	for _, t := range m.Targets {
		rng := solver.AnyVersion()
		if t.Range != "" {
			r, err := ParseRange(t.Range)
			if err != nil {
				return nil, errors.Wrapf(err, "target %s", t.Name)
			}
			rng = r
		}
		out = append(out, solver.PackageDependency{
			Name: solver.PackageName(t.Name), Range: rng, Component: t.Component,
		})
	}
	return out, nil
}

// BuildConstraintModel assembles a solver.ConstraintModel from the
// manifest's constraints, preferences, and stanza declarations, with each
// constraint labeled SourceUser since it originates directly from the
// manifest a human wrote. The [flags] table is decoded into Manifest.Flags
// but not carried into the model, and of installed_preference only the
// "*" entry is read.
func (m *Manifest) BuildConstraintModel() (*solver.ConstraintModel, error) {
	var constraints []solver.LabeledConstraint
	for name, expr := range m.Constraints {
		rng, err := ParseRange(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "constraint on %s", name)
		}
		constraints = append(constraints, solver.LabeledConstraint{
			Package: solver.Top(solver.PackageName(name)),
			Range:   rng,
			Source:  solver.SourceUser,
		})
	}

	var prefs []solver.PackagePreference
	for name, expr := range m.Preferences {
		rng, err := ParseRange(expr)
		if err != nil {
			return nil, errors.Wrapf(err, "preference on %s", name)
		}
		prefs = append(prefs, solver.PackagePreference{Name: solver.PackageName(name), Range: rng})
	}

	stanzaPrefs := make(map[solver.PackageName]solver.StanzaSet, len(m.Stanzas))
	for name, names := range m.Stanzas {
		set := make(solver.StanzaSet, len(names))
		for _, n := range names {
			switch n {
			case "tests":
				set[solver.StanzaTests] = true
			case "benchmarks":
				set[solver.StanzaBenchmarks] = true
			}
		}
		stanzaPrefs[solver.PackageName(name)] = set
	}

	defaultPref := solver.PreferInstalled
	if v, ok := m.Installed["*"]; ok && v == "latest" {
		defaultPref = solver.PreferLatest
	}

	return solver.NewConstraintModel(constraints, prefs, stanzaPrefs, defaultPref, m.Options.EnableAllTests, m.Options.EnableAllBenchmarks), nil
}

// ToSolverOptions converts OptionsSpec into solver.Options,
// EnableBackjumping defaulting to true (matching solver.DefaultOptions)
// when the manifest leaves it unset.
func (o OptionsSpec) ToSolverOptions() solver.Options {
	backjump := true
	if o.EnableBackjumping != nil {
		backjump = *o.EnableBackjumping
	}
	return solver.Options{
		IndependentGoals:        o.IndependentGoals,
		ReorderGoals:            o.ReorderGoals,
		CountConflicts:          o.CountConflicts,
		StrongFlags:             o.StrongFlags,
		AvoidReinstalls:         o.AvoidReinstalls,
		ShadowInstalledPackages: o.ShadowInstalledPackages,
		EnableBackjumping:       backjump,
		MaxBackjumps:            o.MaxBackjumps,
		EnableAllTests:          o.EnableAllTests,
		EnableAllBenchmarks:     o.EnableAllBenchmarks,
	}
}
