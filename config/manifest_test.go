package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkgsolve/modsolve/solver"
)

const sampleManifest = `
[[targets]]
name = "app"
range = ">=1.0.0"

[constraints]
lib = "^2.0.0"

[preferences]
lib = "2.5.0"

[flags]
use-fast = true

[stanzas]
lib = ["tests"]

[options]
independent_goals = true
max_backjumps = 50
`

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture manifest: %v", err)
	}
	return path
}

func TestLoadManifestRoundTrip(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(m.Targets) != 1 || m.Targets[0].Name != "app" {
		t.Fatalf("unexpected targets: %+v", m.Targets)
	}
	if m.Constraints["lib"] != "^2.0.0" {
		t.Fatalf("unexpected constraint: %q", m.Constraints["lib"])
	}
	if !m.Flags["use-fast"] {
		t.Fatal("expected use-fast flag to decode true")
	}
	if !m.Options.IndependentGoals || m.Options.MaxBackjumps != 50 {
		t.Fatalf("unexpected options: %+v", m.Options)
	}
}

func TestManifestResolveTargets(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	targets, err := m.ResolveTargets()
	if err != nil {
		t.Fatalf("ResolveTargets: %v", err)
	}
	if len(targets) != 1 || targets[0].Name != "app" {
		t.Fatalf("unexpected targets: %+v", targets)
	}
	if !targets[0].Range.Matches(solver.MustParseVersion("1.2.0")) {
		t.Fatal("expected the parsed target range to admit 1.2.0")
	}
	if targets[0].Range.Matches(solver.MustParseVersion("0.9.0")) {
		t.Fatal("expected the parsed target range to reject 0.9.0")
	}
}

func TestManifestBuildConstraintModel(t *testing.T) {
	path := writeManifest(t, sampleManifest)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	cm, err := m.BuildConstraintModel()
	if err != nil {
		t.Fatalf("BuildConstraintModel: %v", err)
	}
	rng, labels := cm.VersionRange(solver.Top("lib"))
	if !rng.Matches(solver.MustParseVersion("2.1.0")) {
		t.Fatal("expected the lib constraint to admit 2.1.0")
	}
	if rng.Matches(solver.MustParseVersion("3.0.0")) {
		t.Fatal("expected the caret constraint to reject 3.0.0")
	}
	var sawUser bool
	for _, l := range labels {
		if l.Source == solver.SourceUser {
			sawUser = true
		}
	}
	if !sawUser {
		t.Fatal("expected the manifest constraint to be labeled SourceUser")
	}

	stanzas := cm.StanzaPreference(solver.PackageName("lib"))
	if !stanzas[solver.StanzaTests] {
		t.Fatal("expected the lib stanza preference to enable tests")
	}
}

func TestOptionsSpecDefaultsBackjumpingWhenUnset(t *testing.T) {
	var spec OptionsSpec
	opts := spec.ToSolverOptions()
	if !opts.EnableBackjumping {
		t.Fatal("expected EnableBackjumping to default true when left unset in the manifest")
	}
}

func TestOptionsSpecRespectsExplicitFalse(t *testing.T) {
	f := false
	spec := OptionsSpec{EnableBackjumping: &f}
	opts := spec.ToSolverOptions()
	if opts.EnableBackjumping {
		t.Fatal("expected an explicit false to be honored rather than defaulted")
	}
}
