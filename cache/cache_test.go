package cache

import (
	"path/filepath"
	"testing"

	"github.com/pkgsolve/modsolve/solver"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePlan() *solver.InstallPlan {
	return &solver.InstallPlan{
		Packages: []solver.ResolverPackage{
			{
				Kind:          solver.PlanPreExisting,
				QualifiedName: solver.Top("base"),
				PreExisting: &solver.InstalledPackage{
					Unit: "base-1", Name: "base", Version: solver.MustParseVersion("1.0.0"), Exposed: true,
				},
			},
		},
	}
}

func TestCacheMissThenHit(t *testing.T) {
	s := openTestStore(t)
	key := Key([]solver.PackageDependency{{Name: "app", Range: solver.AnyVersion()}}, solver.DefaultOptions(), "fingerprint-1")

	if _, ok, err := s.Get(key); err != nil {
		t.Fatalf("Get: %v", err)
	} else if ok {
		t.Fatal("expected a miss on an empty cache")
	}

	plan := samplePlan()
	if err := s.Put(key, plan); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit after Put")
	}
	if len(got.Packages) != 1 || got.Packages[0].QualifiedName.Name != "base" {
		t.Fatalf("unexpected decoded plan: %+v", got)
	}
}

func TestKeyIsStableAndInputSensitive(t *testing.T) {
	targets := []solver.PackageDependency{{Name: "app", Range: solver.AnyVersion()}}
	opts := solver.DefaultOptions()

	a := Key(targets, opts, "fingerprint-1")
	b := Key(targets, opts, "fingerprint-1")
	if a != b {
		t.Fatal("Key should be deterministic for identical inputs")
	}

	c := Key(targets, opts, "fingerprint-2")
	if a == c {
		t.Fatal("Key should change when the index fingerprint changes")
	}

	opts2 := opts
	opts2.IndependentGoals = true
	d := Key(targets, opts2, "fingerprint-1")
	if a == d {
		t.Fatal("Key should change when options change")
	}
}

func TestCacheOverwrite(t *testing.T) {
	s := openTestStore(t)
	key := Key(nil, solver.DefaultOptions(), "fp")

	first := samplePlan()
	if err := s.Put(key, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	second := &solver.InstallPlan{}
	if err := s.Put(key, second); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if len(got.Packages) != 0 {
		t.Fatalf("expected the second Put to overwrite the first, got %+v", got)
	}
}
