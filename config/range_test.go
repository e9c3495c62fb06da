package config

import (
	"testing"

	"github.com/pkgsolve/modsolve/solver"
)

func TestParseRangeSimpleBound(t *testing.T) {
	rng, err := ParseRange(">=1.2.0 <2.0.0")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	cases := []struct {
		v    string
		want bool
	}{
		{"1.1.9", false},
		{"1.2.0", true},
		{"1.9.0", true},
		{"2.0.0", false},
	}
	for _, c := range cases {
		if got := rng.Matches(solver.MustParseVersion(c.v)); got != c.want {
			t.Errorf("Matches(%s) = %v, want %v", c.v, got, c.want)
		}
	}
}

func TestParseRangeCaret(t *testing.T) {
	rng, err := ParseRange("^1.4.0")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !rng.Matches(solver.MustParseVersion("1.9.0")) {
		t.Fatal("caret range should admit later 1.x releases")
	}
	if rng.Matches(solver.MustParseVersion("2.0.0")) {
		t.Fatal("caret range should not admit the next major version")
	}
}

func TestParseRangeUnion(t *testing.T) {
	rng, err := ParseRange("=1.0.0 || =2.0.0")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !rng.Matches(solver.MustParseVersion("1.0.0")) || !rng.Matches(solver.MustParseVersion("2.0.0")) {
		t.Fatal("expected the union to match both named versions")
	}
	if rng.Matches(solver.MustParseVersion("1.5.0")) {
		t.Fatal("expected the union to reject a version between the two")
	}
}

func TestParseRangeWildcard(t *testing.T) {
	rng, err := ParseRange("1.*")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !rng.Matches(solver.MustParseVersion("1.5.0")) {
		t.Fatal("1.* should match any 1.x release")
	}
	if rng.Matches(solver.MustParseVersion("2.0.0")) {
		t.Fatal("1.* should not match 2.x")
	}
}

func TestParseRangeEmptyIsAny(t *testing.T) {
	rng, err := ParseRange("")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !rng.Matches(solver.MustParseVersion("0.0.1")) {
		t.Fatal("an empty range expression should admit anything")
	}
}

func TestParseRangeRejectsGarbage(t *testing.T) {
	if _, err := ParseRange(">=1.x.0"); err == nil {
		t.Fatal("expected an error parsing a malformed version token")
	}
}

func TestParseRangeBareVersionIsExact(t *testing.T) {
	rng, err := ParseRange("1.2.3")
	if err != nil {
		t.Fatalf("ParseRange: %v", err)
	}
	if !rng.Matches(solver.MustParseVersion("1.2.3")) {
		t.Fatal("a bare version should be treated as an exact match")
	}
	if rng.Matches(solver.MustParseVersion("1.2.4")) {
		t.Fatal("a bare version should not match a neighboring release")
	}
}
