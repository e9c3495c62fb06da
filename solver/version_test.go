package solver

import "testing"

func TestVersionCompare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.2", "1.2.0", 0},
		{"1.2.1", "1.2", 1},
		{"1.9.0", "1.10.0", -1},
		{"2.0.0", "1.9.9", 1},
	}
	for _, c := range cases {
		a := MustParseVersion(c.a)
		b := MustParseVersion(c.b)
		if got := a.Compare(b); got != c.want {
			t.Errorf("Compare(%s, %s) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestParseVersionRejectsGarbage(t *testing.T) {
	if _, err := ParseVersion("1.x.0"); err == nil {
		t.Fatal("expected an error parsing 1.x.0")
	}
}

func TestVersionString(t *testing.T) {
	v := MustParseVersion("1.2.3")
	if got, want := v.String(), "1.2.3"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
