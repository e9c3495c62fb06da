package solver

import "testing"

func TestConflictSetUnionAndContains(t *testing.T) {
	a := SingletonConflictSet(3)
	b := SingletonConflictSet(130)
	u := a.Union(b)

	if !u.Contains(3) || !u.Contains(130) {
		t.Fatal("union should contain both members")
	}
	if u.Contains(4) {
		t.Fatal("union should not contain an unrelated id")
	}
	if u.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", u.Len())
	}
}

func TestConflictSetDeepest(t *testing.T) {
	cs := EmptyConflictSet().Add(5).Add(200).Add(12)
	deepest, ok := cs.Deepest()
	if !ok || deepest != 200 {
		t.Fatalf("Deepest() = %d, %v, want 200, true", deepest, ok)
	}
}

func TestConflictSetEmpty(t *testing.T) {
	cs := EmptyConflictSet()
	if !cs.IsEmpty() {
		t.Fatal("fresh ConflictSet should be empty")
	}
	if _, ok := cs.Deepest(); ok {
		t.Fatal("empty set should have no deepest member")
	}
}

func TestVarTableInterning(t *testing.T) {
	vars := NewVarTable()
	a := vars.PackageVar(Top("widget"))
	b := vars.PackageVar(Top("widget"))
	c := vars.PackageVar(Top("gadget"))
	if a != b {
		t.Fatal("interning the same variable twice should return the same id")
	}
	if a == c {
		t.Fatal("distinct variables should get distinct ids")
	}
}
