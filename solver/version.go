package solver

import (
	"strconv"
	"strings"
)

// Version is a non-empty sequence of non-negative integers, compared
// lexicographically component by component; a missing trailing component
// compares as zero. "1.2" and "1.2.0" are therefore equal.
type Version []uint64

// MustParseVersion parses a dotted integer sequence like "1.2.3" into a
// Version. It panics on malformed input, so it is intended for literals in
// tests and fixtures, not for parsing untrusted input (use ParseVersion for
// that).
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// ParseVersion parses a dotted sequence of non-negative integers.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	v := make(Version, len(parts))
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 64)
		if err != nil {
			return nil, &badOptsError{msg: "invalid version component " + strconv.Quote(p) + " in " + strconv.Quote(s)}
		}
		v[i] = n
	}
	return v, nil
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than
// o, comparing component-wise and treating a shorter sequence as
// zero-padded.
func (v Version) Compare(o Version) int {
	n := len(v)
	if len(o) > n {
		n = len(o)
	}
	for i := 0; i < n; i++ {
		var a, b uint64
		if i < len(v) {
			a = v[i]
		}
		if i < len(o) {
			b = o[i]
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
	}
	return 0
}

// Sort is Compare under another name, for callers that take an
// int-returning comparator (slices.SortFunc-style).
func (v Version) Sort(o Version) int { return v.Compare(o) }

// Equal reports whether v and o denote the same version.
func (v Version) Equal(o Version) bool { return v.Compare(o) == 0 }

// Less reports whether v sorts strictly before o.
func (v Version) Less(o Version) bool { return v.Compare(o) < 0 }

// Major returns the first component, or 0 if the version is empty.
func (v Version) Major() uint64 {
	if len(v) == 0 {
		return 0
	}
	return v[0]
}

func (v Version) String() string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = strconv.FormatUint(n, 10)
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, ".")
}

// PackageId identifies one specific available release: a name paired with
// a concrete version.
type PackageId struct {
	Name    PackageName
	Version Version
}

func (id PackageId) String() string {
	return string(id.Name) + "@" + id.Version.String()
}
