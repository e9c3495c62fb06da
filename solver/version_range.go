package solver

import "sort"

// VersionRange is a boolean combination of primitive ranges, evaluated as a
// disjoint, sorted set of intervals, each bound inclusive or exclusive
// (or infinite). Evaluation is total: every
// Version either matches or doesn't, and the empty range is representable
// (and satisfies nothing).
//
// The interval-set representation, and the bound/interval comparison
// machinery below, follow the disjoint-interval approach to version ranges:
// a range is canonicalized to a sorted list of non-overlapping, non-adjacent
// intervals, which makes union, intersection and complement simple
// list-merge operations instead of ad hoc case analysis per range shape.
type VersionRange struct {
	intervals []versionInterval
}

type versionBound struct {
	version   Version
	inclusive bool
	infinite  int8 // -1 = -inf, 0 = finite, 1 = +inf
}

const (
	boundNegInf = int8(-1)
	boundFinite = int8(0)
	boundPosInf = int8(1)
)

func negInfBound() versionBound { return versionBound{infinite: boundNegInf, inclusive: true} }
func posInfBound() versionBound { return versionBound{infinite: boundPosInf, inclusive: true} }

func lowerBound(v Version, inclusive bool) versionBound {
	if v == nil {
		return negInfBound()
	}
	return versionBound{version: v, inclusive: inclusive}
}

func upperBound(v Version, inclusive bool) versionBound {
	if v == nil {
		return posInfBound()
	}
	return versionBound{version: v, inclusive: inclusive}
}

// compareLower orders two lower bounds; at equal version, inclusive sorts
// before exclusive (">=V" admits more than ">V").
func compareLower(a, b versionBound) int {
	switch {
	case a.infinite == boundNegInf && b.infinite == boundNegInf:
		return 0
	case a.infinite == boundNegInf:
		return -1
	case b.infinite == boundNegInf:
		return 1
	case a.infinite == boundPosInf && b.infinite == boundPosInf:
		return 0
	case a.infinite == boundPosInf:
		return 1
	case b.infinite == boundPosInf:
		return -1
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return -1
	}
	return 1
}

// compareUpper orders two upper bounds; at equal version, exclusive sorts
// before inclusive ("<V" admits less than "<=V").
func compareUpper(a, b versionBound) int {
	switch {
	case a.infinite == boundPosInf && b.infinite == boundPosInf:
		return 0
	case a.infinite == boundPosInf:
		return 1
	case b.infinite == boundPosInf:
		return -1
	case a.infinite == boundNegInf && b.infinite == boundNegInf:
		return 0
	case a.infinite == boundNegInf:
		return -1
	case b.infinite == boundNegInf:
		return 1
	}
	if c := a.version.Compare(b.version); c != 0 {
		return c
	}
	if a.inclusive == b.inclusive {
		return 0
	}
	if a.inclusive {
		return 1
	}
	return -1
}

type versionInterval struct {
	lower, upper versionBound
}

func (iv versionInterval) isEmpty() bool {
	if iv.lower.infinite == boundPosInf || iv.upper.infinite == boundNegInf {
		return true
	}
	if iv.lower.infinite != boundFinite || iv.upper.infinite != boundFinite {
		return false
	}
	c := iv.lower.version.Compare(iv.upper.version)
	if c < 0 {
		return false
	}
	if c > 0 {
		return true
	}
	return !iv.lower.inclusive || !iv.upper.inclusive
}

func (iv versionInterval) contains(v Version) bool {
	if iv.lower.infinite != boundNegInf {
		c := v.Compare(iv.lower.version)
		if c < 0 || (c == 0 && !iv.lower.inclusive) {
			return false
		}
	}
	if iv.upper.infinite != boundPosInf {
		c := v.Compare(iv.upper.version)
		if c > 0 || (c == 0 && !iv.upper.inclusive) {
			return false
		}
	}
	return true
}

// touches reports whether iv and o overlap or are adjacent, so they can be
// merged into one interval without admitting a version neither did.
func (iv versionInterval) touches(o versionInterval) bool {
	return !upperBelowLower(iv.upper, o.lower) && !upperBelowLower(o.upper, iv.lower)
}

func upperBelowLower(u, l versionBound) bool {
	switch {
	case u.infinite == boundNegInf:
		return l.infinite != boundNegInf
	case l.infinite == boundPosInf:
		return u.infinite != boundPosInf
	case u.infinite == boundPosInf, l.infinite == boundNegInf:
		return false
	}
	c := u.version.Compare(l.version)
	if c < 0 {
		return true
	}
	if c > 0 {
		return false
	}
	return !u.inclusive && !l.inclusive
}

func (iv versionInterval) merge(o versionInterval) versionInterval {
	lower := iv.lower
	if compareLower(o.lower, lower) < 0 {
		lower = o.lower
	}
	upper := iv.upper
	if compareUpper(o.upper, upper) > 0 {
		upper = o.upper
	}
	return versionInterval{lower: lower, upper: upper}
}

func (iv versionInterval) complementParts() []versionInterval {
	var out []versionInterval
	if iv.lower.infinite != boundNegInf {
		out = append(out, versionInterval{
			lower: negInfBound(),
			upper: versionBound{version: iv.lower.version, inclusive: !iv.lower.inclusive},
		})
	}
	if iv.upper.infinite != boundPosInf {
		out = append(out, versionInterval{
			lower: versionBound{version: iv.upper.version, inclusive: !iv.upper.inclusive},
			upper: posInfBound(),
		})
	}
	return out
}

func normalizeIntervals(ivs []versionInterval) []versionInterval {
	filtered := ivs[:0:0]
	for _, iv := range ivs {
		if !iv.isEmpty() {
			filtered = append(filtered, iv)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	sort.Slice(filtered, func(i, j int) bool {
		return compareLower(filtered[i].lower, filtered[j].lower) < 0
	})
	merged := filtered[:1]
	for _, cur := range filtered[1:] {
		last := &merged[len(merged)-1]
		if last.touches(cur) {
			*last = last.merge(cur)
		} else {
			merged = append(merged, cur)
		}
	}
	return merged
}

// --- Public constructors -------------------------------------------------

// AnyVersion matches every version.
func AnyVersion() VersionRange {
	return VersionRange{intervals: []versionInterval{{lower: negInfBound(), upper: posInfBound()}}}
}

// NoVersion matches no version, the empty range.
func NoVersion() VersionRange {
	return VersionRange{}
}

// Exactly matches only v.
func Exactly(v Version) VersionRange {
	return VersionRange{intervals: []versionInterval{{
		lower: lowerBound(v, true),
		upper: upperBound(v, true),
	}}}
}

// AtLeast matches versions >= v.
func AtLeast(v Version) VersionRange {
	return VersionRange{intervals: []versionInterval{{lower: lowerBound(v, true), upper: posInfBound()}}}
}

// LessThan matches versions < v.
func LessThan(v Version) VersionRange {
	return VersionRange{intervals: []versionInterval{{lower: negInfBound(), upper: upperBound(v, false)}}}
}

// WithinMajor matches versions in [v, nextMajor(v)), the caret-range
// primitive ("^1.2.3" admits 1.2.3 up to, but not including, 2.0.0).
func WithinMajor(v Version) VersionRange {
	if len(v) == 0 {
		return AnyVersion()
	}
	next := make(Version, len(v))
	copy(next, v)
	next[0]++
	for i := 1; i < len(next); i++ {
		next[i] = 0
	}
	return VersionRange{intervals: []versionInterval{{
		lower: lowerBound(v, true),
		upper: upperBound(next, false),
	}}}
}

// Matches reports whether v falls inside the range.
func (r VersionRange) Matches(v Version) bool {
	for _, iv := range r.intervals {
		if iv.contains(v) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the range admits no version at all.
func (r VersionRange) IsEmpty() bool {
	return len(r.intervals) == 0
}

// Union returns the range admitting any version admitted by r or o.
func (r VersionRange) Union(o VersionRange) VersionRange {
	all := append(append([]versionInterval{}, r.intervals...), o.intervals...)
	return VersionRange{intervals: normalizeIntervals(all)}
}

// Intersect returns the range admitting only versions admitted by both r
// and o. An empty result is a range violation at the solver layer, but is
// representable here.
func (r VersionRange) Intersect(o VersionRange) VersionRange {
	var out []versionInterval
	for _, a := range r.intervals {
		for _, b := range o.intervals {
			lower := a.lower
			if compareLower(b.lower, lower) > 0 {
				lower = b.lower
			}
			upper := a.upper
			if compareUpper(b.upper, upper) < 0 {
				upper = b.upper
			}
			iv := versionInterval{lower: lower, upper: upper}
			if !iv.isEmpty() {
				out = append(out, iv)
			}
		}
	}
	return VersionRange{intervals: normalizeIntervals(out)}
}

// Complement returns the range admitting exactly the versions r does not.
func (r VersionRange) Complement() VersionRange {
	result := AnyVersion()
	for _, iv := range r.intervals {
		parts := iv.complementParts()
		excl := VersionRange{intervals: parts}
		result = result.Intersect(excl)
	}
	if len(r.intervals) == 0 {
		return AnyVersion()
	}
	return result
}

func (r VersionRange) String() string {
	if r.IsEmpty() {
		return "<none>"
	}
	if len(r.intervals) == 1 {
		iv := r.intervals[0]
		if iv.lower.infinite == boundNegInf && iv.upper.infinite == boundPosInf {
			return "*"
		}
		if iv.lower.infinite == boundFinite && iv.upper.infinite == boundFinite &&
			iv.lower.inclusive && iv.upper.inclusive && iv.lower.version.Equal(iv.upper.version) {
			return "=" + iv.lower.version.String()
		}
	}
	out := ""
	for i, iv := range r.intervals {
		if i > 0 {
			out += " || "
		}
		out += intervalString(iv)
	}
	return out
}

func intervalString(iv versionInterval) string {
	lo := "(-inf"
	if iv.lower.infinite == boundFinite {
		if iv.lower.inclusive {
			lo = "[" + iv.lower.version.String()
		} else {
			lo = "(" + iv.lower.version.String()
		}
	}
	hi := "+inf)"
	if iv.upper.infinite == boundFinite {
		if iv.upper.inclusive {
			hi = iv.upper.version.String() + "]"
		} else {
			hi = iv.upper.version.String() + ")"
		}
	}
	return lo + ", " + hi
}
