// Package config reads a project's manifest from TOML and turns its
// human-written version-range syntax into the solver's own VersionRange
// algebra.
package config

import (
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"github.com/pkgsolve/modsolve/solver"
)

// ParseRange parses one manifest-syntax range expression, such as
// ">=1.2 <2.0" or "^1.4 || 2.*", into a solver.VersionRange. Comma- and
// space-separated clauses intersect; "||"-separated groups union.
// Operators are recognized here; Masterminds/semver validates each
// individual version token, the authoritative version-syntax library the rest
// of this codebase's example corpus reaches for, but the resulting range
// is always rebuilt as a solver.VersionRange so the core package never
// depends on the config-layer syntax.
func ParseRange(expr string) (solver.VersionRange, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return solver.AnyVersion(), nil
	}

	groups := strings.Split(expr, "||")
	result := solver.NoVersion()
	for _, g := range groups {
		clause, err := parseClause(g)
		if err != nil {
			return solver.VersionRange{}, errors.Wrapf(err, "parsing range clause %q", g)
		}
		result = result.Union(clause)
	}
	return result, nil
}

func parseClause(clause string) (solver.VersionRange, error) {
	fields := strings.Fields(strings.ReplaceAll(clause, ",", " "))
	if len(fields) == 0 {
		return solver.AnyVersion(), nil
	}
	result := solver.AnyVersion()
	for _, f := range fields {
		iv, err := parseTerm(f)
		if err != nil {
			return solver.VersionRange{}, err
		}
		result = result.Intersect(iv)
	}
	return result, nil
}

func parseTerm(term string) (solver.VersionRange, error) {
	switch {
	case strings.HasPrefix(term, ">="):
		v, err := parseVersion(term[2:])
		return solver.AtLeast(v), err
	case strings.HasPrefix(term, "<="):
		v, err := parseVersion(term[2:])
		if err != nil {
			return solver.VersionRange{}, err
		}
		return solver.LessThan(v).Union(solver.Exactly(v)), nil
	case strings.HasPrefix(term, ">"):
		v, err := parseVersion(term[1:])
		if err != nil {
			return solver.VersionRange{}, err
		}
		return solver.AtLeast(v).Intersect(solver.Exactly(v).Complement()), nil
	case strings.HasPrefix(term, "<"):
		v, err := parseVersion(term[1:])
		return solver.LessThan(v), err
	case strings.HasPrefix(term, "^"):
		v, err := parseVersion(term[1:])
		return solver.WithinMajor(v), err
	case strings.HasPrefix(term, "="):
		v, err := parseVersion(term[1:])
		return solver.Exactly(v), err
	case strings.HasSuffix(term, ".*"):
		v, err := parseVersion(strings.TrimSuffix(term, ".*"))
		return solver.WithinMajor(v), err
	default:
		v, err := parseVersion(term)
		return solver.Exactly(v), err
	}
}

// parseVersion validates term as a real semantic version via
// Masterminds/semver before handing its component sequence to the
// solver's own dotted-integer Version parser, so a manifest typo ("1.2.x")
// is rejected at the config boundary with a semver-quality error message
// instead of surfacing as a confusing mid-search failure.
func parseVersion(term string) (solver.Version, error) {
	if _, err := semver.NewVersion(term); err != nil {
		return nil, errors.Wrapf(err, "invalid version %q", term)
	}
	return solver.ParseVersion(normalizeForDotted(term))
}

// normalizeForDotted strips a semver prerelease/build suffix, since the
// solver's Version type models only the dotted-integer release sequence;
// prerelease ordering is a manifest-layer concern this package doesn't
// carry into the core.
func normalizeForDotted(term string) string {
	if i := strings.IndexAny(term, "-+"); i >= 0 {
		term = term[:i]
	}
	return term
}
