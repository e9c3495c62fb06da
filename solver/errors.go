package solver

import (
	"fmt"
	"strings"
)

// badOptsError reports a malformed caller input, such as a version string
// that doesn't parse or an Options combination that doesn't make sense,
// detected before any search begins. It is distinct from the in-search
// failure categories below, which always carry a ConflictSet.
type badOptsError struct {
	msg string
}

func (e *badOptsError) Error() string { return e.msg }

// FailureKind discriminates the ways a search branch, or the search as a
// whole, can fail.
type FailureKind uint8

const (
	FailUnknownPackage FailureKind = iota
	FailVersionConflict
	FailFlagConflict
	FailMissingExtension
	FailMissingLanguage
	FailMissingPkgConfig
	FailCycleDetected
	FailSIRViolation
	FailLinkingViolation
	FailBudgetExhausted
)

func (k FailureKind) String() string {
	switch k {
	case FailUnknownPackage:
		return "unknown package"
	case FailVersionConflict:
		return "version conflict"
	case FailFlagConflict:
		return "flag conflict"
	case FailMissingExtension:
		return "missing extension"
	case FailMissingLanguage:
		return "missing language"
	case FailMissingPkgConfig:
		return "missing pkg-config dependency"
	case FailCycleDetected:
		return "dependency cycle"
	case FailSIRViolation:
		return "single instance restriction violated"
	case FailLinkingViolation:
		return "linking violation"
	case FailBudgetExhausted:
		return "backjump budget exhausted"
	default:
		return "solve failure"
	}
}

// SolveError is the error a branch's Fail node, or an exhausted Driver,
// carries. It separates the machine-checkable ConflictSet (used to decide
// how far back to jump) from the message a human reads, the same split
// golang-dep's errors.go draws between its Error() and traceString()
// methods.
type SolveError struct {
	Kind    FailureKind
	Package QualifiedPackageName
	Detail  string
	Set     ConflictSet
}

func (e *SolveError) Error() string {
	if e.Package.Name == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return fmt.Sprintf("%s: %s: %s", e.Kind, e.Package, e.Detail)
}

// traceString renders a longer, multi-line explanation suitable for a
// diagnostic report, naming each variable the ConflictSet implicates.
func (e *SolveError) traceString(names func(VarId) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", e.Error())
	vars := e.Set.Vars()
	if len(vars) == 0 {
		return b.String()
	}
	b.WriteString("implicated in:\n")
	for _, v := range vars {
		label := fmt.Sprintf("var#%d", v)
		if names != nil {
			if n := names(v); n != "" {
				label = n
			}
		}
		fmt.Fprintf(&b, "  - %s\n", label)
	}
	return b.String()
}

// NoMatchingVersion reports that a package's accumulated constraints
// intersect to the empty range.
func NoMatchingVersion(name QualifiedPackageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailVersionConflict, Package: name, Detail: "no version satisfies the accumulated constraints", Set: cs}
}

// UnknownPackageErr reports a reference to a package the Index has never
// heard of.
func UnknownPackageErr(name QualifiedPackageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailUnknownPackage, Package: name, Detail: "no installed or source package by this name", Set: cs}
}

// FlagConflictErr reports that a flag variable has no remaining legal
// value.
func FlagConflictErr(fv FlagVar, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailFlagConflict, Package: fv.Package, Detail: fmt.Sprintf("flag %s has no remaining legal assignment", fv.Flag), Set: cs}
}

// MissingExtensionErr reports a DepExtension dependency the target
// platform's CompilerInfo doesn't provide.
func MissingExtensionErr(name QualifiedPackageName, ext ExtensionName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailMissingExtension, Package: name, Detail: fmt.Sprintf("compiler does not support extension %s", ext), Set: cs}
}

// MissingLanguageErr reports a DepLanguage dependency the target
// compiler doesn't implement.
func MissingLanguageErr(name QualifiedPackageName, lang LanguageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailMissingLanguage, Package: name, Detail: fmt.Sprintf("compiler does not implement language edition %s", lang), Set: cs}
}

// MissingPkgConfigErr reports a DepPkgConfig dependency absent from, or
// out of range in, the PkgConfigDb.
func MissingPkgConfigErr(name QualifiedPackageName, lib string, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailMissingPkgConfig, Package: name, Detail: fmt.Sprintf("system library %s not available in required range", lib), Set: cs}
}

// CycleDetectedErr reports a dependency cycle that isn't exempted by the
// setup-dependency exception.
func CycleDetectedErr(name QualifiedPackageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailCycleDetected, Package: name, Detail: "dependency graph contains a disallowed cycle", Set: cs}
}

// SIRViolationErr reports two goals in the same qualifier resolving to
// incompatible versions, flags, or stanzas.
func SIRViolationErr(name QualifiedPackageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailSIRViolation, Package: name, Detail: "qualifier resolved to more than one package instance", Set: cs}
}

// LinkingViolationErr reports a cross-qualifier linking requirement the
// final plan failed to uphold.
func LinkingViolationErr(name QualifiedPackageName, cs ConflictSet) *SolveError {
	return &SolveError{Kind: FailLinkingViolation, Package: name, Detail: "linked packages resolved to divergent instances", Set: cs}
}

// BudgetExhaustedErr reports that the Driver hit Options.MaxBackjumps
// before finding a Done node or proving unsatisfiability.
func BudgetExhaustedErr(count int) *SolveError {
	return &SolveError{Kind: FailBudgetExhausted, Detail: fmt.Sprintf("exceeded backjump budget after %d backjumps", count)}
}
