package solver

// GoalOrder lets a caller override the default nearest-goal-first
// heuristic with a total order of its own.
type GoalOrder func(a, b Goal) bool

// Options tunes how the Driver builds and walks the Search tree. The zero
// value turns every option off, backjumping and goal reordering included;
// DefaultOptions returns the recommended settings.
type Options struct {
	// IndependentGoals, when set, resolves each top-level target in its
	// own QualIndep qualifier subspace rather than sharing QualTop, so
	// that two targets may depend on mutually-incompatible versions of
	// the same package.
	IndependentGoals bool

	// ReorderGoals enables the nearest-goal-first heuristic; when false,
	// and neither GoalOrder nor CountConflicts applies, goals are
	// processed in declaration order.
	ReorderGoals bool
	// GoalOrder, if non-nil, overrides the built-in heuristic entirely.
	GoalOrder GoalOrder

	// CountConflicts prefers expanding the goal that appears in the most
	// ConflictSets seen so far; ties keep declaration order, and
	// ReorderGoals is not consulted while it is set. Per SPEC_FULL.md's Open Question decision, an explicit
	// GoalOrder always takes precedence over CountConflicts.
	CountConflicts bool

	// StrongFlags promotes flag goals ahead of package goals in the
	// GoalChoice pool (weak flags still sort last among them), so a flag
	// conflict is found before the search commits to package versions
	// that would otherwise hide it.
	StrongFlags bool

	// AvoidReinstalls discourages (but does not forbid) re-resolving an
	// already-installed package to a source build of the same version.
	AvoidReinstalls bool

	// ShadowInstalledPackages allows a source build of a package to be
	// chosen even when an installed package of the same name already
	// satisfies every constraint, rather than preferring the installed
	// one outright.
	ShadowInstalledPackages bool

	// EnableBackjumping turns non-chronological backtracking on; with it
	// false the Driver always retries the immediately preceding choice,
	// which is useful for differential testing against a naive
	// chronological backtracker.
	EnableBackjumping bool

	// MaxBackjumps bounds the number of backjumps the Driver will
	// perform before giving up with FailBudgetExhausted. Zero means
	// unbounded.
	MaxBackjumps int

	// EnableAllTests and EnableAllBenchmarks force every package's
	// optional stanzas on, overriding per-package StanzaPreference.
	EnableAllTests      bool
	EnableAllBenchmarks bool
}

// DefaultOptions returns the Driver's recommended defaults: backjumping
// and goal reordering on, everything else conservative.
func DefaultOptions() Options {
	return Options{
		ReorderGoals:      true,
		EnableBackjumping: true,
	}
}
