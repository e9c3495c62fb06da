package solver

// NodeKind discriminates the six kinds of Search tree node this package
// builds. The tree is built and walked lazily: a node's children are
// closures, so a branch that validation prunes is never expanded past the
// point it fails.
type NodeKind uint8

const (
	NodeDone NodeKind = iota
	NodeFail
	NodePChoice
	NodeFChoice
	NodeSChoice
	NodeGoalChoice
)

// Node is one point in the Search tree. Exactly the fields matching Kind
// are meaningful, mirroring the closed-sum-type style used for Dependency
// and PackageSource elsewhere in this package.
type Node struct {
	Kind NodeKind

	// NodeDone
	Assignment *PartialAssignment

	// NodeFail
	Err *SolveError

	// NodePChoice: which PackageSource to commit Package to.
	Package      QualifiedPackageName
	PackageGoal  Goal
	PChoices     []PChoice

	// NodeFChoice: which way to decide Flag.
	Flag       FlagVar
	FlagGoal   Goal
	FChoices   [2]FChoice

	// NodeSChoice: whether to enable Stanza.
	Stanza     StanzaVar
	StanzaGoal Goal
	SChoices   [2]SChoice

	// NodeGoalChoice: which pending goal to expand next. Children are
	// aligned with Goals by index.
	Goals        []Goal
	GoalChildren []func() *Node
}

// PChoice is one branch of a PChoice node: committing to Source, and the
// (lazily built) subtree that follows from that commitment.
type PChoice struct {
	Source PackageSource
	Child  func() *Node
}

// FChoice is one branch of an FChoice node. Weak and Trivial describe the
// flag being decided, not the branch itself, so both alternatives of one
// FChoice node carry the same values: Weak means nothing in the package's
// dependency tree reads this flag, so deciding it can never itself cause a
// conflict (the goal heuristic sorts it after every non-weak goal);
// Trivial means both branches lead to the same set of dependencies, so
// which one is tried first is arbitrary.
type FChoice struct {
	Value   bool
	Weak    bool
	Trivial bool
	Child   func() *Node
}

// SChoice is one branch of an SChoice node.
type SChoice struct {
	Value bool
	Child func() *Node
}

// Goal is a pending decision the GoalChoice heuristic orders among. A goal
// is either a package to resolve, a flag to decide, or a stanza to decide;
// exactly one of the non-Kind-discriminating fields is populated.
type Goal struct {
	Kind GoalKind

	Package QualifiedPackageName
	FlagVar FlagVar
	Stanza  StanzaVar

	// VarId is this goal's interned decision variable, stable for the
	// lifetime of one solve, used for ConflictSet membership and for the
	// CountConflicts tally. Goal ordering never compares VarIds: the
	// fallback order is the goal's position in the pending pool.
	VarId VarId

	// Depth is the number of dependency edges between a package goal and
	// the nearest top-level target that introduced it; used by the
	// nearest-goal-first heuristic. A flag goal takes its package's Depth
	// plus one; a stanza goal is queued with Depth 0.
	Depth int

	// Weak is meaningful only for Kind == GoalFlag: the flag has no
	// dependency anywhere in its package's tree that reads it, so the
	// goal-order heuristic always sorts it behind every other pending
	// goal rather than competing with them on Depth or conflict count.
	Weak bool
}

// GoalKind discriminates Goal's variants.
type GoalKind uint8

const (
	GoalPackage GoalKind = iota
	GoalFlag
	GoalStanza
)

func doneNode(pa *PartialAssignment) *Node {
	return &Node{Kind: NodeDone, Assignment: pa}
}

func failNode(err *SolveError) *Node {
	return &Node{Kind: NodeFail, Err: err}
}

func pChoiceNode(name QualifiedPackageName, goal Goal, choices []PChoice) *Node {
	return &Node{Kind: NodePChoice, Package: name, PackageGoal: goal, PChoices: choices}
}

func fChoiceNode(fv FlagVar, goal Goal, choices [2]FChoice) *Node {
	return &Node{Kind: NodeFChoice, Flag: fv, FlagGoal: goal, FChoices: choices}
}

func sChoiceNode(sv StanzaVar, goal Goal, choices [2]SChoice) *Node {
	return &Node{Kind: NodeSChoice, Stanza: sv, StanzaGoal: goal, SChoices: choices}
}

func goalChoiceNode(goals []Goal, children []func() *Node) *Node {
	return &Node{Kind: NodeGoalChoice, Goals: goals, GoalChildren: children}
}
