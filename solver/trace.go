package solver

// TraceEventKind tags one step of the raw solve trace. The trace is kept
// as a flat, tagged event stream deliberately separate from any rendered
// explanation; a caller's own CLI front-end decides how to turn these
// into prose. This package only ever appends facts to the stream.
type TraceEventKind uint8

const (
	TraceTryPackage TraceEventKind = iota
	TraceTryFlag
	TraceTryStanza
	TraceFail
	TraceBackjump
	TraceDone
)

// TraceEvent is one entry of the raw trace stream a Driver accumulates
// while exploring the Search tree.
type TraceEvent struct {
	Kind TraceEventKind

	Package QualifiedPackageName
	Source  PackageSource

	FlagVar   FlagVar
	FlagValue bool

	StanzaVar   StanzaVar
	StanzaValue bool

	Err *SolveError

	// JumpToDepth is set on TraceBackjump. The Driver always records -1
	// there; it does not track which depth a backjump lands on.
	JumpToDepth int
}

// TraceSink receives TraceEvents as the Driver produces them. Implementing
// this as an interface (rather than always accumulating a slice) lets a
// caller stream events to, say, a logrus logger without the solver core
// depending on logrus itself; cmd/resolve's traceLogger is that wiring.
type TraceSink interface {
	Emit(TraceEvent)
}

// SliceTraceSink is a TraceSink that just appends to a slice: the default
// used when the caller hasn't supplied anything fancier.
type SliceTraceSink struct {
	Events []TraceEvent
}

func (s *SliceTraceSink) Emit(e TraceEvent) {
	s.Events = append(s.Events, e)
}

// NullTraceSink discards every event; useful when a caller wants plan
// output without paying to accumulate a trace.
type NullTraceSink struct{}

func (NullTraceSink) Emit(TraceEvent) {}
