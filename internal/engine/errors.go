package engine

// Kind discriminates why a transition was rejected. Callers branch on the
// kind, never on the reason text.
type Kind int

const (
	// KindAuthorization marks a dispatcher that is not allowed to perform the
	// action (wrong turn, or a non-root identity starting a game).
	KindAuthorization Kind = iota + 1
	// KindValidation marks a payload that fails its structural constraints.
	KindValidation
	// KindState marks an action that is illegal in the current game state.
	KindState
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	default:
		return "unknown"
	}
}

// Error is the only error type transitions return. The authoritative state is
// guaranteed untouched whenever one is returned.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

func authorizationErr(reason string) *Error {
	return &Error{Kind: KindAuthorization, Reason: reason}
}

func validationErr(reason string) *Error {
	return &Error{Kind: KindValidation, Reason: reason}
}

func stateErr(reason string) *Error {
	return &Error{Kind: KindState, Reason: reason}
}

// KindOf returns the kind of an engine error, or 0 for any other error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return 0
}
