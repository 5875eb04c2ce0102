package lex

// ActionType identifies what a matched pattern causes the lexer to do once
// the winning alternative of the master pattern has been selected.
type ActionType int

const (
	// ActionNone discards the matched lexeme and continues scanning; no
	// token is produced.
	ActionNone ActionType = iota

	// ActionScan emits a token of the named class.
	ActionScan

	// ActionState changes the active lexer state (replacing the top of the
	// state stack) without emitting a token.
	ActionState

	// ActionScanAndState emits a token of the named class and then changes
	// the active lexer state.
	ActionScanAndState

	// ActionPushState emits no token and pushes a new state onto the state
	// stack, making it the active state.
	ActionPushState

	// ActionScanAndPushState emits a token of the named class and then
	// pushes a new state onto the state stack.
	ActionScanAndPushState

	// ActionPopState emits no token and pops the top of the state stack,
	// returning to whichever state was active before it.
	ActionPopState

	// ActionScanAndPopState emits a token of the named class and then pops
	// the top of the state stack.
	ActionScanAndPopState
)

// Action is what a lexer does once a pattern wins a match: produce a token,
// discard the lexeme, and/or manipulate the state stack.
type Action struct {
	Type    ActionType
	ClassID string
	State   string
}

// Discard causes the matched lexeme to be thrown away with no token
// produced; scanning continues from just past the match.
func Discard() Action {
	return Action{}
}

// LexAs emits a token of the given class ID for the matched lexeme.
func LexAs(classID string) Action {
	return Action{
		Type:    ActionScan,
		ClassID: classID,
	}
}

// SwapState replaces the active lexer state (the top of the state stack)
// with toState, without emitting a token.
func SwapState(toState string) Action {
	return Action{
		Type:  ActionState,
		State: toState,
	}
}

// LexAndSwapState emits a token of the given class and then replaces the
// active lexer state with newState.
func LexAndSwapState(classID string, newState string) Action {
	return Action{
		Type:    ActionScanAndState,
		ClassID: classID,
		State:   newState,
	}
}

// PushState pushes toState onto the state stack, making it active, without
// emitting a token. The prior state resumes once a matching PopState fires.
func PushState(toState string) Action {
	return Action{
		Type:  ActionPushState,
		State: toState,
	}
}

// LexAndPushState emits a token of the given class and then pushes newState
// onto the state stack.
func LexAndPushState(classID string, newState string) Action {
	return Action{
		Type:    ActionScanAndPushState,
		ClassID: classID,
		State:   newState,
	}
}

// PopState pops the top of the state stack without emitting a token,
// returning control to whichever state was active before it.
func PopState() Action {
	return Action{
		Type: ActionPopState,
	}
}

// LexAndPopState emits a token of the given class and then pops the top of
// the state stack.
func LexAndPopState(classID string) Action {
	return Action{
		Type:    ActionScanAndPopState,
		ClassID: classID,
	}
}
