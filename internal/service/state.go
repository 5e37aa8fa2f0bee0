package service

// State is one step of the snippet-analysis lifecycle. The flow is linear;
// the only branch is whether the suggestion came from the model or the
// fallback, and both converge on AFTER_SCORED.
type State string

const (
	StatePendingBefore      State = "PENDING_BEFORE"
	StateBeforeScored       State = "BEFORE_SCORED"
	StateAwaitingSuggestion State = "AWAITING_SUGGESTION"
	StateSuggestionReceived State = "SUGGESTION_RECEIVED"
	StateSuggestionFallback State = "SUGGESTION_FALLBACK"
	StateAfterScored        State = "AFTER_SCORED"
	StateDeltaComputed      State = "DELTA_COMPUTED"
	StateDone               State = "DONE"
)
