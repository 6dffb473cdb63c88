package intake

// State is the position of an inbound event in the ingestion pipeline
type State string

const (
	StateReceived     State = "RECEIVED"
	StateValidated    State = "VALIDATED"
	StateParsed       State = "PARSED"
	StateDedupChecked State = "DEDUP_CHECKED"
	StateCreated      State = "CREATED"
	StateDuplicate    State = "DUPLICATE"
	StateRejected     State = "REJECTED"
	// StateNeedsReview holds events whose document could not be validated
	StateNeedsReview State = "NEEDS_REVIEW"
	// StateFailed holds events whose extraction retries were exhausted
	StateFailed State = "FAILED"
)

var transitions = map[State][]State{
	StateReceived:     {StateValidated, StateRejected},
	StateValidated:    {StateParsed, StateNeedsReview, StateFailed},
	StateParsed:       {StateDedupChecked},
	StateDedupChecked: {StateCreated, StateDuplicate},
	StateNeedsReview:  {StateReceived},
	StateFailed:       {StateReceived},
}

// IsValid checks if the state is valid
func (s State) IsValid() bool {
	switch s {
	case StateReceived, StateValidated, StateParsed, StateDedupChecked,
		StateCreated, StateDuplicate, StateRejected, StateNeedsReview, StateFailed:
		return true
	}
	return false
}

// IsTerminal returns true when the pipeline will not advance the event on its own
func (s State) IsTerminal() bool {
	switch s {
	case StateCreated, StateDuplicate, StateRejected, StateNeedsReview, StateFailed:
		return true
	}
	return false
}

// InFlightStates lists the states an event passes through before it settles
func InFlightStates() []State {
	return []State{StateReceived, StateValidated, StateParsed, StateDedupChecked}
}

// CanTransitionTo checks if the state can move to target
func (s State) CanTransitionTo(target State) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// RejectReason explains a REJECTED event
type RejectReason string

const (
	RejectInvalidSender  RejectReason = "invalid_sender"
	RejectNoCustomerCode RejectReason = "no_customer_code"
)
