package domain

type CheckoutStatus string

const (
	CheckoutStatusIdle        CheckoutStatus = "IDLE"
	CheckoutStatusValidating  CheckoutStatus = "VALIDATING"
	CheckoutStatusBuilding    CheckoutStatus = "BUILDING"
	CheckoutStatusDispatching CheckoutStatus = "DISPATCHING"
	CheckoutStatusSucceeded   CheckoutStatus = "SUCCEEDED"
	CheckoutStatusFailed      CheckoutStatus = "FAILED"
)

// validTransitions encodes the checkout run state machine. Any state may
// fall to FAILED; forward progress is strictly linear.
var validTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutStatusIdle:        {CheckoutStatusValidating, CheckoutStatusFailed},
	CheckoutStatusValidating:  {CheckoutStatusBuilding, CheckoutStatusFailed},
	CheckoutStatusBuilding:    {CheckoutStatusDispatching, CheckoutStatusFailed},
	CheckoutStatusDispatching: {CheckoutStatusSucceeded, CheckoutStatusFailed},
}

func CanTransitionTo(from, to CheckoutStatus) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSucceeded || s == CheckoutStatusFailed
}

// String representation (for logging)
func (s CheckoutStatus) String() string {
	return string(s)
}
