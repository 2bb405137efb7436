package models

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusPaid      Status = "paid"
)

// transitions lists every allowed forward move. Anything absent is rejected.
var transitions = map[Status]map[Status]struct{}{
	StatusPending: {
		StatusConfirmed: {},
		StatusPaid:      {},
	},
	StatusConfirmed: {
		StatusPaid: {},
	},
	StatusPaid: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether moving from s to next is allowed.
// Equal statuses are not a transition; callers treat them as no-ops.
func (s Status) CanTransition(next Status) bool {
	allowed, ok := transitions[s]
	if !ok {
		return false
	}
	_, ok = allowed[next]
	return ok
}

func (s Status) String() string {
	return string(s)
}
