package queries

import (
	"encoding/json"
	"slices"
)

// Status is the lifecycle state of a Query.
type Status string

// Lifecycle states in forward order.
const (
	StatusPending       Status = "pending"
	StatusPendingReview Status = "pending_review"
	StatusVerified      Status = "verified"
)

var statuses = []Status{
	StatusPending,
	StatusPendingReview,
	StatusVerified,
}

// transitions lists every legal edge. Creation into StatusPending is not an edge.
var transitions = map[Status]Status{
	StatusPending:       StatusPendingReview,
	StatusPendingReview: StatusVerified,
}

// Statuses returns all lifecycle states in order.
func Statuses() []Status {
	return statuses
}

// Next returns the single state reachable from s.
func (s Status) Next() (Status, bool) {
	next, ok := transitions[s]
	return next, ok
}

// CanTransition reports whether s -> to is a legal edge.
func (s Status) CanTransition(to Status) bool {
	next, ok := transitions[s]
	return ok && next == to
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// Source returns the state that transitions into to.
func Source(to Status) (Status, bool) {
	for from, next := range transitions {
		if next == to {
			return from, true
		}
	}
	return "", false
}

// UnmarshalJSON validates that the decoded string is a known status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus validates a string as a known status.
func ParseStatus(s string) (Status, error) {
	v := Status(s)
	if !slices.Contains(statuses, v) {
		return "", ErrInvalidStatus
	}
	return v, nil
}
