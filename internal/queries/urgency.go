package queries

import (
	"encoding/json"
	"slices"
	"strings"
)

// Urgency is the priority band used to order the review queue.
type Urgency string

// Urgency levels, lowest first.
const (
	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"
)

var urgencies = []Urgency{
	UrgencyLow,
	UrgencyNormal,
	UrgencyHigh,
}

// Urgencies returns all urgency levels, lowest first.
func Urgencies() []Urgency {
	return urgencies
}

// Rank orders urgencies: high > normal > low.
func (u Urgency) Rank() int {
	return slices.Index(urgencies, u)
}

// UnmarshalJSON validates that the decoded string is a known urgency.
func (u *Urgency) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ParseUrgency(raw)
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// ParseUrgency validates a string as a known urgency. Matching ignores case.
func ParseUrgency(s string) (Urgency, error) {
	v := Urgency(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(urgencies, v) {
		return "", ErrInvalidUrgency
	}
	return v, nil
}
