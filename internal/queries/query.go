// Package queries implements the patient query domain for Caduceus.
// It owns the Query record, its closed enumerations, the state machine that
// is the single writer of query status, and the record store contract with
// in-memory and PostgreSQL implementations.
package queries

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Query is a patient-submitted health question and its lifecycle record.
// PatientID is always recorded; View withholds it from clinicians when the
// query is anonymous.
type Query struct {
	ID                uuid.UUID  `json:"id"`
	PatientID         uuid.UUID  `json:"patient_id"`
	Question          string     `json:"question"`
	Category          Category   `json:"category"`
	Urgency           Urgency    `json:"urgency_level"`
	Status            Status     `json:"status"`
	AIResponse        string     `json:"ai_response,omitempty"`
	ClinicianResponse string     `json:"clinician_response,omitempty"`
	ClinicianID       *uuid.UUID `json:"clinician_id,omitempty"`
	IsAnonymous       bool       `json:"is_anonymous"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
}

// ResponseTime returns reviewed_at - created_at for verified queries.
func (q Query) ResponseTime() (time.Duration, bool) {
	if q.Status != StatusVerified || q.ReviewedAt == nil {
		return 0, false
	}
	return q.ReviewedAt.Sub(q.CreatedAt), true
}

// View is the boundary representation of a Query.
type View struct {
	ID                uuid.UUID  `json:"id"`
	Question          string     `json:"question"`
	Category          Category   `json:"category"`
	Status            Status     `json:"status"`
	UrgencyLevel      Urgency    `json:"urgency_level"`
	CreatedAt         time.Time  `json:"created_at"`
	AIResponse        *string    `json:"ai_response,omitempty"`
	ClinicianResponse *string    `json:"clinician_response,omitempty"`
	ReviewedAt        *time.Time `json:"reviewed_at,omitempty"`
	IsAnonymous       bool       `json:"is_anonymous"`
	PatientID         *uuid.UUID `json:"patient_id,omitempty"`
}

// View projects the query for a caller. Clinician-facing views omit the
// author of anonymous queries.
func (q Query) View(clinicianFacing bool) View {
	v := View{
		ID:           q.ID,
		Question:     q.Question,
		Category:     q.Category,
		Status:       q.Status,
		UrgencyLevel: q.Urgency,
		CreatedAt:    q.CreatedAt,
		ReviewedAt:   q.ReviewedAt,
		IsAnonymous:  q.IsAnonymous,
	}
	if q.AIResponse != "" {
		v.AIResponse = &q.AIResponse
	}
	if q.ClinicianResponse != "" {
		v.ClinicianResponse = &q.ClinicianResponse
	}
	if !clinicianFacing || !q.IsAnonymous {
		id := q.PatientID
		v.PatientID = &id
	}
	return v
}

// Views projects a slice of queries.
func Views(qs []Query, clinicianFacing bool) []View {
	out := make([]View, len(qs))
	for i, q := range qs {
		out[i] = q.View(clinicianFacing)
	}
	return out
}

// CreateCommand is the boundary input for submitting a question.
// A nil UrgencyLevel lets triage choose the default.
type CreateCommand struct {
	Question     string   `json:"question"`
	IsAnonymous  bool     `json:"is_anonymous"`
	UrgencyLevel *Urgency `json:"urgency_level,omitempty"`
}

// NewQuery carries a triaged submission into the state machine.
type NewQuery struct {
	PatientID   uuid.UUID
	Question    string
	Category    Category
	Urgency     Urgency
	IsAnonymous bool
}

// Review is a clinician's countersignature of a drafted answer.
type Review struct {
	ClinicianID uuid.UUID
	Response    string
}

// Triage is the classification assigned to a question at intake.
type Triage struct {
	Category Category `json:"category"`
	Urgency  Urgency  `json:"urgency_level"`
}

// Page is the boundary shape for paged query listings.
type Page struct {
	Queries     []View `json:"queries"`
	Pages       int    `json:"pages"`
	CurrentPage int    `json:"current_page"`
	Total       int    `json:"total"`
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
