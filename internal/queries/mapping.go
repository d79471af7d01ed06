package queries

import (
	"database/sql"

	"github.com/google/uuid"

	"github.com/JaimeStill/caduceus/pkg/query"
	"github.com/JaimeStill/caduceus/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "queries", "q").
	Project("id", "ID").
	Project("patient_id", "PatientID").
	Project("question", "Question").
	Project("category", "Category").
	Project("urgency_level", "Urgency").
	Project("status", "Status").
	Project("ai_response", "AIResponse").
	Project("clinician_response", "ClinicianResponse").
	Project("clinician_id", "ClinicianID").
	Project("is_anonymous", "IsAnonymous").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	Project("reviewed_at", "ReviewedAt")

var defaultSort = query.SortField{
	Field: "CreatedAt",
}

func scanQuery(s repository.Scanner) (Query, error) {
	var (
		q                 Query
		aiResponse        sql.NullString
		clinicianResponse sql.NullString
		clinicianID       uuid.NullUUID
		reviewedAt        sql.NullTime
	)

	err := s.Scan(
		&q.ID,
		&q.PatientID,
		&q.Question,
		&q.Category,
		&q.Urgency,
		&q.Status,
		&aiResponse,
		&clinicianResponse,
		&clinicianID,
		&q.IsAnonymous,
		&q.CreatedAt,
		&q.UpdatedAt,
		&reviewedAt,
	)
	if err != nil {
		return q, err
	}

	q.AIResponse = aiResponse.String
	q.ClinicianResponse = clinicianResponse.String
	if clinicianID.Valid {
		q.ClinicianID = &clinicianID.UUID
	}
	if reviewedAt.Valid {
		t := reviewedAt.Time
		q.ReviewedAt = &t
	}
	return q, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
