package reviews

import (
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/openapi"
)

// Schemas returns the component schemas for review payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Review": {
			Type:     "object",
			Required: []string{"response"},
			Properties: map[string]*openapi.Schema{
				"response": {Type: "string", Description: "Final clinician answer"},
			},
		},
		"SubmitReview": {
			Type:     "object",
			Required: []string{"query_id", "response"},
			Properties: map[string]*openapi.Schema{
				"query_id": {Type: "string", Format: "uuid"},
				"response": {Type: "string"},
			},
		},
		"ClinicianStats": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"total_reviewed":            {Type: "integer"},
				"pending_reviews":           {Type: "integer"},
				"avg_response_time_seconds": {Type: "number"},
			},
		},
	}
}

func reviewResponses() map[int]*openapi.Response {
	return map[int]*openapi.Response{
		http.StatusOK:         openapi.ResponseJSON("Verified query", "Query"),
		http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
		http.StatusForbidden:  openapi.ResponseRef(openapi.Forbidden),
		http.StatusNotFound:   openapi.ResponseRef(openapi.NotFound),
		http.StatusConflict:   openapi.ResponseRef(openapi.Conflict),
	}
}

func queueOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listReviewQueue",
		Summary:     "Queries awaiting review",
		Description: "Ordered by urgency, then oldest first.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("per_page", "integer", "Results per page", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK:        openapi.ResponseJSON("Review queue", "QueryPage"),
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func submitOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "submitReview",
		Summary:     "Verify a drafted answer",
		RequestBody: openapi.RequestBodyJSON("SubmitReview", true),
		Responses:   reviewResponses(),
		Security:    openapi.Bearer(),
	}
}

func reviewOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "reviewQuery",
		Summary:     "Verify a drafted answer",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Query ID")},
		RequestBody: openapi.RequestBodyJSON("Review", true),
		Responses:   reviewResponses(),
		Security:    openapi.Bearer(),
	}
}

func statsOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "getClinicianStats",
		Summary:     "Review statistics for the caller",
		Responses: map[int]*openapi.Response{
			http.StatusOK:        openapi.ResponseJSON("Clinician stats", "ClinicianStats"),
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}
