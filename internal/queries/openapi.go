package queries

import (
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/openapi"
)

// Schemas returns the component schemas for query payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Category": openapi.Enum("Clinical category", enumValues(Categories())...),
		"Urgency":  openapi.Enum("Urgency level", enumValues(Urgencies())...),
		"Status":   openapi.Enum("Query lifecycle status", enumValues(Statuses())...),
		"CreateQuery": {
			Type:     "object",
			Required: []string{"question"},
			Properties: map[string]*openapi.Schema{
				"question":      {Type: "string", Description: "Health question text"},
				"is_anonymous":  {Type: "boolean", Description: "Hide the author from clinicians", Default: false},
				"urgency_level": openapi.SchemaRef("Urgency"),
			},
		},
		"Query": {
			Type:     "object",
			Required: []string{"id", "question", "category", "status", "urgency_level", "created_at", "is_anonymous"},
			Properties: map[string]*openapi.Schema{
				"id":                 {Type: "string", Format: "uuid"},
				"question":           {Type: "string"},
				"category":           openapi.SchemaRef("Category"),
				"status":             openapi.SchemaRef("Status"),
				"urgency_level":      openapi.SchemaRef("Urgency"),
				"created_at":         {Type: "string", Format: "date-time"},
				"ai_response":        {Type: "string", Description: "Draft answer, present once generated"},
				"clinician_response": {Type: "string", Description: "Verified answer, present once reviewed"},
				"reviewed_at":        {Type: "string", Format: "date-time"},
				"is_anonymous":       {Type: "boolean"},
				"patient_id":         {Type: "string", Format: "uuid", Description: "Omitted from clinician views of anonymous queries"},
			},
		},
		"QueryPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"queries":      {Type: "array", Items: openapi.SchemaRef("Query")},
				"pages":        {Type: "integer"},
				"current_page": {Type: "integer"},
				"total":        {Type: "integer"},
			},
		},
	}
}

func enumValues[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

func listOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listQueries",
		Summary:     "List queries",
		Description: "Patients see their own queries. Clinicians see the review queue.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("per_page", "integer", "Results per page", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK:           openapi.ResponseJSON("Query page", "QueryPage"),
			http.StatusUnauthorized: openapi.ResponseRef(openapi.Unauthorized),
		},
		Security: openapi.Bearer(),
	}
}

func createOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "createQuery",
		Summary:     "Submit a question",
		Description: "Triages the question and starts answer generation in the background.",
		RequestBody: openapi.RequestBodyJSON("CreateQuery", true),
		Responses: map[int]*openapi.Response{
			http.StatusCreated:               openapi.ResponseJSON("Pending query", "Query"),
			http.StatusBadRequest:            openapi.ResponseRef(openapi.BadRequest),
			http.StatusUnauthorized:          openapi.ResponseRef(openapi.Unauthorized),
			http.StatusForbidden:             openapi.ResponseRef(openapi.Forbidden),
			http.StatusRequestEntityTooLarge: openapi.ResponseRef(openapi.PayloadTooLarge),
			http.StatusUnsupportedMediaType:  openapi.ResponseRef(openapi.UnsupportedMediaType),
			http.StatusTooManyRequests:       openapi.ResponseRef(openapi.TooManyRequests),
		},
		Security: openapi.Bearer(),
	}
}

func findOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "getQuery",
		Summary:     "Get a query",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Query ID")},
		Responses: map[int]*openapi.Response{
			http.StatusOK:           openapi.ResponseJSON("Query", "Query"),
			http.StatusUnauthorized: openapi.ResponseRef(openapi.Unauthorized),
			http.StatusForbidden:    openapi.ResponseRef(openapi.Forbidden),
			http.StatusNotFound:     openapi.ResponseRef(openapi.NotFound),
		},
		Security: openapi.Bearer(),
	}
}

func stalledOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listStalledQueries",
		Summary:     "List stalled queries",
		Description: "Pending queries whose draft was never generated.",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("older_than", "string", "Minimum age as a Go duration, e.g. 10m", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK:         openapi.ResponseJSONArray("Stalled queries", "Query"),
			http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
			http.StatusForbidden:  openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func regenerateOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "regenerateQuery",
		Summary:     "Retry answer generation",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Query ID")},
		Responses: map[int]*openapi.Response{
			http.StatusAccepted:  openapi.ResponseJSON("Generation dispatched", "Query"),
			http.StatusNotFound:  openapi.ResponseRef(openapi.NotFound),
			http.StatusConflict:  openapi.ResponseRef(openapi.Conflict),
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}
