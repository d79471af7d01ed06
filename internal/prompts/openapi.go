package prompts

import (
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/openapi"
)

// Schemas returns the component schemas for prompt payloads.
func Schemas() map[string]*openapi.Schema {
	stage := openapi.Enum("Generation stage", enumValues(Stages())...)

	return map[string]*openapi.Schema{
		"Prompt": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":           {Type: "string", Format: "uuid"},
				"name":         {Type: "string"},
				"stage":        stage,
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
				"active":       {Type: "boolean", Description: "At most one prompt per stage is active"},
			},
		},
		"CreatePrompt": {
			Type:     "object",
			Required: []string{"name", "stage", "instructions"},
			Properties: map[string]*openapi.Schema{
				"name":         {Type: "string"},
				"stage":        stage,
				"instructions": {Type: "string"},
				"description":  {Type: "string"},
			},
		},
		"PromptSearch": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"page":     {Type: "integer"},
				"per_page": {Type: "integer"},
				"search":   {Type: "string"},
				"sort":     {Type: "string", Example: "-name"},
				"stage":    stage,
				"name":     {Type: "string"},
				"active":   {Type: "boolean"},
			},
		},
		"StageContent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"stage":   stage,
				"content": {Type: "string"},
			},
		},
		"PromptPage": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"data":     {Type: "array", Items: openapi.SchemaRef("Prompt")},
				"total":    {Type: "integer"},
				"page":     {Type: "integer"},
				"per_page": {Type: "integer"},
				"pages":    {Type: "integer"},
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

func promptResponses(status int, description string) map[int]*openapi.Response {
	return map[int]*openapi.Response{
		status:               openapi.ResponseJSON(description, "Prompt"),
		http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		http.StatusNotFound:  openapi.ResponseRef(openapi.NotFound),
	}
}

func listOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listPrompts",
		Summary:     "List prompt overrides",
		Parameters: []*openapi.Parameter{
			openapi.QueryParam("page", "integer", "Page number (1-indexed)", false),
			openapi.QueryParam("per_page", "integer", "Results per page", false),
			openapi.QueryParam("search", "string", "Matches name or description", false),
			openapi.QueryParam("sort", "string", "Comma separated fields, prefix - for descending", false),
			openapi.QueryParam("stage", "string", "Exact stage", false),
			openapi.QueryParam("name", "string", "Name contains", false),
			openapi.QueryParam("active", "boolean", "Active state", false),
		},
		Responses: map[int]*openapi.Response{
			http.StatusOK:        openapi.ResponseJSON("Prompt page", "PromptPage"),
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func searchOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "searchPrompts",
		Summary:     "Search prompt overrides",
		RequestBody: openapi.RequestBodyJSON("PromptSearch", true),
		Responses: map[int]*openapi.Response{
			http.StatusOK:         openapi.ResponseJSON("Prompt page", "PromptPage"),
			http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
			http.StatusForbidden:  openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func createOp() *openapi.Operation {
	responses := promptResponses(http.StatusCreated, "Created prompt")
	delete(responses, http.StatusNotFound)
	responses[http.StatusBadRequest] = openapi.ResponseRef(openapi.BadRequest)
	responses[http.StatusConflict] = openapi.ResponseRef(openapi.Conflict)

	return &openapi.Operation{
		OperationID: "createPrompt",
		Summary:     "Create an inactive prompt override",
		RequestBody: openapi.RequestBodyJSON("CreatePrompt", true),
		Responses:   responses,
		Security:    openapi.Bearer(),
	}
}

func stagesOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listPromptStages",
		Summary:     "Stages a prompt can target",
		Responses: map[int]*openapi.Response{
			http.StatusOK: {
				Description: "Stage names",
				Content: map[string]*openapi.MediaType{
					"application/json": {Schema: &openapi.Schema{Type: "array", Items: &openapi.Schema{Type: "string"}}},
				},
			},
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func findOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "getPrompt",
		Summary:     "Get a prompt override",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		Responses:   promptResponses(http.StatusOK, "Prompt"),
		Security:    openapi.Bearer(),
	}
}

func updateOp() *openapi.Operation {
	responses := promptResponses(http.StatusOK, "Updated prompt")
	responses[http.StatusBadRequest] = openapi.ResponseRef(openapi.BadRequest)
	responses[http.StatusConflict] = openapi.ResponseRef(openapi.Conflict)

	return &openapi.Operation{
		OperationID: "updatePrompt",
		Summary:     "Replace a prompt override",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		RequestBody: openapi.RequestBodyJSON("CreatePrompt", true),
		Responses:   responses,
		Security:    openapi.Bearer(),
	}
}

func deleteOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "deletePrompt",
		Summary:     "Delete a prompt override",
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		Responses: map[int]*openapi.Response{
			http.StatusNoContent: {Description: "Deleted"},
			http.StatusForbidden: openapi.ResponseRef(openapi.Forbidden),
			http.StatusNotFound:  openapi.ResponseRef(openapi.NotFound),
		},
		Security: openapi.Bearer(),
	}
}

func toggleOp(id, summary string) *openapi.Operation {
	return &openapi.Operation{
		OperationID: id,
		Summary:     summary,
		Parameters:  []*openapi.Parameter{openapi.PathParam("id", "Prompt ID")},
		Responses:   promptResponses(http.StatusOK, "Prompt"),
		Security:    openapi.Bearer(),
	}
}

func stageOp(id, summary string) *openapi.Operation {
	return &openapi.Operation{
		OperationID: id,
		Summary:     summary,
		Parameters:  []*openapi.Parameter{openapi.PathParam("stage", "Generation stage")},
		Responses: map[int]*openapi.Response{
			http.StatusOK:         openapi.ResponseJSON("Stage content", "StageContent"),
			http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
			http.StatusForbidden:  openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}
