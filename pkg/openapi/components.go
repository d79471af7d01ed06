package openapi

import "maps"

// BearerScheme is the component name of the JWT bearer security scheme.
const BearerScheme = "bearerAuth"

// Standard component response names shared by every API error path.
const (
	BadRequest           = "BadRequest"
	Unauthorized         = "Unauthorized"
	Forbidden            = "Forbidden"
	NotFound             = "NotFound"
	Conflict             = "Conflict"
	PayloadTooLarge      = "PayloadTooLarge"
	UnsupportedMediaType = "UnsupportedMediaType"
	TooManyRequests      = "TooManyRequests"
	Unavailable          = "Unavailable"
)

// NewComponents creates Components with the error schema, the shared
// error responses, and the bearer security scheme.
func NewComponents() *Components {
	return &Components{
		Schemas: map[string]*Schema{
			"Error": {
				Type:     "object",
				Required: []string{"error"},
				Properties: map[string]*Schema{
					"error": {Type: "string", Description: "Error message"},
				},
			},
			"PageRequest": {
				Type: "object",
				Properties: map[string]*Schema{
					"page":      {Type: "integer", Description: "Page number (1-indexed)", Example: 1},
					"per_page": {Type: "integer", Description: "Results per page", Example: 20},
					"search":    {Type: "string", Description: "Search query"},
					"sort":      {Type: "string", Description: "Comma-separated sort fields. Prefix with - for descending. Example: -created_at"},
				},
			},
		},
		Responses: map[string]*Response{
			BadRequest:           ErrorResponse("Invalid request"),
			Unauthorized:         ErrorResponse("Missing or invalid bearer token"),
			Forbidden:            ErrorResponse("Caller role is not permitted"),
			NotFound:             ErrorResponse("Resource not found"),
			Conflict:             ErrorResponse("Resource conflict"),
			PayloadTooLarge:      ErrorResponse("Request body exceeds the configured limit"),
			UnsupportedMediaType: ErrorResponse("Request body must be application/json"),
			TooManyRequests:      ErrorResponse("Rate limit exceeded"),
			Unavailable:          ErrorResponse("A dependency is unavailable"),
		},
		SecuritySchemes: map[string]*SecurityScheme{
			BearerScheme: {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "JWT",
				Description:  "Access token issued by POST /auth/login",
			},
		},
	}
}

// ErrorResponse creates a response whose body is the Error schema.
func ErrorResponse(description string) *Response {
	return &Response{
		Description: description,
		Content: map[string]*MediaType{
			"application/json": {Schema: SchemaRef("Error")},
		},
	}
}

// AddSchemas merges the given schemas into the component schemas.
func (c *Components) AddSchemas(schemas map[string]*Schema) {
	maps.Copy(c.Schemas, schemas)
}

// AddResponses merges the given responses into the component responses.
func (c *Components) AddResponses(responses map[string]*Response) {
	maps.Copy(c.Responses, responses)
}
