package users

import (
	"net/http"

	"github.com/JaimeStill/caduceus/pkg/auth"
	"github.com/JaimeStill/caduceus/pkg/openapi"
)

// Schemas returns the component schemas for account payloads.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"Role": openapi.Enum("Account role", auth.RolePatient, auth.RoleClinician),
		"Register": {
			Type:     "object",
			Required: []string{"email", "password", "first_name", "last_name", "role"},
			Properties: map[string]*openapi.Schema{
				"email":          {Type: "string", Format: "email"},
				"password":       {Type: "string", Description: "At least 8 characters with upper, lower, and digit"},
				"first_name":     {Type: "string"},
				"last_name":      {Type: "string"},
				"role":           openapi.SchemaRef("Role"),
				"specialization": {Type: "string", Description: "Clinicians only. Category slug or label"},
				"license_number": {Type: "string", Pattern: licensePattern.String(), Description: "Clinicians only"},
			},
		},
		"Login": {
			Type:     "object",
			Required: []string{"email", "password"},
			Properties: map[string]*openapi.Schema{
				"email":    {Type: "string", Format: "email"},
				"password": {Type: "string"},
			},
		},
		"Profile": {
			Type:     "object",
			Required: []string{"first_name", "last_name", "specialization", "license_number"},
			Properties: map[string]*openapi.Schema{
				"first_name":     {Type: "string"},
				"last_name":      {Type: "string"},
				"specialization": {Type: "string"},
				"license_number": {Type: "string", Pattern: licensePattern.String()},
			},
		},
		"User": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"id":             {Type: "string", Format: "uuid"},
				"email":          {Type: "string", Format: "email"},
				"first_name":     {Type: "string"},
				"last_name":      {Type: "string"},
				"role":           openapi.SchemaRef("Role"),
				"specialization": openapi.SchemaRef("Category"),
				"license_number": {Type: "string"},
				"created_at":     {Type: "string", Format: "date-time"},
				"updated_at":     {Type: "string", Format: "date-time"},
			},
		},
		"Session": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"access_token": {Type: "string"},
				"token_type":   {Type: "string", Example: "bearer"},
				"expires_at":   {Type: "string", Format: "date-time"},
				"user":         openapi.SchemaRef("User"),
			},
		},
		"Specialization": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"value": openapi.SchemaRef("Category"),
				"label": {Type: "string"},
			},
		},
	}
}

func registerOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "register",
		Summary:     "Register an account",
		RequestBody: openapi.RequestBodyJSON("Register", true),
		Responses: map[int]*openapi.Response{
			http.StatusCreated:    openapi.ResponseJSON("Registered user", "User"),
			http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
			http.StatusConflict:   openapi.ResponseRef(openapi.Conflict),
		},
	}
}

func loginOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "login",
		Summary:     "Exchange credentials for a bearer token",
		RequestBody: openapi.RequestBodyJSON("Login", true),
		Responses: map[int]*openapi.Response{
			http.StatusOK:           openapi.ResponseJSON("Session", "Session"),
			http.StatusUnauthorized: openapi.ResponseRef(openapi.Unauthorized),
		},
	}
}

func meOp(id, summary string) *openapi.Operation {
	return &openapi.Operation{
		OperationID: id,
		Summary:     summary,
		Responses: map[int]*openapi.Response{
			http.StatusOK:           openapi.ResponseJSON("Current user", "User"),
			http.StatusUnauthorized: openapi.ResponseRef(openapi.Unauthorized),
			http.StatusNotFound:     openapi.ResponseRef(openapi.NotFound),
		},
		Security: openapi.Bearer(),
	}
}

func updateProfileOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "updateClinicianProfile",
		Summary:     "Update the clinician profile",
		RequestBody: openapi.RequestBodyJSON("Profile", true),
		Responses: map[int]*openapi.Response{
			http.StatusOK:         openapi.ResponseJSON("Updated user", "User"),
			http.StatusBadRequest: openapi.ResponseRef(openapi.BadRequest),
			http.StatusForbidden:  openapi.ResponseRef(openapi.Forbidden),
		},
		Security: openapi.Bearer(),
	}
}

func specializationsOp() *openapi.Operation {
	return &openapi.Operation{
		OperationID: "listSpecializations",
		Summary:     "List clinician specializations",
		Responses: map[int]*openapi.Response{
			http.StatusOK: openapi.ResponseJSONArray("Specializations", "Specialization"),
		},
	}
}
