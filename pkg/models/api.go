// pkg/models/api.go
package models

// Laravel-style validation error response
type ValidationErrorResponse struct {
	Message string              `json:"message" example:"Validation failed"`
	Errors  map[string][]string `json:"errors"`
}

// Generic error response (400/401/403/404/409/500)
type ErrorResponse struct {
	Error   bool   `json:"error" example:"true"`
	Message string `json:"message" example:"Case not found"`
	Code    string `json:"code,omitempty" example:"NOT_FOUND"`
}

// MessageResponse is returned by delete endpoints.
type MessageResponse struct {
	Message string `json:"message" example:"Case deleted successfully"`
}
