package utils

// ErrorResponse is the JSON error body shared by every handler. Detail
// carries the underlying error text and is only populated in development
// mode.
type ErrorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"error,omitempty"`
}
