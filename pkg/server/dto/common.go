package dto

// Field limits guarding against oversized requests.
const (
	MaxNameLength    = 1024
	MaxContentLength = 10 << 20
	MaxSourcesCount  = 100
)

// Result is a generic API result envelope.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ErrorResponse is the error payload returned by all endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
