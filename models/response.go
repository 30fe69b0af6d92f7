package models

// Response represents a generic API response structure. Message carries the
// one-time confirmation text shown after a successful mutation; Errors maps
// field names to validation messages.
type Response struct {
	Success      int               `json:"success"`
	Message      string            `json:"message,omitempty"`
	ErrorCode    string            `json:"error_code,omitempty"`
	ErrorDetails string            `json:"error_details,omitempty"`
	Errors       map[string]string `json:"errors,omitempty"`
	Data         interface{}       `json:"data,omitempty"`
}
