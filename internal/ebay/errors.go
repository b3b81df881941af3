package ebay

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ErrorDetail is one entry of an eBay API error body.
type ErrorDetail struct {
	ErrorID int    `json:"errorId"`
	Message string `json:"message"`
}

// APIError is a non-2xx response from the eBay API.
type APIError struct {
	StatusCode int
	Errors     []ErrorDetail
	Body       string
}

// Error renders the errors array as "message (id); message2", falling
// back to the raw status and body when the payload is not the standard
// error shape.
func (e *APIError) Error() string {
	if len(e.Errors) > 0 {
		parts := make([]string, 0, len(e.Errors))
		for _, detail := range e.Errors {
			if detail.ErrorID != 0 {
				parts = append(parts, fmt.Sprintf("%s (%d)", detail.Message, detail.ErrorID))
			} else {
				parts = append(parts, detail.Message)
			}
		}
		return strings.Join(parts, "; ")
	}

	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, body)
}

// newAPIError builds an APIError from a response body, decoding the
// standard {"errors": [...]} envelope when present.
func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}

	var envelope struct {
		Errors []ErrorDetail `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Errors = envelope.Errors
	}
	return apiErr
}
