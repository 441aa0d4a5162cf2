// Package types holds the wire envelopes shared by every HTTP handler.
package types

// SuccessEnvelope wraps all 2xx response bodies.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of a failed request: a stable machine code
// plus a human message. Details carries field-level validation output when
// the error code permits it.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope wraps all non-2xx response bodies.
type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
