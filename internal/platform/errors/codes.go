// Package errors provides structured domain errors for the simulator.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeInvalidRequest Code = "INVALID_REQUEST"
	CodeNotFound       Code = "NOT_FOUND"

	// Session errors
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeSessionInvalid  Code = "SESSION_INVALID"
	CodeSessionExpired  Code = "SESSION_EXPIRED"

	// Captcha errors
	CodeCaptchaNotIssued   Code = "CAPTCHA_NOT_ISSUED"
	CodeCaptchaEmptyAnswer Code = "CAPTCHA_EMPTY_ANSWER"

	// Run errors
	CodeRunEmptyCommand Code = "RUN_EMPTY_COMMAND"
	CodeRunInProgress   Code = "RUN_IN_PROGRESS"

	// Consent errors
	CodeConsentInvalidState Code = "CONSENT_INVALID_STATE"

	// Storage errors
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeInvalidRequest,
		CodeCaptchaEmptyAnswer,
		CodeRunEmptyCommand,
		CodeConsentInvalidState:
		return http.StatusBadRequest
	case CodeUnauthenticated,
		CodeSessionInvalid,
		CodeSessionExpired:
		return http.StatusUnauthorized
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCaptchaNotIssued,
		CodeRunInProgress:
		return http.StatusConflict
	case CodeStorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
