package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Identity errors
	CodeUserNameEmpty            Code = "USER_NAME_EMPTY"
	CodeUserEmailEmpty           Code = "USER_EMAIL_EMPTY"
	CodeUserPasswordEmpty        Code = "USER_PASSWORD_EMPTY"
	CodeEmailInUse               Code = "EMAIL_IN_USE"
	CodeInvalidCredentials       Code = "INVALID_CREDENTIALS"
	CodeUnauthenticated          Code = "UNAUTHENTICATED"
	CodeFederatedIdentityInvalid Code = "FEDERATED_IDENTITY_INVALID"

	// Contact errors
	CodeContactNameEmpty     Code = "CONTACT_NAME_EMPTY"
	CodeContactEmailEmpty    Code = "CONTACT_EMAIL_EMPTY"
	CodeContactInvalidStatus Code = "CONTACT_INVALID_STATUS"

	// Request errors
	CodeInvalidPayload Code = "INVALID_PAYLOAD"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
	CodeStorage  Code = "STORAGE_FAILURE"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeUserNameEmpty,
		CodeUserEmailEmpty,
		CodeUserPasswordEmpty,
		CodeEmailInUse,
		CodeFederatedIdentityInvalid,
		CodeContactNameEmpty,
		CodeContactEmailEmpty,
		CodeContactInvalidStatus,
		CodeInvalidPayload:
		return http.StatusBadRequest

	// Unauthorized - bad credentials or bad/missing token
	case CodeInvalidCredentials,
		CodeUnauthenticated:
		return http.StatusUnauthorized

	// NotFound - missing or non-owned records, indistinguishable on purpose
	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
