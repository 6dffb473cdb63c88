package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeUnavailable is used when a store or collaborator failed transiently
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// Validation error codes
const (
	ErrCodeValidation  = "ERR_VALIDATION"
	ErrCodeBadRequest  = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	ErrCodeInvalidState     = "ERR_INVALID_STATE"
	ErrCodeBusinessRule     = "ERR_BUSINESS_RULE"
	ErrCodeUnknownSize      = "ERR_UNKNOWN_SIZE"
	ErrCodeInvalidQuantity  = "ERR_INVALID_QUANTITY"
	ErrCodeAwaitingApproval = "ERR_AWAITING_APPROVAL"
	ErrCodeAlreadyInvoiced  = "ERR_ALREADY_INVOICED"
	ErrCodeDuplicatePO      = "ERR_DUPLICATE_PO"
	ErrCodeUnknownSource    = "ERR_UNKNOWN_SOURCE"
)

// Rate limiting error codes
const (
	ErrCodeRateLimited = "ERR_RATE_LIMITED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:     http.StatusInternalServerError,
	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeAlreadyInvoiced:     http.StatusConflict,
	ErrCodeDuplicatePO:         http.StatusConflict,

	// business rules -> 422 Unprocessable Entity
	ErrCodeInvalidState:     http.StatusUnprocessableEntity,
	ErrCodeBusinessRule:     http.StatusUnprocessableEntity,
	ErrCodeUnknownSize:      http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:  http.StatusUnprocessableEntity,
	ErrCodeAwaitingApproval: http.StatusUnprocessableEntity,

	ErrCodeUnknownSource: http.StatusNotFound,

	ErrCodeRateLimited: http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":               ErrCodeNotFound,
	"ALREADY_EXISTS":          ErrCodeAlreadyExists,
	"INVALID_INPUT":           ErrCodeInvalidInput,
	"INVALID_STATE":           ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT":    ErrCodeConcurrencyConflict,
	"PERSISTENCE_FAILURE":     ErrCodeUnavailable,
	"UNKNOWN_SIZE":            ErrCodeUnknownSize,
	"INVALID_QUANTITY":        ErrCodeInvalidQuantity,
	"INVALID_ALLOCATION_MODE": ErrCodeInvalidInput,
	"INVALID_RATE":            ErrCodeInvalidInput,
	"INVALID_SIZE_KEY":        ErrCodeInvalidInput,
	"INVALID_PARTIES":         ErrCodeInvalidInput,
	"INVALID_JOB_NO":          ErrCodeInvalidInput,
	"INVALID_PO_NUMBER":       ErrCodeInvalidInput,
	"INVALID_AMOUNT":          ErrCodeBusinessRule,
	"INVALID_TRIGGER":         ErrCodeInvalidInput,
	"INVALID_COMPANY_NAME":    ErrCodeInvalidInput,
	"INVALID_COMPANY_ROLE":    ErrCodeInvalidInput,
	"AWAITING_APPROVAL":       ErrCodeAwaitingApproval,
	"ALREADY_INVOICED":        ErrCodeAlreadyInvoiced,
	"DUPLICATE_PO":            ErrCodeDuplicatePO,
	"INVALID_SENDER":          ErrCodeForbidden,
	"NO_CUSTOMER_CODE":        ErrCodeBusinessRule,
	"PARSE_VALIDATION_FAILED": ErrCodeBusinessRule,
	"EXTRACTION_FAILED":       ErrCodeUnavailable,
	"UNKNOWN_SOURCE":          ErrCodeUnknownSource,
}

// NormalizeErrorCode converts a domain error code to the API format.
// Codes already in the API format or unknown pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
