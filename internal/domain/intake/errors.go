package intake

import "github.com/printchain/backend/internal/domain/shared"

// Webhook outcomes that are reported as errors by the pipeline steps
var (
	ErrInvalidSender         = shared.NewDomainError("INVALID_SENDER", "Sender is not on the allow-list")
	ErrNoCustomerCode        = shared.NewDomainError("NO_CUSTOMER_CODE", "Subject does not contain a known customer code")
	ErrParseValidationFailed = shared.NewDomainError("PARSE_VALIDATION_FAILED", "Extracted purchase order failed validation")
	ErrExtractionFailed      = shared.NewDomainError("EXTRACTION_FAILED", "Document extraction failed")
	ErrUnknownSource         = shared.NewDomainError("UNKNOWN_SOURCE", "Unknown webhook source")
)
