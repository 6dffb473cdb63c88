package pricing

import "github.com/printchain/backend/internal/domain/shared"

// Calculator input errors. They abort job creation before anything is persisted.
var (
	ErrUnknownSize     = shared.NewDomainError("UNKNOWN_SIZE", "No rate card entry for the requested size")
	ErrInvalidQuantity = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	ErrInvalidMode     = shared.NewDomainError("INVALID_ALLOCATION_MODE", "Unknown allocation mode")
	ErrInvalidRate     = shared.NewDomainError("INVALID_RATE", "Rate card values must be non-negative")
)
