// Package errors provides structured service errors that map onto gRPC
// statuses.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Request errors
	CodeRequestInvalid     Code = "REQUEST_INVALID"
	CodeRequestPackMissing Code = "REQUEST_PACK_MISSING"

	// Catalog errors
	CodeCatalogNotSequence Code = "CATALOG_NOT_SEQUENCE"
	CodeCatalogInvalid     Code = "CATALOG_INVALID"

	// Settings errors
	CodeMerchantNotFound Code = "MERCHANT_NOT_FOUND"
	CodeFilterInvalid    Code = "FILTER_INVALID"
	CodeScriptInvalid    Code = "SCRIPT_INVALID"

	// Storage errors
	CodeNotFound       Code = "NOT_FOUND"
	CodeStorageFailure Code = "STORAGE_FAILURE"

	// Random/seed errors
	CodeSeedUnavailable Code = "SEED_UNAVAILABLE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeRequestInvalid,
		CodeRequestPackMissing,
		CodeCatalogNotSequence,
		CodeCatalogInvalid,
		CodeFilterInvalid:
		return codes.InvalidArgument

	// FailedPrecondition - configuration doesn't allow the operation
	case CodeScriptInvalid:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound,
		CodeMerchantNotFound:
		return codes.NotFound

	// Unavailable - transient dependency failures
	case CodeStorageFailure,
		CodeSeedUnavailable:
		return codes.Unavailable

	default:
		return codes.Internal
	}
}

// UserMessage returns the user-facing message for the code.
func (c Code) UserMessage() string {
	switch c {
	case CodeRequestInvalid:
		return "The generation request is invalid."
	case CodeRequestPackMissing:
		return "A catalog pack is required."
	case CodeCatalogNotSequence:
		return "The catalog must be a list of items."
	case CodeCatalogInvalid:
		return "The catalog contains invalid entries."
	case CodeMerchantNotFound:
		return "The requested merchant is not configured."
	case CodeFilterInvalid:
		return "The merchant filter expression is invalid."
	case CodeScriptInvalid:
		return "The merchant scoring script could not be loaded."
	case CodeNotFound:
		return "The requested record was not found."
	case CodeStorageFailure:
		return "Storage is temporarily unavailable."
	case CodeSeedUnavailable:
		return "Randomness is temporarily unavailable."
	default:
		return "An unexpected error occurred."
	}
}
