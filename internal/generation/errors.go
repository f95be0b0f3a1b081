package generation

import "errors"

// Common errors returned by the generation package. The completion client
// wraps its failures in exactly one of these so callers can classify them
// with errors.Is.
var (
	// ErrInvalidConfig is returned when the completion client configuration
	// is invalid. Surfaced at construction, never retried.
	ErrInvalidConfig = errors.New("invalid completion client configuration")

	// ErrAuthorization is returned when the completion API rejects the
	// configured credentials. Fatal for the current call, never retried.
	ErrAuthorization = errors.New("completion API rejected credentials")

	// ErrNetwork is returned for transport failures and non-2xx responses
	// other than 401. These are transient and retried up to the retry budget.
	ErrNetwork = errors.New("completion API request failed")

	// ErrValidation is returned when the response envelope is malformed or
	// the decoded content does not match the expected schema. Never retried:
	// a structural mismatch will not self-correct.
	ErrValidation = errors.New("completion API response failed validation")
)
