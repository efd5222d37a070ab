package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
// Catalog and request misses are terminal and non-retriable.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrInvalidScale indicates an amount scale that is zero or not a power of ten.
var ErrInvalidScale = errors.New("invalid amount scale")

// ErrMalformedAmount indicates a decimal amount string that could not be parsed.
var ErrMalformedAmount = errors.New("malformed amount")

// ErrAmountOverflow indicates an amount that does not fit in 64 bits at the
// requested scale.
var ErrAmountOverflow = errors.New("amount overflow")

// ErrRouteNotSupported indicates a settlement route (bank rails) that is not
// implemented yet.
var ErrRouteNotSupported = errors.New("settlement route not supported")

// ErrRailRejected indicates that the fiat provider declined the request.
// Callers may retry at a higher level with a fresh request.
var ErrRailRejected = errors.New("fiat rail rejected the request")

// ErrChainNotSupported indicates a crypto currency on a chain this integrator
// cannot settle on.
var ErrChainNotSupported = errors.New("chain not supported")

// ErrChainUnconfirmed indicates a submitted transaction whose confirmation
// polling was exhausted. The settlement leg failed; the request stays Pending
// for operator follow-up and is never resubmitted automatically.
var ErrChainUnconfirmed = errors.New("chain submission unconfirmed")

// ErrDoubleSubmission indicates a callback for a request that is missing or no
// longer Pending. Absorbed at the webhook boundary, never surfaced to the
// external caller.
var ErrDoubleSubmission = errors.New("double submission")

// ErrConnection indicates that storage or an upstream transport is
// unreachable. Fail fast; retry policy belongs to the caller.
var ErrConnection = errors.New("connection unavailable")
