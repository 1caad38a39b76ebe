package errors

import "fmt"

// Kind classifies an error for transport mapping. Handlers switch on the
// kind, never on message text.
type Kind string

const (
	KindValidation Kind = "validation_error"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindGateway    Kind = "gateway_error"
	KindSignature  Kind = "signature_error"
)

// Error is the service error carrying a machine-readable kind and a
// human-readable message.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewValidationError reports malformed or empty input.
func NewValidationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf("%s: %s", field, msg)}
}

// NewNotFoundError reports a missing entity by id or reference.
func NewNotFoundError(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// NewConflictError reports a business-rule violation.
func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

// NewInsufficientStockError reports a stock shortfall with the quantities
// the caller asked for and what the catalog had.
func NewInsufficientStockError(productID string, available, requested int) *Error {
	return &Error{
		Kind: KindConflict,
		Message: fmt.Sprintf("insufficient stock for product %s. Available: %d, Requested: %d",
			productID, available, requested),
	}
}

// NewGatewayError wraps an upstream payment-provider failure. Callers
// decide whether to retry; the service never does.
func NewGatewayError(msg string, err error) *Error {
	return &Error{Kind: KindGateway, Message: msg, Err: err}
}

// NewSignatureError reports a webhook that failed authentication.
func NewSignatureError(msg string) *Error {
	return &Error{Kind: KindSignature, Message: msg}
}

// KindOf returns the kind of err, or "" when err is not a service error.
func KindOf(err error) Kind {
	if e, ok := err.(*Error); ok {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err carries the not-found kind.
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsConflict reports whether err carries the conflict kind.
func IsConflict(err error) bool {
	return KindOf(err) == KindConflict
}
