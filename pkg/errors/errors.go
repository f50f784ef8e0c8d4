package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code identifies an error class; the string value is the wire code the
// storefront switches on.
type Code string

const (
	CodeValidation    Code = "VALIDATION_ERROR"
	CodeUnauthorized  Code = "UNAUTHORIZED"
	CodeForbidden     Code = "FORBIDDEN"
	CodeNotFound      Code = "NOT_FOUND"
	CodeConflict      Code = "CONFLICT"
	CodeStateConflict Code = "STATE_CONFLICT"
	CodeRateLimit     Code = "RATE_LIMIT_EXCEEDED"
	CodeInternal      Code = "INTERNAL_ERROR"
	CodeDependency    Code = "DEPENDENCY_ERROR"

	// Order lifecycle codes.
	CodeEmptyCart            Code = "EMPTY_CART"
	CodeProductUnavailable   Code = "PRODUCT_UNAVAILABLE"
	CodeInsufficientStock    Code = "INSUFFICIENT_STOCK"
	CodeDuplicateOrderNumber Code = "DUPLICATE_ORDER_NUMBER"
	CodeOrderNotPayable      Code = "ORDER_NOT_PAYABLE"
	CodePaymentGateway       Code = "PAYMENT_GATEWAY_ERROR"
)

// Metadata declares per-code response behavior. DetailsAllowed gates whether
// a details payload may reach the client; Retryable hints that the caller
// can try the same request again.
type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

func meta(status int, msg string) Metadata {
	return Metadata{HTTPStatus: status, PublicMessage: msg}
}

func (m Metadata) withDetails() Metadata {
	m.DetailsAllowed = true
	return m
}

func (m Metadata) retryable() Metadata {
	m.Retryable = true
	return m
}

var metadataByCode = map[Code]Metadata{
	CodeValidation:    meta(http.StatusBadRequest, "validation failed").withDetails(),
	CodeUnauthorized:  meta(http.StatusUnauthorized, "authentication required"),
	CodeForbidden:     meta(http.StatusForbidden, "access denied"),
	CodeNotFound:      meta(http.StatusNotFound, "resource not found"),
	CodeConflict:      meta(http.StatusConflict, "conflict detected"),
	CodeStateConflict: meta(http.StatusUnprocessableEntity, "state transition disallowed").withDetails(),
	CodeRateLimit:     meta(http.StatusTooManyRequests, "rate limit exceeded"),
	CodeInternal:      meta(http.StatusInternalServerError, "internal server error").retryable(),
	CodeDependency:    meta(http.StatusServiceUnavailable, "dependency unavailable").withDetails().retryable(),

	CodeEmptyCart:            meta(http.StatusBadRequest, "cart is empty"),
	CodeProductUnavailable:   meta(http.StatusBadRequest, "product unavailable").withDetails(),
	CodeInsufficientStock:    meta(http.StatusConflict, "insufficient stock").withDetails(),
	CodeDuplicateOrderNumber: meta(http.StatusConflict, "order number collision, retry").retryable(),
	CodeOrderNotPayable:      meta(http.StatusUnprocessableEntity, "order cannot be paid in its current state").withDetails(),
	CodePaymentGateway:       meta(http.StatusBadGateway, "payment gateway unavailable").retryable(),
}

// MetadataFor never fails: unknown codes render as internal errors.
func MetadataFor(code Code) Metadata {
	if m, ok := metadataByCode[code]; ok {
		return m
	}
	return metadataByCode[CodeInternal]
}

// Error is the typed error carried through every service layer.
type Error struct {
	code    Code
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message on top of err, preserving it for
// errors.Is/As and for Dump diagnostics.
func Wrap(code Code, err error, message string) *Error {
	return &Error{code: code, message: message, cause: err}
}

// As digs the typed error out of a wrapped chain, or nil.
func As(err error) *Error {
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithDetails attaches a structured payload; it only reaches responses when
// the code's metadata allows details.
func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}
