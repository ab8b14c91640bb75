package domain

import (
	"errors"
	"fmt"
)

// Error is returned for malformed domains and for terms the compiler
// cannot translate. Every Error is terminal for the compilation that
// produced it.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Token is a rendering of the offending token, if any.
	Token string
}

// ErrorCode categorizes domain errors.
type ErrorCode string

const (
	// ErrCodeDomainSyntax indicates operator arity does not match the
	// number of operands.
	ErrCodeDomainSyntax ErrorCode = "DOMAIN_SYNTAX"

	// ErrCodeInvalidLeaf indicates an element that is neither an operator
	// nor a well-formed term.
	ErrCodeInvalidLeaf ErrorCode = "INVALID_LEAF"

	// ErrCodeUnknownColumn indicates a term column absent from the model.
	ErrCodeUnknownColumn ErrorCode = "UNKNOWN_COLUMN"

	// ErrCodeUnsupportedNavigation indicates a dotted column path.
	ErrCodeUnsupportedNavigation ErrorCode = "UNSUPPORTED_NAVIGATION"

	// ErrCodeUnsupportedComparison indicates a comparison the target
	// column cannot take, such as a boolean column inside an in-list.
	ErrCodeUnsupportedComparison ErrorCode = "UNSUPPORTED_COMPARISON"

	// ErrCodeUnsupportedOperator indicates an operator token other than
	// AND, OR or NOT reached SQL assembly.
	ErrCodeUnsupportedOperator ErrorCode = "UNSUPPORTED_OPERATOR"

	// ErrCodeInvalidValue indicates a right value that cannot be converted
	// to the column type.
	ErrCodeInvalidValue ErrorCode = "INVALID_VALUE"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s: %s (token=%s)", e.Code, e.Message, e.Token)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError builds an Error. tok may be nil.
func NewError(code ErrorCode, tok Token, format string, args ...any) *Error {
	e := &Error{Code: code, Message: fmt.Sprintf(format, args...)}
	if tok != nil {
		e.Token = formatToken(tok)
	}
	return e
}

// CodeOf returns the code of the first Error in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// HasCode reports whether err wraps an Error with the given code.
func HasCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsSyntaxError returns true if err is a domain arity error.
func IsSyntaxError(err error) bool {
	return HasCode(err, ErrCodeDomainSyntax)
}

// IsInvalidLeaf returns true if err reports a malformed element.
func IsInvalidLeaf(err error) bool {
	return HasCode(err, ErrCodeInvalidLeaf)
}
