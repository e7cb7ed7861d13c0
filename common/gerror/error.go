package gerror

import (
	"fmt"
)

type Code string
type DetailKey string
type Details map[DetailKey]interface{}

// Error is a structured error carrying a stable code and the HTTP status it
// maps to, so callers can branch on the class of failure without string
// matching.
type Error struct {
	innerErr error
	// errorText is the full error chain suitable for logging and debugging
	errorText string
	// message is the human friendly error message suitable for display to an end user
	message        string
	details        Details
	code           Code
	httpStatusCode int
}

func NewError(message string, code Code, httpStatusCode int, inner error) Error {
	return NewErrorWithDetails(message, nil, code, httpStatusCode, inner)
}

func NewErrorWithDetails(message string, details Details, code Code, httpStatusCode int, inner error) Error {
	return Error{
		innerErr:       inner,
		message:        message,
		errorText:      makeErrorText(message, details, inner),
		details:        details,
		code:           code,
		httpStatusCode: httpStatusCode,
	}
}

func (e Error) Error() string {
	if e.errorText != "" {
		return e.errorText
	}
	return e.message
}

func (e Error) Unwrap() error {
	return e.innerErr
}

func (e Error) Message() string {
	return e.message
}

func (e Error) Details() Details {
	m := make(Details, len(e.details))
	for k, v := range e.details {
		m[k] = v
	}
	return m
}

func (e Error) Code() Code {
	return e.code
}

func (e Error) HTTPStatusCode() int {
	return e.httpStatusCode
}

// HasHTTPStatusCode returns true iff the supplied error is a gerror.Error object with the specified HTTP status code.
func HasHTTPStatusCode(err error, statusCode int) bool {
	errorDoc, ok := err.(Error)
	if !ok {
		return false
	}
	return errorDoc.HTTPStatusCode() == statusCode
}

// Wrap returns a copy of the error with the inner error set to the specified err.
func (e Error) Wrap(innerErr error) Error {
	return Error{
		innerErr:       innerErr,
		errorText:      makeErrorText(e.message, e.details, innerErr),
		message:        e.message,
		details:        e.Details(),
		code:           e.code,
		httpStatusCode: e.httpStatusCode,
	}
}

// Detail returns a copy of the error with a new detail appended to it.
func (e Error) Detail(key DetailKey, value interface{}) Error {
	details := e.Details()
	details[key] = value
	return Error{
		innerErr:       e.innerErr,
		errorText:      makeErrorText(e.message, details, e.innerErr),
		message:        e.message,
		details:        details,
		code:           e.code,
		httpStatusCode: e.httpStatusCode,
	}
}

func makeErrorText(message string, details Details, inner error) string {
	var detailsStr string
	if len(details) > 0 {
		detailsStr = " ["
		for k, v := range details {
			if detailsStr == " [" {
				detailsStr += fmt.Sprintf("%s=%v", k, v)
			} else {
				detailsStr += fmt.Sprintf(", %s=%v", k, v)
			}
		}
		detailsStr += "]"
	}
	var errStr string
	if inner != nil {
		errStr = fmt.Sprintf(": %v", inner)
	}
	return fmt.Sprintf("%s%s%s", message, detailsStr, errStr)
}
