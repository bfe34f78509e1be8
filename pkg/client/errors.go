package client

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// ErrorClass represents a classification of request errors.
type ErrorClass string

const (
	// ErrorClassTransport represents network, timeout, and HTTP-level
	// failures that prevented a well-formed GraphQL response.
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassProtocol represents a GraphQL error list returned by the
	// server in an otherwise successful response.
	ErrorClassProtocol ErrorClass = "protocol"
)

// QueryError wraps a failed GraphQL request with its classification.
type QueryError struct {
	Operation string
	Class     ErrorClass
	Err       error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("graphql %s error in %s: %v", e.Class, e.Operation, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *QueryError) Unwrap() error {
	return e.Err
}

// ClassifyError categorizes an error for observability and handling.
// GraphQL error lists from the server are protocol errors; everything else
// (connection failures, timeouts, non-2xx HTTP responses) is transport.
func ClassifyError(err error) ErrorClass {
	var list gqlerror.List
	if errors.As(err, &list) {
		return ErrorClassProtocol
	}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return ErrorClassProtocol
	}
	return ErrorClassTransport
}

// AsGraphQLErrors extracts the server-reported GraphQL error list from an
// error chain. Each entry keeps its message and structured extensions so
// callers can enumerate them.
func AsGraphQLErrors(err error) (gqlerror.List, bool) {
	var list gqlerror.List
	if errors.As(err, &list) {
		return list, true
	}
	var gqlErr *gqlerror.Error
	if errors.As(err, &gqlErr) {
		return gqlerror.List{gqlErr}, true
	}
	return nil, false
}
