package client

import "errors"

// NetworkErrorMessage is the message of every envelope synthesized for a
// transport or decoding failure.
const NetworkErrorMessage = "Network error. Please check your connection and try again."

var (
	ErrTransport         = errors.New("transport failure")
	ErrMalformedResponse = errors.New("malformed response body")
)
