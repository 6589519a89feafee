package ddns

import (
	"errors"
	"fmt"
)

var (
	ErrConfig             = errors.New("configuration error")
	ErrUnknownAuthMethod  = errors.New("unknown auth method")
	ErrDiscoveryExhausted = errors.New("no public IP source returned an address")
	ErrInvalidIP          = errors.New("invalid IPv4 address")
	ErrInvalidDomain      = errors.New("invalid domain name")
	ErrProtocol           = errors.New("response is not valid JSON")
	ErrProviderRejected   = errors.New("provider reported failure")
	ErrRecordNotFound     = errors.New("record does not exist")
)

// ResponseError is returned when the provider answered but the answer cannot be used.
// Body holds the raw response for diagnosis; it is not part of the error message.
type ResponseError struct {
	Op   string
	Body string
	Err  error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }
