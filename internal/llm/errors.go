package llm

import (
	"context"
	"errors"
	"net"
)

// ErrKind classifies a transport failure so the caller can surface a
// retry-appropriate message: connection failures mean the server is down,
// timeouts mean it is slow, anything else is reported as-is.
type ErrKind int

const (
	ErrKindOther ErrKind = iota
	ErrKindConnection
	ErrKindTimeout
)

// Classify maps an error from Chat onto an ErrKind. Timeouts are checked
// first: a deadline hit during connection setup is still a timeout from the
// caller's point of view.
func Classify(err error) ErrKind {
	if err == nil {
		return ErrKindOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrKindTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrKindTimeout
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrKindConnection
	}
	return ErrKindOther
}
