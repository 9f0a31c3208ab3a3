package providers

import (
	"errors"
	"fmt"
)

// Kind classifies why a fetch failed.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindTransport
	KindHTTPStatus
	KindEmptyBody
	KindDecode
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrTransport  = errors.New("transport error")
	ErrHTTPStatus = errors.New("http status error")
	ErrEmptyBody  = errors.New("empty body")
	ErrDecode     = errors.New("decode error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindTransport:
		return ErrTransport
	case KindHTTPStatus:
		return ErrHTTPStatus
	case KindEmptyBody:
		return ErrEmptyBody
	case KindDecode:
		return ErrDecode
	}
	return nil
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// FetchError is returned by providers for every failed fetch.
// errors.Is matches both the Kind sentinel and the wrapped cause.
type FetchError struct {
	Kind       Kind
	Provider   string
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Provider, e.Kind)
	if e.Kind == KindHTTPStatus {
		msg += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.URL != "" {
		msg += " url=" + e.URL
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() []error {
	out := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// KindOf returns the Kind of the first FetchError in err's chain, or 0.
func KindOf(err error) Kind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return 0
}
