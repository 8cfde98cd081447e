package coingecko

import (
	"errors"
	"fmt"
)

var (
	ErrTransient        = errors.New("coingecko: transient provider error")
	ErrNotFound         = errors.New("coingecko: asset not found")
	ErrUnauthorized     = errors.New("coingecko: unauthorized")
	ErrParse            = errors.New("coingecko: unparseable payload")
	ErrRetriesExhausted = errors.New("coingecko: retries exhausted")
)

// StatusError is a non-2xx reply that is retried.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("coingecko: http %d: %s", e.Status, e.Body)
}

// Is makes every StatusError match ErrTransient.
func (e *StatusError) Is(target error) bool {
	return target == ErrTransient
}

func snippet(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
