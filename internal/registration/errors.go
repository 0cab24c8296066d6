package registration

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrMalformedRequest   = errors.New("malformed request")
	ErrStorageUnavailable = errors.New("registration storage unavailable")
	ErrStorageRejected    = errors.New("registration rejected by storage")
)

// ValidationError lists every field that broke the contract, keyed by the
// wire name of the field (members[1].phone for nested values).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := e.Keys()
	return "validation failed: " + strings.Join(keys, ", ")
}

// Keys returns the offending field keys in sorted order.
func (e *ValidationError) Keys() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AsValidationError unwraps err into a *ValidationError when it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
