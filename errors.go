package asidecache

import (
	"errors"
	"fmt"
)

// ErrInvalidOptions is returned by New for unusable Options.
var ErrInvalidOptions = errors.New("asidecache: invalid options")

// PartialBatchError reports an ExpireByPrefix batch where some writes landed
// and others failed. Successful writes are not rolled back.
type PartialBatchError struct {
	Prefix string
	Total  int              // writes issued
	Failed map[string]error // storage key -> write error
}

func (e *PartialBatchError) Error() string {
	return fmt.Sprintf("expire prefix %q: %d of %d writes failed", e.Prefix, len(e.Failed), e.Total)
}

func (e *PartialBatchError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, err := range e.Failed {
		errs = append(errs, err)
	}
	return errs
}

func invalidOptions(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidOptions, fmt.Sprintf(format, args...))
}
