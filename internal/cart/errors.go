package cart

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrValidation       = errors.New("validation")
)

// FallbackError reports that a mutation could not reach the server and was
// applied to the local cart instead. The cart is consistent when the caller
// sees this; Err is the original gateway failure.
type FallbackError struct {
	Err error
}

func (e *FallbackError) Error() string {
	return fmt.Sprintf("applied locally after remote failure: %v", e.Err)
}

func (e *FallbackError) Unwrap() error { return e.Err }
