package recipecapture

import "errors"

var (
	// ErrValidation means a required field was empty; the user is re-prompted in place.
	ErrValidation = errors.New("validation failed")
	// ErrRequestPending means the same action is already in flight; the press was collapsed into it.
	ErrRequestPending = errors.New("request already pending")
)
