package coordinator

import (
	"errors"
	"fmt"

	"recipecapture"
	"recipecapture/capture"
	"recipecapture/permission"
)

var (
	ErrValidation     = recipecapture.ErrValidation
	ErrRequestPending = recipecapture.ErrRequestPending
	// ErrInvalidTransition means the action does not apply to the current mode. Nothing changed.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrSuperseded means the user moved on while a permission dialog was up, so the grant was not used.
	ErrSuperseded = errors.New("superseded by a later action")
)

func invalid(op string, mode Mode) error {
	return fmt.Errorf("%w: %s in %s", ErrInvalidTransition, op, mode)
}

// Kind names the failure class of err for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidation):
		return "validation"
	case errors.Is(err, permission.ErrCapabilityUnavailable):
		return "capability_unavailable"
	case errors.Is(err, permission.ErrUserDenied), errors.Is(err, capture.ErrPermissionRequired):
		return "permission_denied"
	case errors.Is(err, capture.ErrCaptureFailed):
		return "capture_failed"
	case errors.Is(err, capture.ErrSessionRace):
		return "session_race"
	case errors.Is(err, ErrRequestPending):
		return "request_pending"
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrSuperseded):
		return "superseded"
	default:
		return "other"
	}
}

const alertTitle = "Gabim"

// userMessage is the text shown to the user for a surfaced failure.
func userMessage(err error) string {
	switch Kind(err) {
	case "validation":
		return "Ju lutem shkruani titullin e recetës."
	case "capability_unavailable":
		return "Kamera nuk mbështetet në këtë pajisje."
	case "permission_denied":
		return "Leja për kamerën u refuzua."
	case "capture_failed":
		return "Fotoja nuk u bë. Provoni përsëri."
	default:
		return err.Error()
	}
}
