// internal/fault/fault.go
//
// Error taxonomy for the provisioning pipeline.
//
// Context
// -------
// Every failure that can surface to a caller belongs to one of the sentinel
// categories below.  Handlers translate a category into an HTTP status with
// `Status()`; the orchestrator wraps step failures with `AtStep()` so logs
// carry the pipeline position without leaking it into the response body.
//
// Unexpected errors from external calls are reported as ErrDownstream and
// keep their cause in the wrap chain for logging.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package fault

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrDuplicateRequest    = errors.New("duplicate request")
	ErrValidation          = errors.New("validation failed")
	ErrSiteExists          = errors.New("site already exists")
	ErrGenerationFailed    = errors.New("generation failed")
	ErrBucketCreation      = errors.New("bucket creation failed")
	ErrPolicy              = errors.New("bucket policy failed")
	ErrUpload              = errors.New("upload failed")
	ErrPersistence         = errors.New("persistence failed")
	ErrDownstream          = errors.New("downstream error")
)

// Status maps an error to the HTTP status its category dictates.  Unknown
// errors fall through to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInsufficientCredits):
		return http.StatusForbidden
	case errors.Is(err, ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, ErrValidation), errors.Is(err, ErrSiteExists):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// AtStep annotates err with the pipeline step that produced it.  The step
// name survives in the wrap chain for logging; errors.Is still matches the
// underlying category.
func AtStep(step string, err error) error {
	return fmt.Errorf("step %s: %w", step, err)
}

// Public returns the message shown to callers.  In production the raw cause
// of an internal error is replaced by a generic description; categorised
// errors keep their short sentinel text.
func Public(err error, production bool) string {
	for _, sentinel := range []error{
		ErrUnauthorized, ErrInsufficientCredits, ErrDuplicateRequest,
		ErrValidation, ErrSiteExists, ErrGenerationFailed,
		ErrBucketCreation, ErrPolicy, ErrUpload, ErrPersistence,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	if production {
		return "an unexpected error occurred"
	}
	return err.Error()
}
