package wizard

import (
	"errors"
	"fmt"
)

var (
	ErrNoSavedForms        = errors.New("save at least one form before continuing")
	ErrFormCountMismatch   = errors.New("number of saved forms does not match the number of forms")
	ErrNoFormViewed        = errors.New("view at least one saved form before continuing")
	ErrSubmissionInFlight  = errors.New("event submission already in progress")
	ErrEmptyFieldLabel     = errors.New("fill in the last custom field before adding another")
	ErrUnknownField        = errors.New("unknown predefined field")
	ErrFieldIndex          = errors.New("field index out of range")
	ErrFormNotFound        = errors.New("saved form not found")
	ErrTabLocked           = errors.New("form tab is locked after saving")
	ErrTabIndex            = errors.New("form tab index out of range")
	ErrVolunteerIndex      = errors.New("volunteer index out of range")
	ErrUnknownCheckpoint   = errors.New("unknown checkpoint")
	ErrInvalidVolunteer    = errors.New("volunteer details are incomplete")
	ErrMissingEventDetails = errors.New("event name, start and end date are required to send invitations")
	ErrInvitationInFlight  = errors.New("invitation already being sent")
)

// ValidationError carries the per-field messages that blocked an operation.
type ValidationError struct {
	Step   Step
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d invalid field(s)", e.Step.Title(), len(e.Fields))
}
