package workflow

import (
	"errors"
	"fmt"
)

var (
	// ErrNotDraft is returned when a wizard operation targets a request
	// that has already left draft status.
	ErrNotDraft = errors.New("request is not a draft")

	// ErrNotOwner is returned when the acting user does not own the
	// draft. Collaborators and admins do not drive the wizard.
	ErrNotOwner = errors.New("request does not belong to this user")

	// ErrNotReviewStep is returned when Submit is attempted before the
	// wizard has reached the review step.
	ErrNotReviewStep = errors.New("submit is only available from the review step")
)

// ValidationError is a field-level rejection at a step boundary. Nothing
// is persisted when one is returned.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IncompleteError is the submit-gate rejection, carrying the per-section
// flags so the caller can point at what is missing.
type IncompleteError struct {
	Completeness Completeness `json:"completeness"`
}

func (e *IncompleteError) Error() string {
	return "please complete all sections before submitting your request"
}
