package workflow

import (
	"strings"
	"time"

	"clickdone/internal/database"
)

// Step is the wizard's client-local position. It is navigation state,
// not a persisted lifecycle status.
type Step int

const (
	StepBasic Step = iota + 1
	StepDesign
	StepFunctional
	StepTimeline
	StepReview

	FirstStep = StepBasic
	LastStep  = StepReview
)

func (s Step) String() string {
	switch s {
	case StepBasic:
		return "basic"
	case StepDesign:
		return "design"
	case StepFunctional:
		return "functional"
	case StepTimeline:
		return "timeline"
	case StepReview:
		return "review"
	}
	return "unknown"
}

// Clamp forces s into the valid step range.
func (s Step) Clamp() Step {
	if s < FirstStep {
		return FirstStep
	}
	if s > LastStep {
		return LastStep
	}
	return s
}

// StepInput carries the field group for the step being persisted. Only
// the group matching the current step is consulted; a nil group means
// the step's fields are left untouched.
type StepInput struct {
	Basic      *database.BasicInfo      `json:"basic,omitempty"`
	Design     *database.DesignPrefs    `json:"design,omitempty"`
	Functional *database.FunctionalReqs `json:"functional,omitempty"`
	Timeline   *database.TimelineBudget `json:"timeline,omitempty"`
}

// Profile is a declarative step schema: the same engine runs the long
// intake wizard and the quick dashboard wizard, differing only in which
// fields each step demands.
type Profile struct {
	Name       string
	validators map[Step]func(in StepInput, now time.Time) error
}

func (p Profile) validate(step Step, in StepInput, now time.Time) error {
	if v, ok := p.validators[step]; ok {
		return v(in, now)
	}
	return nil
}

// LongForm is the canonical intake profile: title and description are
// required up front, design and functional sections are free-form, and
// the timeline step demands a deadline no earlier than today. The
// review-step completeness gate does the rest.
var LongForm = Profile{
	Name: "long",
	validators: map[Step]func(StepInput, time.Time) error{
		StepBasic: func(in StepInput, _ time.Time) error {
			if in.Basic == nil || strings.TrimSpace(in.Basic.Title) == "" {
				return &ValidationError{Field: "title", Message: "Enter a project title"}
			}
			if strings.TrimSpace(in.Basic.Description) == "" {
				return &ValidationError{Field: "description", Message: "Enter a project description"}
			}
			return nil
		},
		StepTimeline: func(in StepInput, now time.Time) error {
			if in.Timeline == nil || in.Timeline.Deadline == nil {
				return &ValidationError{Field: "deadline", Message: "Select a deadline"}
			}
			return validateDeadline(*in.Timeline.Deadline, now)
		},
	},
}

// QuickForm is the short dashboard wizard's stricter profile: title,
// type, description, budget, and deadline are all enforced inline.
var QuickForm = Profile{
	Name: "quick",
	validators: map[Step]func(StepInput, time.Time) error{
		StepBasic: func(in StepInput, _ time.Time) error {
			if in.Basic == nil || strings.TrimSpace(in.Basic.Title) == "" {
				return &ValidationError{Field: "title", Message: "Enter a project title"}
			}
			if strings.TrimSpace(in.Basic.BusinessType) == "" {
				return &ValidationError{Field: "business_type", Message: "Select a website type"}
			}
			if strings.TrimSpace(in.Basic.Description) == "" {
				return &ValidationError{Field: "description", Message: "Enter a project description"}
			}
			return nil
		},
		StepTimeline: func(in StepInput, now time.Time) error {
			if in.Timeline == nil || in.Timeline.Budget == nil || *in.Timeline.Budget <= 0 {
				return &ValidationError{Field: "budget", Message: "Enter a budget range"}
			}
			if in.Timeline.Deadline == nil {
				return &ValidationError{Field: "deadline", Message: "Select a deadline"}
			}
			return validateDeadline(*in.Timeline.Deadline, now)
		},
	},
}

// ProfileByName resolves a wizard profile, defaulting to the long form.
func ProfileByName(name string) Profile {
	if name == QuickForm.Name {
		return QuickForm
	}
	return LongForm
}

// validateDeadline accepts any deadline on or after today, compared at
// date precision in the deadline's own location.
func validateDeadline(deadline, now time.Time) error {
	y, m, d := now.Date()
	todayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if deadline.Before(todayStart) {
		return &ValidationError{Field: "deadline", Message: "Deadline cannot be in the past"}
	}
	return nil
}
