// Package workflow implements the five-step request submission wizard:
// step validation, partial persistence at each step boundary, and the
// completeness-gated terminal submit transition. The persisted draft is
// the source of truth; the in-memory copy held here is a cache.
package workflow

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"clickdone/internal/database"
)

// Store is the slice of the persistence layer the wizard needs.
// database.Service satisfies it.
type Store interface {
	GetRequestByID(id uuid.UUID) (*database.WebsiteRequest, error)
	UpdateBasicInfo(id uuid.UUID, info database.BasicInfo) error
	UpdateDesignPrefs(id uuid.UUID, prefs database.DesignPrefs) error
	UpdateFunctionalReqs(id uuid.UUID, reqs database.FunctionalReqs) error
	UpdateTimelineBudget(id uuid.UUID, tb database.TimelineBudget) error
	SubmitRequest(id uuid.UUID) error
	CreateNotification(n *database.Notification) error
}

// Workflow is one user's wizard session over one draft request. It is
// rebuilt per HTTP request from the session's step pointer.
type Workflow struct {
	store   Store
	profile Profile
	req     *database.WebsiteRequest
	step    Step
	now     func() time.Time
	logf    func(format string, args ...any)
}

type Option func(*Workflow)

// WithClock overrides the wall clock, used by deadline validation.
func WithClock(now func() time.Time) Option {
	return func(w *Workflow) { w.now = now }
}

// WithLogger overrides where best-effort failures are logged.
func WithLogger(logf func(format string, args ...any)) Option {
	return func(w *Workflow) { w.logf = logf }
}

// Resume loads the draft and positions the wizard at step. Only the
// draft's owner may drive the wizard, and only while status is draft.
func Resume(store Store, profile Profile, requestID uuid.UUID, userID int, step Step, opts ...Option) (*Workflow, error) {
	req, err := store.GetRequestByID(requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotOwner
	}
	if req.Status != database.StatusDraft {
		return nil, ErrNotDraft
	}

	w := &Workflow{
		store:   store,
		profile: profile,
		req:     req,
		step:    step.Clamp(),
		now:     time.Now,
		logf:    log.Printf,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Step returns the wizard's current position.
func (w *Workflow) Step() Step {
	return w.step
}

// Request returns the cached draft.
func (w *Workflow) Request() *database.WebsiteRequest {
	return w.req
}

// Continue validates the current step's fields, persists them, and
// advances. On validation or persistence failure nothing advances and,
// for validation, nothing is persisted.
func (w *Workflow) Continue(in StepInput) (Step, error) {
	if err := w.profile.validate(w.step, in, w.now()); err != nil {
		return w.step, err
	}
	if err := w.persist(in); err != nil {
		return w.step, err
	}
	if w.step < LastStep {
		w.step++
	}
	return w.step, nil
}

// Previous saves the in-flight fields best-effort and steps back. A
// save failure is logged, never surfaced; going back must always work.
func (w *Workflow) Previous(in StepInput) Step {
	if err := w.persist(in); err != nil {
		w.logf("workflow: best-effort save on previous failed for request %s: %v", w.req.ID, err)
	}
	if w.step > FirstStep {
		w.step--
	}
	return w.step
}

// SaveDraft persists the current fields without validation, leaving the
// request in draft status for a later resume.
func (w *Workflow) SaveDraft(in StepInput) error {
	return w.persist(in)
}

// Completeness re-derives the section flags from the persisted draft.
func (w *Workflow) Completeness() (Completeness, error) {
	fresh, err := w.store.GetRequestByID(w.req.ID)
	if err != nil {
		return Completeness{}, fmt.Errorf("failed to load draft for completeness check: %w", err)
	}
	w.req = fresh
	return CheckCompleteness(fresh), nil
}

// Submit performs the terminal draft -> submitted transition, only from
// the review step. The completeness gate runs against the persisted
// draft, not the in-memory cache. The submitted notification is
// best-effort: its failure is logged and does not roll back the
// transition.
func (w *Workflow) Submit() (Completeness, error) {
	if w.step != StepReview {
		return Completeness{}, ErrNotReviewStep
	}

	completeness, err := w.Completeness()
	if err != nil {
		return completeness, err
	}
	if !completeness.Complete() {
		return completeness, &IncompleteError{Completeness: completeness}
	}

	if err := w.store.SubmitRequest(w.req.ID); err != nil {
		return completeness, fmt.Errorf("failed to submit request: %w", err)
	}
	w.req.Status = database.StatusSubmitted

	notification := &database.Notification{
		UserID: w.req.UserID,
		Title:  "Request Submitted",
		Body:   fmt.Sprintf("Your website request %q has been submitted successfully.", w.req.Title),
		Link:   fmt.Sprintf("/requests/%s", w.req.ID),
	}
	if err := w.store.CreateNotification(notification); err != nil {
		w.logf("workflow: submitted notification failed for request %s: %v", w.req.ID, err)
	}

	return completeness, nil
}

// persist writes the field group matching the current step. A nil group
// or the review step persists nothing.
func (w *Workflow) persist(in StepInput) error {
	var err error
	switch w.step {
	case StepBasic:
		if in.Basic == nil {
			return nil
		}
		if err = w.store.UpdateBasicInfo(w.req.ID, *in.Basic); err == nil {
			w.req.Title = in.Basic.Title
			w.req.Description = in.Basic.Description
			w.req.BusinessName = in.Basic.BusinessName
			w.req.BusinessType = in.Basic.BusinessType
			w.req.TargetAudience = in.Basic.TargetAudience
		}
	case StepDesign:
		if in.Design == nil {
			return nil
		}
		if err = w.store.UpdateDesignPrefs(w.req.ID, *in.Design); err == nil {
			w.req.ColorScheme = in.Design.ColorScheme
			w.req.LayoutPreference = in.Design.LayoutPreference
			w.req.StyleDescription = in.Design.StyleDescription
			w.req.ExampleWebsites = in.Design.ExampleWebsites
			w.req.LogoExists = in.Design.LogoExists
			w.req.BrandGuidelinesExist = in.Design.BrandGuidelinesExist
			w.req.AdditionalDesignNotes = in.Design.AdditionalDesignNotes
		}
	case StepFunctional:
		if in.Functional == nil {
			return nil
		}
		if err = w.store.UpdateFunctionalReqs(w.req.ID, *in.Functional); err == nil {
			w.req.FunctionalRequirements = in.Functional.Requirements
			w.req.ContentManagement = in.Functional.ContentManagement
			w.req.UserAccounts = in.Functional.UserAccounts
			w.req.Ecommerce = in.Functional.Ecommerce
			w.req.ContactForm = in.Functional.ContactForm
			w.req.Newsletter = in.Functional.Newsletter
			w.req.Blog = in.Functional.Blog
			w.req.SocialMedia = in.Functional.SocialMedia
			w.req.Analytics = in.Functional.Analytics
			w.req.CustomFeatures = in.Functional.CustomFeatures
		}
	case StepTimeline:
		if in.Timeline == nil {
			return nil
		}
		if err = w.store.UpdateTimelineBudget(w.req.ID, *in.Timeline); err == nil {
			w.req.Budget = in.Timeline.Budget
			w.req.BudgetFlexible = in.Timeline.BudgetFlexible
			w.req.Deadline = in.Timeline.Deadline
			w.req.Urgency = in.Timeline.Urgency
			w.req.ExpectedTimeline = in.Timeline.ExpectedTimeline
			w.req.AdditionalTimelineNotes = in.Timeline.AdditionalTimelineNotes
		}
	case StepReview:
		// Review has no input fields of its own.
	}
	return err
}
