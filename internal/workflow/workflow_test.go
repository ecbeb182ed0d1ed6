package workflow

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"clickdone/internal/database"
)

// fakeStore is an in-memory Store that mirrors the persistence
// semantics the wizard relies on: per-section updates, the
// draft-only submit guard, and notification creation.
type fakeStore struct {
	requests      map[uuid.UUID]*database.WebsiteRequest
	notifications []*database.Notification

	failUpdates bool
	failNotify  bool
}

func newFakeStore(reqs ...*database.WebsiteRequest) *fakeStore {
	fs := &fakeStore{requests: make(map[uuid.UUID]*database.WebsiteRequest)}
	for _, r := range reqs {
		fs.requests[r.ID] = r
	}
	return fs
}

func (fs *fakeStore) GetRequestByID(id uuid.UUID) (*database.WebsiteRequest, error) {
	req, ok := fs.requests[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *req
	return &copied, nil
}

func (fs *fakeStore) UpdateBasicInfo(id uuid.UUID, info database.BasicInfo) error {
	if fs.failUpdates {
		return errors.New("update failed")
	}
	req := fs.requests[id]
	req.Title = info.Title
	req.Description = info.Description
	req.BusinessName = info.BusinessName
	req.BusinessType = info.BusinessType
	req.TargetAudience = info.TargetAudience
	return nil
}

func (fs *fakeStore) UpdateDesignPrefs(id uuid.UUID, prefs database.DesignPrefs) error {
	if fs.failUpdates {
		return errors.New("update failed")
	}
	req := fs.requests[id]
	req.ColorScheme = prefs.ColorScheme
	req.StyleDescription = prefs.StyleDescription
	req.LayoutPreference = prefs.LayoutPreference
	return nil
}

func (fs *fakeStore) UpdateFunctionalReqs(id uuid.UUID, reqs database.FunctionalReqs) error {
	if fs.failUpdates {
		return errors.New("update failed")
	}
	req := fs.requests[id]
	req.FunctionalRequirements = reqs.Requirements
	req.Ecommerce = reqs.Ecommerce
	req.ContactForm = reqs.ContactForm
	return nil
}

func (fs *fakeStore) UpdateTimelineBudget(id uuid.UUID, tb database.TimelineBudget) error {
	if fs.failUpdates {
		return errors.New("update failed")
	}
	req := fs.requests[id]
	req.Budget = tb.Budget
	req.Deadline = tb.Deadline
	req.ExpectedTimeline = tb.ExpectedTimeline
	return nil
}

func (fs *fakeStore) SubmitRequest(id uuid.UUID) error {
	req, ok := fs.requests[id]
	if !ok || req.Status != database.StatusDraft {
		return fmt.Errorf("request not found or not a draft")
	}
	req.Status = database.StatusSubmitted
	return nil
}

func (fs *fakeStore) CreateNotification(n *database.Notification) error {
	if fs.failNotify {
		return errors.New("notify failed")
	}
	fs.notifications = append(fs.notifications, n)
	return nil
}

func newDraft(userID int) *database.WebsiteRequest {
	return &database.WebsiteRequest{
		ID:     uuid.New(),
		UserID: userID,
		Status: database.StatusDraft,
	}
}

func mustResume(t *testing.T, fs *fakeStore, req *database.WebsiteRequest, step Step, opts ...Option) *Workflow {
	t.Helper()
	w, err := Resume(fs, LongForm, req.ID, req.UserID, step, opts...)
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	return w
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestResumeGuards(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)

	if _, err := Resume(fs, LongForm, draft.ID, 2, StepBasic); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner for foreign user, got %v", err)
	}

	draft.Status = database.StatusSubmitted
	if _, err := Resume(fs, LongForm, draft.ID, 1, StepBasic); !errors.Is(err, ErrNotDraft) {
		t.Fatalf("expected ErrNotDraft for submitted request, got %v", err)
	}

	if _, err := Resume(fs, LongForm, uuid.New(), 1, StepBasic); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows for unknown request, got %v", err)
	}
}

func TestResumeClampsStep(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)

	w := mustResume(t, fs, draft, Step(99))
	if w.Step() != StepReview {
		t.Fatalf("expected step clamped to review, got %s", w.Step())
	}

	w = mustResume(t, fs, draft, Step(-3))
	if w.Step() != StepBasic {
		t.Fatalf("expected step clamped to basic, got %s", w.Step())
	}
}

func TestContinueValidationBlocks(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepBasic)

	step, err := w.Continue(StepInput{Basic: &database.BasicInfo{Description: "no title"}})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Field != "title" || verr.Message != "Enter a project title" {
		t.Fatalf("unexpected validation error: %+v", verr)
	}
	if step != StepBasic {
		t.Fatalf("expected step to stay at basic, got %s", step)
	}
	if fs.requests[draft.ID].Description != "" {
		t.Fatal("expected nothing persisted on validation failure")
	}
}

func TestContinuePersistsAndAdvances(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepBasic)

	step, err := w.Continue(StepInput{Basic: &database.BasicInfo{
		Title:       "Bakery Site",
		Description: "A site for my bakery",
	}})
	if err != nil {
		t.Fatalf("Continue failed: %v", err)
	}
	if step != StepDesign {
		t.Fatalf("expected advance to design, got %s", step)
	}
	if fs.requests[draft.ID].Title != "Bakery Site" {
		t.Fatalf("expected title persisted, got %q", fs.requests[draft.ID].Title)
	}
}

func TestContinuePersistFailureDoesNotAdvance(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepBasic)

	fs.failUpdates = true
	step, err := w.Continue(StepInput{Basic: &database.BasicInfo{
		Title:       "Bakery Site",
		Description: "A site for my bakery",
	}})
	if err == nil {
		t.Fatal("expected persist error")
	}
	if step != StepBasic {
		t.Fatalf("expected step to stay at basic on persist failure, got %s", step)
	}
}

func TestDeadlineBoundaries(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deadline time.Time
		wantErr  string
	}{
		{"yesterday", now.AddDate(0, 0, -1), "Deadline cannot be in the past"},
		{"start of today", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), ""},
		{"earlier today", now.Add(-2 * time.Hour), ""},
		{"tomorrow", now.AddDate(0, 0, 1), ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			draft := newDraft(1)
			fs := newFakeStore(draft)
			w := mustResume(t, fs, draft, StepTimeline, WithClock(fixedClock(now)))

			deadline := tc.deadline
			_, err := w.Continue(StepInput{Timeline: &database.TimelineBudget{Deadline: &deadline}})

			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("expected deadline accepted, got %v", err)
				}
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Message != tc.wantErr {
				t.Fatalf("expected %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestQuickFormValidators(t *testing.T) {
	now := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)
	tomorrow := now.AddDate(0, 0, 1)
	budget := 500.0

	draft := newDraft(1)
	fs := newFakeStore(draft)
	w, err := Resume(fs, QuickForm, draft.ID, 1, StepBasic, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	_, err = w.Continue(StepInput{Basic: &database.BasicInfo{Title: "Shop", Description: "desc"}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "Select a website type" {
		t.Fatalf("expected website type error, got %v", err)
	}

	if _, err = w.Continue(StepInput{Basic: &database.BasicInfo{Title: "Shop", BusinessType: "ecommerce", Description: "desc"}}); err != nil {
		t.Fatalf("valid quick basic step rejected: %v", err)
	}

	// Timeline step demands a positive budget before the deadline check.
	w, err = Resume(fs, QuickForm, draft.ID, 1, StepTimeline, WithClock(fixedClock(now)))
	if err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	_, err = w.Continue(StepInput{Timeline: &database.TimelineBudget{Deadline: &tomorrow}})
	if !errors.As(err, &verr) || verr.Message != "Enter a budget range" {
		t.Fatalf("expected budget error, got %v", err)
	}
	if _, err = w.Continue(StepInput{Timeline: &database.TimelineBudget{Budget: &budget, Deadline: &tomorrow}}); err != nil {
		t.Fatalf("valid quick timeline step rejected: %v", err)
	}
}

func TestPreviousIsBestEffort(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)

	var logged bool
	w := mustResume(t, fs, draft, StepDesign, WithLogger(func(string, ...any) { logged = true }))

	fs.failUpdates = true
	step := w.Previous(StepInput{Design: &database.DesignPrefs{ColorScheme: "warm"}})
	if step != StepBasic {
		t.Fatalf("expected step back to basic despite save failure, got %s", step)
	}
	if !logged {
		t.Fatal("expected the save failure to be logged")
	}

	// At the first step, previous stays put.
	if got := w.Previous(StepInput{}); got != StepBasic {
		t.Fatalf("expected previous at first step to stay at basic, got %s", got)
	}
}

func TestSaveDraftSkipsValidation(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepBasic)

	// Title alone fails Continue validation but SaveDraft takes it.
	if err := w.SaveDraft(StepInput{Basic: &database.BasicInfo{Title: "Bakery Site"}}); err != nil {
		t.Fatalf("SaveDraft failed: %v", err)
	}
	if fs.requests[draft.ID].Title != "Bakery Site" {
		t.Fatal("expected partial draft persisted")
	}
}

func TestSubmitRequiresReviewStep(t *testing.T) {
	budget := 1500.0
	draft := newDraft(1)
	draft.Title = "Bakery Site"
	draft.Description = "A site for my bakery"
	draft.ColorScheme = "warm pastels"
	draft.FunctionalRequirements = []string{"Online ordering"}
	draft.Budget = &budget

	fs := newFakeStore(draft)

	// Even a fully complete draft cannot be submitted from an earlier
	// step.
	for _, step := range []Step{StepBasic, StepDesign, StepFunctional, StepTimeline} {
		w := mustResume(t, fs, draft, step)
		if _, err := w.Submit(); !errors.Is(err, ErrNotReviewStep) {
			t.Fatalf("expected ErrNotReviewStep from %s, got %v", step, err)
		}
		if fs.requests[draft.ID].Status != database.StatusDraft {
			t.Fatalf("expected draft to stay untouched after refused submit from %s", step)
		}
	}
	if len(fs.notifications) != 0 {
		t.Fatalf("expected no notifications from refused submits, got %d", len(fs.notifications))
	}

	w := mustResume(t, fs, draft, StepReview)
	if _, err := w.Submit(); err != nil {
		t.Fatalf("Submit from review failed: %v", err)
	}
	if fs.requests[draft.ID].Status != database.StatusSubmitted {
		t.Fatal("expected request submitted from review step")
	}
}

func TestSubmitGate(t *testing.T) {
	draft := newDraft(1)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepReview)

	_, err := w.Submit()
	var ierr *IncompleteError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IncompleteError on empty draft, got %v", err)
	}
	if ierr.Completeness.Complete() {
		t.Fatal("expected completeness flags to be false")
	}
	if fs.requests[draft.ID].Status != database.StatusDraft {
		t.Fatal("expected failed submit to leave draft untouched")
	}

	// The gate reads the persisted draft, so filling the store directly
	// is enough.
	budget := 1200.0
	stored := fs.requests[draft.ID]
	stored.Title = "Bakery Site"
	stored.Description = "A site for my bakery"
	stored.ColorScheme = "warm pastels"
	stored.FunctionalRequirements = []string{"Online ordering"}
	stored.Budget = &budget

	completeness, err := w.Submit()
	if err != nil {
		t.Fatalf("Submit failed on complete draft: %v", err)
	}
	if !completeness.Complete() {
		t.Fatalf("expected full completeness, got %+v", completeness)
	}
	if fs.requests[draft.ID].Status != database.StatusSubmitted {
		t.Fatal("expected request submitted")
	}

	if len(fs.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(fs.notifications))
	}
	n := fs.notifications[0]
	if n.Title != "Request Submitted" {
		t.Fatalf("unexpected notification title %q", n.Title)
	}
	wantBody := `Your website request "Bakery Site" has been submitted successfully.`
	if n.Body != wantBody {
		t.Fatalf("unexpected notification body %q", n.Body)
	}
	if n.Link != "/requests/"+draft.ID.String() {
		t.Fatalf("unexpected notification link %q", n.Link)
	}
}

func TestSubmitSurvivesNotificationFailure(t *testing.T) {
	budget := 900.0
	draft := newDraft(1)
	draft.Title = "Portfolio"
	draft.Description = "My portfolio"
	draft.StyleDescription = "minimal"
	draft.FunctionalRequirements = []string{"Gallery"}
	draft.Budget = &budget

	fs := newFakeStore(draft)
	fs.failNotify = true

	var logged bool
	w := mustResume(t, fs, draft, StepReview, WithLogger(func(string, ...any) { logged = true }))

	if _, err := w.Submit(); err != nil {
		t.Fatalf("expected submit to succeed despite notification failure, got %v", err)
	}
	if fs.requests[draft.ID].Status != database.StatusSubmitted {
		t.Fatal("expected request submitted")
	}
	if !logged {
		t.Fatal("expected notification failure to be logged")
	}
}

func TestWizardEndToEnd(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 14)

	draft := newDraft(7)
	fs := newFakeStore(draft)
	w := mustResume(t, fs, draft, StepBasic, WithClock(fixedClock(now)))

	if _, err := w.Continue(StepInput{Basic: &database.BasicInfo{
		Title:        "Bakery Site",
		BusinessType: "business",
		Description:  "A site for my bakery",
	}}); err != nil {
		t.Fatalf("basic step failed: %v", err)
	}

	if _, err := w.Continue(StepInput{Design: &database.DesignPrefs{ColorScheme: "warm pastels"}}); err != nil {
		t.Fatalf("design step failed: %v", err)
	}

	if _, err := w.Continue(StepInput{Functional: &database.FunctionalReqs{Requirements: []string{"Online ordering"}}}); err != nil {
		t.Fatalf("functional step failed: %v", err)
	}

	// A missing deadline blocks the timeline step.
	_, err := w.Continue(StepInput{Timeline: &database.TimelineBudget{}})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Message != "Select a deadline" {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if w.Step() != StepTimeline {
		t.Fatalf("expected to stay on timeline, got %s", w.Step())
	}

	step, err := w.Continue(StepInput{Timeline: &database.TimelineBudget{Deadline: &deadline}})
	if err != nil {
		t.Fatalf("timeline step failed: %v", err)
	}
	if step != StepReview {
		t.Fatalf("expected review step, got %s", step)
	}

	completeness, err := w.Submit()
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !completeness.Complete() {
		t.Fatalf("expected complete draft, got %+v", completeness)
	}
	if fs.requests[draft.ID].Status != database.StatusSubmitted {
		t.Fatal("expected request submitted")
	}
	if len(fs.notifications) != 1 || fs.notifications[0].UserID != 7 {
		t.Fatalf("expected owner notification, got %+v", fs.notifications)
	}
}
