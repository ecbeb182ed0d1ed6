package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WebsiteRequest is the aggregate root: one row per customer project,
// carrying the wizard content fields grouped the way the intake steps
// collect them.
type WebsiteRequest struct {
	ID              uuid.UUID     `json:"id"`
	UserID          int           `json:"user_id"`
	AssignedAdminID *int          `json:"assigned_admin_id,omitempty"`
	CollaboratorIDs []int         `json:"collaborator_ids"`
	Status          RequestStatus `json:"status"`
	CurrentStage    RequestStage  `json:"current_stage"`
	Progress        int           `json:"progress"`

	// Step 1: basic info
	Title          string `json:"title"`
	Description    string `json:"description"`
	BusinessName   string `json:"business_name"`
	BusinessType   string `json:"business_type"`
	TargetAudience string `json:"target_audience"`

	// Step 2: design preferences
	ColorScheme          string `json:"color_scheme"`
	LayoutPreference     string `json:"layout_preference"`
	StyleDescription     string `json:"style_description"`
	ExampleWebsites      string `json:"example_websites"`
	LogoExists           bool   `json:"logo_exists"`
	BrandGuidelinesExist bool   `json:"brand_guidelines_exist"`
	AdditionalDesignNotes string `json:"additional_design_notes"`

	// Step 3: functional requirements
	FunctionalRequirements []string `json:"functional_requirements"`
	ContentManagement      bool     `json:"content_management"`
	UserAccounts           bool     `json:"user_accounts"`
	Ecommerce              bool     `json:"ecommerce"`
	ContactForm            bool     `json:"contact_form"`
	Newsletter             bool     `json:"newsletter"`
	Blog                   bool     `json:"blog"`
	SocialMedia            bool     `json:"social_media"`
	Analytics              bool     `json:"analytics"`
	CustomFeatures         string   `json:"custom_features"`

	// Step 4: timeline and budget
	Budget                  *float64   `json:"budget,omitempty"`
	BudgetFlexible          bool       `json:"budget_flexible"`
	Deadline                *time.Time `json:"deadline,omitempty"`
	Urgency                 Urgency    `json:"urgency"`
	ExpectedTimeline        string     `json:"expected_timeline"`
	AdditionalTimelineNotes string     `json:"additional_timeline_notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Per-step field groups. Each wizard step persists exactly one of these
// as a partial update; untouched columns keep their values.
type BasicInfo struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	BusinessName   string `json:"business_name"`
	BusinessType   string `json:"business_type"`
	TargetAudience string `json:"target_audience"`
}

type DesignPrefs struct {
	ColorScheme           string `json:"color_scheme"`
	LayoutPreference      string `json:"layout_preference"`
	StyleDescription      string `json:"style_description"`
	ExampleWebsites       string `json:"example_websites"`
	LogoExists            bool   `json:"logo_exists"`
	BrandGuidelinesExist  bool   `json:"brand_guidelines_exist"`
	AdditionalDesignNotes string `json:"additional_design_notes"`
}

type FunctionalReqs struct {
	Requirements      []string `json:"requirements"`
	ContentManagement bool     `json:"content_management"`
	UserAccounts      bool     `json:"user_accounts"`
	Ecommerce         bool     `json:"ecommerce"`
	ContactForm       bool     `json:"contact_form"`
	Newsletter        bool     `json:"newsletter"`
	Blog              bool     `json:"blog"`
	SocialMedia       bool     `json:"social_media"`
	Analytics         bool     `json:"analytics"`
	CustomFeatures    string   `json:"custom_features"`
}

type TimelineBudget struct {
	Budget                  *float64   `json:"budget"`
	BudgetFlexible          bool       `json:"budget_flexible"`
	Deadline                *time.Time `json:"deadline"`
	Urgency                 Urgency    `json:"urgency"`
	ExpectedTimeline        string     `json:"expected_timeline"`
	AdditionalTimelineNotes string     `json:"additional_timeline_notes"`
}

const requestColumns = `
	id, user_id, assigned_admin_id, status, current_stage, progress,
	title, description, business_name, business_type, target_audience,
	color_scheme, layout_preference, style_description, example_websites,
	logo_exists, brand_guidelines_exist, additional_design_notes,
	functional_requirements, content_management, user_accounts, ecommerce,
	contact_form, newsletter, blog, social_media, analytics, custom_features,
	budget, budget_flexible, deadline, urgency, expected_timeline,
	additional_timeline_notes, created_at, updated_at`

func scanRequest(row interface{ Scan(...any) error }) (*WebsiteRequest, error) {
	req := &WebsiteRequest{}
	var (
		assignedAdmin sql.NullInt64
		funcReqs      []byte
		budget        sql.NullFloat64
		deadline      sql.NullTime
	)

	err := row.Scan(
		&req.ID, &req.UserID, &assignedAdmin, &req.Status, &req.CurrentStage, &req.Progress,
		&req.Title, &req.Description, &req.BusinessName, &req.BusinessType, &req.TargetAudience,
		&req.ColorScheme, &req.LayoutPreference, &req.StyleDescription, &req.ExampleWebsites,
		&req.LogoExists, &req.BrandGuidelinesExist, &req.AdditionalDesignNotes,
		&funcReqs, &req.ContentManagement, &req.UserAccounts, &req.Ecommerce,
		&req.ContactForm, &req.Newsletter, &req.Blog, &req.SocialMedia, &req.Analytics, &req.CustomFeatures,
		&budget, &req.BudgetFlexible, &deadline, &req.Urgency, &req.ExpectedTimeline,
		&req.AdditionalTimelineNotes, &req.CreatedAt, &req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if assignedAdmin.Valid {
		id := int(assignedAdmin.Int64)
		req.AssignedAdminID = &id
	}
	if budget.Valid {
		b := budget.Float64
		req.Budget = &b
	}
	if deadline.Valid {
		d := deadline.Time
		req.Deadline = &d
	}
	req.FunctionalRequirements = []string{}
	if len(funcReqs) > 0 {
		if err := json.Unmarshal(funcReqs, &req.FunctionalRequirements); err != nil {
			return nil, fmt.Errorf("failed to decode functional requirements: %w", err)
		}
	}
	req.CollaboratorIDs = []int{}

	return req, nil
}

// CreateDraftRequest begins a new request in draft status at progress
// zero. Only the template-selection fields supplied on req are stored.
func (s *service) CreateDraftRequest(req *WebsiteRequest) error {
	if req.Urgency == "" {
		req.Urgency = UrgencyNormal
	}

	query := `
		INSERT INTO website_requests
			(user_id, status, current_stage, progress, title, description,
			 business_name, business_type, target_audience, urgency, created_at, updated_at)
		VALUES ($1, $2, $3, 0, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := s.db.QueryRow(query,
		req.UserID, StatusDraft, StageRequirements,
		req.Title, req.Description, req.BusinessName, req.BusinessType, req.TargetAudience, req.Urgency,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draft request: %w", err)
	}

	req.Status = StatusDraft
	req.CurrentStage = StageRequirements
	req.Progress = 0
	req.CollaboratorIDs = []int{}
	req.FunctionalRequirements = []string{}
	return nil
}

// GetRequestByID retrieves a request with its collaborator list.
func (s *service) GetRequestByID(id uuid.UUID) (*WebsiteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM website_requests WHERE id = $1`

	req, err := scanRequest(s.db.QueryRow(query, id))
	if err != nil {
		return nil, err
	}

	collaborators, err := s.GetCollaborators(id)
	if err != nil {
		return nil, err
	}
	req.CollaboratorIDs = collaborators

	return req, nil
}

func (s *service) queryRequests(query string, args ...any) ([]*WebsiteRequest, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*WebsiteRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

// GetUserRequests returns requests the user owns plus requests shared
// with them as a collaborator, most recently updated first.
func (s *service) GetUserRequests(userID int) ([]*WebsiteRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM website_requests
		WHERE user_id = $1
		   OR id IN (SELECT request_id FROM request_collaborators WHERE user_id = $1)
		ORDER BY updated_at DESC`

	return s.queryRequests(query, userID)
}

// GetAllRequests is the admin triage listing. status narrows by
// lifecycle state when non-empty; search matches title or business name.
func (s *service) GetAllRequests(status RequestStatus, search string) ([]*WebsiteRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM website_requests WHERE 1=1`
	args := []any{}

	if status != "" {
		args = append(args, status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (title ILIKE $%d OR business_name ILIKE $%d)", len(args), len(args))
	}
	query += " ORDER BY updated_at DESC"

	return s.queryRequests(query, args...)
}

// UpdateBasicInfo persists the step 1 field group.
func (s *service) UpdateBasicInfo(id uuid.UUID, info BasicInfo) error {
	query := `
		UPDATE website_requests
		SET title = $2, description = $3, business_name = $4, business_type = $5,
			target_audience = $6, updated_at = NOW()
		WHERE id = $1`

	return s.execRequestUpdate(query, id, info.Title, info.Description, info.BusinessName, info.BusinessType, info.TargetAudience)
}

// UpdateDesignPrefs persists the step 2 field group.
func (s *service) UpdateDesignPrefs(id uuid.UUID, prefs DesignPrefs) error {
	query := `
		UPDATE website_requests
		SET color_scheme = $2, layout_preference = $3, style_description = $4,
			example_websites = $5, logo_exists = $6, brand_guidelines_exist = $7,
			additional_design_notes = $8, updated_at = NOW()
		WHERE id = $1`

	return s.execRequestUpdate(query, id, prefs.ColorScheme, prefs.LayoutPreference, prefs.StyleDescription,
		prefs.ExampleWebsites, prefs.LogoExists, prefs.BrandGuidelinesExist, prefs.AdditionalDesignNotes)
}

// UpdateFunctionalReqs persists the step 3 field group.
func (s *service) UpdateFunctionalReqs(id uuid.UUID, reqs FunctionalReqs) error {
	if reqs.Requirements == nil {
		reqs.Requirements = []string{}
	}
	encoded, err := json.Marshal(reqs.Requirements)
	if err != nil {
		return fmt.Errorf("failed to encode functional requirements: %w", err)
	}

	query := `
		UPDATE website_requests
		SET functional_requirements = $2, content_management = $3, user_accounts = $4,
			ecommerce = $5, contact_form = $6, newsletter = $7, blog = $8,
			social_media = $9, analytics = $10, custom_features = $11, updated_at = NOW()
		WHERE id = $1`

	return s.execRequestUpdate(query, id, encoded, reqs.ContentManagement, reqs.UserAccounts,
		reqs.Ecommerce, reqs.ContactForm, reqs.Newsletter, reqs.Blog,
		reqs.SocialMedia, reqs.Analytics, reqs.CustomFeatures)
}

// UpdateTimelineBudget persists the step 4 field group.
func (s *service) UpdateTimelineBudget(id uuid.UUID, tb TimelineBudget) error {
	if tb.Urgency == "" {
		tb.Urgency = UrgencyNormal
	}

	query := `
		UPDATE website_requests
		SET budget = $2, budget_flexible = $3, deadline = $4, urgency = $5,
			expected_timeline = $6, additional_timeline_notes = $7, updated_at = NOW()
		WHERE id = $1`

	return s.execRequestUpdate(query, id, tb.Budget, tb.BudgetFlexible, tb.Deadline, tb.Urgency,
		tb.ExpectedTimeline, tb.AdditionalTimelineNotes)
}

// SubmitRequest performs the terminal draft -> submitted transition.
// Content fields and progress are untouched; progress changes are an
// admin concern.
func (s *service) SubmitRequest(id uuid.UUID) error {
	query := `
		UPDATE website_requests
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = $3`

	result, err := s.db.Exec(query, id, StatusSubmitted, StatusDraft)
	if err != nil {
		return fmt.Errorf("failed to submit request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("request not found or not a draft")
	}
	return nil
}

// SetRequestStatus is the admin lifecycle transition: a single-row
// update of status, progress, and updated_at. Any status is reachable
// from any other.
func (s *service) SetRequestStatus(id uuid.UUID, status RequestStatus, progress int) error {
	query := `
		UPDATE website_requests
		SET status = $2, progress = $3, updated_at = NOW()
		WHERE id = $1`

	return s.execRequestUpdate(query, id, status, progress)
}

// AssignAdmin claims an unassigned request for adminID. The guard is in
// the WHERE clause: the second of two racing admins gets the
// already-assigned error.
func (s *service) AssignAdmin(requestID uuid.UUID, adminID int) error {
	query := `
		UPDATE website_requests
		SET assigned_admin_id = $2, updated_at = NOW()
		WHERE id = $1 AND assigned_admin_id IS NULL`

	result, err := s.db.Exec(query, requestID, adminID)
	if err != nil {
		return fmt.Errorf("failed to assign admin: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("request not found or already assigned")
	}
	return nil
}

// AddCollaborator grants a user view/contribute access to a request.
func (s *service) AddCollaborator(requestID uuid.UUID, userID int) error {
	query := `
		INSERT INTO request_collaborators (request_id, user_id, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (request_id, user_id) DO NOTHING`

	_, err := s.db.Exec(query, requestID, userID)
	if err != nil {
		return fmt.Errorf("failed to add collaborator: %w", err)
	}
	return nil
}

// GetCollaborators returns the collaborator user ids for a request.
func (s *service) GetCollaborators(requestID uuid.UUID) ([]int, error) {
	rows, err := s.db.Query(`SELECT user_id FROM request_collaborators WHERE request_id = $1 ORDER BY user_id`, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to get collaborators: %w", err)
	}
	defer rows.Close()

	ids := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *service) execRequestUpdate(query string, args ...any) error {
	result, err := s.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
