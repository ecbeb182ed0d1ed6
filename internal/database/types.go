package database

// Closed enumerations for the request lifecycle and user roles. Handlers
// switch on these instead of raw strings so a new status is a one-place
// change.
type RequestStatus string
type RequestStage string
type Urgency string
type Role string
type PaymentType string
type PaymentStatus string

const (
	StatusDraft      RequestStatus = "draft"
	StatusSubmitted  RequestStatus = "submitted"
	StatusInProgress RequestStatus = "in_progress"
	StatusReview     RequestStatus = "review"
	StatusCompleted  RequestStatus = "completed"
	StatusCancelled  RequestStatus = "cancelled"

	StageRequirements RequestStage = "requirements"
	StageDesign       RequestStage = "design"
	StageDevelopment  RequestStage = "development"
	StageTesting      RequestStage = "testing"
	StageDelivery     RequestStage = "delivery"

	UrgencyLow    Urgency = "low"
	UrgencyNormal Urgency = "normal"
	UrgencyHigh   Urgency = "high"

	RoleClient       Role = "client"
	RoleAdmin        Role = "admin"
	RoleCollaborator Role = "collaborator"

	PaymentAdvance     PaymentType = "advance"
	PaymentFinal       PaymentType = "final"
	PaymentInstallment PaymentType = "installment"

	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// ValidStatus reports whether s is one of the known lifecycle statuses.
func ValidStatus(s RequestStatus) bool {
	switch s {
	case StatusDraft, StatusSubmitted, StatusInProgress, StatusReview, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// ProgressForStatus maps an admin-driven status transition to its
// progress value. Cancelled and draft fall through to zero.
func ProgressForStatus(s RequestStatus) int {
	switch s {
	case StatusSubmitted:
		return 20
	case StatusInProgress:
		return 50
	case StatusReview:
		return 80
	case StatusCompleted:
		return 100
	default:
		return 0
	}
}
