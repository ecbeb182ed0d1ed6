package routes

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clickdone/internal/database"
	"clickdone/internal/workflow"
)

// WizardRoutes drives the five-step submission workflow. The step
// pointer lives in the cookie session per draft; the persisted draft is
// the source of truth for everything else.
type WizardRoutes struct {
	server ServerInterface
}

func NewWizardRoutes(server ServerInterface) *WizardRoutes {
	return &WizardRoutes{server: server}
}

func (wr *WizardRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(wr.server)

	wizard := r.Group("/requests/:id/wizard", middleware.AuthMiddleware())
	wizard.GET("", wr.stateHandler)
	wizard.POST("/continue", wr.continueHandler)
	wizard.POST("/previous", wr.previousHandler)
	wizard.POST("/save", wr.saveDraftHandler)
	wizard.POST("/submit", wr.submitHandler)
}

func stepSessionKey(requestID uuid.UUID) string {
	return "wizard_step:" + requestID.String()
}

// resume rebuilds the workflow for the acting user from the session's
// step pointer. Error responses are written here; a nil workflow means
// the handler should return.
func (wr *WizardRoutes) resume(c *gin.Context) (*workflow.Workflow, uuid.UUID) {
	user := c.MustGet("user").(*database.User)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return nil, uuid.Nil
	}

	session := sessions.Default(c)
	step := workflow.FirstStep
	if raw := session.Get(stepSessionKey(requestID)); raw != nil {
		if n, ok := raw.(int); ok {
			step = workflow.Step(n).Clamp()
		}
	}

	profile := workflow.ProfileByName(c.Query("profile"))

	w, err := workflow.Resume(wr.server.GetDB(), profile, requestID, user.ID, step)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		case errors.Is(err, workflow.ErrNotOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to edit this request"})
		case errors.Is(err, workflow.ErrNotDraft):
			c.JSON(http.StatusConflict, gin.H{"error": "Request has already been submitted"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request"})
		}
		return nil, uuid.Nil
	}

	return w, requestID
}

func (wr *WizardRoutes) saveStep(c *gin.Context, requestID uuid.UUID, step workflow.Step) {
	session := sessions.Default(c)
	session.Set(stepSessionKey(requestID), int(step))
	session.Save()
}

func (wr *WizardRoutes) stateHandler(c *gin.Context) {
	w, _ := wr.resume(c)
	if w == nil {
		return
	}

	completeness, err := w.Completeness()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"step":         w.Step(),
		"step_name":    w.Step().String(),
		"request":      w.Request(),
		"completeness": completeness,
	})
}

func (wr *WizardRoutes) continueHandler(c *gin.Context) {
	w, requestID := wr.resume(c)
	if w == nil {
		return
	}

	var in workflow.StepInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	step, err := w.Continue(in)
	if err != nil {
		var vErr *workflow.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Message, "field": vErr.Field})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save your information. Please try again."})
		return
	}

	wr.saveStep(c, requestID, step)
	c.JSON(http.StatusOK, gin.H{"step": step, "step_name": step.String(), "request": w.Request()})
}

func (wr *WizardRoutes) previousHandler(c *gin.Context) {
	w, requestID := wr.resume(c)
	if w == nil {
		return
	}

	// An empty body means nothing to save; going back must still work.
	var in workflow.StepInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	step := w.Previous(in)
	wr.saveStep(c, requestID, step)
	c.JSON(http.StatusOK, gin.H{"step": step, "step_name": step.String(), "request": w.Request()})
}

func (wr *WizardRoutes) saveDraftHandler(c *gin.Context) {
	w, _ := wr.resume(c)
	if w == nil {
		return
	}

	var in workflow.StepInput
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := w.SaveDraft(in); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft. Please try again."})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Draft saved", "request": w.Request()})
}

func (wr *WizardRoutes) submitHandler(c *gin.Context) {
	w, requestID := wr.resume(c)
	if w == nil {
		return
	}

	completeness, err := w.Submit()
	if err != nil {
		if errors.Is(err, workflow.ErrNotReviewStep) {
			c.JSON(http.StatusConflict, gin.H{"error": "Please review your request before submitting."})
			return
		}
		var iErr *workflow.IncompleteError
		if errors.As(err, &iErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":        "Please complete all sections before submitting your request.",
				"completeness": iErr.Completeness,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit request. Please try again."})
		return
	}

	// Submission clears the local workflow state.
	session := sessions.Default(c)
	session.Delete(stepSessionKey(requestID))
	session.Save()

	c.JSON(http.StatusOK, gin.H{
		"message":      "Request submitted successfully",
		"completeness": completeness,
		"request":      w.Request(),
	})
}
