package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"clickdone/internal/database"
)

type RequestRoutes struct {
	server ServerInterface
}

func NewRequestRoutes(server ServerInterface) *RequestRoutes {
	return &RequestRoutes{server: server}
}

func (rr *RequestRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(rr.server)

	r.POST("/requests", middleware.AuthMiddleware(), rr.createRequestHandler)
	r.GET("/requests", middleware.AuthMiddleware(), rr.listRequestsHandler)
	r.GET("/requests/:id", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), rr.getRequestHandler)
	r.POST("/requests/:id/collaborators", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), rr.addCollaboratorHandler)
}

// createRequestHandler is the wizard's Start action: template selection
// creates the draft the step forms accumulate into.
func (rr *RequestRoutes) createRequestHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	var req struct {
		Title          string `json:"title"`
		Description    string `json:"description"`
		BusinessName   string `json:"business_name"`
		BusinessType   string `json:"business_type"`
		TargetAudience string `json:"target_audience"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	draft := &database.WebsiteRequest{
		UserID:         user.ID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		BusinessName:   req.BusinessName,
		BusinessType:   req.BusinessType,
		TargetAudience: req.TargetAudience,
	}

	db := rr.server.GetDB()
	if err := db.CreateDraftRequest(draft); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"request": draft})
}

// listRequestsHandler returns the requests the user owns or collaborates
// on.
func (rr *RequestRoutes) listRequestsHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	db := rr.server.GetDB()
	requests, err := db.GetUserRequests(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// getRequestHandler aggregates the request with its feedback, files, and
// payments, fetched concurrently. A failure in any sub-fetch fails the
// whole view.
func (rr *RequestRoutes) getRequestHandler(c *gin.Context) {
	req := c.MustGet("request").(*database.WebsiteRequest)
	db := rr.server.GetDB()

	var (
		feedback []*database.Feedback
		files    []*database.FileMetadata
		payments []*database.Payment
	)

	g, _ := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		feedback, err = db.ListFeedback(req.ID)
		return err
	})
	g.Go(func() error {
		var err error
		files, err = db.ListFiles(req.ID)
		return err
	})
	g.Go(func() error {
		var err error
		payments, err = db.ListPayments(req.ID)
		return err
	})

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load request details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request":  req,
		"feedback": feedback,
		"files":    files,
		"payments": payments,
	})
}

// addCollaboratorHandler grants another user access to the request by
// email. Only the owner or an admin may share it.
func (rr *RequestRoutes) addCollaboratorHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)
	req := c.MustGet("request").(*database.WebsiteRequest)

	if req.UserID != user.ID && user.Role != database.RoleAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the owner can add collaborators"})
		return
	}

	var body struct {
		Email string `json:"email" binding:"required,email"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := rr.server.GetDB()
	collaborator, err := db.GetUserByEmail(strings.ToLower(body.Email))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User with that email not found"})
		return
	}

	if err := db.AddCollaborator(req.ID, collaborator.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add collaborator"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collaborator added successfully"})
}
