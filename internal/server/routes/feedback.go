package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clickdone/internal/database"
)

type FeedbackRoutes struct {
	server ServerInterface
}

func NewFeedbackRoutes(server ServerInterface) *FeedbackRoutes {
	return &FeedbackRoutes{server: server}
}

func (fr *FeedbackRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(fr.server)

	r.GET("/requests/:id/feedback", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), fr.listFeedbackHandler)
	r.POST("/requests/:id/feedback", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), fr.addFeedbackHandler)
}

func (fr *FeedbackRoutes) listFeedbackHandler(c *gin.Context) {
	req := c.MustGet("request").(*database.WebsiteRequest)

	db := fr.server.GetDB()
	feedback, err := db.ListFeedback(req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"feedback": feedback})
}

// addFeedbackHandler appends a feedback entry. Any authorized viewer may
// comment; entries are immutable afterwards.
func (fr *FeedbackRoutes) addFeedbackHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)
	req := c.MustGet("request").(*database.WebsiteRequest)

	var body struct {
		Content string `json:"content" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feedback cannot be empty"})
		return
	}

	entry := &database.Feedback{
		RequestID:       req.ID,
		UserID:          user.ID,
		UserDisplayName: user.Name,
		Content:         content,
	}

	db := fr.server.GetDB()
	if err := db.CreateFeedback(entry); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add feedback"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"feedback": entry})
}
