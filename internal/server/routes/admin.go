package routes

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clickdone/internal/database"
)

// AdminRoutes is the triage surface: list everything, claim requests,
// and drive the lifecycle state machine.
type AdminRoutes struct {
	server ServerInterface
}

func NewAdminRoutes(server ServerInterface) *AdminRoutes {
	return &AdminRoutes{server: server}
}

func (ar *AdminRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ar.server)

	admin := r.Group("/admin", middleware.AuthMiddleware(), middleware.AdminMiddleware())
	admin.GET("/requests", ar.listAllRequestsHandler)
	admin.PUT("/requests/:id/status", ar.setStatusHandler)
	admin.POST("/requests/:id/assign", ar.selfAssignHandler)
}

// listAllRequestsHandler lists every request, optionally narrowed by
// ?status= and a ?q= title/business search.
func (ar *AdminRoutes) listAllRequestsHandler(c *gin.Context) {
	status := database.RequestStatus(c.Query("status"))
	if status != "" && !database.ValidStatus(status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status filter"})
		return
	}

	db := ar.server.GetDB()
	requests, err := db.GetAllRequests(status, c.Query("q"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": requests})
}

// setStatusHandler performs the lifecycle transition. Progress follows
// the status mapping; any status is reachable from any other. The
// owner's notification is best-effort after the primary update.
func (ar *AdminRoutes) setStatusHandler(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	var body struct {
		Status database.RequestStatus `json:"status" binding:"required"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !database.ValidStatus(body.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	db := ar.server.GetDB()
	req, err := db.GetRequestByID(requestID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
		return
	}

	progress := database.ProgressForStatus(body.Status)
	if err := db.SetRequestStatus(requestID, body.Status, progress); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}

	notification := &database.Notification{
		UserID: req.UserID,
		Title:  "Request Updated",
		Body:   fmt.Sprintf("Your website request %q is now %s.", req.Title, body.Status),
		Link:   fmt.Sprintf("/requests/%s", requestID),
	}
	if err := db.CreateNotification(notification); err != nil {
		log.Printf("status-change notification failed for request %s: %v", requestID, err)
	}

	c.JSON(http.StatusOK, gin.H{"status": body.Status, "progress": progress})
}

// selfAssignHandler lets an admin claim an unassigned request.
func (ar *AdminRoutes) selfAssignHandler(c *gin.Context) {
	admin := c.MustGet("user").(*database.User)

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
		return
	}

	db := ar.server.GetDB()
	if err := db.AssignAdmin(requestID, admin.ID); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Request not found or already assigned"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request assigned", "assigned_admin_id": admin.ID})
}
