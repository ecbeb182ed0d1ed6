package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clickdone/internal/database"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 100
)

type NotificationRoutes struct {
	server ServerInterface
}

func NewNotificationRoutes(server ServerInterface) *NotificationRoutes {
	return &NotificationRoutes{server: server}
}

func (nr *NotificationRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(nr.server)

	notifications := r.Group("/notifications", middleware.AuthMiddleware())
	notifications.GET("", nr.listHandler)
	notifications.POST("/:id/read", nr.markReadHandler)
	notifications.POST("/read-all", nr.markAllReadHandler)
}

// listHandler returns the user's notifications, newest first. The limit
// is capped so a dropdown poll cannot turn into a full-table scan.
func (nr *NotificationRoutes) listHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultNotificationLimit)))
	if err != nil || limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}

	db := nr.server.GetDB()
	notifications, err := db.GetUserNotifications(user.ID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

func (nr *NotificationRoutes) markReadHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	db := nr.server.GetDB()
	if err := db.MarkNotificationAsRead(notificationID, user.ID); err != nil {
		if err.Error() == "notification not found" {
			c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notification as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (nr *NotificationRoutes) markAllReadHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	db := nr.server.GetDB()
	if err := db.MarkAllNotificationsAsRead(user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark notifications as read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}
