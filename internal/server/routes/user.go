package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"clickdone/internal/database"
)

type UserRoutes struct {
	server ServerInterface
}

func NewUserRoutes(server ServerInterface) *UserRoutes {
	return &UserRoutes{server: server}
}

func (ur *UserRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(ur.server)

	r.GET("/user", middleware.AuthMiddleware(), ur.userHandler)
	r.POST("/user/profile", middleware.AuthMiddleware(), ur.completeProfileHandler)
}

func (ur *UserRoutes) userHandler(c *gin.Context) {
	userRaw, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
		return
	}

	user, ok := userRaw.(*database.User)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user type in context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":           user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"avatar_url":        user.AvatarURL,
		"role":              user.Role,
		"profile_completed": user.ProfileCompleted,
		"authenticated":     true,
	})
}

// completeProfileHandler records the complete-profile flow after first
// sign-in.
func (ur *UserRoutes) completeProfileHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)

	var req struct {
		Name string `json:"name" binding:"required,min=1,max=100"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	db := ur.server.GetDB()
	if err := db.UpdateUserProfile(user.ID, strings.TrimSpace(req.Name), true); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
