package routes

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"clickdone/internal/database"
	"clickdone/internal/storage"
)

// ServerInterface is what the route groups need from the server.
type ServerInterface interface {
	GetDB() database.Service
	GetS3Service() *storage.S3Service
}

type Middleware struct {
	server ServerInterface
}

func NewMiddleware(server ServerInterface) *Middleware {
	return &Middleware{server: server}
}

func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userIDRaw := session.Get("user_id")

		if userIDRaw == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			return
		}

		userID, ok := userIDRaw.(int)
		if !ok {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Invalid session data"})
			return
		}

		db := m.server.GetDB()
		user, err := db.GetUserByID(userID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not found or database error"})
			return
		}

		c.Set("user", user) // Store user object in context
		c.Next()
	}
}

// AdminMiddleware gates admin-only routes on the user's role. Runs after
// AuthMiddleware.
func (m *Middleware) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
			return
		}

		if user.(*database.User).Role != database.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}

// RequestAccessMiddleware resolves the :id request and authorizes the
// acting user as its owner, a listed collaborator, or an admin. Not
// found and forbidden are distinct responses.
func (m *Middleware) RequestAccessMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "User not found in context"})
			return
		}
		userObj := user.(*database.User)

		requestID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
			return
		}

		db := m.server.GetDB()
		req, err := db.GetRequestByID(requestID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Request not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch request"})
			return
		}

		if !canAccessRequest(userObj, req) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You don't have permission to view this request"})
			return
		}

		c.Set("request", req)
		c.Next()
	}
}

func canAccessRequest(user *database.User, req *database.WebsiteRequest) bool {
	if user.Role == database.RoleAdmin {
		return true
	}
	if req.UserID == user.ID {
		return true
	}
	for _, id := range req.CollaboratorIDs {
		if id == user.ID {
			return true
		}
	}
	return false
}
