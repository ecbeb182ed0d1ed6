package database

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
)

// Service exposes all persistence operations used by the HTTP layer.
type Service interface {
	Health() map[string]string
	RunMigrations() error
	Close() error

	// Users
	CreateOrUpdateUser(user *User) error
	CreateUserWithPassword(user *User, passwordHash string) error
	GetUserByID(id int) (*User, error)
	GetUserByEmail(email string) (*User, error)
	UpdateUserProfile(id int, name string, profileCompleted bool) error

	// Website requests
	CreateDraftRequest(req *WebsiteRequest) error
	GetRequestByID(id uuid.UUID) (*WebsiteRequest, error)
	GetUserRequests(userID int) ([]*WebsiteRequest, error)
	GetAllRequests(status RequestStatus, search string) ([]*WebsiteRequest, error)
	UpdateBasicInfo(id uuid.UUID, info BasicInfo) error
	UpdateDesignPrefs(id uuid.UUID, prefs DesignPrefs) error
	UpdateFunctionalReqs(id uuid.UUID, reqs FunctionalReqs) error
	UpdateTimelineBudget(id uuid.UUID, tb TimelineBudget) error
	SubmitRequest(id uuid.UUID) error
	SetRequestStatus(id uuid.UUID, status RequestStatus, progress int) error
	AssignAdmin(requestID uuid.UUID, adminID int) error
	AddCollaborator(requestID uuid.UUID, userID int) error
	GetCollaborators(requestID uuid.UUID) ([]int, error)

	// Feedback
	CreateFeedback(f *Feedback) error
	ListFeedback(requestID uuid.UUID) ([]*Feedback, error)

	// File metadata
	CreateFileMetadata(f *FileMetadata) error
	GetFileByID(id uuid.UUID) (*FileMetadata, error)
	ListFiles(requestID uuid.UUID) ([]*FileMetadata, error)
	DeleteFileMetadata(id uuid.UUID) error

	// Payments
	CreatePayment(p *Payment) error
	ListPayments(requestID uuid.UUID) ([]*Payment, error)

	// Notifications
	CreateNotification(n *Notification) error
	GetUserNotifications(userID int, limit int) ([]*Notification, error)
	MarkNotificationAsRead(notificationID uuid.UUID, userID int) error
	MarkAllNotificationsAsRead(userID int) error
}

type service struct {
	db *sql.DB
}

var dbInstance *service

// New returns the shared database service, connecting on first use.
func New() Service {
	if dbInstance != nil {
		return dbInstance
	}

	connStr := os.Getenv("DB_STRING")
	if connStr == "" {
		log.Fatal("DB_STRING environment variable not set")
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}

	maxConns := 20
	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			maxConns = n
		}
	}
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns / 2)
	db.SetConnMaxLifetime(time.Hour)

	dbInstance = &service{db: db}
	return dbInstance
}

// Health reports connectivity and pool statistics.
func (s *service) Health() map[string]string {
	stats := make(map[string]string)

	if err := s.db.Ping(); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := s.db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)

	return stats
}

func (s *service) Close() error {
	return s.db.Close()
}
