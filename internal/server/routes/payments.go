package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"clickdone/internal/database"
)

type PaymentRoutes struct {
	server ServerInterface
}

func NewPaymentRoutes(server ServerInterface) *PaymentRoutes {
	return &PaymentRoutes{server: server}
}

func (pr *PaymentRoutes) RegisterRoutes(r *gin.Engine) {
	middleware := NewMiddleware(pr.server)

	r.GET("/requests/:id/payments", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), pr.listPaymentsHandler)
	r.POST("/requests/:id/payments", middleware.AuthMiddleware(), middleware.RequestAccessMiddleware(), pr.createPaymentHandler)
}

func (pr *PaymentRoutes) listPaymentsHandler(c *gin.Context) {
	req := c.MustGet("request").(*database.WebsiteRequest)

	db := pr.server.GetDB()
	payments, err := db.ListPayments(req.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch payments"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payments": payments})
}

// createPaymentHandler records a ledger entry. No gateway is attached;
// the entry is marked paid on creation. Real processing belongs to an
// external collaborator.
func (pr *PaymentRoutes) createPaymentHandler(c *gin.Context) {
	user := c.MustGet("user").(*database.User)
	req := c.MustGet("request").(*database.WebsiteRequest)

	var body struct {
		Amount        float64              `json:"amount" binding:"required,gt=0"`
		Currency      string               `json:"currency"`
		Type          database.PaymentType `json:"type"`
		Description   string               `json:"description" binding:"required"`
		PaymentMethod string               `json:"payment_method"`
	}

	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if body.Currency == "" {
		body.Currency = "USD"
	}
	if body.Type == "" {
		body.Type = database.PaymentAdvance
	}

	now := time.Now().UTC()
	payment := &database.Payment{
		RequestID:     req.ID,
		UserID:        user.ID,
		Amount:        body.Amount,
		Currency:      body.Currency,
		Type:          body.Type,
		Status:        database.PaymentPaid,
		Description:   body.Description,
		PaymentMethod: body.PaymentMethod,
		PaidAt:        &now,
	}

	db := pr.server.GetDB()
	if err := db.CreatePayment(payment); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"payment": payment})
}
