package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	paymentsvc "storefront/internal/service/payment"
)

type createPaymentRequest struct {
	OrderID string `json:"orderId" binding:"required"`
}

func createPaymentHandler(svc PaymentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		session, err := svc.CreateSession(c.Request.Context(), req.OrderID, currentCustomer(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}

type webhookRequest struct {
	PreferenceID string `json:"preferenceId" binding:"required"`
	PaymentID    string `json:"paymentId"`
	Status       string `json:"status" binding:"required"`
}

// webhookHandler receives provider payment notifications. Unknown orders
// and unknown statuses are answered with an error status so the provider
// retries; everything else is acknowledged.
func webhookHandler(svc PaymentService, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req webhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.HandleCallback(c.Request.Context(), paymentsvc.Callback{
			PreferenceID: req.PreferenceID,
			PaymentID:    req.PaymentID,
			Status:       req.Status,
		})
		if err != nil {
			logger.Warn("payment callback rejected",
				zap.String("preference_id", req.PreferenceID),
				zap.String("provider_status", req.Status),
				zap.Error(err))
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"orderId":       order.ID,
			"status":        order.Status,
			"paymentStatus": order.PaymentStatus,
		})
	}
}
