package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	ordersvc "storefront/internal/service/order"
)

type checkoutRequest struct {
	Shipping         domain.ShippingInfo `json:"shipping"`
	DeliveryType     string              `json:"deliveryType"`
	DeliveryDate     *time.Time          `json:"deliveryDate"`
	DeliveryTimeSlot string              `json:"deliveryTimeSlot"`
	Notes            string              `json:"notes"`
}

func createOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req checkoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.Create(c.Request.Context(), currentCustomer(c).ID, ordersvc.CheckoutInput{
			Shipping:         req.Shipping,
			DeliveryType:     req.DeliveryType,
			DeliveryDate:     req.DeliveryDate,
			DeliveryTimeSlot: req.DeliveryTimeSlot,
			Notes:            req.Notes,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// listOrdersHandler returns the customer's orders; admins see all orders.
func listOrdersHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		var (
			orders []domain.Order
			err    error
		)
		if customer.Admin {
			orders, err = svc.List(c.Request.Context())
		} else {
			orders, err = svc.ListByCustomer(c.Request.Context(), customer.ID)
		}
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"orders": orders})
	}
}

func getOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customer := currentCustomer(c)
		customerID := customer.ID
		if customer.Admin {
			customerID = ""
		}
		order, err := svc.Get(c.Request.Context(), c.Param("id"), customerID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

func getOrderByPreferenceHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := svc.GetByPreferenceID(c.Request.Context(), c.Param("preferenceId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

func cancelOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.Cancel(c.Request.Context(), c.Param("id"), currentCustomer(c).ID, req.Reason)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

type transitionRequest struct {
	Status            string     `json:"status" binding:"required"`
	Reason            string     `json:"reason"`
	TrackingNumber    string     `json:"trackingNumber"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery"`
}

func transitionOrderHandler(svc OrderService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req transitionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		order, err := svc.Transition(c.Request.Context(), c.Param("id"), domain.OrderStatus(req.Status), ordersvc.TransitionInput{
			Reason:            req.Reason,
			TrackingNumber:    req.TrackingNumber,
			EstimatedDelivery: req.EstimatedDelivery,
		})
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
