package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/domain"
	customersvc "storefront/internal/service/customer"
)

// writeError maps domain errors to HTTP responses. Typed errors carry
// enough detail for the client to render a specific message; anything
// unmapped becomes an opaque 500.
func writeError(c *gin.Context, err error) {
	var (
		validation   *domain.ValidationError
		quantity     *domain.InvalidQuantityError
		stock        *domain.InsufficientStockError
		couponMissed *domain.CouponNotFoundError
		minPurchase  *domain.MinimumPurchaseNotMetError
		transition   *domain.InvalidTransitionError
		notPayable   *domain.OrderNotPayableError
		unknownPay   *domain.UnknownPaymentStatusError
	)

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      "validation failed",
			"violations": validation.Violations,
		})
	case errors.As(err, &quantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": quantity.Error()})
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, gin.H{
			"error":     stock.Error(),
			"productId": stock.ProductID,
			"requested": stock.Requested,
			"available": stock.Available,
		})
	case errors.As(err, &couponMissed):
		c.JSON(http.StatusNotFound, gin.H{"error": couponMissed.Error()})
	case errors.As(err, &minPurchase):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":     minPurchase.Error(),
			"minimum":   minPurchase.Minimum.StringFixed(2),
			"cartTotal": minPurchase.CartTotal.StringFixed(2),
		})
	case errors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": transition.Error()})
	case errors.As(err, &notPayable):
		c.JSON(http.StatusConflict, gin.H{"error": notPayable.Error()})
	case errors.As(err, &unknownPay):
		c.JSON(http.StatusBadRequest, gin.H{"error": unknownPay.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cart is empty"})
	case errors.Is(err, domain.ErrMissingReason):
		c.JSON(http.StatusBadRequest, gin.H{"error": "cancellation reason required"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, domain.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already exists"})
	case errors.Is(err, customersvc.ErrInvalidCredentials),
		errors.Is(err, customersvc.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
