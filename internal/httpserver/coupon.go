package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type couponRequest struct {
	Code string `json:"code" binding:"required"`
}

// applyCouponHandler validates the code against the current cart total,
// reserves a use and records the code on the cart.
func applyCouponHandler(coupons CouponService, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		customerID := currentCustomer(c).ID

		cart, err := carts.Get(c.Request.Context(), customerID)
		if err != nil {
			writeError(c, err)
			return
		}

		applied, err := coupons.Apply(c.Request.Context(), req.Code, cart.Total())
		if err != nil {
			writeError(c, err)
			return
		}

		cart, err = carts.SetCoupon(c.Request.Context(), customerID, applied.CouponCode)
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"cart":     toCartResponse(cart),
			"discount": applied,
		})
	}
}

// removeCouponHandler releases the reserved use and clears the cart's code.
// Removing when nothing is applied succeeds.
func removeCouponHandler(coupons CouponService, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		customerID := currentCustomer(c).ID

		cart, err := carts.Get(c.Request.Context(), customerID)
		if err != nil {
			writeError(c, err)
			return
		}

		if cart.CouponCode != "" {
			if err := coupons.Remove(c.Request.Context(), cart.CouponCode); err != nil {
				writeError(c, err)
				return
			}
			cart, err = carts.SetCoupon(c.Request.Context(), customerID, "")
			if err != nil {
				writeError(c, err)
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"cart": toCartResponse(cart)})
	}
}

// validateCouponHandler computes the discount without reserving a use.
func validateCouponHandler(coupons CouponService, carts CartService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req couponRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		cart, err := carts.Get(c.Request.Context(), currentCustomer(c).ID)
		if err != nil {
			writeError(c, err)
			return
		}

		applied, err := coupons.Evaluate(c.Request.Context(), req.Code, cart.Total())
		if err != nil {
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"valid": true, "discount": applied})
	}
}
