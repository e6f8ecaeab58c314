package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func listProductsHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := svc.List(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"products": products})
	}
}

func getProductHandler(svc ProductService) gin.HandlerFunc {
	return func(c *gin.Context) {
		product, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, product)
	}
}

type createReviewRequest struct {
	Rating  int    `json:"rating"`
	Title   string `json:"title"`
	Comment string `json:"comment"`
}

func listReviewsHandler(svc ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := svc.ListByProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

func createReviewHandler(svc ReviewService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createReviewRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		review, err := svc.Create(c.Request.Context(), c.Param("id"), currentCustomer(c).ID, req.Rating, req.Title, req.Comment)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, review)
	}
}
