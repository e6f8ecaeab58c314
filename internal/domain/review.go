package domain

import "time"

// Review is a customer's rating of a product. One review per customer per
// product.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"productId"`
	CustomerID string    `json:"customerId"`
	Rating     int       `json:"rating"`
	Title      string    `json:"title"`
	Comment    string    `json:"comment,omitempty"`
	Approved   bool      `json:"approved"`
	CreatedAt  time.Time `json:"createdAt"`
}
