package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCoupon_DiscountFor_Percentage(t *testing.T) {
	c := Coupon{DiscountType: DiscountPercentage, DiscountValue: dec("10")}

	got := c.DiscountFor(dec("25.00"))
	if !got.Equal(dec("2.50")) {
		t.Fatalf("expected 2.50, got %s", got)
	}
}

func TestCoupon_DiscountFor_PercentageMaxCap(t *testing.T) {
	limit := dec("5.00")
	c := Coupon{DiscountType: DiscountPercentage, DiscountValue: dec("50"), MaxDiscount: &limit}

	got := c.DiscountFor(dec("100.00"))
	if !got.Equal(dec("5.00")) {
		t.Fatalf("expected cap of 5.00, got %s", got)
	}
}

func TestCoupon_DiscountFor_FixedCappedAtTotal(t *testing.T) {
	c := Coupon{DiscountType: DiscountFixedAmount, DiscountValue: dec("30.00")}

	got := c.DiscountFor(dec("12.75"))
	if !got.Equal(dec("12.75")) {
		t.Fatalf("fixed discount should not exceed cart total, got %s", got)
	}
}

func TestCoupon_DiscountFor_Rounds(t *testing.T) {
	c := Coupon{DiscountType: DiscountPercentage, DiscountValue: dec("15")}

	got := c.DiscountFor(dec("33.33"))
	if !got.Equal(dec("5.00")) {
		t.Fatalf("expected 5.00 after rounding, got %s", got)
	}
}

func TestCoupon_ValidAt(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	five := 5

	tests := []struct {
		name   string
		coupon Coupon
		want   bool
	}{
		{"active in window", Coupon{Active: true, ValidFrom: past}, true},
		{"inactive", Coupon{Active: false, ValidFrom: past}, false},
		{"not started", Coupon{Active: true, ValidFrom: future}, false},
		{"expired", Coupon{Active: true, ValidFrom: past, ValidUntil: &past}, false},
		{"ends later", Coupon{Active: true, ValidFrom: past, ValidUntil: &future}, true},
		{"uses left", Coupon{Active: true, ValidFrom: past, MaxUses: &five, CurrentUses: 4}, true},
		{"uses exhausted", Coupon{Active: true, ValidFrom: past, MaxUses: &five, CurrentUses: 5}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.coupon.ValidAt(now); got != tt.want {
				t.Fatalf("ValidAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCart_Total(t *testing.T) {
	cart := Cart{Items: []CartItem{
		{UnitPrice: dec("10.00"), Quantity: 1},
		{UnitPrice: dec("5.00"), Quantity: 2},
		{UnitPrice: dec("2.50"), Quantity: 2},
	}}

	if got := cart.Total(); !got.Equal(dec("25.00")) {
		t.Fatalf("expected 25.00, got %s", got)
	}
}
