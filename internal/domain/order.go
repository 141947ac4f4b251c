package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType is how an order was paid
type PaymentType string

const (
	PaymentCash     PaymentType = "cash"
	PaymentTransfer PaymentType = "transfer"
)

// Valid reports whether p is a known payment type
func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentTransfer
}

// MemberSnapshot is a copy of the purchasing member taken at sale time.
// Points holds the balance before this order was settled.
type MemberSnapshot struct {
	Phone  string `json:"phone"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

// LineItem is one product-and-quantity entry of an order
type LineItem struct {
	Code  string          `json:"code"`
	Name  string          `json:"name"`
	Qty   int             `json:"qty"`
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"`
}

// DisplayName returns the name printed for the item, falling back to its code
func (li LineItem) DisplayName() string {
	if li.Name != "" {
		return li.Name
	}
	return li.Code
}

// Order is an immutable record of a completed sale
type Order struct {
	ID           string          `json:"id"`
	Member       *MemberSnapshot `json:"member,omitempty"`
	Items        []LineItem      `json:"items"`
	PaymentType  PaymentType     `json:"payment_type"`
	Cash         decimal.Decimal `json:"cash"`
	Total        decimal.Decimal `json:"total"`
	Change       decimal.Decimal `json:"change"`
	RedeemPoints int64           `json:"redeem_points"`
	RedeemValue  decimal.Decimal `json:"redeem_value"`
	EarnedPoints int64           `json:"earned_points"`
	Date         time.Time       `json:"date"`
}

// MemberPhone returns the attached member phone or an empty string
func (o *Order) MemberPhone() string {
	if o.Member == nil {
		return ""
	}
	return o.Member.Phone
}

// HasMember reports whether the order belongs to a real member
func (o *Order) HasMember() bool {
	return HasMemberPhone(o.MemberPhone())
}

// NetTotal is the gross total minus the redeemed point value, floored at zero
func (o *Order) NetTotal() decimal.Decimal {
	net := o.Total.Sub(o.RedeemValue)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// PointsAfter is the member balance once this order's points were applied
func (o *Order) PointsAfter() int64 {
	if o.Member == nil {
		return 0
	}
	return o.Member.Points + o.EarnedPoints - o.RedeemPoints
}

// SalesReport summarizes orders over a date range
type SalesReport struct {
	From        *time.Time      `json:"from,omitempty"`
	To          *time.Time      `json:"to,omitempty"`
	OrderCount  int             `json:"order_count"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	Daily       []DailySales    `json:"daily"`
	BestSellers []BestSeller    `json:"best_sellers"`
}

// DailySales is the sales total of one calendar day
type DailySales struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// BestSeller is an aggregated line for one product
type BestSeller struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Total    decimal.Decimal `json:"total"`
}
