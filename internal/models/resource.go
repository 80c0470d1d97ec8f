package models

import (
	"time"
)

// PriceType represents how a resource is priced.
type PriceType string

const (
	PriceTypeFixed      PriceType = "fixed"
	PriceTypeHourly     PriceType = "hourly"
	PriceTypeNegotiable PriceType = "negotiable"
)

// Resource represents a time-bounded skilled-labor capacity offer.
//
// IsTaken transitions from false to true exactly once, when an acceptance
// completes. There is no reverse transition.
type Resource struct {
	ID         string     `json:"id"`
	CompanyID  string     `json:"company_id"`
	Competence string     `json:"competence"`
	Price      float64    `json:"price"`
	PriceType  PriceType  `json:"price_type"`
	PeriodFrom time.Time  `json:"period_from"`
	PeriodTo   time.Time  `json:"period_to"`
	Comments   string     `json:"comments,omitempty"`
	IsTaken    bool       `json:"is_taken"`
	TakenBy    string     `json:"-"` // Counterparty identity stays server-side
	TakenAt    *time.Time `json:"taken_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// NewResource creates a new Resource with initialized timestamps.
func NewResource(companyID, competence string, price float64, priceType PriceType, from, to time.Time) *Resource {
	now := time.Now()
	return &Resource{
		CompanyID:  companyID,
		Competence: competence,
		Price:      price,
		PriceType:  priceType,
		PeriodFrom: from,
		PeriodTo:   to,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// IsExpired returns true if the offer period has passed.
func (r *Resource) IsExpired(now time.Time) bool {
	return r.PeriodTo.Before(now)
}

// ParsePriceType converts a string to PriceType.
func ParsePriceType(s string) (PriceType, bool) {
	switch s {
	case "fixed":
		return PriceTypeFixed, true
	case "hourly":
		return PriceTypeHourly, true
	case "negotiable":
		return PriceTypeNegotiable, true
	default:
		return "", false
	}
}
