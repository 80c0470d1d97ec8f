// Package resources provides capacity listing API endpoints.
package resources

import (
	"strings"
	"time"

	"github.com/viken-labs/ressurstorg/internal/models"
)

// ValidationError contains validation error details.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CreateRequest is the request body for listing a resource.
type CreateRequest struct {
	Competence string  `json:"competence"`
	Price      float64 `json:"price"`
	PriceType  string  `json:"price_type"`
	PeriodFrom string  `json:"period_from"`
	PeriodTo   string  `json:"period_to"`
	Comments   string  `json:"comments"`
}

// Validate checks the request and returns the parsed fields.
func (r *CreateRequest) Validate() (models.PriceType, time.Time, time.Time, error) {
	if strings.TrimSpace(r.Competence) == "" {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "competence", Message: "competence is required"}
	}
	if len(r.Competence) > 200 {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "competence", Message: "competence must be at most 200 characters"}
	}
	if r.Price < 0 {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "price", Message: "price cannot be negative"}
	}

	priceType, ok := models.ParsePriceType(r.PriceType)
	if !ok {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "price_type", Message: "price_type must be one of: fixed, hourly, negotiable"}
	}

	from, err := time.Parse(time.RFC3339, r.PeriodFrom)
	if err != nil {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "period_from", Message: "period_from must be an RFC 3339 timestamp"}
	}
	to, err := time.Parse(time.RFC3339, r.PeriodTo)
	if err != nil {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "period_to", Message: "period_to must be an RFC 3339 timestamp"}
	}
	if !to.After(from) {
		return "", time.Time{}, time.Time{}, &ValidationError{Field: "period_to", Message: "period_to must be after period_from"}
	}

	return priceType, from, to, nil
}
