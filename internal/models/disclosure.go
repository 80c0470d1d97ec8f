package models

import (
	"time"
)

// ContactDisclosure records that real contact details are mutually
// visible for one thread. At most one disclosure exists per thread and
// it is never retracted.
type ContactDisclosure struct {
	ThreadID      string    `json:"thread_id"`
	FromCompanyID string    `json:"from_company_id"`
	ToCompanyID   string    `json:"to_company_id"`
	CreatedAt     time.Time `json:"created_at"`
}
