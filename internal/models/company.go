package models

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"
)

// Company represents a registered company account on the marketplace.
//
// Real contact details (CompanyName, ContactEmail, Phone, Address) are
// withheld from counterparties until a per-thread contact disclosure
// exists. Other parties only ever see AnonymousID until then.
type Company struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	AnonymousID  string    `json:"anonymous_id"`
	CompanyName  string    `json:"company_name,omitempty"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	Address      string    `json:"address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCompany creates a new Company with a generated pseudonym and
// initialized timestamps.
func NewCompany(username, email string) *Company {
	now := time.Now()
	return &Company{
		Username:    username,
		Email:       email,
		AnonymousID: NewAnonymousID(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// ContactCard is the subset of company fields revealed on disclosure.
type ContactCard struct {
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone,omitempty"`
	Address      string `json:"address,omitempty"`
}

// ContactCard returns the disclosable contact details.
func (c *Company) ContactCard() *ContactCard {
	return &ContactCard{
		CompanyName:  c.CompanyName,
		ContactEmail: c.ContactEmail,
		Phone:        c.Phone,
		Address:      c.Address,
	}
}

// NewAnonymousID generates a pseudonym of the form "Bedrift-3F9A2C".
// It stands in for the company name in all pre-disclosure views.
func NewAnonymousID() string {
	b := make([]byte, 3)
	rand.Read(b)
	return "Bedrift-" + strings.ToUpper(hex.EncodeToString(b))
}
