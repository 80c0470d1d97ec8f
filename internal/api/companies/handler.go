package companies

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/viken-labs/ressurstorg/internal/api/auth"
	"github.com/viken-labs/ressurstorg/internal/api/middleware"
	"github.com/viken-labs/ressurstorg/internal/storage"
)

// Response helpers (local to avoid import cycle)

type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type dataResponse struct {
	Data any `json:"data"`
}

// Error codes
const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeNotFound         = "NOT_FOUND"
	errCodeConflict         = "CONFLICT"
	errCodeUnauthorized     = "UNAUTHORIZED"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Handler handles company account endpoints.
type Handler struct {
	storage storage.Storage
}

// NewHandler creates a new company handler.
func NewHandler(store storage.Storage) *Handler {
	return &Handler{storage: store}
}

// UpdateRequest is the request body for updating the company profile.
type UpdateRequest struct {
	Email        *string `json:"email,omitempty"`
	CompanyName  *string `json:"company_name,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty"`
	Phone        *string `json:"phone,omitempty"`
	Address      *string `json:"address,omitempty"`
}

// ChangePasswordRequest is the request body for changing password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Me returns the authenticated company's own account, contact fields
// included. Counterparties never come through here; they see companies
// via thread views, where the contact card is gated on disclosure.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	company, err := h.storage.Companies().GetByID(ctx, companyID)
	if err != nil {
		log.Printf("get company error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if company == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "company not found")
		return
	}

	jsonOK(w, company)
}

// UpdateMe updates the authenticated company's profile.
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	company, err := h.storage.Companies().GetByID(ctx, companyID)
	if err != nil {
		log.Printf("update company error: get: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if company == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "company not found")
		return
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := ValidateEmail(email); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		if email != company.Email {
			existing, err := h.storage.Companies().GetByEmail(ctx, email)
			if err != nil {
				log.Printf("update company error: check email: %v", err)
				jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
				return
			}
			if existing != nil {
				jsonError(w, http.StatusConflict, errCodeConflict, "email already registered")
				return
			}
		}
		company.Email = email
	}
	if req.CompanyName != nil {
		if err := ValidateCompanyName(*req.CompanyName); err != nil {
			jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
			return
		}
		company.CompanyName = strings.TrimSpace(*req.CompanyName)
	}
	if req.ContactEmail != nil {
		contactEmail := strings.TrimSpace(*req.ContactEmail)
		if contactEmail != "" {
			if err := ValidateEmail(contactEmail); err != nil {
				jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
				return
			}
		}
		company.ContactEmail = contactEmail
	}
	if req.Phone != nil {
		company.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		company.Address = strings.TrimSpace(*req.Address)
	}

	company.UpdatedAt = time.Now()
	if err := h.storage.Companies().Update(ctx, company); err != nil {
		log.Printf("update company error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, company)
}

// ChangePassword changes the authenticated company's password and
// revokes all its refresh tokens.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "current_password and new_password required")
		return
	}
	if err := auth.ValidatePasswordOrError(req.NewPassword); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	company, err := h.storage.Companies().GetByID(ctx, companyID)
	if err != nil {
		log.Printf("change password error: get company: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if company == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "company not found")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		jsonError(w, http.StatusUnauthorized, errCodeUnauthorized, "current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("change password error: hash: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	company.PasswordHash = string(hash)
	company.UpdatedAt = time.Now()
	if err := h.storage.Companies().Update(ctx, company); err != nil {
		log.Printf("change password error: update: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	// Force re-login everywhere with the new credentials.
	if err := h.storage.Tokens().RevokeAllForCompany(ctx, companyID); err != nil {
		log.Printf("change password error: revoke tokens: %v", err)
	}

	log.Printf("password changed: company %s", company.Username)

	jsonNoContent(w)
}
