package auth

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/viken-labs/ressurstorg/internal/models"
	"github.com/viken-labs/ressurstorg/internal/storage"
)

// Handler handles authentication endpoints.
type Handler struct {
	storage        storage.Storage
	jwtService     *JWTService
	tokenService   *TokenService
	lockoutTracker *LockoutTracker
}

// NewHandler creates a new auth handler.
func NewHandler(store storage.Storage, jwt *JWTService, lockout *LockoutTracker, refreshTTL time.Duration) *Handler {
	return &Handler{
		storage:        store,
		jwtService:     jwt,
		tokenService:   NewTokenService(store, refreshTTL),
		lockoutTracker: lockout,
	}
}

// Response helpers (local to avoid import cycle with api package)

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

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonWith(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(dataResponse{Data: data}); err != nil {
		log.Printf("json encode error: %v", err)
	}
}

func jsonOK(w http.ResponseWriter, data any) {
	jsonWith(w, http.StatusOK, data)
}

func jsonNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error codes and messages
const (
	errCodeBadRequest       = "BAD_REQUEST"
	errCodeUnauthorized     = "UNAUTHORIZED"
	errCodeAccountLocked    = "ACCOUNT_LOCKED"
	errCodeConflict         = "CONFLICT"
	errCodeValidationFailed = "VALIDATION_FAILED"
	errCodeInternalError    = "INTERNAL_ERROR"
)

// LoginResponse is returned on successful login.
type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// RegisterRequest is the request body for company registration.
type RegisterRequest struct {
	Username     string `json:"username"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	CompanyName  string `json:"company_name"`
	ContactEmail string `json:"contact_email"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshRequest is the request body for token refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest is the request body for logout.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register creates a new company account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "username, email and password are required")
		return
	}
	if !strings.Contains(req.Email, "@") {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, "invalid email address")
		return
	}
	if err := ValidatePasswordOrError(req.Password); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()

	existing, err := h.storage.Companies().GetByUsername(ctx, req.Username)
	if err != nil {
		log.Printf("register error: check username: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, errCodeConflict, "username already taken")
		return
	}
	existing, err = h.storage.Companies().GetByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("register error: check email: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, errCodeConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("register error: hash password: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	company := models.NewCompany(req.Username, req.Email)
	company.ID = uuid.New().String()
	company.PasswordHash = string(hash)
	company.CompanyName = strings.TrimSpace(req.CompanyName)
	company.ContactEmail = strings.TrimSpace(req.ContactEmail)
	company.Phone = strings.TrimSpace(req.Phone)
	company.Address = strings.TrimSpace(req.Address)
	if company.ContactEmail == "" {
		company.ContactEmail = req.Email
	}

	if err := h.storage.Companies().Create(ctx, company); err != nil {
		log.Printf("register error: create company: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("register success: company %s (%s)", company.Username, company.AnonymousID)

	jsonWith(w, http.StatusCreated, company)
}

// Login handles company login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "username and password required")
		return
	}

	if h.lockoutTracker.IsLocked(req.Username) {
		remaining := h.lockoutTracker.RemainingLockoutTime(req.Username)
		log.Printf("login blocked: account %s locked for %v", req.Username, remaining)
		jsonError(w, http.StatusTooManyRequests, errCodeAccountLocked, "account temporarily locked due to too many failed attempts")
		return
	}

	ctx := r.Context()
	company, err := h.storage.Companies().GetByUsername(ctx, req.Username)
	if err != nil {
		log.Printf("login error: get company: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if company == nil {
		h.lockoutTracker.RecordFailure(req.Username)
		log.Printf("login failed: company %s not found", req.Username)
		jsonError(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(company.PasswordHash), []byte(req.Password)); err != nil {
		h.lockoutTracker.RecordFailure(req.Username)
		log.Printf("login failed: invalid password for company %s", req.Username)
		jsonError(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid credentials")
		return
	}

	h.lockoutTracker.ClearFailures(req.Username)

	accessToken, err := h.jwtService.GenerateToken(company)
	if err != nil {
		log.Printf("login error: generate access token: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	refreshToken, err := h.tokenService.CreateRefreshToken(ctx, company.ID)
	if err != nil {
		log.Printf("login error: generate refresh token: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("login success: company %s", req.Username)

	jsonOK(w, &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    h.jwtService.TTLSeconds(),
		TokenType:    "Bearer",
	})
}

// Refresh handles token refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "refresh_token required")
		return
	}

	ctx := r.Context()

	company, err := h.tokenService.ValidateRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		log.Printf("refresh failed: %v", err)
		jsonError(w, http.StatusUnauthorized, errCodeUnauthorized, "invalid or expired token")
		return
	}

	accessToken, err := h.jwtService.GenerateToken(company)
	if err != nil {
		log.Printf("refresh error: generate access token: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	newRefreshToken, err := h.tokenService.RotateRefreshToken(ctx, req.RefreshToken, company.ID)
	if err != nil {
		log.Printf("refresh error: rotate refresh token: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("token refresh success: company %s", company.Username)

	jsonOK(w, &LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresIn:    h.jwtService.TTLSeconds(),
		TokenType:    "Bearer",
	})
}

// Logout handles company logout.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	if req.RefreshToken == "" {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "refresh_token required")
		return
	}

	ctx := r.Context()

	if err := h.tokenService.RevokeRefreshToken(ctx, req.RefreshToken); err != nil {
		// The token might already be revoked.
		log.Printf("logout error: revoke token: %v", err)
	}

	jsonNoContent(w)
}
