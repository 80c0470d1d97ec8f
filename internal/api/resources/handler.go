package resources

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/viken-labs/ressurstorg/internal/api/middleware"
	"github.com/viken-labs/ressurstorg/internal/market"
	"github.com/viken-labs/ressurstorg/internal/models"
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
	errCodeForbidden        = "FORBIDDEN"
	errCodeConflict         = "CONFLICT"
	errCodeInternalError    = "INTERNAL_ERROR"
)

func jsonError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: errorBody{Code: code, Message: message}})
}

func jsonWith(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dataResponse{Data: data})
}

func jsonOK(w http.ResponseWriter, data any) {
	jsonWith(w, http.StatusOK, data)
}

// marketError translates market sentinel errors to API responses.
func marketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, market.ErrValidation):
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, strings.TrimPrefix(err.Error(), market.ErrValidation.Error()+": "))
	case errors.Is(err, market.ErrNotFound):
		jsonError(w, http.StatusNotFound, errCodeNotFound, "not found")
	case errors.Is(err, market.ErrForbidden):
		jsonError(w, http.StatusForbidden, errCodeForbidden, "access denied")
	case errors.Is(err, market.ErrAlreadyTaken):
		jsonError(w, http.StatusConflict, errCodeConflict, "resource already taken")
	case errors.Is(err, market.ErrAlreadyDisclosed):
		jsonError(w, http.StatusConflict, errCodeConflict, "contact already disclosed for thread")
	default:
		log.Printf("resource handler error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
	}
}

// View is a resource as presented to a viewer: the owner stays
// pseudonymous and the status is viewer-specific.
type View struct {
	*models.Resource
	Owner  string        `json:"owner"` // pseudonym
	IsMine bool          `json:"is_mine"`
	Status market.Status `json:"status"`
}

// Handler handles resource listing endpoints.
type Handler struct {
	storage storage.Storage
	manager *market.Manager
}

// NewHandler creates a new resource handler.
func NewHandler(store storage.Storage, manager *market.Manager) *Handler {
	return &Handler{storage: store, manager: manager}
}

// Create lists a new resource on the marketplace.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, http.StatusBadRequest, errCodeBadRequest, "invalid request body")
		return
	}

	priceType, from, to, err := req.Validate()
	if err != nil {
		jsonError(w, http.StatusBadRequest, errCodeValidationFailed, err.Error())
		return
	}

	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	resource := models.NewResource(companyID, strings.TrimSpace(req.Competence), req.Price, priceType, from, to)
	resource.ID = uuid.New().String()
	resource.Comments = strings.TrimSpace(req.Comments)

	if err := h.storage.Resources().Create(ctx, resource); err != nil {
		log.Printf("create resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	log.Printf("resource listed: %s (%s)", resource.ID, resource.Competence)

	jsonWith(w, http.StatusCreated, resource)
}

// List returns the marketplace listing with viewer-specific statuses.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	list, err := h.storage.Resources().List(ctx)
	if err != nil {
		log.Printf("list resources error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	views, err := h.buildViews(r, companyID, list)
	if err != nil {
		log.Printf("list resources error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, views)
}

// Mine returns the authenticated company's own listings.
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)

	list, err := h.storage.Resources().ListByCompany(ctx, companyID)
	if err != nil {
		log.Printf("list own resources error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	views, err := h.buildViews(r, companyID, list)
	if err != nil {
		log.Printf("list own resources error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, views)
}

// Get returns a single resource with its viewer-specific status.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	id := chi.URLParam(r, "id")

	resource, err := h.storage.Resources().GetByID(ctx, id)
	if err != nil {
		log.Printf("get resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if resource == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "resource not found")
		return
	}

	views, err := h.buildViews(r, companyID, []*models.Resource{resource})
	if err != nil {
		log.Printf("get resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}

	jsonOK(w, views[0])
}

// Accept commits the viewer to the resource: the single false->true
// is_taken transition, entered from the listing side.
func (h *Handler) Accept(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	id := chi.URLParam(r, "id")

	resource, err := h.storage.Resources().GetByID(ctx, id)
	if err != nil {
		log.Printf("accept resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if resource == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "resource not found")
		return
	}
	if resource.CompanyID == companyID {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "cannot accept your own resource")
		return
	}

	taken, err := h.manager.TakeResource(ctx, id, companyID)
	if err != nil {
		marketError(w, err)
		return
	}

	log.Printf("resource accepted: %s by %s", id, companyID)

	jsonOK(w, taken)
}

// MarkTaken commits the resource from the owner's side, typically after
// agreeing in a thread. Same transition as Accept.
func (h *Handler) MarkTaken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	id := chi.URLParam(r, "id")

	resource, err := h.storage.Resources().GetByID(ctx, id)
	if err != nil {
		log.Printf("mark taken error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if resource == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "resource not found")
		return
	}
	if resource.CompanyID != companyID {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "only the owner can mark a resource taken")
		return
	}

	taken, err := h.manager.TakeResource(ctx, id, companyID)
	if err != nil {
		marketError(w, err)
		return
	}

	log.Printf("resource marked taken: %s by owner", id)

	jsonOK(w, taken)
}

// Delete removes an untaken listing owned by the caller.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	companyID := middleware.GetCompanyID(ctx)
	id := chi.URLParam(r, "id")

	resource, err := h.storage.Resources().GetByID(ctx, id)
	if err != nil {
		log.Printf("delete resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if resource == nil {
		jsonError(w, http.StatusNotFound, errCodeNotFound, "resource not found")
		return
	}
	if resource.CompanyID != companyID {
		jsonError(w, http.StatusForbidden, errCodeForbidden, "only the owner can delete a resource")
		return
	}

	rows, err := h.storage.Resources().Delete(ctx, id, companyID)
	if err != nil {
		log.Printf("delete resource error: %v", err)
		jsonError(w, http.StatusInternalServerError, errCodeInternalError, "internal server error")
		return
	}
	if rows == 0 {
		// Owner and existence already checked, so the guard that held
		// was is_taken.
		jsonError(w, http.StatusConflict, errCodeConflict, "taken resources cannot be deleted")
		return
	}

	log.Printf("resource deleted: %s", id)

	w.WriteHeader(http.StatusNoContent)
}

// buildViews decorates resources with owner pseudonyms and viewer
// statuses.
func (h *Handler) buildViews(r *http.Request, viewerID string, list []*models.Resource) ([]*View, error) {
	ctx := r.Context()

	statuses, err := h.manager.ResourceStatuses(ctx, viewerID, list)
	if err != nil {
		return nil, err
	}

	owners := make(map[string]string)
	views := make([]*View, 0, len(list))
	for _, resource := range list {
		pseudonym, ok := owners[resource.CompanyID]
		if !ok {
			owner, err := h.storage.Companies().GetByID(ctx, resource.CompanyID)
			if err != nil {
				return nil, err
			}
			if owner == nil {
				continue // dangling owner
			}
			pseudonym = owner.AnonymousID
			owners[resource.CompanyID] = pseudonym
		}

		views = append(views, &View{
			Resource: resource,
			Owner:    pseudonym,
			IsMine:   resource.CompanyID == viewerID,
			Status:   statuses[resource.ID],
		})
	}
	return views, nil
}
