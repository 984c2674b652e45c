package moderation

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/filmpulse/arbiter/pkg/handlers"
	"github.com/filmpulse/arbiter/pkg/pagination"
	"github.com/filmpulse/arbiter/pkg/routes"
)

// Handler provides HTTP endpoints for moderation operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "moderation"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for moderation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/moderation",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Submit},
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/backlog", Handler: h.Backlog},
			{Method: "GET", Pattern: "/counts", Handler: h.Counts},
			{Method: "POST", Pattern: "/sweep", Handler: h.Sweep},
			{Method: "GET", Pattern: "/content/{contentId}", Handler: h.Status},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
		},
	}
}

// Submit accepts a review text for moderation and returns the record,
// resolved when the AI backend answered inline, provisional otherwise.
// Responds 201 for a new record, 200 when the content id already had one.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var cmd SubmitCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBody)
		return
	}

	rec, created, err := h.sys.Submit(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	handlers.RespondJSON(w, status, rec)
}

// List returns a paginated list of records with optional status and
// content_id filters, oldest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single record by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return
	}

	rec, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Status returns the record for a content id.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	contentID := r.PathValue("contentId")
	if contentID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrBlankContentID)
		return
	}

	rec, err := h.sys.Status(r.Context(), contentID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, rec)
}

// Backlog returns records still awaiting AI classification, oldest first.
// An optional limit query parameter caps the result; 0 falls back to the
// configured sweep limit.
func (h *Handler) Backlog(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	items, err := h.sys.Backlog(r.Context(), limit)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, items)
}

// Counts returns per-status record counts.
func (h *Handler) Counts(w http.ResponseWriter, r *http.Request) {
	counts, err := h.sys.Counts(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, counts)
}

// Sweep runs one backlog pass and returns its summary.
func (h *Handler) Sweep(w http.ResponseWriter, r *http.Request) {
	report, err := h.sys.Sweep(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}
