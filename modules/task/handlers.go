package task

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/taskflow/pkg/httpx"
	"github.com/dmitrymomot/taskflow/pkg/session"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// Handler exposes the task REST surface. Every route requires a session.
type Handler struct {
	svc      *Service
	sessions *session.Manager
}

// NewHandler creates the task HTTP handler.
func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Routes mounts the task endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(session.Middleware(h.sessions))

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/dashboard", h.dashboard)
	r.Get("/filter", h.filter)
	r.Get("/{id}", h.byID)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)

	return r
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	var in CreateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	t, err := h.svc.Create(r.Context(), userID, in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, t)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	tasks, err := h.svc.ForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	d, err := h.svc.Dashboard(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, d)
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	q := r.URL.Query()
	f := Filter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		SortBy:   q.Get("sortBy"),
	}

	tasks, err := h.svc.Filtered(r.Context(), userID, f)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tasks)
}

func (h *Handler) byID(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	t, err := h.svc.ByID(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	var in UpdateInput
	if err := httpx.Decode(r, &in); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	t, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, t)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Task deleted.",
	})
}

func respondError(w http.ResponseWriter, err error) {
	if validationErrs := validator.ExtractValidationErrors(err); validationErrs != nil {
		fields := make(map[string][]string, len(validationErrs.Fields()))
		for _, field := range validationErrs.Fields() {
			fields[field] = validationErrs.Get(field)
		}
		httpx.ValidationError(w, "Validation failed.", fields)
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "Task not found.")
	case errors.Is(err, ErrForbidden):
		httpx.Error(w, http.StatusForbidden, "Only the task creator may do this.")
	default:
		httpx.Error(w, http.StatusInternalServerError, "Something went wrong.")
	}
}
