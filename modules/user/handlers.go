package user

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/taskflow/pkg/httpx"
	"github.com/dmitrymomot/taskflow/pkg/session"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// Handler exposes the profile REST surface. Every route requires a session.
type Handler struct {
	svc      *Service
	sessions *session.Manager
}

// NewHandler creates the user HTTP handler.
func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Routes mounts the user endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(session.Middleware(h.sessions))

	r.Get("/", h.list)
	r.Get("/me", h.me)
	r.Put("/me", h.updateProfile)

	return r
}

// list returns every user, for the assignee picker. Password hashes never
// serialize, so the full record is safe to return.
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	u, err := h.svc.Profile(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

type updateProfileRequest struct {
	Name string `json:"name"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := session.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), userID, req.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
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

	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "User not found.")
		return
	}
	httpx.Error(w, http.StatusInternalServerError, "Something went wrong.")
}
