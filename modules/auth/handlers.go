package auth

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/taskflow/modules/user"
	"github.com/dmitrymomot/taskflow/pkg/httpx"
	"github.com/dmitrymomot/taskflow/pkg/session"
	"github.com/dmitrymomot/taskflow/pkg/validator"
)

// Handler exposes the identity REST surface.
type Handler struct {
	svc      *Service
	sessions *session.Manager
}

// NewHandler creates the auth HTTP handler.
func NewHandler(svc *Service, sessions *session.Manager) *Handler {
	return &Handler{svc: svc, sessions: sessions}
}

// Routes mounts the identity endpoints. Everything except logout is
// unauthenticated; the caller is expected to wrap this router with rate
// limiting.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.register)
	r.Post("/verify-otp", h.verifyOTP)
	r.Post("/resend-otp", h.resendOTP)
	r.Post("/login", h.login)
	r.Post("/forgot-password", h.forgotPassword)
	r.Post("/reset-password", h.resetPassword)

	r.Group(func(r chi.Router) {
		r.Use(session.Middleware(h.sessions))
		r.Post("/logout", h.logout)
	})

	return r
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	if err := h.svc.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		h.respondError(w, err)
		return
	}

	// The code itself is never returned; it only travels by email.
	httpx.JSON(w, http.StatusCreated, map[string]string{
		"message": "Verification code sent. Please check your email.",
		"email":   req.Email,
	})
}

type verifyOTPRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *Handler) verifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	u, err := h.svc.VerifyOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, map[string]any{
		"message": "Registration complete.",
		"user":    u,
	})
}

type resendOTPRequest struct {
	Email string `json:"email"`
}

func (h *Handler) resendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	if err := h.svc.ResendOTP(r.Context(), req.Email); err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Verification code re-sent.",
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	u, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.sessions.Issue(w, u.ID); err != nil {
		httpx.Error(w, http.StatusInternalServerError, "Failed to create session.")
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"message": "Login successful.",
		"user":    u,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w)
	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Logged out.",
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Password reset code sent. Please check your email.",
	})
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Email, req.OTP, req.NewPassword); err != nil {
		h.respondError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]string{
		"message": "Password updated. You can now log in.",
	})
}

// respondError maps service errors onto the client-facing taxonomy.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string][]string, len(validationErrs.Fields()))
		for _, field := range validationErrs.Fields() {
			fields[field] = validationErrs.Get(field)
		}
		httpx.ValidationError(w, "Validation failed.", fields)
		return
	}

	switch {
	case errors.Is(err, ErrEmailTaken):
		httpx.Error(w, http.StatusConflict, "User already exists.")
	case errors.Is(err, ErrOTPExpired):
		httpx.Error(w, http.StatusBadRequest, "Verification code expired.")
	case errors.Is(err, ErrInvalidOTP):
		httpx.Error(w, http.StatusBadRequest, "Invalid or expired verification code.")
	case errors.Is(err, ErrNoPendingVerification):
		httpx.Error(w, http.StatusNotFound, "No pending verification for this email.")
	case errors.Is(err, user.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "User not found.")
	case errors.Is(err, ErrInvalidCredentials):
		httpx.Error(w, http.StatusUnauthorized, "Invalid email or password.")
	default:
		httpx.Error(w, http.StatusInternalServerError, "Something went wrong.")
	}
}
