package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Santiago1809/auth-ms/internal/application/auth"
	"github.com/Santiago1809/auth-ms/internal/application/verification"
	"github.com/Santiago1809/auth-ms/internal/domain"
	"github.com/Santiago1809/auth-ms/internal/pkg/validate"
)

// VerificationHandler handles OTP issuance, verification, resend, the magic
// link landing and the status projection.
type VerificationHandler struct {
	authSvc     auth.Service
	reconciler  verification.Reconciler
	frontendURL string
}

func NewVerificationHandler(authSvc auth.Service, rec verification.Reconciler, frontendURL string) *VerificationHandler {
	return &VerificationHandler{authSvc: authSvc, reconciler: rec, frontendURL: frontendURL}
}

type sendOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Channel    string `json:"channel" validate:"required,oneof=email phone"`
}

type verifyOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Code       string `json:"code" validate:"required,len=6"`
	Channel    string `json:"channel" validate:"required,oneof=email phone"`
}

type resendOTPRequest struct {
	Identifier string `json:"identifier" validate:"required"`
}

func (h *VerificationHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authSvc.SendOTP(r.Context(), req.Identifier, domain.Channel(req.Channel)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "code sent"})
}

func (h *VerificationHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ok, err := h.authSvc.VerifyOTP(r.Context(), req.Identifier, req.Code, domain.Channel(req.Channel))
	if err != nil {
		httpError(w, err)
		return
	}
	if !ok {
		// One message for every failure mode, so the endpoint is not an
		// oracle for which codes exist.
		writeError(w, http.StatusBadRequest, "invalid or expired code")
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "verified"})
}

func (h *VerificationHandler) ResendOTP(w http.ResponseWriter, r *http.Request) {
	var req resendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.authSvc.Resend(r.Context(), req.Identifier); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "codes resent"})
}

// VerifyEmail is the magic-link landing. Success redirects the browser to
// the frontend; any failure answers 400 without detail.
func (h *VerificationHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeError(w, http.StatusBadRequest, "token is required")
		return
	}
	ok, err := h.authSvc.VerifyEmailToken(r.Context(), token)
	if err != nil {
		httpError(w, err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid or expired token")
		return
	}
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

func (h *VerificationHandler) Status(w http.ResponseWriter, r *http.Request) {
	identifier := chi.URLParam(r, "identifier")
	st, err := h.reconciler.Status(r.Context(), identifier)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
