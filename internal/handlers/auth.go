package handlers

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"syncalendar/internal/auth"
)

type AuthHandler struct {
	service  *auth.Service
	google   *auth.GoogleProvider
	simulate bool
	log      *logrus.Entry
}

// NewAuthHandler creates the auth routes. simulate enables the shared
// development account on /auth/google when Google is not configured.
func NewAuthHandler(service *auth.Service, google *auth.GoogleProvider, simulate bool, log *logrus.Entry) *AuthHandler {
	return &AuthHandler{service: service, google: google, simulate: simulate, log: log}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/auth.go HandleRegister"

	var req auth.Registration
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, h.log, op, err)
		return
	}

	sess, err := h.service.Register(r.Context(), req)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusCreated, sess)
}

// POST /auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/auth.go HandleLogin"

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		fail(w, h.log, op, err)
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, sess)
}

// POST /auth/logout. Tokens are stateless; the client drops its copy.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.log, http.StatusOK, map[string]string{"status": "logged out"})
}

// GET /auth/google -> redirect to google. Without Google configured it is a
// 404 unless simulated sign-in is enabled.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/auth.go HandleGoogleLogin"

	if !h.google.Configured() {
		if !h.simulate {
			writeError(w, h.log, http.StatusNotFound, "google sign-in is not configured")
			return
		}
		h.log.WithField("op", op).Warn("google oauth not configured, using simulated sign-in")
		sess, err := h.service.GoogleSignIn(r.Context(), h.google.Simulate(), nil)
		if err != nil {
			fail(w, h.log, op, err)
			return
		}
		writeJSON(w, h.log, http.StatusOK, sess)
		return
	}

	state, err := h.service.Issuer().IssueState()
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// GET /auth/google/callback -> Google sends code here
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	op := "internal/handlers/auth.go HandleGoogleCallback"

	if !h.google.Configured() {
		writeError(w, h.log, http.StatusNotFound, "google sign-in is not configured")
		return
	}

	if err := h.service.Issuer().VerifyState(r.URL.Query().Get("state")); err != nil {
		writeError(w, h.log, http.StatusBadRequest, "invalid state")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		writeError(w, h.log, http.StatusBadRequest, "code not found")
		return
	}

	tok, profile, err := h.google.Exchange(r.Context(), code)
	if err != nil {
		h.log.WithField("op", op).WithError(err).Error("failed to exchange code")
		writeError(w, h.log, http.StatusBadGateway, "failed to exchange code")
		return
	}

	sess, err := h.service.GoogleSignIn(r.Context(), profile, tok)
	if err != nil {
		fail(w, h.log, op, err)
		return
	}
	writeJSON(w, h.log, http.StatusOK, sess)
}
