package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"trend-watch/config"
	"trend-watch/internal/app"
	"trend-watch/models"
	"trend-watch/services"

	"github.com/go-chi/chi/v5"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// NewHandler creates a new Handler
func NewHandler(application *app.App, cfg *config.Config) *Handler {
	return &Handler{app: application, cfg: cfg}
}

// HandleHealth returns the health status of the application
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status": "ok",
	}

	if err := h.app.Health(r.Context()); err != nil {
		status["status"] = "degraded"
		status["detail"] = err.Error()
	}

	// Add circuit breaker status
	cbStatus := services.GetGlobalRegistry().Status()
	status["circuit_breakers"] = cbStatus
	for _, cb := range cbStatus {
		if cb.State == "open" {
			status["status"] = "degraded"
			break
		}
	}

	h.jsonResponse(w, status)
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleSignup registers a new account
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		h.jsonError(w, "username, email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.app.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			h.jsonError(w, models.ErrConflict.Error(), http.StatusConflict)
			return
		}
		h.jsonError(w, "registration failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

// LoginRequest represents a login request
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token for subsequent requests
type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// HandleLogin verifies credentials and issues a token
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, user, err := h.app.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrNoMatch) {
			h.jsonError(w, models.ErrNoMatch.Error(), http.StatusUnauthorized)
			return
		}
		h.jsonError(w, "login failed", http.StatusInternalServerError)
		return
	}

	h.jsonResponse(w, LoginResponse{Token: token, User: user})
}

// HandleLogout revokes the caller's session
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Logout(r.Context(), SessionID(r.Context())); err != nil {
		h.jsonError(w, "logout failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAnalyze runs a moving-average analysis for a ticker
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	tf, err := models.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.app.Analyze(r.Context(), chi.URLParam(r, "ticker"), tf, UserID(r.Context()))
	if err != nil {
		h.analysisError(w, err)
		return
	}

	h.jsonResponse(w, result)
}

// HandleChart renders the price and moving-average chart as PNG
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	tf, err := models.ParseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	png, err := h.app.RenderChart(r.Context(), chi.URLParam(r, "ticker"), tf)
	if err != nil {
		h.analysisError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

// HandleQuote returns the latest quote for a ticker
func (h *Handler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.app.Quote(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidTicker):
			h.jsonError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, models.ErrNoMatch):
			h.jsonError(w, "ticker not found", http.StatusNotFound)
		default:
			h.jsonError(w, "quote lookup failed", http.StatusBadGateway)
		}
		return
	}

	h.jsonResponse(w, quote)
}

// analysisError maps analysis pipeline failures onto response codes
func (h *Handler) analysisError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidTicker):
		h.jsonError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInsufficientData):
		h.jsonError(w, models.ErrInsufficientData.Error(), http.StatusUnprocessableEntity)
	default:
		h.jsonError(w, "analysis failed", http.StatusBadGateway)
	}
}

// HandleGetWatchlist returns the caller's watch-list
func (h *Handler) HandleGetWatchlist(w http.ResponseWriter, r *http.Request) {
	entries, err := h.app.GetWatchlist(r.Context(), UserID(r.Context()))
	if err != nil {
		h.jsonError(w, "failed to load watch-list", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	h.jsonResponse(w, entries)
}

// WatchlistRequest represents an add-to-watch-list request
type WatchlistRequest struct {
	Ticker string `json:"ticker"`
}

// HandleAddToWatchlist puts a ticker on the caller's watch-list
func (h *Handler) HandleAddToWatchlist(w http.ResponseWriter, r *http.Request) {
	var req WatchlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.app.AddToWatchlist(r.Context(), UserID(r.Context()), req.Ticker); err != nil {
		if errors.Is(err, models.ErrInvalidTicker) {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.jsonError(w, "failed to update watch-list", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleRemoveFromWatchlist drops a ticker from the caller's watch-list
func (h *Handler) HandleRemoveFromWatchlist(w http.ResponseWriter, r *http.Request) {
	err := h.app.RemoveFromWatchlist(r.Context(), UserID(r.Context()), chi.URLParam(r, "ticker"))
	if err != nil {
		if errors.Is(err, models.ErrInvalidTicker) {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.jsonError(w, "failed to update watch-list", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	writeJSONError(w, message, status)
}

func writeJSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
