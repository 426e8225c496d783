package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"krishi-mitra/auth"
	"krishi-mitra/domain"
	apperrors "krishi-mitra/errors"
	"krishi-mitra/services"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Uploaded listing images are capped at 5 MB.
const maxImageBytes = 5 << 20

type errorResponse struct {
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Chat ---

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Response  domain.Reply `json:"response"`
	Persisted *bool        `json:"persisted,omitempty"`
}

func (s *Server) handleChatPrompt(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrEmptyPrompt)
		return
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	result, err := s.chat.HandlePrompt(r.Context(), req.Prompt, identity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: result.Reply, Persisted: result.Persisted})
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, apperrors.ErrUnauthorized)
		return
	}

	history, err := s.chat.History(identity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// An empty history serializes as [], not null.
	if history == nil {
		history = []domain.ChatMessage{}
	}
	writeJSON(w, http.StatusOK, history)
}

// --- Auth ---

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "Please fill all fields"})
		return
	}

	payload, err := s.account.Register(req.Username, req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.ErrInvalidCredentials)
		return
	}

	payload, err := s.account.Login(req.Email, req.Password)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

type profileResponse struct {
	UserID   string `json:"_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, apperrors.ErrUnauthorized)
		return
	}

	user, err := s.account.Profile(identity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{UserID: user.ID, Username: user.Username, Email: user.Email})
}

// --- Reference data ---

func (s *Server) handleMSP(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.MSPRates())
}

func (s *Server) handleNews(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.content.Articles())
}

// --- Marketplace ---

func (s *Server) handleListings(w http.ResponseWriter, _ *http.Request) {
	listings, err := s.market.Listings()
	if err != nil {
		s.writeError(w, err)
		return
	}
	if listings == nil {
		listings = []domain.Listing{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		s.writeError(w, apperrors.ErrUnauthorized)
		return
	}

	var req services.CreateListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid listing payload"})
		return
	}

	listing, err := s.market.CreateListing(identity, req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperrors.ErrListingNotFound)
		return
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImageBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "could not read image"})
		return
	}

	contentType, err := s.market.AttachImage(listingID, data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"contentType": contentType})
}

func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, apperrors.ErrListingNotFound)
		return
	}

	data, err := s.market.ListingImage(listingID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// --- Search ---

type searchResponse struct {
	Hits  any    `json:"hits"`
	Total uint64 `json:"total"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	hits, total, err := s.market.Search(r.Context(), query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Hits: hits, Total: total})
}

// --- Crop suggestion ---

func (s *Server) handleCropSuggestion(w http.ResponseWriter, r *http.Request) {
	var sample domain.SoilSample
	if err := json.NewDecoder(r.Body).Decode(&sample); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: "invalid soil sample"})
		return
	}

	suggestion, err := s.crop.Predict(r.Context(), sample)
	if err != nil {
		var valErrs validator.ValidationErrors
		if errors.As(err, &valErrs) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Message: err.Error()})
			return
		}
		s.log.Error("Crop prediction failed", "err", err)
		writeJSON(w, http.StatusBadGateway, errorResponse{Message: "prediction service unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var valErrs validator.ValidationErrors
	switch {
	case errors.Is(err, apperrors.ErrEmptyPrompt),
		errors.Is(err, apperrors.ErrInvalidPassword),
		errors.As(err, &valErrs):
		status = http.StatusBadRequest
	case errors.Is(err, apperrors.ErrInvalidCredentials),
		errors.Is(err, apperrors.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrUserAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, apperrors.ErrListingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnsupportedImage):
		status = http.StatusUnsupportedMediaType
	}

	if status == http.StatusInternalServerError {
		s.log.Error("Request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Message: err.Error()})
}
