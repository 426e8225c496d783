// Package server exposes the portal's JSON API over HTTP.
package server

import (
	"log/slog"
	"net/http"

	"krishi-mitra/auth"
	"krishi-mitra/content"
	"krishi-mitra/cropmodel"
	"krishi-mitra/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

type Server struct {
	router  *chi.Mux
	log     *slog.Logger
	chat    services.IChatService
	account services.IAuthService
	market  services.IMarketService
	crop    cropmodel.IClient
	content *content.Store
}

func NewServer(log *slog.Logger,
	chat services.IChatService,
	account services.IAuthService,
	market services.IMarketService,
	crop cropmodel.IClient,
	contentStore *content.Store,
	allowedOrigin string) *Server {

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s := &Server{
		router:  r,
		log:     log,
		chat:    chat,
		account: account,
		market:  market,
		crop:    crop,
		content: contentStore,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	// Chat: one route serves both guests and logged-in users; history is
	// for authenticated callers only.
	s.router.With(auth.AttachIdentity).Post("/api/chat", s.handleChatPrompt)
	s.router.With(auth.RequireAuth).Get("/api/chat/history", s.handleChatHistory)

	s.router.Post("/api/auth/register", s.handleRegister)
	s.router.Post("/api/auth/login", s.handleLogin)
	s.router.With(auth.RequireAuth).Get("/api/auth/profile", s.handleProfile)

	s.router.Get("/api/msp", s.handleMSP)
	s.router.Get("/api/news", s.handleNews)
	s.router.Get("/api/search", s.handleSearch)

	s.router.Get("/api/marketplace", s.handleListings)
	s.router.With(auth.RequireAuth).Post("/api/marketplace", s.handleCreateListing)
	s.router.With(auth.RequireAuth).Post("/api/marketplace/{id}/image", s.handleUploadImage)
	s.router.Get("/api/marketplace/{id}/image", s.handleGetImage)

	s.router.Post("/api/crop-suggestion", s.handleCropSuggestion)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
