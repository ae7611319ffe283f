package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/tradebinder/internal/api/handlers"
	"github.com/baharkarakas/tradebinder/internal/auth"
	"github.com/baharkarakas/tradebinder/internal/config"
	"github.com/baharkarakas/tradebinder/internal/metrics"
	"github.com/baharkarakas/tradebinder/internal/middleware"
	"github.com/baharkarakas/tradebinder/internal/services"
)

// Services is everything the router dispatches to.
type Services struct {
	Tokens       *auth.TokenManager
	Auth         *services.AuthService
	Cards        *services.CardService
	Editions     *services.EditionService
	Locations    *services.LocationService
	Listings     *services.ListingService
	Transactions *services.TransactionService
	Messages     *services.MessageService
	Images       *services.ImageService
}

func NewRouter(cfg config.Config, s Services) http.Handler {
	authn := middleware.NewAuthenticator(s.Tokens, s.Auth)
	authH := handlers.NewAuthHandler(s.Auth)
	catalogH := handlers.NewCatalogHandler(s.Cards, s.Editions)
	locationH := handlers.NewLocationHandler(s.Locations)
	listingH := handlers.NewListingHandler(s.Listings)
	txnH := handlers.NewTransactionHandler(s.Transactions)
	msgH := handlers.NewMessageHandler(s.Messages)
	imageH := handlers.NewImageHandler(s.Images)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	r.Route(cfg.APIPrefix, func(r chi.Router) {
		// public; a bearer token, when sent, still identifies the viewer
		r.Group(func(r chi.Router) {
			r.Use(authn.Optional)

			r.Post("/auth/register", authH.Register)
			r.Post("/auth/login", authH.Login)
			r.Post("/auth/refresh", authH.Refresh)

			r.Get("/cards", catalogH.ListCards)
			r.Get("/cards/search", catalogH.SearchCards)
			r.Get("/cards/{id}", catalogH.GetCard)
			r.Get("/editions", catalogH.ListEditions)
			r.Get("/editions/{id}", catalogH.GetEdition)

			r.Get("/locations", locationH.List)
			r.Get("/locations/{id}", locationH.Get)

			r.Get("/listings", listingH.List)
			r.Get("/listings/available", listingH.Available)
			r.Get("/listings/search", listingH.Available)
			r.Get("/listings/{id}", listingH.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(authn.Required)

			r.Get("/auth/me", authH.Me)
			r.Get("/profile", authH.Profile)

			r.Get("/cards/stats", catalogH.CardStats)

			r.Get("/locations/stats", locationH.Stats)
			r.Post("/locations", locationH.Create)
			r.Put("/locations/{id}", locationH.Update)
			r.Delete("/locations/{id}", locationH.Delete)

			r.Post("/listings", listingH.Create)
			r.Get("/listings/my-listings", listingH.Mine)
			r.Get("/listings/stats", listingH.Stats)
			r.Put("/listings/{id}", listingH.Update)
			r.Put("/listings/{id}/status", listingH.UpdateStatus)
			r.Delete("/listings/{id}", listingH.Delete)

			r.Post("/transactions", txnH.Create)
			r.Get("/transactions", txnH.List)
			r.Get("/transactions/{id}", txnH.Get)
			r.Put("/transactions/{id}/status", txnH.UpdateStatus)
			r.Post("/transactions/{id}/complete", txnH.Complete)
			r.Post("/transactions/{id}/cancel", txnH.Cancel)

			r.Post("/messages", msgH.Create)
			r.Get("/messages", msgH.Conversations)
			r.Get("/messages/unread/count", msgH.UnreadCount)
			r.Get("/messages/listing/{listingId}", msgH.ByListing)
			r.Put("/messages/listing/{listingId}/read-all", msgH.MarkAllRead)
			r.Put("/messages/{id}/read", msgH.MarkRead)

			r.Post("/images", imageH.Upload)
		})
	})

	return r
}
