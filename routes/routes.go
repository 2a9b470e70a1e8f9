package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/fifanights/cup-tracker/docs"
	"github.com/fifanights/cup-tracker/handlers"
	"github.com/fifanights/cup-tracker/middleware"
	"github.com/fifanights/cup-tracker/models"
)

// SetupRoutes mounts every handler on the router. Reads are public; writes
// require a token, and destructive operations require the admin role.
func SetupRoutes(
	router *chi.Mux,
	auth *middleware.Authenticator,
	authHandler *handlers.AuthHandler,
	playerHandler *handlers.PlayerHandler,
	clubHandler *handlers.ClubHandler,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	statsHandler *handlers.StatsHandler,
	cupHandler *handlers.CupHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	adminOnly := func(r chi.Router) {
		r.Use(auth.Authenticate)
		r.Use(middleware.RequireRole(models.RoleAdmin))
	}

	router.Post("/auth/register", authHandler.Register)
	router.Post("/auth/login", authHandler.Login)

	router.Route("/players", func(r chi.Router) {
		r.Get("/", playerHandler.List)
		r.Get("/{playerID}", playerHandler.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", playerHandler.Create)
			r.Patch("/{playerID}", playerHandler.Rename)
			r.Delete("/{playerID}", playerHandler.Delete)
			r.Post("/{playerID}/avatar", playerHandler.UploadAvatar)
		})
	})

	router.Route("/clubs", func(r chi.Router) {
		r.Get("/", clubHandler.List)
		r.Get("/{clubID}", clubHandler.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", clubHandler.Create)
			r.Put("/{clubID}", clubHandler.Update)
			r.Delete("/{clubID}", clubHandler.Delete)
			r.Post("/{clubID}/crest", clubHandler.UploadCrest)
		})
	})

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Get("/{tournamentID}", tournamentHandler.GetByID)
		r.Get("/{tournamentID}/standings", tournamentHandler.Standings)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", tournamentHandler.Create)
			r.Put("/{tournamentID}", tournamentHandler.Update)
			r.Delete("/{tournamentID}", tournamentHandler.Delete)
			r.Put("/{tournamentID}/players/{playerID}", tournamentHandler.AddPlayer)
			r.Delete("/{tournamentID}/players/{playerID}", tournamentHandler.RemovePlayer)
			r.Post("/{tournamentID}/schedule", tournamentHandler.GenerateSchedule)
			r.Put("/{tournamentID}/status", tournamentHandler.UpdateStatus)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/{matchID}", matchHandler.GetByID)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Put("/{matchID}/score", matchHandler.UpdateScore)
			r.Post("/{matchID}/start", matchHandler.Start)
			r.Post("/{matchID}/finish", matchHandler.Finish)
			r.Post("/{matchID}/reschedule", matchHandler.Reschedule)
		})
	})

	router.Route("/friendlies", func(r chi.Router) {
		r.Get("/", matchHandler.ListFriendlies)

		r.Group(func(r chi.Router) {
			adminOnly(r)
			r.Post("/", matchHandler.CreateFriendly)
		})
	})

	router.Route("/stats", func(r chi.Router) {
		r.Get("/overview", statsHandler.Overview)
		r.Get("/players/{playerID}", statsHandler.PlayerStats)
		r.Get("/streaks", statsHandler.Streaks)
		r.Get("/h2h", statsHandler.HeadToHead)
	})

	router.Route("/cups", func(r chi.Router) {
		r.Get("/", cupHandler.All)
		r.Get("/defs", cupHandler.ListDefs)
		r.Get("/{cupKey}", cupHandler.GetByKey)
		r.Get("/{cupKey}/owner", cupHandler.OwnerBefore)
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeTournament)
	router.Get("/ws/global", webSocketHandler.ServeGlobal)

	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(docs.OpenAPI)
	})
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))
}
