package routes

import (
	"net/http"

	"github.com/Vyasma-Mafia/maftourbot/handlers"
	"github.com/Vyasma-Mafia/maftourbot/live"
	"github.com/Vyasma-Mafia/maftourbot/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterDeps struct {
	AuthHandler         *handlers.AuthHandler
	TournamentHandler   *handlers.TournamentHandler
	NotificationHandler *handlers.NotificationHandler
	Hub                 *live.Hub
	JWTSecret           []byte
}

func SetupRoutes(deps RouterDeps) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", deps.AuthHandler.Login)

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты: листинги и рассадка для оверлея.
		r.Get("/", deps.TournamentHandler.ListTournaments)
		r.Get("/active", deps.TournamentHandler.ListActiveTournaments)
		r.Get("/{tournamentID}", deps.TournamentHandler.GetTournament)
		r.Get("/{tournamentID}/tables", deps.TournamentHandler.GetTournamentTables)

		// Защищённые маршруты только для администраторов.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(deps.JWTSecret))
			r.Use(middleware.RequireAdmin)

			r.Post("/{tournamentID}/sync", deps.TournamentHandler.SyncTournament)
			r.Post("/{tournamentID}/end", deps.TournamentHandler.EndTournament)
			r.Put("/{tournamentID}/rounds/{roundNumber}/start-time", deps.TournamentHandler.SetRoundStartTime)
			r.Put("/{tournamentID}/tables/{tableNumber}/location", deps.TournamentHandler.SetTableLocation)

			r.Post("/{tournamentID}/rounds/{roundNumber}/notify", deps.NotificationHandler.NotifyRound)
			r.Post("/{tournamentID}/broadcast", deps.NotificationHandler.Broadcast)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", func(w http.ResponseWriter, r *http.Request) {
		handlers.ServeWs(deps.Hub, w, r)
	})

	return router
}
