package api

import (
	"github.com/go-chi/chi/v5"

	"supportbot/internal/config"
)

// ApiDependencies содержит зависимости для обработчиков API.
type ApiDependencies struct {
	Config *config.Config
}

// SetupRoutes настраивает все маршруты для API.
// Все маршруты закрыты статическим токеном администратора.
func SetupRoutes(r *chi.Mux, deps ApiDependencies) {
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(deps.Config.APIToken))

		r.Route("/api/v1/user", func(r chi.Router) {
			r.Get("/", ListUsers)
			r.Get("/{id}", GetUser)
			r.Delete("/{id}", DeleteUser)
			r.Put("/{id}/role", UpdateUserRole)
			r.Put("/{id}/language", AddUserLanguage)
		})

		r.Route("/api/v1/session", func(r chi.Router) {
			r.Get("/", ListSessions)
			r.Get("/{id}", GetSession)
			r.Delete("/{id}", DeleteSession)
		})

		r.Route("/api/v1/message", func(r chi.Router) {
			r.Get("/session/{id}", GetSessionMessages)
			r.Get("/client/{id}", GetClientMessages)
			r.Get("/operator/{id}", GetOperatorMessages)
			r.Delete("/{id}", DeleteMessage)
		})

		r.Route("/api/statistics", func(r chi.Router) {
			r.Get("/total-sessions", GetTotalSessions)
			r.Get("/operator-sessions/{id}", GetOperatorSessions)
			r.Get("/detailed-ratings", GetDetailedRatings)
			r.Get("/user-statistics", GetUserStatistics)
			r.Get("/top-rated-operators", GetTopRatedOperators)
			r.Get("/export", ExportStatistics)
		})

		r.Get("/api/v1/qr", GetQRCode(deps.Config.BotUsername))
	})
}
