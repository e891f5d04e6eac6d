package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/football-tournaments/docs"
	"github.com/Dosada05/football-tournaments/handlers"
	"github.com/Dosada05/football-tournaments/middleware"
	"github.com/Dosada05/football-tournaments/models"
)

type Handlers struct {
	Auth          *handlers.AuthHandler
	Admin         *handlers.AdminHandler
	Club          *handlers.ClubHandler
	Tournament    *handlers.TournamentHandler
	AgeGroup      *handlers.AgeGroupHandler
	Registration  *handlers.RegistrationHandler
	Draw          *handlers.DrawHandler
	Notification  *handlers.NotificationHandler
	Invite        *handlers.InviteHandler
	Dashboard     *handlers.DashboardHandler
	WebSocket     *handlers.WebSocketHandler
	Health        *handlers.HealthHandler
	Authenticator middleware.Authenticator
}

func SetupRoutes(r *chi.Mux, h Handlers, corsOrigins []string, logger *slog.Logger) {
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.MethodNotAllowed)

	authenticate := middleware.Authenticate(h.Authenticator, logger)
	organizerOnly := middleware.Authorize(models.RoleAdmin, models.RoleOrganizer)

	r.Get("/healthz", h.Health.Health)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
	// websocket авторизуется через ?token=, таймаут на него не вешаем
	r.Get("/ws", h.WebSocket.ServeWs)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(chimw.Timeout(30 * time.Second))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
			r.Get("/confirm-email", h.Auth.ConfirmEmail)
			r.Post("/forgot-password", h.Auth.ForgotPassword)
			r.Post("/reset-password", h.Auth.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/logout", h.Auth.Logout)
				r.Get("/me", h.Auth.Me)
				r.Patch("/me", h.Auth.UpdateMe)
				r.Post("/change-password", h.Auth.ChangePassword)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))
			r.Get("/users", h.Admin.ListUsers)
			r.Patch("/users/{userID}/role", h.Admin.UpdateUserRole)
			r.Delete("/users/{userID}", h.Admin.DeleteUser)
		})

		r.Route("/clubs", func(r chi.Router) {
			r.Get("/", h.Club.List)
			r.With(authenticate).Get("/mine", h.Club.Mine)
			r.Get("/{clubID}", h.Club.Get)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", h.Club.Create)
				r.Patch("/{clubID}", h.Club.Update)
				r.Delete("/{clubID}", h.Club.Delete)
				r.Post("/{clubID}/logo", h.Club.UploadLogo)
				r.Get("/{clubID}/invitations", h.Invite.ListByClub)
				r.Post("/{clubID}/invitations", h.Invite.Create)
			})
		})

		r.Route("/tournaments", func(r chi.Router) {
			r.Get("/", h.Tournament.List)
			r.Get("/{tournamentID}", h.Tournament.Get)
			r.Get("/{tournamentID}/age-groups", h.AgeGroup.ListByTournament)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(organizerOnly)
				r.Post("/", h.Tournament.Create)
				r.Patch("/{tournamentID}", h.Tournament.Update)
				r.Delete("/{tournamentID}", h.Tournament.Delete)
				r.Patch("/{tournamentID}/status", h.Tournament.UpdateStatus)
				r.Post("/{tournamentID}/logo", h.Tournament.UploadLogo)
				r.Post("/{tournamentID}/age-groups", h.AgeGroup.Create)
			})
		})

		r.Route("/age-groups/{ageGroupID}", func(r chi.Router) {
			r.Get("/", h.AgeGroup.Get)
			r.Get("/pots", h.Draw.GetPots)
			r.Get("/groups", h.Draw.GetGroups)

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Use(organizerOnly)
				r.Patch("/", h.AgeGroup.Update)
				r.Delete("/", h.AgeGroup.Delete)
				r.Put("/pots", h.Draw.BulkAssign)
				r.Delete("/pots", h.Draw.ClearPots)
				r.Post("/draw", h.Draw.ExecuteDraw)
				r.Delete("/draw", h.Draw.ResetDraw)
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Registration.List)
			r.Post("/", h.Registration.Create)
			r.Get("/{registrationID}", h.Registration.Get)
			r.Patch("/{registrationID}", h.Registration.Update)
			r.Delete("/{registrationID}", h.Registration.Delete)
			r.Patch("/{registrationID}/status", h.Registration.UpdateStatus)
			r.With(organizerOnly).Patch("/{registrationID}/payment", h.Registration.UpdatePayment)
			r.With(organizerOnly).Patch("/{registrationID}/pot", h.Draw.SetPot)
		})

		r.Route("/invitations/{invitation}", func(r chi.Router) {
			r.Get("/", h.Invite.Preview)
			r.With(authenticate).Delete("/", h.Invite.Revoke)
			r.With(authenticate).Post("/accept", h.Invite.Accept)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Notification.List)
			r.Get("/unread-count", h.Notification.UnreadCount)
			r.Post("/read-all", h.Notification.MarkAllRead)
			r.Patch("/{notificationID}/read", h.Notification.MarkRead)
			r.Delete("/{notificationID}", h.Notification.Delete)
		})

		r.With(authenticate).Get("/dashboard/stats", h.Dashboard.Stats)
	})
}
