package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"go_flashcard_study/internal/config"
	"go_flashcard_study/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Handlers はルーターに登録する全ハンドラです
type Handlers struct {
	Auth         *AuthHandler
	User         *UserHandler
	Flashcard    *FlashcardHandler
	Playlist     *PlaylistHandler
	Favorite     *FavoriteHandler
	Friend       *FriendHandler
	Notification *NotificationHandler
	Progress     *ProgressHandler
	Leaderboard  *LeaderboardHandler
	Study        *StudyHandler
	Feedback     *FeedbackHandler
	Health       http.HandlerFunc
}

func NewRouter(cfg *config.Config, logger *slog.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.LoggingMiddleware(logger))

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	})
	r.Use(corsHandler.Handler)

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	if h.Health != nil {
		r.Get("/health", h.Health)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// --- Public routes ---
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Auth.Register)
			r.Get("/verify", h.Auth.VerifyAccount)
			r.Post("/login", h.Auth.Login)
			r.Post("/forgot-password", h.Auth.RequestPasswordReset)
			r.Post("/reset-password", h.Auth.ResetPassword)
		})
		r.Get("/flashcards/public/{public_id}", h.Flashcard.GetPublicFlashcard)
		if h.Health != nil {
			r.Get("/health", h.Health)
		}

		// --- Protected routes ---
		r.Group(func(r chi.Router) {
			if cfg.Auth.Enabled {
				logger.Info("Applying JWT authentication middleware")
				r.Use(middleware.JWTAuthMiddleware(cfg))
			} else {
				logger.Warn("Authentication is disabled. Using X-User-ID header (development only)")
				r.Use(middleware.DevUserContextMiddleware)
			}

			r.Get("/me", h.User.GetMe)
			r.Patch("/me", h.User.UpdateMe)

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.User.SearchUsers)
				r.Get("/{user_id}", h.User.GetProfile)
				r.Get("/{user_id}/playlists", h.User.GetUserPlaylists)
			})

			r.Route("/flashcards", func(r chi.Router) {
				r.Post("/", h.Flashcard.CreateFlashcard)
				r.Get("/", h.Flashcard.ListFlashcards)
				r.Get("/received", h.Flashcard.ListReceived)
				r.Get("/{flashcard_id}", h.Flashcard.GetFlashcard)
				r.Patch("/{flashcard_id}", h.Flashcard.UpdateFlashcard)
				r.Delete("/{flashcard_id}", h.Flashcard.DeleteFlashcard)
			})

			r.Route("/playlists", func(r chi.Router) {
				r.Get("/", h.Playlist.ListPlaylists)
				r.Put("/{name}", h.Playlist.RenamePlaylist)
				r.Delete("/{name}", h.Playlist.DeletePlaylist)
				r.Post("/{name}/share", h.Playlist.SharePlaylist)
				r.Post("/{name}/import", h.Playlist.ImportPlaylist)
				r.Get("/{name}/export", h.Playlist.ExportPlaylist)
			})

			r.Route("/favorites", func(r chi.Router) {
				r.Get("/", h.Favorite.ListFavorites)
				r.Post("/", h.Favorite.AddFavorite)
				r.Delete("/", h.Favorite.RemoveFavorite)
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", h.Friend.ListFriends)
				r.Delete("/{user_id}", h.Friend.RemoveFriend)
				r.Get("/requests/incoming", h.Friend.ListIncoming)
				r.Get("/requests/outgoing", h.Friend.ListOutgoing)
				r.Post("/requests", h.Friend.SendRequest)
				r.Post("/requests/{connection_id}/accept", h.Friend.AcceptRequest)
				r.Post("/requests/{connection_id}/reject", h.Friend.RejectRequest)
				r.Delete("/requests/{connection_id}", h.Friend.CancelRequest)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.ListNotifications)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read-all", h.Notification.MarkAllRead)
				r.Post("/{notification_id}/read", h.Notification.MarkRead)
				r.Delete("/{notification_id}", h.Notification.DeleteNotification)
			})

			r.Get("/quests/daily", h.Progress.GetDailyQuests)
			r.Get("/streak", h.Progress.GetStreak)

			r.Route("/leaderboard", func(r chi.Router) {
				r.Get("/", h.Leaderboard.Global)
				r.Get("/friends", h.Leaderboard.Friends)
				r.Get("/streaks", h.Leaderboard.Streaks)
			})

			r.Route("/study/sessions", func(r chi.Router) {
				r.Post("/", h.Study.StartSession)
				r.Get("/{session_id}", h.Study.GetSession)
				r.Post("/{session_id}/answers", h.Study.SubmitAnswer)
				r.Post("/{session_id}/review-mistakes", h.Study.ReviewMistakes)
				r.Post("/{session_id}/finish", h.Study.FinishSession)
			})

			r.Post("/feedback", h.Feedback.SubmitFeedback)
		})
	})

	return r
}
