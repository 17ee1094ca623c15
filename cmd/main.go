package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"FreelanceHub/server/internal/appMiddleware"
	"FreelanceHub/server/internal/config"
	"FreelanceHub/server/internal/db"
	"FreelanceHub/server/internal/handlers"
	"FreelanceHub/server/internal/services"
	"FreelanceHub/server/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jonboulle/clockwork"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	clock := clockwork.NewRealClock()

	userService := services.NewUserService(postgres.NewUserStore(pool))
	notificationService := services.NewNotificationService(postgres.NewNotificationStore(pool), userService, clock)
	conversationStore := postgres.NewConversationStore(pool)
	messageStore := postgres.NewMessageStore(pool)
	messageService := services.NewMessageService(messageStore, conversationStore, userService, notificationService, clock)
	conversationService := services.NewConversationService(conversationStore, messageStore, messageService, userService, clock)

	convH := &handlers.ConversationHandler{Conversations: conversationService}
	msgH := &handlers.MessageHandler{Messages: messageService}
	notifH := &handlers.NotificationHandler{Notifications: notificationService}
	eventH := &handlers.EventHandler{Notifications: notificationService}

	r := chi.NewRouter()

	r.Use(appMiddleware.CorsMiddleware)

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.AuthMiddleware(cfg.JWTSecret))

		r.Get("/api/conversations", convH.List)
		r.Post("/api/conversations/direct", convH.StartDirect)
		r.Get("/api/conversations/{conversation_id}", convH.Get)
		r.Put("/api/conversations/{conversation_id}/mute", convH.SetMuted)
		r.Post("/api/conversations/{conversation_id}/leave", convH.Leave)
		r.Post("/api/conversations/{conversation_id}/messages", msgH.Post)
		r.Delete("/api/conversations/{conversation_id}/messages/{message_id}", msgH.Delete)

		r.Get("/api/notifications", notifH.List)
		r.Post("/api/notifications/read-all", notifH.MarkAllRead)
		r.Post("/api/notifications/{notification_id}/read", notifH.MarkRead)
		r.Delete("/api/notifications/read", notifH.DeleteAllRead)
		r.Delete("/api/notifications/{notification_id}", notifH.Delete)
	})

	// service-to-service surface: separate secret, never reachable with a user token
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.ServiceAuthMiddleware(cfg.InternalJWTSecret))

		r.Post("/api/internal/events/applications", eventH.HandleApplicationEvent)
		r.Get("/api/internal/conversations/{conversation_id}/messages", msgH.Audit)
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server started on port %s\n", addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %s\n", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	log.Println("Stopping the server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %s\n", err)
	}
	log.Println("Server has been successfully stopped")
}
