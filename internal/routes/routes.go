package routes

import (
	"log"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/manusiele/TherapyFlow/internal/config"
	"github.com/manusiele/TherapyFlow/internal/events"
	"github.com/manusiele/TherapyFlow/internal/handlers"
	"github.com/manusiele/TherapyFlow/internal/middleware"
	"github.com/manusiele/TherapyFlow/internal/repository"
	"github.com/manusiele/TherapyFlow/internal/services"
	chatws "github.com/manusiele/TherapyFlow/internal/websocket"
)

func RegisterRoutes(app *fiber.App, cfg *config.Config, db *pgxpool.Pool) {
	userRepo := repository.NewUserRepository(db)
	patientProfileRepo := repository.NewPatientProfileRepository(db)
	therapistProfileRepo := repository.NewTherapistProfileRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	assessmentRepo := repository.NewAssessmentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.NatsURL != "" {
		natsPublisher, err := events.NewNatsPublisher(cfg.NatsURL)
		if err != nil {
			log.Printf("nats connect failed, falling back to noop publisher: %v", err)
		} else {
			publisher = natsPublisher
		}
	}

	var videoService services.VideoService
	if cfg.DailyAPIKey != "" {
		videoService = services.NewDailyVideoService(cfg.DailyAPIKey, cfg.DailyDomain)
	}

	authHandler := handlers.NewAuthHandler(
		db,
		userRepo,
		patientProfileRepo,
		therapistProfileRepo,
		cfg.JWTSecret,
	)
	onboardingHandler := handlers.NewOnboardingHandler(patientProfileRepo, therapistProfileRepo)
	profileHandler := handlers.NewProfileHandler(patientProfileRepo, therapistProfileRepo)
	notificationService := services.NewNotificationService(notificationRepo, publisher)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	sessionService := services.NewSessionService(db, sessionRepo, userRepo, notificationService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	videoHandler := handlers.NewVideoHandler(sessionService, videoService)
	assessmentService := services.NewAssessmentService(assessmentRepo, userRepo)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService)
	chatHub := chatws.NewHub()
	go chatHub.Run()
	chatService := services.NewChatService(db, conversationRepo, messageRepo, userRepo)
	chatHandler := handlers.NewChatHandler(chatService, chatHub, cfg.JWTSecret)

	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Get("/me", middleware.AuthRequired(cfg.JWTSecret), authHandler.Me)

	authProtected := api.Group("/v1", middleware.AuthRequired(cfg.JWTSecret))

	patients := authProtected.Group("/patients")
	patients.Post("/onboarding", onboardingHandler.PatientOnboarding)
	patients.Get("/profile", profileHandler.GetPatientProfile)
	patients.Put("/profile", profileHandler.UpdatePatientProfile)

	therapists := authProtected.Group("/therapists")
	therapists.Post("/onboarding", onboardingHandler.TherapistOnboarding)
	therapists.Get("/profile", profileHandler.GetTherapistProfile)
	therapists.Put("/profile", profileHandler.UpdateTherapistProfile)
	therapists.Get("/:id/sessions", sessionHandler.TherapistSessions)
	therapists.Get("/:id/patients", sessionHandler.TherapistPatients)

	sessions := authProtected.Group("/sessions")
	sessions.Post("/book", sessionHandler.BookSession)
	sessions.Get("", sessionHandler.ListSessions)
	sessions.Get("/availability", sessionHandler.CheckAvailability)
	sessions.Get("/:id", sessionHandler.GetSession)
	sessions.Put("/:id", sessionHandler.UpdateSession)
	sessions.Put("/:id/notes", sessionHandler.SetNotes)
	sessions.Put("/:id/status", sessionHandler.UpdateStatus)
	sessions.Delete("/:id", sessionHandler.CancelSession)
	sessions.Post("/:id/room", videoHandler.CreateRoom)
	sessions.Delete("/:id/room", videoHandler.DeleteRoom)

	schedule := authProtected.Group("/schedule")
	schedule.Get("/day", sessionHandler.DaySchedule)
	schedule.Get("/week", sessionHandler.WeekSchedule)

	assessments := authProtected.Group("/assessments")
	assessments.Post("", assessmentHandler.SubmitAssessment)
	assessments.Get("", assessmentHandler.ListAssessments)

	conversations := authProtected.Group("/conversations")
	conversations.Get("", chatHandler.ListConversations)
	conversations.Post("", chatHandler.CreateConversation)
	conversations.Get("/:id/messages", chatHandler.GetMessages)

	notifications := authProtected.Group("/notifications")
	notifications.Get("", notificationHandler.ListNotifications)
	notifications.Put("/read-all", notificationHandler.MarkAllRead)
	notifications.Put("/:id/read", notificationHandler.MarkRead)

	api.Use("/v1/ws", chatHandler.WebSocketAuth)
	api.Get("/v1/ws", websocket.New(chatHandler.HandleWebSocket))
}
