package router

import (
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/patinhas-app/backend/internal/handlers"
	"github.com/patinhas-app/backend/internal/middleware"
	"github.com/patinhas-app/backend/internal/models"
	"github.com/patinhas-app/backend/internal/repositories"
	"github.com/patinhas-app/backend/internal/services"
	"github.com/patinhas-app/backend/internal/session"
	"github.com/patinhas-app/backend/pkg/config"
	"github.com/patinhas-app/backend/pkg/media"
	"github.com/patinhas-app/backend/pkg/metrics"
	"github.com/patinhas-app/backend/pkg/payments"
)

// SetupMiddleware configures global middleware for the Echo instance
func SetupMiddleware(e *echo.Echo) {
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(metrics.Middleware())
}

// SetupRoutes wires repositories, services and handlers onto the Echo
// instance. firebaseAuthClient, storage and gateway may be nil; the
// corresponding endpoints degrade gracefully.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *firebaseauth.Client, storage *media.Storage, gateway payments.Gateway) {
	if err := db.Postgres.AutoMigrate(
		&models.User{},
		&models.Interaction{},
		&models.PetListing{},
		&models.Fundraiser{},
		&models.Donation{},
		&models.Follow{},
		&models.Message{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	mongoDB := db.Mongo.Database("patinhas")

	// Repositories
	userRepo := repositories.NewPostgresUserRepository(db.Postgres)
	interactionRepo := repositories.NewPostgresInteractionRepository(db.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	petRepo := repositories.NewPostgresPetListingRepository(db.Postgres)
	fundraiserRepo := repositories.NewPostgresFundraiserRepository(db.Postgres)
	donationRepo := repositories.NewPostgresDonationRepository(db.Postgres)
	followRepo := repositories.NewPostgresFollowRepository(db.Postgres)
	messageRepo := repositories.NewPostgresMessageRepository(db.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(db.Postgres)

	// Services
	subjects := services.NewSubjectStores(postRepo, petRepo, fundraiserRepo, interactionRepo)
	interactionService := services.NewInteractionService(interactionRepo, subjects)
	sessions := session.NewStore(db.Redis)

	// Route groups. Public routes still decode a bearer token when one is
	// sent so responses can be personalized.
	auth := e.Group("/api/auth")
	public := e.Group("/api", middleware.OptionalAuth(cfg.JWTSecret, sessions))
	protected := e.Group("/api", middleware.RequireAuth(cfg.JWTSecret, sessions))

	// Handlers
	authHandler := handlers.NewAuthHandler(userRepo, sessions, firebaseAuthClient, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(auth)
	authHandler.RegisterLogoutRoute(protected)

	userHandler := handlers.NewUserHandler(userRepo, followRepo)
	userHandler.RegisterUserRoutes(public, protected)

	postHandler := handlers.NewPostHandler(postRepo, userRepo)
	postHandler.RegisterPostRoutes(public, protected)

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, interactionService)
	feedHandler.RegisterFeedRoutes(public)

	interactionHandler := handlers.NewInteractionHandler(
		interactionService, userRepo, postRepo, petRepo, fundraiserRepo, notificationRepo)
	interactionHandler.RegisterInteractionRoutes(public, protected)

	petHandler := handlers.NewPetHandler(petRepo)
	petHandler.RegisterPetRoutes(public, protected)

	fundraiserHandler := handlers.NewFundraiserHandler(fundraiserRepo, donationRepo, notificationRepo, gateway)
	fundraiserHandler.RegisterFundraiserRoutes(e, public, protected)

	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationRepo)
	followHandler.RegisterFollowRoutes(public, protected)

	messageHandler := handlers.NewMessageHandler(messageRepo, userRepo, notificationRepo)
	messageHandler.RegisterMessageRoutes(protected)

	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(protected)

	mediaHandler := handlers.NewMediaHandler(storage)
	mediaHandler.RegisterMediaRoutes(public, protected)

	handlers.RegisterHealthRoute(e)
	e.GET("/metrics", metrics.Handler())
}
