package main

import (
	"context"
	"log"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"

	"github.com/patinhas-app/backend/internal/router"
	"github.com/patinhas-app/backend/pkg/config"
	"github.com/patinhas-app/backend/pkg/firebase"
	"github.com/patinhas-app/backend/pkg/media"
	"github.com/patinhas-app/backend/pkg/payments"
	"github.com/patinhas-app/backend/validators"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Firebase sign-in is optional; without credentials only local
	// email/password authentication is available.
	var firebaseAuthClient *firebaseauth.Client
	if cfg.FirebaseCredentialsPath != "" {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
		firebaseAuthClient = app.AuthClient
	} else {
		log.Println("Firebase credentials not configured, skipping Firebase initialization.")
	}

	var storage *media.Storage
	if cfg.MinioAccessKey != "" {
		storage, err = media.New(ctx, media.Config{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			UseSSL:    cfg.MinioUseSSL,
			Bucket:    cfg.MinioBucket,
		})
		if err != nil {
			log.Fatalf("Failed to initialize media storage: %v", err)
		}
	} else {
		log.Println("MinIO credentials not configured, media uploads disabled.")
	}

	var gateway payments.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Println("Stripe key not configured, donations disabled.")
	}

	e := echo.New()
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e)
	router.SetupRoutes(e, cfg, db, firebaseAuthClient, storage, gateway)

	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
