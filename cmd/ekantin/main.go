package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rahmatdika/ekantin/internal/database"
	"github.com/rahmatdika/ekantin/internal/logging"
	"github.com/rahmatdika/ekantin/internal/push"
	"github.com/rahmatdika/ekantin/internal/server"
	"github.com/rahmatdika/ekantin/internal/upload"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	if len(os.Args) > 1 && os.Args[1] == "gen-vapid-keys" {
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			log.Fatalf("generate vapid keys: %v", err)
		}
		fmt.Printf("EKANTIN_VAPID_PUBLIC_KEY=%s\n", pub)
		fmt.Printf("EKANTIN_VAPID_PRIVATE_KEY=%s\n", priv)
		return
	}

	logger := logging.Setup(env("EKANTIN_LOG_LEVEL", "info"))

	port := env("EKANTIN_PORT", "8080")
	dbPath := env("EKANTIN_DB_PATH", "ekantin.db")

	adminScriptURL := os.Getenv("EKANTIN_ADMIN_SCRIPT_URL")
	if adminScriptURL == "" {
		log.Fatal("EKANTIN_ADMIN_SCRIPT_URL is required")
	}
	jwtSecret := os.Getenv("EKANTIN_JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("EKANTIN_JWT_SECRET is required")
	}

	db, err := database.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var uploader upload.Uploader
	if bucket := os.Getenv("EKANTIN_S3_BUCKET"); bucket != "" {
		uploader = upload.NewS3(upload.S3Config{
			Endpoint:      os.Getenv("EKANTIN_S3_ENDPOINT"),
			Bucket:        bucket,
			Region:        env("EKANTIN_S3_REGION", "auto"),
			AccessKey:     os.Getenv("EKANTIN_S3_ACCESS_KEY"),
			SecretKey:     os.Getenv("EKANTIN_S3_SECRET_KEY"),
			PublicBaseURL: os.Getenv("EKANTIN_S3_PUBLIC_URL"),
		}, logger)
	} else {
		uploader = upload.NewDrive(upload.DriveConfig{
			AccessToken: os.Getenv("EKANTIN_DRIVE_TOKEN"),
			FolderID:    os.Getenv("EKANTIN_DRIVE_FOLDER"),
		}, logger)
	}

	cfg := server.Config{
		AdminScriptURL: adminScriptURL,
		JWTSecret:      jwtSecret,
		AdminUser:      os.Getenv("EKANTIN_ADMIN_USER"),
		AdminPassHash:  os.Getenv("EKANTIN_ADMIN_PASS_HASH"),
		Push: push.Config{
			VAPIDPublicKey:  os.Getenv("EKANTIN_VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("EKANTIN_VAPID_PRIVATE_KEY"),
		},
	}

	srv := server.New(db, cfg, uploader, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("ekantin listening", "port", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
