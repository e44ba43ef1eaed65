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

	"github.com/joho/godotenv"

	"github.com/Santiago1809/auth-ms/internal/application/otp"
	"github.com/Santiago1809/auth-ms/internal/config"
	jwtinfra "github.com/Santiago1809/auth-ms/internal/infrastructure/jwt"
	"github.com/Santiago1809/auth-ms/internal/infrastructure/postgres"
	"github.com/Santiago1809/auth-ms/internal/infrastructure/smtp"
	"github.com/Santiago1809/auth-ms/internal/infrastructure/whatsapp"
	"github.com/Santiago1809/auth-ms/internal/jobs"
	transporthttp "github.com/Santiago1809/auth-ms/internal/transport/http"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	// Postgres pool plus schema bootstrap (creates tables if they don't exist).
	pool, err := postgres.NewPool(context.Background(), cfg)
	if err != nil {
		log.Fatalf("postgres connection: %v", err)
	}
	defer pool.Close()
	if err := postgres.Bootstrap(context.Background(), pool); err != nil {
		log.Fatalf("postgres bootstrap: %v", err)
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		log.Fatalf("jwt provider: %v", err)
	}

	otpRepo := postgres.NewOTPRepo(pool)

	deps := &transporthttp.Deps{
		UserRepo:    postgres.NewUserRepo(pool),
		OTPRepo:     otpRepo,
		Mailer:      smtp.NewMailer(cfg),
		WhatsApp:    whatsapp.NewSender(cfg),
		JWTProvider: jwtProvider,
	}

	router := transporthttp.NewRouter(cfg, deps)

	// Background expiry sweep.
	otpSvc := otp.NewService(otp.ServiceDeps{Store: otpRepo, Expiry: cfg.OTPExpiry()})
	sweeper, err := jobs.NewSweeper(otpSvc, cfg.SweepInterval())
	if err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	sweeper.Start()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	if err := sweeper.Shutdown(); err != nil {
		log.Printf("sweeper shutdown: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}
