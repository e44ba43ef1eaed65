package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/Santiago1809/auth-ms/internal/application/auth"
	"github.com/Santiago1809/auth-ms/internal/application/otp"
	"github.com/Santiago1809/auth-ms/internal/application/verification"
	"github.com/Santiago1809/auth-ms/internal/config"
	"github.com/Santiago1809/auth-ms/internal/transport/http/handler"
	appmiddleware "github.com/Santiago1809/auth-ms/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the endpoints that issue,
	// verify or resend codes and to sign-in/sign-up.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpSvc := otp.NewService(otp.ServiceDeps{
		Store:  deps.OTPRepo,
		Expiry: cfg.OTPExpiry(),
	})
	reconcilerSvc := verification.NewReconciler(verification.ReconcilerDeps{
		Users:       deps.UserRepo,
		Mailer:      deps.Mailer,
		FrontendURL: cfg.FrontendURL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		Users:         deps.UserRepo,
		OTPs:          otpSvc,
		Reconciler:    reconcilerSvc,
		Mailer:        deps.Mailer,
		WhatsApp:      deps.WhatsApp,
		Tokens:        deps.JWTProvider,
		FrontendURL:   cfg.FrontendURL,
		APIBaseURL:    cfg.APIBaseURL,
		ExpiryMinutes: cfg.OTPExpiryMinutes,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	verifH := handler.NewVerificationHandler(authSvc, reconcilerSvc, cfg.FrontendURL)
	resetH := handler.NewPasswordResetHandler(authSvc)
	protectedH := handler.NewProtectedHandler(deps.UserRepo)

	authMw := appmiddleware.Auth(deps.JWTProvider)
	verifiedMw := appmiddleware.RequireVerified(deps.UserRepo)

	// ── Public routes (no auth) ──────────────────────────────────────────
	r.Get("/health", healthH.Check)

	r.Route("/auth", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/signup", authH.Signup)
		r.Post("/signin", authH.Signin)
	})

	r.Route("/verification", func(r chi.Router) {
		r.With(sensitiveRL.Limit).Post("/send-otp", verifH.SendOTP)
		r.With(sensitiveRL.Limit).Post("/verify-otp", verifH.VerifyOTP)
		r.With(sensitiveRL.Limit).Post("/resend-otp", verifH.ResendOTP)
		r.Get("/verify-email", verifH.VerifyEmail)
		r.Get("/status/{identifier}", verifH.Status)

		r.Route("/reset-password", func(r chi.Router) {
			r.Use(sensitiveRL.Limit)
			r.Post("/request", resetH.Request)
			r.Post("/verify", resetH.Verify)
			r.Patch("/change", resetH.Change)
		})
	})

	// ── Authenticated routes ─────────────────────────────────────────────
	r.Group(func(r chi.Router) {
		r.Use(authMw)

		r.Get("/auth-only/user-info", protectedH.UserInfo)

		// Fully gated: auth plus the verification policy.
		r.Group(func(r chi.Router) {
			r.Use(verifiedMw)
			r.Get("/protected/profile", protectedH.Profile)
		})
	})

	return r
}
