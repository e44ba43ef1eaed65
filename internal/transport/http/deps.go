package http

import (
	"github.com/Santiago1809/auth-ms/internal/infrastructure/postgres"
	"github.com/Santiago1809/auth-ms/internal/infrastructure/smtp"
	"github.com/Santiago1809/auth-ms/internal/infrastructure/whatsapp"

	jwtinfra "github.com/Santiago1809/auth-ms/internal/infrastructure/jwt"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *postgres.UserRepo
	OTPRepo     *postgres.OTPRepo
	Mailer      smtp.Mailer
	WhatsApp    whatsapp.Sender
	JWTProvider *jwtinfra.Provider
}
