// Package templates renders the HTML email bodies sent by the verification
// flows. Templates are parsed once at package load.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
)

var tmpl = template.Must(template.New("mail").Parse(`
{{define "layout_top"}}
<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.}}</title></head>
<body style="font-family: 'Segoe UI', Tahoma, sans-serif; background: #f4f4f7; margin: 0; padding: 24px;">
  <div style="max-width: 600px; margin: 0 auto; background: #ffffff; border-radius: 12px; overflow: hidden;">
    <div style="background: #411e8a; color: #ffffff; padding: 28px; text-align: center;">
      <h1 style="margin: 0; font-size: 26px;">{{.}}</h1>
    </div>
    <div style="padding: 32px;">
{{end}}

{{define "layout_bottom"}}
    </div>
    <div style="background: #f8f9fa; padding: 18px; text-align: center; color: #666; font-size: 13px;">
      <p style="margin: 0;">If you did not request this, you can safely ignore this message.</p>
    </div>
  </div>
</body>
</html>
{{end}}

{{define "welcome"}}
{{template "layout_top" "Welcome aboard!"}}
      <p style="font-size: 18px;">Hi{{if .Name}} <strong>{{.Name}}</strong>{{end}},</p>
      <p>Your account is now fully verified. Thanks for confirming both your
      email address and your phone number &mdash; you have access to every
      feature of the platform.</p>
      <p style="text-align: center;">
        <a href="{{.AppURL}}" style="display: inline-block; background: #411e8a; color: #ffffff; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-weight: 600;">Get started</a>
      </p>
{{template "layout_bottom"}}
{{end}}

{{define "code"}}
{{template "layout_top" "Verification code"}}
      <p style="font-size: 18px;">Hi {{.Name}},</p>
      <p>Enter the following code to verify your {{.ChannelLabel}}:</p>
      <div style="border: 2px dashed #411e8a; border-radius: 12px; padding: 24px; text-align: center; margin: 24px 0;">
        <span style="font-size: 34px; font-weight: bold; letter-spacing: 8px; color: #411e8a; font-family: monospace;">{{.Code}}</span>
      </div>
      <p style="color: #856404; background: #fff3cd; border-radius: 8px; padding: 12px; font-size: 14px;">
        This code expires in {{.ExpiryMinutes}} minutes. Do not share it with anyone.
      </p>
{{template "layout_bottom"}}
{{end}}

{{define "magic_link"}}
{{template "layout_top" "Verify your email"}}
      <p style="font-size: 18px;">Hi {{.Name}},</p>
      <p>Click the button below to verify your email address:</p>
      <p style="text-align: center;">
        <a href="{{.Link}}" style="display: inline-block; background: #411e8a; color: #ffffff; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-weight: 600;">Verify my email</a>
      </p>
      <p style="color: #856404; background: #fff3cd; border-radius: 8px; padding: 12px; font-size: 14px;">
        This link expires in {{.ExpiryMinutes}} minutes.
      </p>
{{template "layout_bottom"}}
{{end}}

{{define "reset_code"}}
{{template "layout_top" "Password reset"}}
      <p>We received a request to reset the password for your account.</p>
      <p>Enter the following code to continue:</p>
      <div style="border: 2px dashed #411e8a; border-radius: 12px; padding: 24px; text-align: center; margin: 24px 0;">
        <span style="font-size: 34px; font-weight: bold; letter-spacing: 8px; color: #411e8a; font-family: monospace;">{{.Code}}</span>
      </div>
{{template "layout_bottom"}}
{{end}}

{{define "reset_link"}}
{{template "layout_top" "Reset your password"}}
      <p style="font-size: 18px;">Hi {{.Name}},</p>
      <p>Your identity is confirmed. Use the link below to set a new password:</p>
      <p style="text-align: center;">
        <a href="{{.Link}}" style="display: inline-block; background: #411e8a; color: #ffffff; text-decoration: none; padding: 14px 28px; border-radius: 8px; font-weight: 600;">Reset my password</a>
      </p>
      <p style="color: #856404; background: #fff3cd; border-radius: 8px; padding: 12px; font-size: 14px;">
        This link expires in {{.ExpiryMinutes}} minutes.
      </p>
{{template "layout_bottom"}}
{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}

// Welcome is the one-time fully-verified greeting.
func Welcome(name, appURL string) (string, error) {
	return render("welcome", struct {
		Name   string
		AppURL string
	}{name, appURL})
}

// VerificationCode carries a numeric OTP for the given channel.
func VerificationCode(name, code, channelLabel string, expiryMinutes int) (string, error) {
	return render("code", struct {
		Name          string
		Code          string
		ChannelLabel  string
		ExpiryMinutes int
	}{name, code, channelLabel, expiryMinutes})
}

// MagicLink carries a clickable email-verification link.
func MagicLink(name, link string, expiryMinutes int) (string, error) {
	return render("magic_link", struct {
		Name          string
		Link          string
		ExpiryMinutes int
	}{name, link, expiryMinutes})
}

// ResetCode carries a password-reset OTP.
func ResetCode(code string) (string, error) {
	return render("reset_code", struct{ Code string }{code})
}

// ResetLink carries the signed password-reset link.
func ResetLink(name, link string, expiryMinutes int) (string, error) {
	return render("reset_link", struct {
		Name          string
		Link          string
		ExpiryMinutes int
	}{name, link, expiryMinutes})
}
