package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Santiago1809/auth-ms/internal/config"
)

// Sender delivers OTP codes over the WhatsApp Cloud API.
type Sender interface {
	// SendOTP attempts a structured template message first and falls back to
	// a plain-text message carrying the same code. Returns false only when
	// both attempts fail. userID is optional and only enriches logs.
	SendOTP(ctx context.Context, phoneIdentifier, code string, userID *string) bool
}

type client struct {
	baseURL       string
	phoneNumberID string
	token         string
	template      string
	expiryMinutes int
	http          *http.Client
}

func NewSender(cfg *config.Config) Sender {
	return &client{
		baseURL:       cfg.WhatsAppBaseURL,
		phoneNumberID: cfg.WhatsAppPhoneNumberID,
		token:         cfg.WhatsAppToken,
		template:      cfg.WhatsAppTemplate,
		expiryMinutes: cfg.OTPExpiryMinutes,
		http:          &http.Client{Timeout: 10 * time.Second},
	}
}

type textMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Text             struct {
		Body string `json:"body"`
	} `json:"text"`
}

type templateMessage struct {
	MessagingProduct string `json:"messaging_product"`
	To               string `json:"to"`
	Type             string `json:"type"`
	Template         struct {
		Name     string `json:"name"`
		Language struct {
			Code string `json:"code"`
		} `json:"language"`
		Components []component `json:"components"`
	} `json:"template"`
}

type component struct {
	Type       string      `json:"type"`
	SubType    string      `json:"sub_type,omitempty"`
	Index      string      `json:"index,omitempty"`
	Parameters []parameter `json:"parameters"`
}

type parameter struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (c *client) SendOTP(ctx context.Context, phoneIdentifier, code string, userID *string) bool {
	logAttrs := []any{slog.String("to", phoneIdentifier)}
	if userID != nil {
		logAttrs = append(logAttrs, slog.String("user_id", *userID))
	}

	if err := c.sendTemplate(ctx, phoneIdentifier, code); err == nil {
		return true
	} else {
		slog.Warn("whatsapp template message failed, falling back to text",
			append(logAttrs, slog.Any("err", err))...)
	}

	body := fmt.Sprintf("Your verification code is %s. It expires in %d minutes.",
		code, c.expiryMinutes)
	if err := c.sendText(ctx, phoneIdentifier, body); err != nil {
		slog.Error("whatsapp text message failed", append(logAttrs, slog.Any("err", err))...)
		return false
	}
	return true
}

// sendTemplate sends the OTP template: the code in the body and a
// copy-code button parameter.
func (c *client) sendTemplate(ctx context.Context, to, code string) error {
	msg := templateMessage{MessagingProduct: "whatsapp", To: to, Type: "template"}
	msg.Template.Name = c.template
	msg.Template.Language.Code = "en"
	msg.Template.Components = []component{
		{
			Type:       "body",
			Parameters: []parameter{{Type: "text", Text: code}},
		},
		{
			Type:       "button",
			SubType:    "url",
			Index:      "0",
			Parameters: []parameter{{Type: "text", Text: code}},
		},
	}
	return c.post(ctx, msg)
}

func (c *client) sendText(ctx context.Context, to, body string) error {
	msg := textMessage{MessagingProduct: "whatsapp", To: to, Type: "text"}
	msg.Text.Body = body
	return c.post(ctx, msg)
}

func (c *client) post(ctx context.Context, payload any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal whatsapp message: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneNumberID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("build whatsapp request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send whatsapp request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, body)
	}
	return nil
}
