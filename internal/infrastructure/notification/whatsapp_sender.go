package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultGraphBaseURL = "https://graph.facebook.com"

var ErrWhatsAppNotConfigured = errors.New("whatsapp not configured")

// WhatsAppOptions configures the WhatsApp Cloud API client.
type WhatsAppOptions struct {
	BaseURL    string
	APIVersion string
	PhoneID    string
	Token      string
	Timeout    time.Duration
}

// WhatsAppSender posts text messages through the WhatsApp Cloud API.
type WhatsAppSender struct {
	httpClient *http.Client
	endpoint   string
	token      string
}

var _ MessageSender = (*WhatsAppSender)(nil)

type whatsAppTextBody struct {
	Body string `json:"body"`
}

type whatsAppMessage struct {
	MessagingProduct string           `json:"messaging_product"`
	To               string           `json:"to"`
	Type             string           `json:"type"`
	Text             whatsAppTextBody `json:"text"`
}

func NewWhatsAppSender(opts WhatsAppOptions) (*WhatsAppSender, error) {
	if opts.Token == "" || opts.PhoneID == "" {
		return nil, ErrWhatsAppNotConfigured
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultGraphBaseURL
	}
	if opts.APIVersion == "" {
		opts.APIVersion = "v17.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &WhatsAppSender{
		httpClient: &http.Client{Timeout: opts.Timeout},
		endpoint:   fmt.Sprintf("%s/%s/%s/messages", strings.TrimRight(opts.BaseURL, "/"), opts.APIVersion, opts.PhoneID),
		token:      opts.Token,
	}, nil
}

func (s *WhatsAppSender) SendText(ctx context.Context, to, body string) error {
	payload, err := json.Marshal(whatsAppMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             whatsAppTextBody{Body: body},
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("whatsapp api status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
