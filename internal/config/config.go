package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const (
	cashfreeProdBaseURL    = "https://api.cashfree.com/pg"
	cashfreeSandboxBaseURL = "https://sandbox.cashfree.com/pg"
)

// Config holds application configuration loaded from the environment.
//
// Nothing here is mandatory at startup: missing gateway, SMTP or WhatsApp
// settings disable the endpoints or channels that need them.
type Config struct {
	AppEnv    string
	Port      string
	LogLevel  string
	LogFormat string

	CashfreeAppID         string
	CashfreeKeySecret     string
	CashfreeEnvironment   string
	CashfreeBaseURL       string
	CashfreeAPIVersion    string
	CashfreeWebhookSecret string
	CashfreeNotifyURL     string
	PaymentGatewayMock    bool

	WebhookRequireSignature bool
	NotifyOnTransitionOnly  bool

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFromName string

	WhatsAppToken      string
	WhatsAppPhoneID    string
	WhatsAppAPIVersion string

	WebinarLink        string
	CommunityLink      string
	SiteURL            string
	DefaultCountryCode string

	AWSRegion          string
	AWSAccessKeyID     string
	DynamoDBEndpoint   string
	RegistrationsTable string

	RedisURL              string
	WebhookReplayTTL      time.Duration
	WebhookReplayClaimTTL time.Duration

	HTTPClientTimeout time.Duration
}

// Load reads configuration from environment variables and an optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	return fromKoanf(k), nil
}

func fromKoanf(k *koanf.Koanf) *Config {
	cfg := &Config{
		AppEnv:    valueOrDefault(k.String("APP_ENV"), "development"),
		Port:      valueOrDefault(k.String("PORT"), "8080"),
		LogLevel:  valueOrDefault(k.String("LOG_LEVEL"), "info"),
		LogFormat: valueOrDefault(k.String("LOG_FORMAT"), "json"),

		CashfreeAppID:         strings.TrimSpace(k.String("CASHFREE_APP_ID")),
		CashfreeKeySecret:     strings.TrimSpace(k.String("CASHFREE_KEY_SECRET")),
		CashfreeEnvironment:   strings.ToUpper(valueOrDefault(k.String("CASHFREE_ENVIRONMENT"), "TEST")),
		CashfreeBaseURL:       strings.TrimRight(strings.TrimSpace(k.String("CASHFREE_BASE_URL")), "/"),
		CashfreeAPIVersion:    valueOrDefault(k.String("CASHFREE_API_VERSION"), "2022-09-01"),
		CashfreeWebhookSecret: strings.TrimSpace(k.String("CASHFREE_WEBHOOK_SECRET")),
		CashfreeNotifyURL:     strings.TrimSpace(k.String("CASHFREE_NOTIFY_URL")),
		PaymentGatewayMock:    parseBool(k.String("PAYMENT_GATEWAY_MOCK")),

		WebhookRequireSignature: parseBool(k.String("WEBHOOK_REQUIRE_SIGNATURE")),
		NotifyOnTransitionOnly:  parseBool(k.String("NOTIFY_ON_TRANSITION_ONLY")),

		SMTPHost:     strings.TrimSpace(k.String("SMTP_HOST")),
		SMTPPort:     parseInt(k.String("SMTP_PORT"), 465),
		SMTPUser:     strings.TrimSpace(k.String("SMTP_USER")),
		SMTPPass:     k.String("SMTP_PASS"),
		SMTPFromName: valueOrDefault(k.String("SMTP_FROM_NAME"), "Vinith Dcosta & Associates"),

		WhatsAppToken:      strings.TrimSpace(k.String("WHATSAPP_TOKEN")),
		WhatsAppPhoneID:    strings.TrimSpace(k.String("WHATSAPP_PHONE_ID")),
		WhatsAppAPIVersion: valueOrDefault(k.String("WHATSAPP_API_VERSION"), "v17.0"),

		WebinarLink:        strings.TrimSpace(k.String("WEBINAR_LINK")),
		CommunityLink:      strings.TrimSpace(k.String("COMMUNITY_LINK")),
		SiteURL:            strings.TrimRight(strings.TrimSpace(k.String("SITE_URL")), "/"),
		DefaultCountryCode: strings.TrimPrefix(valueOrDefault(k.String("DEFAULT_COUNTRY_CODE"), "91"), "+"),

		AWSRegion:          valueOrDefault(k.String("AWS_REGION"), "us-east-1"),
		AWSAccessKeyID:     strings.TrimSpace(k.String("AWS_ACCESS_KEY_ID")),
		DynamoDBEndpoint:   strings.TrimSpace(k.String("DYNAMODB_ENDPOINT")),
		RegistrationsTable: valueOrDefault(k.String("REGISTRATIONS_TABLE"), "registrations"),

		RedisURL:              strings.TrimSpace(k.String("REDIS_URL")),
		WebhookReplayTTL:      parseDuration(k.String("WEBHOOK_REPLAY_TTL"), "24h"),
		WebhookReplayClaimTTL: parseDuration(k.String("WEBHOOK_REPLAY_CLAIM_TTL"), "2m"),

		HTTPClientTimeout: parseDuration(k.String("HTTP_CLIENT_TIMEOUT"), "30s"),
	}
	return cfg
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// GatewayConfigured reports whether Cashfree credentials are present.
func (c *Config) GatewayConfigured() bool {
	return c.CashfreeAppID != "" && c.CashfreeKeySecret != ""
}

// GatewayBaseURL resolves the Cashfree PG base URL for the configured environment.
func (c *Config) GatewayBaseURL() string {
	if c.CashfreeBaseURL != "" {
		return c.CashfreeBaseURL
	}
	if c.CashfreeEnvironment == "PROD" || c.CashfreeEnvironment == "PRODUCTION" {
		return cashfreeProdBaseURL
	}
	return cashfreeSandboxBaseURL
}

// WebhookSecret is the HMAC key for inbound webhooks. The dedicated webhook
// secret wins over the API key secret.
func (c *Config) WebhookSecret() string {
	if c.CashfreeWebhookSecret != "" {
		return c.CashfreeWebhookSecret
	}
	return c.CashfreeKeySecret
}

// HasAWSCredentials reports whether static AWS keys were provided.
func (c *Config) HasAWSCredentials() bool {
	return c.AWSAccessKeyID != ""
}

func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) WhatsAppConfigured() bool {
	return c.WhatsAppToken != "" && c.WhatsAppPhoneID != ""
}

func valueOrDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}
