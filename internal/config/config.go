package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string
	SNSRegion      string
	SNSSenderID    string // optional alphanumeric sender ID

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration

	SessionTTL      time.Duration // idle onboarding sessions are dropped after this
	PhotoURLTTL     time.Duration // lifetime of presigned photo URLs
	PhotoMaxBytes   int64
	VoiceAPIURL     string
	VoiceAPIKey     string // empty disables the voice provider (log-only stub)
	VoiceAgentID    string
	AssistantAppURL string
	AssistantWebURL string
	AllowedOrigins  []string // CORS allowed origins
	// TrustProxyHeaders keys rate limits on X-Forwarded-For / X-Real-Ip.
	// Enable only behind a proxy that sets them.
	TrustProxyHeaders bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Profiles string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Profiles: getEnv("DYNAMO_TABLE_PROFILES", "profiles"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "onboarding-photos"),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),
		SNSSenderID:  getEnv("SNS_SENDER_ID", ""),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,

		SessionTTL:      time.Duration(getEnvInt("SESSION_TTL_MINUTES", 120)) * time.Minute,
		PhotoURLTTL:     time.Duration(getEnvInt("PHOTO_URL_TTL_MINUTES", 15)) * time.Minute,
		PhotoMaxBytes:   int64(getEnvInt("PHOTO_MAX_MB", 10)) << 20,
		VoiceAPIURL:     getEnv("VOICE_API_URL", "https://api.elevenlabs.io"),
		VoiceAPIKey:     getEnv("VOICE_API_KEY", ""),
		VoiceAgentID:    getEnv("VOICE_AGENT_ID", ""),
		AssistantAppURL: getEnv("ASSISTANT_APP_URL", "chatgpt://"),
		AssistantWebURL: getEnv("ASSISTANT_WEB_URL", "https://chat.openai.com/"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),

		TrustProxyHeaders: getEnv("TRUST_PROXY_HEADERS", "false") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
