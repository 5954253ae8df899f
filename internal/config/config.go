package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string
	PublicBaseURL  string

	DBHost string
	DBUser string
	DBPass string
	DBName string
	DBPort string

	RedisURL string

	MongoURI string
	MongoDB  string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryURL       string
	CloudinaryCloudName string

	S3Region string
	S3Bucket string
	S3Prefix string

	BrevoAPIKey     string
	MailSenderEmail string
	MailSenderName  string

	JWTSecret string
	JWTTTL    time.Duration

	AdminEmail    string
	AdminUsername string
	AdminPassword string

	RateLimitContent    time.Duration
	ResetTokenTTL       time.Duration
	EmailChangeTokenTTL time.Duration
	UsersPageSize       int
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		AppEnv:         v.GetString("APP_ENV"),
		Port:           v.GetString("PORT"),
		AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		PublicBaseURL:  strings.TrimSuffix(v.GetString("PUBLIC_BASE_URL"), "/"),

		DBHost: v.GetString("DB_HOST"),
		DBUser: v.GetString("DB_USER"),
		DBPass: v.GetString("DB_PASS"),
		DBName: v.GetString("DB_NAME"),
		DBPort: v.GetString("DB_PORT"),

		RedisURL: v.GetString("REDIS_URL"),

		MongoURI: v.GetString("MONGO_URI"),
		MongoDB:  v.GetString("MONGO_DB"),

		MeiliSearchHost: v.GetString("MEILISEARCH_HOST"),
		MeiliMasterKey:  v.GetString("MEILI_MASTER_KEY"),

		CloudinaryURL:       v.GetString("CLOUDINARY_URL"),
		CloudinaryCloudName: v.GetString("CLOUDINARY_CLOUD_NAME"),

		S3Region: v.GetString("S3_REGION"),
		S3Bucket: v.GetString("S3_BUCKET"),
		S3Prefix: v.GetString("S3_PREFIX"),

		BrevoAPIKey:     v.GetString("BREVO_API_KEY"),
		MailSenderEmail: v.GetString("MAIL_SENDER_EMAIL"),
		MailSenderName:  v.GetString("MAIL_SENDER_NAME"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminUsername: v.GetString("ADMIN_USERNAME"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
		UsersPageSize: v.GetInt("USERS_PAGE_SIZE"),
	}

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"JWT_TTL", &cfg.JWTTTL},
		{"RATE_LIMIT_CONTENT", &cfg.RateLimitContent},
		{"RESET_TOKEN_TTL", &cfg.ResetTokenTTL},
		{"EMAIL_CHANGE_TOKEN_TTL", &cfg.EmailChangeTokenTTL},
	}
	for _, d := range durations {
		parsed, err := time.ParseDuration(v.GetString(d.key))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = parsed
	}

	if cfg.UsersPageSize <= 0 {
		return nil, fmt.Errorf("invalid USERS_PAGE_SIZE: %d", cfg.UsersPageSize)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_NAME", "survivehub")
	v.SetDefault("DB_PORT", "5432")

	v.SetDefault("MONGO_DB", "survivehub")
	v.SetDefault("MEILISEARCH_HOST", "http://localhost:7700")
	v.SetDefault("S3_PREFIX", "resources/")
	v.SetDefault("MAIL_SENDER_EMAIL", "no-reply@survivehub.local")
	v.SetDefault("MAIL_SENDER_NAME", "Survive Anything")

	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_TTL", "24h")
	v.SetDefault("RATE_LIMIT_CONTENT", "5s")
	v.SetDefault("RESET_TOKEN_TTL", "1h")
	v.SetDefault("EMAIL_CHANGE_TOKEN_TTL", "1h")
	v.SetDefault("USERS_PAGE_SIZE", 6)

	v.SetDefault("ADMIN_EMAIL", "admin@survivehub.local")
	v.SetDefault("ADMIN_USERNAME", "admin")
	v.SetDefault("ADMIN_PASSWORD", "admin12345")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
