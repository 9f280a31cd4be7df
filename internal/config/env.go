package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays configuration from the process environment. A .env file
// in the working directory is loaded first (existing variables win), so the
// same variable names work in both deployment styles.
//
// Recognized variables mirror the original deployment:
//
//	HTTP_ADDR, DATABASE_URL, TELEGRAM_BOT_TOKEN, TELEGRAM_BOT_USERNAME,
//	JWT_SECRET_KEY, JWT_ACCESS_TOKEN_EXPIRE_MINUTES, ADMIN_USER_IDS,
//	SYNC_ROLE_FROM_ALLOW_LIST, UPLOAD_DIR, MAX_FILE_SIZE,
//	S3_ACCESS_KEY_ID, S3_SECRET_ACCESS_KEY, S3_BUCKET_NAME, S3_REGION,
//	S3_ENDPOINT_URL, LOG_LEVEL
func parseEnv(config *Config) {

	_ = godotenv.Load()

	if v := os.Getenv("HTTP_ADDR"); v != "" {
		config.EndpointAddrHTTP = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		config.DatabaseDSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		config.TelegramBotToken = v
	}
	if v := os.Getenv("TELEGRAM_BOT_USERNAME"); v != "" {
		config.TelegramBotUsername = v
	}
	if v := os.Getenv("JWT_SECRET_KEY"); v != "" {
		config.JWTSecretKey = v
	}
	if v := os.Getenv("JWT_ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		if minutes, err := strconv.Atoi(v); err == nil && minutes > 0 {
			config.AccessTokenValidityDuration = time.Duration(minutes) * time.Minute
		}
	}
	if v := os.Getenv("ADMIN_USER_IDS"); v != "" {
		if ids, err := ParseAdminUserIDs(v); err == nil {
			config.AdminUserIDs = ids
		}
	}
	if v := os.Getenv("SYNC_ROLE_FROM_ALLOW_LIST"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			config.SyncRoleFromAllowList = b
		}
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		config.UploadDir = v
	}
	if v := os.Getenv("MAX_FILE_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil && size > 0 {
			config.MaxFileSize = size
		}
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		config.S3AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		config.S3SecretAccessKey = v
	}
	if v := os.Getenv("S3_BUCKET_NAME"); v != "" {
		config.S3Bucket = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		config.S3Region = v
	}
	if v := os.Getenv("S3_ENDPOINT_URL"); v != "" {
		config.S3BaseEndpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		config.LogLevel = v
	}
}
