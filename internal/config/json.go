package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/tgcatalog/backend/internal/flagx"
	"github.com/tgcatalog/backend/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. After unmarshalling, its fields are copied into the
// runtime Config struct.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	TelegramBotToken            string         `json:"telegram_bot_token"`
	TelegramBotUsername         string         `json:"telegram_bot_username"`
	JWTSecretKey                string         `json:"jwt_secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration"`
	AdminUserIDs                []int64        `json:"admin_user_ids"`
	SyncRoleFromAllowList       *bool          `json:"sync_role_from_allow_list"`
	UploadDir                   string         `json:"upload_dir"`
	MaxFileSize                 int64          `json:"max_file_size"`
	S3AccessKeyID               string         `json:"s3_access_key_id"`
	S3SecretAccessKey           string         `json:"s3_secret_access_key"`
	S3Bucket                    string         `json:"s3_bucket"`
	S3Region                    string         `json:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint"`
	LogLevel                    string         `json:"log_level"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. Only fields present in
// the file override the current values. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TelegramBotToken != "" {
		config.TelegramBotToken = c.TelegramBotToken
	}
	if c.TelegramBotUsername != "" {
		config.TelegramBotUsername = c.TelegramBotUsername
	}
	if c.JWTSecretKey != "" {
		config.JWTSecretKey = c.JWTSecretKey
	}
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = time.Duration(c.AccessTokenValidityDuration.Duration)
	}
	if c.AdminUserIDs != nil {
		config.AdminUserIDs = c.AdminUserIDs
	}
	if c.SyncRoleFromAllowList != nil {
		config.SyncRoleFromAllowList = *c.SyncRoleFromAllowList
	}
	if c.UploadDir != "" {
		config.UploadDir = c.UploadDir
	}
	if c.MaxFileSize != 0 {
		config.MaxFileSize = c.MaxFileSize
	}
	if c.S3AccessKeyID != "" {
		config.S3AccessKeyID = c.S3AccessKeyID
	}
	if c.S3SecretAccessKey != "" {
		config.S3SecretAccessKey = c.S3SecretAccessKey
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.LogLevel != "" {
		config.LogLevel = c.LogLevel
	}
}
