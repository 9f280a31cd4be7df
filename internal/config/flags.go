package config

import (
	"flag"
	"os"
	"time"

	"github.com/tgcatalog/backend/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-k string   Telegram bot token
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-m string   comma-separated admin Telegram user IDs
//	-u string   local upload directory
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration
// flags are accepted as integers in minutes and then converted to
// time.Duration values.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-k", "-s", "-t", "-m", "-u"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TelegramBotToken, "k", config.TelegramBotToken, "telegram bot token")
	fs.StringVar(&config.JWTSecretKey, "s", config.JWTSecretKey, "JWT secret key")

	accessTokenValidityMinutes := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	adminIDs := fs.String("m", "", "comma-separated admin telegram user IDs")

	fs.StringVar(&config.UploadDir, "u", config.UploadDir, "local upload directory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityMinutes) * time.Minute

	if *adminIDs != "" {
		ids, err := ParseAdminUserIDs(*adminIDs)
		if err != nil {
			panic(err)
		}
		config.AdminUserIDs = ids
	}
}
