// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath      = pflag.String("config", ".", "Directory containing config.toml")
	validLogLevels  = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers  = []string{"sqlite", "postgres"}
	errNoJWTSecret  = errors.New("jwt.secret is not set")
	minSecretLength = 32
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables")
	}

	err := Load()
	if errors.Is(err, errNoJWTSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

// Load binds envs, sets defaults and validates the result. It doesn't read
// any files so tests can call it after setting values directly.
func Load() error {
	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")
	v.BindEnv("app.base_url", "app_base_url")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.cors", "host_cors")
	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")
	v.BindEnv("jwt.issuer", "jwt_issuer")
	v.BindEnv("jwt.ttl", "jwt_ttl")

	v.BindEnv("token.ttl", "token_ttl")

	v.BindEnv("security.rate_limit", "security_rate_limit")
	v.BindEnv("security.turnstile.enabled", "security_turnstile_enabled")
	v.BindEnv("security.turnstile.secret_token", "security_turnstile_secret_token")

	v.BindEnv("mail.enabled", "mail_enabled")
	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.sender", "mail_sender")

	v.BindEnv("moderation.words", "moderation_words")
	v.BindEnv("moderation.word_file", "moderation_word_file")

	v.BindEnv("cleanup.interval", "cleanup_interval")
	v.BindEnv("cleanup.retention", "cleanup_retention")

	v.BindEnv("cache.ttl", "cache_ttl")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.base_url", "http://localhost:3000")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.cors", []string{"http://localhost:3000"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("jwt.issuer", "inkwell")
	v.SetDefault("jwt.ttl", time.Hour*24*30)

	v.SetDefault("token.ttl", 10*time.Minute)

	v.SetDefault("security.rate_limit", 20)
	v.SetDefault("security.turnstile.enabled", false)

	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", 587)

	v.SetDefault("cleanup.interval", time.Hour)
	v.SetDefault("cleanup.retention", time.Hour*24)

	// Off by default, cached responses can show stale followers and reactions
	v.SetDefault("cache.ttl", 0)

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return errNoJWTSecret
	}

	if len(v.GetString("jwt.secret")) < minSecretLength {
		return fmt.Errorf("jwt.secret must be at least %d characters long", minSecretLength)
	}

	if v.GetDuration("jwt.ttl") <= 0 {
		return errors.New("jwt.ttl must be bigger than 0")
	}

	if v.GetDuration("token.ttl") <= 0 {
		return errors.New("token.ttl must be bigger than 0")
	}

	if v.GetDuration("cleanup.interval") <= 0 {
		return errors.New("cleanup.interval must be bigger than 0")
	}

	if v.GetDuration("cleanup.retention") < v.GetDuration("token.ttl") {
		return errors.New("cleanup.retention can't be shorter than token.ttl")
	}

	if v.GetDuration("cache.ttl") < 0 {
		return errors.New("cache.ttl can't be negative")
	}

	if v.GetInt("security.rate_limit") < 0 {
		return errors.New("security.rate_limit can't be negative")
	}

	if v.GetBool("mail.enabled") {
		if v.GetString("mail.host") == "" {
			return errors.New("mail host can't be empty")
		}
		if v.GetString("mail.sender") == "" {
			return errors.New("mail sender can't be empty")
		}
		if v.GetInt("mail.port") <= 0 {
			return errors.New("invalid mail port provided")
		}
	} else {
		zap.L().Warn("Mail is disabled, verification and reset links will only be logged")
	}

	if v.GetBool("security.turnstile.enabled") {
		if v.GetString("security.turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	} else {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Registration and password reset won't be guarded against bots")
	}

	return nil
}
