package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	CORSAllowOrigin string
	APIKey          string
	AcceptTokens    bool
	Whitelist       []uint64
	BotToken        string
	BotPrefix       string
	BotDisabled     bool
	StoreBackend    string
	DBPath          string
	DynamoEndpoint  string
	DynamoTableName string
	AWSRegion       string
	LogLevel        slog.Level
}

// LoadDotEnv loads variables from a .env file in the working directory, if
// one exists. Variables already set in the environment are not overridden.
func LoadDotEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

func LoadConfig() (Config, error) {
	key := os.Getenv("KEY")
	if key == "" {
		return Config{}, fmt.Errorf("KEY environment variable is required")
	}

	whitelist, err := parseWhitelist(os.Getenv("WHITELIST"))
	if err != nil {
		return Config{}, err
	}

	botDisabled := strings.EqualFold(os.Getenv("BOT_DISABLED"), "true")
	botToken := os.Getenv("TOKEN")
	if botToken == "" && !botDisabled {
		return Config{}, fmt.Errorf("TOKEN environment variable is required unless BOT_DISABLED=true")
	}

	cfg := Config{
		ServerPort:      envOrDefault("SERVER_PORT", "8000"),
		CORSAllowOrigin: envOrDefault("CORS_ALLOW_ORIGIN", "*"),
		APIKey:          key,
		AcceptTokens:    strings.EqualFold(os.Getenv("API_ACCEPT_TOKENS"), "true"),
		Whitelist:       whitelist,
		BotToken:        botToken,
		BotPrefix:       envOrDefault("PREFIX", "~"),
		BotDisabled:     botDisabled,
		StoreBackend:    strings.ToLower(envOrDefault("STORE_BACKEND", "bolt")),
		DBPath:          envOrDefault("DB_PATH", "data/reasons.db"),
		DynamoEndpoint:  os.Getenv("DYNAMODB_ENDPOINT"),
		DynamoTableName: envOrDefault("DYNAMODB_TABLE_NAME", "reasons"),
		AWSRegion:       envOrDefault("AWS_REGION", "us-east-1"),
		LogLevel:        parseLogLevel(os.Getenv("LOG_LEVEL")),
	}

	return cfg, nil
}

// parseWhitelist parses a comma-separated list of user ids. Blank entries are
// skipped; anything else that is not an unsigned integer is an error.
func parseWhitelist(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("WHITELIST environment variable is required")
	}

	var ids []uint64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed user id %q in WHITELIST: %w", field, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("WHITELIST environment variable is required")
	}
	return ids, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
