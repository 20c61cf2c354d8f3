package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	InputDir    string
	OutputDir   string
	StateFile   string
	UndoLimit   int
	WorkerCount int
	LogLevel    string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		InputDir:    getEnv("LOCEDIT_INPUT_DIR", "input"),
		OutputDir:   getEnv("LOCEDIT_OUTPUT_DIR", "output"),
		StateFile:   getEnv("LOCEDIT_STATE_FILE", "locedit_state.toml"),
		UndoLimit:   getEnvInt("LOCEDIT_UNDO_LIMIT", 100),
		WorkerCount: getEnvInt("LOCEDIT_WORKER_COUNT", 8),
		LogLevel:    getEnv("LOCEDIT_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
