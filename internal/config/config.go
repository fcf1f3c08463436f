package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	GeminiAPIKey      string
	ElevenLabsAPIKey  string
	ElevenLabsVoiceID string
	OpenAIAPIKey      string
	DatabaseURL       string
	HTTPPort          string
	StaticDir         string
	PetName           string
	CooldownSeconds   int
	AudioTTLSeconds   int
	LogLevel          string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
		ElevenLabsAPIKey:  getEnv("ELEVENLABS_API_KEY", ""),
		ElevenLabsVoiceID: getEnv("ELEVENLABS_VOICE_ID", ""),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		DatabaseURL:       getEnv("DATABASE_URL", "petpal.db"),
		HTTPPort:          getEnv("HTTP_PORT", "8080"),
		StaticDir:         getEnv("STATIC_DIR", "static"),
		PetName:           getEnv("PET_NAME", "Whiskers"),
		CooldownSeconds:   getEnvAsInt("COOLDOWN_SECONDS", 30),
		AudioTTLSeconds:   getEnvAsInt("AUDIO_TTL_SECONDS", 60),
		LogLevel:          getEnv("LOG_LEVEL", "INFO"),
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	// TTS keys are optional: the cascade skips backends that are not
	// configured and may degrade all the way to a text-only reply.
	if AppConfig.ElevenLabsAPIKey == "" && AppConfig.OpenAIAPIKey == "" {
		log.Println("Warning: no TTS API keys configured, only the Translate fallback voice is available")
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
