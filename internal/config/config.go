package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ProjectID      string
	Region         string
	LogLevel       string
	Port           string
	KMSKeyName     string
	VertexModel    string
	EmbeddingModel string
	KnotBaseURL    string
	KnotClientID   string
	KnotSecret     string
	KnotSecretName string // Secret Manager secret holding the Knot secret when KNOTSECRET is unset
	NessieBaseURL  string
	NessieAPIKey   string
	NotifyURL      string
}

func New() *Config {
	// .env is optional; real deployments inject env vars directly.
	_ = godotenv.Load()

	return &Config{
		ProjectID:      os.Getenv("PROJECTID"),
		Region:         os.Getenv("REGION"),
		LogLevel:       os.Getenv("LOGLEVEL"),
		Port:           getEnv("PORT", "8080"),
		KMSKeyName:     os.Getenv("KMSKEYNAME"),
		VertexModel:    getEnv("VERTEXMODEL", "gemini-2.0-flash"),
		EmbeddingModel: getEnv("EMBEDDINGMODEL", "text-embedding-004"),
		KnotBaseURL:    getEnv("KNOTBASEURL", "https://production.knotapi.com"),
		KnotClientID:   os.Getenv("KNOTCLIENTID"),
		KnotSecret:     os.Getenv("KNOTSECRET"),
		KnotSecretName: os.Getenv("KNOTSECRETNAME"),
		NessieBaseURL:  getEnv("NESSIEBASEURL", "http://api.nessieisreal.com"),
		NessieAPIKey:   os.Getenv("NESSIEAPIKEY"),
		NotifyURL:      os.Getenv("NOTIFYURL"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
