package config

import (
	"os"

	"github.com/joho/godotenv"
)

const Version = "0.1.0"

type Config struct {
	Addr       string
	DBPath     string
	JWTSecret  string
	CORSOrigin string
	Version    string
}

func Load() Config {
	loadDotenv()

	addr := envString("INKWELL_ADDR", "")
	if addr == "" {
		if port := os.Getenv("PORT"); port != "" {
			addr = ":" + port
		} else {
			addr = ":8080"
		}
	}
	return Config{
		Addr:       addr,
		DBPath:     envString("INKWELL_DB", "inkwell.db"),
		JWTSecret:  envString("INKWELL_JWT_SECRET", "dev-jwt-secret"),
		CORSOrigin: envString("INKWELL_CORS_ORIGIN", "*"),
		Version:    Version,
	}
}

// loadDotenv overlays a local .env file if one exists; real environment
// variables still win for anything already set.
func loadDotenv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
