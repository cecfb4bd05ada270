package app

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	HTTPAddr string

	// DataSource is one of fs, http or postgres.
	DataSource  string
	DataDir     string
	DataBaseURL string
	DBDSN       string

	ScoresFile   string
	StudentsFile string
	UnivFile     string

	RecentWindow int

	// AdminTokenHash is a bcrypt hash. Admin routes are disabled when empty.
	AdminTokenHash     string
	RateLimitPerMin    int
	CORSAllowedOrigins []string
	TemplateDir        string
	StaticDir          string
}

// LoadConfig reads .env when present, then the process environment.
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("load .env: %v", err)
	}

	return Config{
		AppEnv:             envOrDefault("APP_ENV", "development"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		DataSource:         strings.ToLower(envOrDefault("DATA_SOURCE", "fs")),
		DataDir:            envOrDefault("DATA_DIR", "./data"),
		DataBaseURL:        os.Getenv("DATA_BASE_URL"),
		DBDSN:              os.Getenv("DB_DSN"),
		ScoresFile:         envOrDefault("SCORES_FILE", "scores.json"),
		StudentsFile:       envOrDefault("STUDENTS_FILE", "students.json"),
		UnivFile:           envOrDefault("UNIV_FILE", "univ_info.json"),
		RecentWindow:       intOrDefault("RECENT_WINDOW", 3),
		AdminTokenHash:     strings.TrimSpace(os.Getenv("ADMIN_TOKEN_HASH")),
		RateLimitPerMin:    intOrDefault("RATE_LIMIT_PER_MIN", 120),
		CORSAllowedOrigins: csvOrDefault("CORS_ORIGINS", "http://localhost:8080"),
		TemplateDir:        envOrDefault("TEMPLATE_DIR", "web/templates"),
		StaticDir:          envOrDefault("STATIC_DIR", "web/static"),
	}
}

func envOrDefault(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func stringsToInt(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func intOrDefault(key string, fallback int) int {
	v := stringsToInt(os.Getenv(key))
	if v <= 0 {
		return fallback
	}
	return v
}

func csvOrDefault(key, fallback string) []string {
	raw := envOrDefault(key, fallback)
	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
