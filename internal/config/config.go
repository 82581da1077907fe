// Package config defines configuration parsing and helpers.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	AppEnv string `env:"APP_ENV" envDefault:"dev"`
	Port   int    `env:"PORT" envDefault:"8080"`

	// Embedding provider (OpenAI-compatible)
	EmbeddingsAPIKey    string `env:"EMBEDDINGS_API_KEY"`
	EmbeddingsBaseURL   string `env:"EMBEDDINGS_BASE_URL" envDefault:"https://api.openai.com/v1"`
	EmbeddingsModel     string `env:"EMBEDDINGS_MODEL" envDefault:"text-embedding-3-small"`
	EmbeddingsDimension int    `env:"EMBEDDINGS_DIMENSION" envDefault:"1536"`
	// EmbedCacheSize bounds the in-process text->vector cache.
	EmbedCacheSize int `env:"EMBED_CACHE_SIZE" envDefault:"2048"`

	// Generation provider (OpenAI-compatible), used for relevance scoring
	GenerationAPIKey  string `env:"GENERATION_API_KEY"`
	GenerationBaseURL string `env:"GENERATION_BASE_URL" envDefault:"https://api.openai.com/v1"`
	GenerationModel   string `env:"GENERATION_MODEL" envDefault:"gpt-4o-mini"`

	// Vector index
	QdrantURL    string `env:"QDRANT_URL" envDefault:"http://localhost:6333"`
	QdrantAPIKey string `env:"QDRANT_API_KEY"`
	// CourseCollection is the display name of the course collection; resolving
	// it at startup must succeed or the batch aborts.
	CourseCollection string `env:"COURSE_COLLECTION" envDefault:"courses_endpoint"`

	// Course-info metadata API
	CourseInfoBaseURL string        `env:"COURSE_INFO_BASE_URL"`
	CourseInfoTimeout time.Duration `env:"COURSE_INFO_TIMEOUT" envDefault:"5s"`

	// Metadata cache policy
	MetaCacheTTL        time.Duration `env:"META_CACHE_TTL" envDefault:"15m"`
	MetaCacheMaxEntries int           `env:"META_CACHE_MAX_ENTRIES" envDefault:"4096"`
	// MetaCacheRedisAddr switches the metadata cache to a shared Redis store
	// when set; empty keeps the in-memory store.
	MetaCacheRedisAddr     string `env:"META_CACHE_REDIS_ADDR"`
	MetaCacheRedisPassword string `env:"META_CACHE_REDIS_PASSWORD"`

	// Catalog seeding
	CourseCatalogCSV string `env:"COURSE_CATALOG_CSV" envDefault:"data/courses/course.csv"`
	CourseSeedYAML   string `env:"COURSE_SEED_YAML"`

	// HTTP server
	CORSAllowOrigins      string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	RateLimitPerMin       int           `env:"RATE_LIMIT_PER_MIN" envDefault:"30"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	HTTPReadTimeout       time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"15s"`
	HTTPWriteTimeout      time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"120s"`
	HTTPIdleTimeout       time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT" envDefault:"90s"`

	// Observability
	OTLPEndpoint    string `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	OTELServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"course-recommender"`
}

// Load parses environment variables into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("op=config.Load: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether the app is running in development mode.
func (c Config) IsDev() bool { return strings.ToLower(c.AppEnv) == "dev" }

// IsProd reports whether the app is running in production mode.
func (c Config) IsProd() bool { return strings.ToLower(c.AppEnv) == "prod" }
