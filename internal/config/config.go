package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

type Config struct {
	Port     string
	MongoURI string
	MongoDB  string

	UploadDir        string
	CloudinaryURL    string
	CloudinaryFolder string
	MaxUploadBytes   int64

	CorsOrigins []string
	CacheTTL    time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	AuthRequired      bool
	AdminEmail        string
	AdminPassword     string
	AdminPasswordHash string
	JWTSecret         string
	JWTTTL            time.Duration

	LogMode string
	LogFile string

	// EnvFile indica si se cargó un archivo .env
	EnvFile bool
}

// LoadConfig lee la configuración del entorno.
// El archivo .env solo se carga si existe (desarrollo local); en producción
// se usan directamente las variables del sistema.
func LoadConfig() (*Config, error) {
	envFile := false
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, errors.Wrap(err, "load .env")
		}
		envFile = true
	}

	return &Config{
		Port:     getEnv("PORT", "8080"),
		MongoURI: getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),

		UploadDir:        getEnv("UPLOAD_DIR", "uploads"),
		CloudinaryURL:    getEnv("CLOUDINARY_URL", ""),
		CloudinaryFolder: getEnv("CLOUDINARY_FOLDER", "products"),
		MaxUploadBytes:   cast.ToInt64(getEnv("MAX_UPLOAD_MB", "10")) << 20,

		CorsOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		CacheTTL:    getDuration("CACHE_TTL", 2*time.Minute),

		KafkaBrokers: splitList(getEnv("KAFKA_BROKERS", "")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "storefront-events"),

		AuthRequired:      cast.ToBool(getEnv("AUTH_REQUIRED", "false")),
		AdminEmail:        getEnv("ADMIN_EMAIL", ""),
		AdminPassword:     getEnv("ADMIN_PASSWORD", ""),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		JWTTTL:            getDuration("JWT_TTL", 24*time.Hour),

		LogMode: getEnv("LOG_MODE", "development"),
		LogFile: getEnv("LOG_FILE", ""),

		EnvFile: envFile,
	}, nil
}

// Validate comprueba combinaciones de variables que no tienen sentido juntas.
func (c *Config) Validate() error {
	if c.AuthRequired {
		if c.AdminEmail == "" {
			return errors.New("AUTH_REQUIRED needs ADMIN_EMAIL")
		}
		if c.AdminPassword == "" && c.AdminPasswordHash == "" {
			return errors.New("AUTH_REQUIRED needs ADMIN_PASSWORD or ADMIN_PASSWORD_HASH")
		}
	}
	if c.AdminEmail != "" && c.JWTSecret == "" {
		return errors.New("ADMIN_EMAIL needs JWT_SECRET")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// splitList separa valores por coma descartando los vacíos.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
