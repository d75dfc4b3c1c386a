package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Drivers de persistencia soportados.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config agrupa la configuración necesaria para correr la aplicación.
type Config struct {
	Port        string
	Environment string

	StoreDriver string
	DatabaseURL string
	SQLitePath  string

	// Redis es opcional: sin REDIS_ADDR el cache de imágenes vive en memoria.
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RenderCacheTTL time.Duration

	LowStockThreshold int

	BarcodeWidth  int
	BarcodeHeight int
	QRWidth       int
	QRHeight      int

	SeedSampleData    bool
	CORSAllowedOrigin string
}

// loadDotEnv se puede reemplazar en tests.
var loadDotEnv = func() error {
	return godotenv.Load()
}

// Load lee variables de entorno (y un .env opcional) y valida lo mínimo indispensable.
func Load() (Config, error) {
	// El .env es opcional: si no existe seguimos con el entorno del proceso.
	_ = loadDotEnv()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}
	// Normalizamos por si alguien manda ":8080"
	port = strings.TrimPrefix(port, ":")

	driver := strings.ToLower(envOr("STORE_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverSQLite {
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: expected %q or %q", driver, DriverPostgres, DriverSQLite)
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if driver == DriverPostgres && databaseURL == "" {
		return Config{}, fmt.Errorf("missing required env var: DATABASE_URL")
	}

	cfg := Config{
		Port:              port,
		Environment:       envOr("ENVIRONMENT", "development"),
		StoreDriver:       driver,
		DatabaseURL:       databaseURL,
		SQLitePath:        envOr("SQLITE_PATH", "inventory.db"),
		RedisAddr:         strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		CORSAllowedOrigin: envOr("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	ints := []struct {
		key      string
		fallback int
		min      int
		target   *int
	}{
		{"REDIS_DB", 0, 0, &cfg.RedisDB},
		{"LOW_STOCK_THRESHOLD", 10, 0, &cfg.LowStockThreshold},
		{"BARCODE_WIDTH", 300, 1, &cfg.BarcodeWidth},
		{"BARCODE_HEIGHT", 100, 1, &cfg.BarcodeHeight},
		{"QR_WIDTH", 300, 1, &cfg.QRWidth},
		{"QR_HEIGHT", 300, 1, &cfg.QRHeight},
	}
	for _, entry := range ints {
		value, err := envInt(entry.key, entry.fallback, entry.min)
		if err != nil {
			return Config{}, err
		}
		*entry.target = value
	}

	ttlSeconds, err := envInt("RENDER_CACHE_TTL_SECONDS", 600, 0)
	if err != nil {
		return Config{}, err
	}
	cfg.RenderCacheTTL = time.Duration(ttlSeconds) * time.Second

	seed, err := envBool("SEED_SAMPLE_DATA", false)
	if err != nil {
		return Config{}, err
	}
	cfg.SeedSampleData = seed

	return cfg, nil
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

// envInt devuelve error en vez de usar el default cuando el valor es basura:
// preferimos no arrancar a arrancar con una configuración distinta a la pedida.
func envInt(key string, fallback, min int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q is not an integer", key, raw)
	}
	if value < min {
		return 0, fmt.Errorf("invalid %s: must be >= %d", key, min)
	}
	return value, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %q is not a boolean", key, raw)
	}
	return value, nil
}
