// Package config carga la configuración del servicio desde el entorno y el archivo .env
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/language"

	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/database"
	"github.com/AgusMolinaCode/ZEC_Tracker.git/internal/providers"
)

// Config es la configuración completa del servicio
type Config struct {
	Port           string
	PagePath       string
	AllowedOrigins []string
	HTTPTimeout    time.Duration
	Locale         string
	Timezone       string
	Provider       providers.Options
	DBDriver       string
	DBDSN          string
	AdminJWTSecret string
	LogLevel       string
}

// LoadEnvFile carga el archivo .env si existe; su ausencia no es un error
func LoadEnvFile(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		log.Debugf("No se pudo cargar el archivo .env: %v", err)
	}
}

// FromEnv lee la configuración de las variables de entorno, con valores por defecto
func FromEnv() (Config, error) {
	timeoutSeconds, err := intEnv("HTTP_TIMEOUT_SECONDS", 10)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:           stringEnv("PORT", "8080"),
		PagePath:       os.Getenv("TRACKER_PAGE"),
		AllowedOrigins: listEnv("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		HTTPTimeout:    time.Duration(timeoutSeconds) * time.Second,
		Locale:         stringEnv("TRACKER_LOCALE", "en-US"),
		Timezone:       stringEnv("TRACKER_TIMEZONE", "Local"),
		Provider: providers.Options{
			BaseURL: os.Getenv("COINGECKO_BASE_URL"),
			APIKey:  os.Getenv("COINGECKO_API_KEY"),
			Pro:     os.Getenv("COINGECKO_API_PRO") == "1",
		},
		DBDriver:       os.Getenv("DB_DRIVER"),
		DBDSN:          os.Getenv("DB_DSN"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		LogLevel:       stringEnv("LOG_LEVEL", "info"),
	}

	return cfg, cfg.Validate()
}

// Validate verifica los valores que no se pueden corregir con un default
func (c Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT requerido")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS debe ser mayor a 0")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		return fmt.Errorf("TRACKER_LOCALE inválido %q: %w", c.Locale, err)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TRACKER_TIMEZONE inválido %q: %w", c.Timezone, err)
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL inválido: %w", err)
	}

	switch c.DBDriver {
	case "":
	case database.DriverSQLite, database.DriverPostgres:
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN requerido cuando DB_DRIVER=%s", c.DBDriver)
		}
	default:
		return fmt.Errorf("DB_DRIVER no soportado: %s", c.DBDriver)
	}

	return nil
}

// Language devuelve el locale ya parseado
func (c Config) Language() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.AmericanEnglish
	}
	return tag
}

// Location devuelve la zona horaria usada para mostrar la hora de actualización
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// StoreEnabled indica si hay que guardar el historial de precios
func (c Config) StoreEnabled() bool {
	return c.DBDriver != ""
}

// SetupLogger configura logrus con el nivel indicado
func SetupLogger(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}

func stringEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s debe ser un número: %w", key, err)
	}
	return n, nil
}

func listEnv(key string, fallback []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
