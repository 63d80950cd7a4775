package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv         string
	ServerPort     string
	DBDriver       string
	DatabaseDSN    string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	JWTSecret      string
	SessionSecret  string
	AuthRequired   bool
	ResetDB        bool
	SwaggerHost    string
	Locale         string
	CurrencySymbol string
}

// Development reports whether the service runs with development logging and cookies.
func (c *Config) Development() bool {
	return strings.EqualFold(c.AppEnv, "development")
}

// Load builds Config from an optional .env file and the environment, with sensible defaults.
func Load(envFiles ...string) *Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "database")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "crm_db")
	v.SetDefault("DB_USER", "crm_user")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("SESSION_SECRET", "change-me-too")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("RESET_DB", false)
	v.SetDefault("LOCALE", "ru")
	v.SetDefault("CURRENCY_SYMBOL", "₽")

	return &Config{
		AppEnv:         v.GetString("APP_ENV"),
		ServerPort:     v.GetString("SERVER_PORT"),
		DBDriver:       strings.ToLower(strings.TrimSpace(v.GetString("DB_DRIVER"))),
		DatabaseDSN:    databaseDSN(v),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisDB:        v.GetInt("REDIS_DB"),
		RedisPass:      v.GetString("REDIS_PASSWORD"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionSecret:  v.GetString("SESSION_SECRET"),
		AuthRequired:   v.GetBool("AUTH_REQUIRED"),
		ResetDB:        v.GetBool("RESET_DB"),
		SwaggerHost:    v.GetString("SWAGGER_HOST"),
		Locale:         v.GetString("LOCALE"),
		CurrencySymbol: v.GetString("CURRENCY_SYMBOL"),
	}
}

// databaseDSN prefers an explicit DATABASE_DSN / MYSQL_DSN and otherwise composes a MySQL DSN
// from the DB_* variables.
func databaseDSN(v *viper.Viper) string {
	if dsn := strings.TrimSpace(v.GetString("DATABASE_DSN")); dsn != "" {
		return dsn
	}
	if dsn := strings.TrimSpace(v.GetString("MYSQL_DSN")); dsn != "" {
		return dsn
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		v.GetString("DB_USER"),
		v.GetString("DB_PASSWORD"),
		v.GetString("DB_HOST"),
		v.GetString("DB_PORT"),
		v.GetString("DB_NAME"),
	)
}
