package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Env struct {
	AppAddr string
	GinMode string

	DBUser string
	DBPass string
	DBHost string
	DBName string

	JWTSecret string

	PaystackSecretKey string
	PaystackPublicKey string
	PaystackBaseURL   string

	Currency string

	// SettlementBaseURL is where the checkout flow posts settlement
	// records. Defaults to this server's own address.
	SettlementBaseURL string

	CORSOrigins []string
}

// LoadEnv reads .env when present, then environment variables, applying
// local-development defaults for anything unset.
func LoadEnv() Env {
	_ = godotenv.Load()

	env := Env{
		AppAddr:           getEnv("APP_ADDR", ":8080"),
		GinMode:           getEnv("GIN_MODE", ""),
		DBUser:            getEnv("DB_USER", "root"),
		DBPass:            getEnv("DB_PASS", ""),
		DBHost:            getEnv("DB_HOST", "127.0.0.1:3306"),
		DBName:            getEnv("DB_NAME", "rental_portal"),
		JWTSecret:         getEnv("JWT_SECRET", "super-secret-key-change-me"),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackPublicKey: getEnv("PAYSTACK_PUBLIC_KEY", ""),
		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
		Currency:          getEnv("PAYMENT_CURRENCY", "KES"),
	}

	env.SettlementBaseURL = getEnv("SETTLEMENT_BASE_URL", "http://localhost"+normalizeAddr(env.AppAddr))

	if raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); raw != "" {
		for _, o := range strings.Split(raw, ",") {
			if o = strings.TrimSpace(o); o != "" {
				env.CORSOrigins = append(env.CORSOrigins, o)
			}
		}
	}
	if len(env.CORSOrigins) == 0 {
		env.CORSOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
			"http://127.0.0.1:5173",
		}
	}

	return env
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func normalizeAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return addr
	}
	if i := strings.LastIndex(addr, ":"); i >= 0 {
		return addr[i:]
	}
	return ":8080"
}
