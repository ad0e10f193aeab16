package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v10"
)

const Version = "1.0.0"

type Config struct {
	App         AppConfig
	DB          DatabaseConfig
	EvolutionDB EvolutionDBConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Log         LogConfig
	Storage     StorageConfig
	Providers   ProvidersConfig
	RateLimit   RateLimitConfig
	Webhook     WebhookConfig
}

type StorageConfig struct {
	Driver  string `env:"DB_DRIVER" envDefault:"postgres"`
	DataDir string `env:"DATA_DIR" envDefault:"/app/data"`
}

type AppConfig struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:8080"`
}

type DatabaseConfig struct {
	URL      string `env:"DATABASE_URL"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
}

// DSN retorna a string de conexão em formato aceito pelo pgxpool.
func (cfg DatabaseConfig) DSN() string {
	if cfg.URL != "" {
		return cfg.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode,
	)
}

// EvolutionDBConfig aponta para o banco próprio do Evolution API, consultado
// apenas em leitura para reconciliar o status de conexão das instâncias.
// Vazio desabilita a verificação.
type EvolutionDBConfig struct {
	URL string `env:"EVOLUTION_DATABASE_URL"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD" envDefault:""`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Enabled  bool   `env:"REDIS_ENABLED" envDefault:"false"`
}

// ProvidersConfig agrupa credenciais e URLs base dos três backends.
type ProvidersConfig struct {
	EvolutionURL   string `env:"EVOLUTION_URL"`
	EvolutionToken string `env:"EVOLUTION_TOKEN"`
	WuzapiURL      string `env:"WUZAPI_URL"`
	WuzapiAdmin    string `env:"WUZAPI_ADMIN_TOKEN"`
	CloudVersion   string `env:"CLOUD_API_VERSION" envDefault:"v20.0"`
	TimeoutSeconds int    `env:"PROVIDER_TIMEOUT_SECONDS" envDefault:"30"`
}

type RateLimitConfig struct {
	Enabled       bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Requests      int    `env:"RATE_LIMIT_REQUESTS" envDefault:"300"`
	WindowSeconds int    `env:"RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
	Prefix        string `env:"RATE_LIMIT_PREFIX" envDefault:"ratelimit:api"`
}

type JWTConfig struct {
	Secret     string `env:"JWT_SECRET,required"`
	AdminToken string `env:"ADMIN_API_TOKEN"`
}

type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"debug"`
}

type WebhookConfig struct {
	Workers       int    `env:"WEBHOOK_WORKERS" envDefault:"4"`
	Secret        string `env:"WEBHOOK_HMAC_SECRET"`
	TokenEncKey   string `env:"ACCESS_TOKEN_ENC_KEY" envDefault:"zaphub-token-key-change-in-production"`
	MaxRetries    int    `env:"WEBHOOK_MAX_RETRIES" envDefault:"3"`
	QueueCapacity int    `env:"WEBHOOK_QUEUE_CAPACITY" envDefault:"10000"`
}

// Load carrega as configurações da aplicação.
func Load() Config {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatalf("config: não foi possível carregar variáveis: %v", err)
	}
	return cfg
}
