package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// atlasHost is the cluster the site has always used when only DB credentials are given.
const atlasHost = "firstpractice.poejscf.mongodb.net"

// Config holds every setting the server reads from the environment.
type Config struct {
	Port        string `koanf:"port"`
	NodeEnv     string `koanf:"node_env"`
	LogLevel    string `koanf:"log_level"`
	CORSOrigins string `koanf:"cors_origins"`

	MongoURI      string `koanf:"mongo_uri"`
	MongoDatabase string `koanf:"mongo_database"`
	DBUser        string `koanf:"user_id_db"`
	DBPassword    string `koanf:"user_key_db"`

	TokenSecret     string `koanf:"access_token_secret"`
	StripeSecretKey string `koanf:"stripe_secret_key"`

	MinioEndpoint  string `koanf:"minio_endpoint"`
	MinioAccessKey string `koanf:"minio_access_key"`
	MinioSecretKey string `koanf:"minio_secret_key"`
	MinioBucket    string `koanf:"minio_bucket"`
	MinioUseSSL    bool   `koanf:"minio_use_ssl"`
}

func defaultConfig() Config {
	return Config{
		Port:           "5000",
		NodeEnv:        "development",
		LogLevel:       "info",
		CORSOrigins:    "http://localhost:5173,http://localhost:5174",
		MongoDatabase:  "fitnexFitness",
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "minioadmin",
		MinioSecretKey: "minioadmin",
		MinioBucket:    "fitnex-media",
	}
}

// Load reads an optional .env file, then overlays environment variables on the defaults.
// The returned bool reports whether a .env file was found.
func Load() (*Config, bool, error) {
	dotenv := godotenv.Load() == nil

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, dotenv, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.ProviderWithValue("", ".", envPair), nil); err != nil {
		return nil, dotenv, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, dotenv, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.MongoURI == "" {
		cfg.MongoURI = cfg.buildMongoURI()
	}
	return cfg, dotenv, nil
}

// envPair lowercases keys and drops empty values so they never mask a default.
func envPair(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return strings.ToLower(key), value
}

func (c *Config) buildMongoURI() string {
	if c.DBUser == "" {
		return "mongodb://localhost:27017"
	}
	return fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority", c.DBUser, c.DBPassword, atlasHost)
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.TokenSecret == "" {
		return errors.New("ACCESS_TOKEN_SECRET is required")
	}
	if c.Port == "" {
		return errors.New("PORT must not be empty")
	}
	return nil
}

// IsProduction switches cookies to Secure + SameSite=None.
func (c *Config) IsProduction() bool {
	return c.NodeEnv == "production"
}

// AllowedOrigins returns the trimmed CORS origin list.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
