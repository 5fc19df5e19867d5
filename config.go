package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int            `json:"port"`
	Env       string         `json:"env"`
	ClientURL string         `json:"client_url"`
	Pepper    string         `json:"pepper"`
	HMACKey   string         `json:"hmac_key"`
	LogLevel  string         `json:"log_level"`
	Database  PostgresConfig `json:"database"`
	Storage   StorageConfig  `json:"storage"`
}

func (c Config) IsProd() bool {
	return c.Env == "prod"
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (pc PostgresConfig) ConnectionInfo() string {
	if pc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", pc.Host, pc.Port, pc.User, pc.Password, pc.Name)
}

// StorageConfig selects and configures the image storage backend.
// Backend is either "local" or "s3".
type StorageConfig struct {
	Backend  string `json:"backend"`
	LocalDir string `json:"local_dir"`
	S3Region string `json:"s3_region"`
	S3Bucket string `json:"s3_bucket"`
}

func DefaultConfig() Config {
	return Config{
		Port:      1111,
		Env:       "dev",
		ClientURL: "http://localhost:3000",
		Pepper:    "secret-random-string",
		HMACKey:   "secret-hmac-key",
		LogLevel:  "info",
		Database:  DefaultPostgresConfig(),
		Storage: StorageConfig{
			Backend:  "local",
			LocalDir: "uploads",
		},
	}
}

func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "airq_community",
	}
}

// LoadConfig loads configuration from a .config.json file if present,
// otherwise it uses the default dev setup. In production the file is
// required and the app panics if none is found. A .env file and plain
// environment variables override file values, so secrets never have to
// live in the config file.
func LoadConfig(prod bool) Config {
	c := DefaultConfig()
	f, err := os.Open(".config.json")
	if err != nil {
		if prod {
			panic("a .config.json file is required in production")
		}
	} else {
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&c); err != nil {
			panic(err)
		}
		fmt.Println("Successfully loaded .config.json")
	}
	godotenv.Load()
	applyEnvOverrides(&c)
	return c
}

func applyEnvOverrides(c *Config) {
	c.Database.Host = getEnv("DB_HOST", c.Database.Host)
	c.Database.Port = getEnvAsInt("DB_PORT", c.Database.Port)
	c.Database.User = getEnv("DB_USER", c.Database.User)
	c.Database.Password = getEnv("DB_PASSWORD", c.Database.Password)
	c.Database.Name = getEnv("DB_NAME", c.Database.Name)
	c.Pepper = getEnv("PEPPER", c.Pepper)
	c.HMACKey = getEnv("HMAC_KEY", c.HMACKey)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.ClientURL = getEnv("CLIENT_URL", c.ClientURL)
	c.Storage.Backend = getEnv("STORAGE_BACKEND", c.Storage.Backend)
	c.Storage.LocalDir = getEnv("STORAGE_LOCAL_DIR", c.Storage.LocalDir)
	c.Storage.S3Region = getEnv("S3_REGION", c.Storage.S3Region)
	c.Storage.S3Bucket = getEnv("S3_BUCKET", c.Storage.S3Bucket)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultVal
}
