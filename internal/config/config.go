package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	Port              string
	MongoDBURI        string
	MongoDBName       string
	JWTSecret         string
	TokenTTL          time.Duration
	RazorpayKeyID     string
	RazorpayKeySecret string
	RedisAddr         string
	CloudinaryName    string
	CloudinaryKey     string
	CloudinarySecret  string
	ClientOrigin      string
	Environment       string
	LogLevel          string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8080"),
		MongoDBURI:        os.Getenv("MONGODB_URI"),
		MongoDBName:       getEnvWithDefault("MONGODB_DB", "packhorizon"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RazorpayKeyID:     os.Getenv("RAZORPAY_KEY_ID"),
		RazorpayKeySecret: os.Getenv("RAZORPAY_KEY_SECRET"),
		RedisAddr:         getEnvWithDefault("REDIS_ADDR", "localhost:6379"),
		CloudinaryName:    os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryKey:     os.Getenv("CLOUDINARY_API_KEY"),
		CloudinarySecret:  os.Getenv("CLOUDINARY_API_SECRET"),
		ClientOrigin:      getEnvWithDefault("CLIENT_ORIGIN", "http://localhost:3000"),
		Environment:       getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
	}

	ttl, err := time.ParseDuration(getEnvWithDefault("TOKEN_TTL", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %v", err)
	}
	cfg.TokenTTL = ttl

	// Validate required fields
	if cfg.MongoDBURI == "" {
		return nil, fmt.Errorf("MONGODB_URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
		return nil, fmt.Errorf("RAZORPAY_KEY_ID and RAZORPAY_KEY_SECRET are required")
	}

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
