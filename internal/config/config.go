package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// DefaultRate is the number of rupiah paid for one dollar
const DefaultRate = "16803"

// ConversionSettings describes the fixed-rate conversion shown on the form
type ConversionSettings struct {
	Rate       decimal.Decimal
	FromSymbol string
	ToLabel    string
}

// Config holds all configuration for the application
type Config struct {
	Port     string
	LogLevel string

	Conversion ConversionSettings

	// Form sessions
	SessionTTL time.Duration

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitBurst    int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	conversion, err := loadConversionSettings()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:     getEnv("PORT", "8081"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Conversion: conversion,
		SessionTTL: time.Duration(atoiOr(getEnv("SESSION_TTL_SECONDS", "900"), 900)) * time.Second,

		RateLimitEnabled:  getEnv("RATE_LIMIT_ENABLED", "true") == "true",
		RateLimitRequests: atoiOr(getEnv("RATE_LIMIT_REQUESTS", "100"), 100),
		RateLimitWindow:   time.Duration(atoiOr(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"), 60)) * time.Second,
		RateLimitBurst:    atoiOr(getEnv("RATE_LIMIT_BURST", "10"), 10),
	}, nil
}

// loadConversionSettings reads the fixed rate and the currency labels
func loadConversionSettings() (ConversionSettings, error) {
	rate, err := ParseRate(getEnv("CONVERSION_RATE", DefaultRate))
	if err != nil {
		return ConversionSettings{}, err
	}

	return ConversionSettings{
		Rate:       rate,
		FromSymbol: getEnv("CONVERSION_FROM_SYMBOL", "$"),
		ToLabel:    getEnv("CONVERSION_TO_LABEL", "Rp"),
	}, nil
}

// ParseRate parses a conversion rate, which must be strictly positive
func ParseRate(value string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid conversion rate %q: %w", value, err)
	}
	if !rate.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("conversion rate must be positive, got %s", rate)
	}
	return rate, nil
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func atoiOr(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return i
}
