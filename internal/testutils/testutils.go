package testutils

import (
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dalfonso89/currency-converter/internal/config"
	"github.com/dalfonso89/currency-converter/internal/converter"
	"github.com/dalfonso89/currency-converter/internal/logger"
)

// MockLogger creates a logger for testing that discards its output
func MockLogger() *logger.Logger {
	return logger.NewWithOutput("debug", io.Discard)
}

// MockConfig creates a mock configuration for testing
func MockConfig() *config.Config {
	return &config.Config{
		Port:     "8081",
		LogLevel: "debug",

		Conversion: config.ConversionSettings{
			Rate:       decimal.NewFromInt(16803),
			FromSymbol: "$",
			ToLabel:    "Rp",
		},
		SessionTTL: 15 * time.Minute,

		RateLimitEnabled:  true,
		RateLimitRequests: 100,
		RateLimitWindow:   60 * time.Second,
		RateLimitBurst:    10,
	}
}

// MockEngine creates an engine with the default dollar to rupiah rate
func MockEngine() *converter.Engine {
	return converter.NewEngine(MockConfig().Conversion)
}
