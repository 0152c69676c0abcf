package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

var configKeys = []string{
	"PORT",
	"LOG_LEVEL",
	"CONVERSION_RATE",
	"CONVERSION_FROM_SYMBOL",
	"CONVERSION_TO_LABEL",
	"SESSION_TTL_SECONDS",
	"RATE_LIMIT_ENABLED",
	"RATE_LIMIT_REQUESTS",
	"RATE_LIMIT_WINDOW_SECONDS",
	"RATE_LIMIT_BURST",
}

// clearConfigEnv blanks every key Load reads so defaults apply
func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config) bool
	}{
		{
			name:    "default configuration",
			envVars: map[string]string{},
			expected: func(cfg *Config) bool {
				return cfg.Port == "8081" &&
					cfg.LogLevel == "info" &&
					cfg.Conversion.Rate.Equal(decimal.NewFromInt(16803)) &&
					cfg.Conversion.FromSymbol == "$" &&
					cfg.Conversion.ToLabel == "Rp" &&
					cfg.SessionTTL == 900*time.Second &&
					cfg.RateLimitEnabled == true &&
					cfg.RateLimitRequests == 100 &&
					cfg.RateLimitWindow == 60*time.Second &&
					cfg.RateLimitBurst == 10
			},
		},
		{
			name: "custom configuration",
			envVars: map[string]string{
				"PORT":                      "9090",
				"LOG_LEVEL":                 "debug",
				"CONVERSION_RATE":           "15500.25",
				"CONVERSION_FROM_SYMBOL":    "US$",
				"CONVERSION_TO_LABEL":       "IDR",
				"SESSION_TTL_SECONDS":       "30",
				"RATE_LIMIT_ENABLED":        "false",
				"RATE_LIMIT_REQUESTS":       "200",
				"RATE_LIMIT_WINDOW_SECONDS": "120",
				"RATE_LIMIT_BURST":          "20",
			},
			expected: func(cfg *Config) bool {
				return cfg.Port == "9090" &&
					cfg.LogLevel == "debug" &&
					cfg.Conversion.Rate.Equal(decimal.RequireFromString("15500.25")) &&
					cfg.Conversion.FromSymbol == "US$" &&
					cfg.Conversion.ToLabel == "IDR" &&
					cfg.SessionTTL == 30*time.Second &&
					cfg.RateLimitEnabled == false &&
					cfg.RateLimitRequests == 200 &&
					cfg.RateLimitWindow == 120*time.Second &&
					cfg.RateLimitBurst == 20
			},
		},
		{
			name: "malformed integers fall back to defaults",
			envVars: map[string]string{
				"SESSION_TTL_SECONDS": "soon",
				"RATE_LIMIT_BURST":    "lots",
			},
			expected: func(cfg *Config) bool {
				return cfg.SessionTTL == 900*time.Second &&
					cfg.RateLimitBurst == 10
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if !tt.expected(cfg) {
				t.Errorf("Load() configuration does not match expected values: %+v", cfg)
			}
		})
	}
}

func TestLoad_InvalidRate(t *testing.T) {
	for _, value := range []string{"abc", "0", "-1", "1.2.3"} {
		t.Run(value, func(t *testing.T) {
			clearConfigEnv(t)
			t.Setenv("CONVERSION_RATE", value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() with CONVERSION_RATE=%q expected error", value)
			}
		})
	}
}

func TestParseRate(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "16803", want: "16803"},
		{input: "0.5", want: "0.5"},
		{input: "", wantErr: true},
		{input: "0", wantErr: true},
		{input: "-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			rate, err := ParseRate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && rate.String() != tt.want {
				t.Errorf("ParseRate(%q) = %s, want %s", tt.input, rate, tt.want)
			}
		})
	}
}
