package config

import (
	"strings"
	"testing"
	"time"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		wantErr     bool
		errorString string
	}{
		{
			name: "valid rest backend config",
			config: Config{
				Port:        "8081",
				DataBackend: "rest",
				APIBaseURL:  "http://localhost:5000",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr: false,
		},
		{
			name: "valid memory backend config",
			config: Config{
				Port:        "8081",
				DataBackend: "memory",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr: false,
		},
		{
			name: "invalid port - non-numeric",
			config: Config{
				Port:        "abc",
				DataBackend: "memory",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "invalid port 'abc': must be a number",
		},
		{
			name: "invalid port - out of range",
			config: Config{
				Port:        "70000",
				DataBackend: "memory",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "invalid port 70000: must be between 1 and 65535",
		},
		{
			name: "invalid data backend",
			config: Config{
				Port:        "8080",
				DataBackend: "invalid",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "invalid data backend 'invalid'",
		},
		{
			name: "rest backend missing base URL",
			config: Config{
				Port:        "8080",
				DataBackend: "rest",
				APIBaseURL:  "",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "API base URL cannot be empty when using rest backend",
		},
		{
			name: "rest backend bad URL scheme",
			config: Config{
				Port:        "8080",
				DataBackend: "rest",
				APIBaseURL:  "ftp://localhost:5000",
				APITimeout:  10 * time.Second,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "invalid API base URL scheme 'ftp': must be 'http' or 'https'",
		},
		{
			name: "timeout too small",
			config: Config{
				Port:        "8080",
				DataBackend: "memory",
				APITimeout:  100 * time.Millisecond,
				ReceiptFont: "/fonts/DejaVuSans.ttf",
			},
			wantErr:     true,
			errorString: "must be at least 1 second",
		},
		{
			name: "missing receipt font",
			config: Config{
				Port:        "8080",
				DataBackend: "memory",
				APITimeout:  10 * time.Second,
				ReceiptFont: "",
			},
			wantErr:     true,
			errorString: "receipt font path cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errorString) {
					t.Fatalf("Validate() error = %q, want it to contain %q", err.Error(), tt.errorString)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT", "DATA_BACKEND"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if cfg.APIBaseURL != "http://localhost:5000" {
		t.Fatalf("default base URL = %q", cfg.APIBaseURL)
	}
	if cfg.DataBackend != "rest" {
		t.Fatalf("default backend = %q", cfg.DataBackend)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
