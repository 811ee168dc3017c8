package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	strongSecret := strings.Repeat("s", 32)

	tests := []struct {
		name    string
		config  Config
		wantErr string
	}{
		{
			name: "development with defaults",
			config: Config{
				Port:       "8280",
				JWTSecret:  "your-secret-key-change-in-production",
				DBPassword: "password",
				Env:        "development",
			},
		},
		{
			name: "missing port",
			config: Config{
				JWTSecret: strongSecret,
				Env:       "development",
			},
			wantErr: "PORT is required",
		},
		{
			name: "missing jwt secret",
			config: Config{
				Port: "8280",
				Env:  "development",
			},
			wantErr: "JWT_SECRET is required",
		},
		{
			name: "production rejects default jwt secret",
			config: Config{
				Port:       "8280",
				JWTSecret:  "your-secret-key-change-in-production",
				DBPassword: "supersecurepassword",
				Env:        "production",
			},
			wantErr: "must be changed from the default",
		},
		{
			name: "production rejects short jwt secret",
			config: Config{
				Port:       "8280",
				JWTSecret:  "short",
				DBPassword: "supersecurepassword",
				Env:        "production",
			},
			wantErr: "at least 32 characters",
		},
		{
			name: "production rejects default db password",
			config: Config{
				Port:       "8280",
				JWTSecret:  strongSecret,
				DBPassword: "password",
				Env:        "production",
			},
			wantErr: "DB_PASSWORD",
		},
		{
			name: "valid production",
			config: Config{
				Port:       "8280",
				JWTSecret:  strongSecret,
				DBPassword: "supersecurepassword",
				DBSSLMode:  "require",
				Env:        "production",
			},
		},
		{
			name: "prod alias gets the same strictness",
			config: Config{
				Port:       "8280",
				JWTSecret:  strongSecret,
				DBPassword: "password",
				Env:        "prod",
			},
			wantErr: "DB_PASSWORD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	assert.True(t, (&Config{Env: "production"}).IsProduction())
	assert.True(t, (&Config{Env: "prod"}).IsProduction())
	assert.False(t, (&Config{Env: "development"}).IsProduction())
	assert.False(t, (&Config{Env: "test"}).IsProduction())
}
