package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "https://api.openai.com/v1", cfg.OpenAI.BaseURL)
	assert.Equal(t, "whisper-1", cfg.OpenAI.WhisperModel)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.CompletionModel)
	assert.Equal(t, 30, cfg.OpenAI.TranscribeTimeout)
	assert.Equal(t, "file", cfg.Store.Backend)
	assert.Equal(t, "user_profile.json", cfg.Store.FilePath)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(cfg *Config) {},
		},
		{
			name:    "unknown backend rejected",
			mutate:  func(cfg *Config) { cfg.Store.Backend = "dynamodb" },
			wantErr: "unknown store backend",
		},
		{
			name:    "postgres backend needs connection settings",
			mutate:  func(cfg *Config) { cfg.Store.Backend = "postgres" },
			wantErr: "postgres store backend requires",
		},
		{
			name: "notifications need a region",
			mutate: func(cfg *Config) {
				cfg.Notifications.Enabled = true
				cfg.Notifications.AWS.Region = ""
			},
			wantErr: "aws region",
		},
		{
			name: "ses needs a sender",
			mutate: func(cfg *Config) {
				cfg.Notifications.AWS.SES.Enabled = true
			},
			wantErr: "from_email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			applyDefaults(cfg)
			tt.mutate(cfg)

			err := validateConfig(cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
