package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Storage: StorageConfig{
			DataDir:         "data",
			BackupDir:       "data/backups",
			LockTimeout:     10 * time.Second,
			BackupInterval:  12 * time.Hour,
			BackupRetention: 5,
		},
		JWT: JWTConfig{Secret: "an-actual-secret", ExpiresIn: 24 * time.Hour},
	}
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, validateConfig(validTestConfig()))
}

func TestValidateConfig_RejectsDefaultJWTSecret(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWT.Secret = "your-super-secret-jwt-key"
	assert.Error(t, validateConfig(cfg))

	cfg.JWT.Secret = ""
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_RejectsMissingDataDir(t *testing.T) {
	cfg := validTestConfig()
	cfg.Storage.DataDir = ""
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_RejectsBadRetention(t *testing.T) {
	cfg := validTestConfig()
	cfg.Storage.BackupRetention = 0
	assert.Error(t, validateConfig(cfg))
}

func TestValidateConfig_RejectsBadPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Port = 0
	assert.Error(t, validateConfig(cfg))

	cfg.Server.Port = 70000
	assert.Error(t, validateConfig(cfg))
}
