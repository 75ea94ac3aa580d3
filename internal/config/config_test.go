package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigContent = `
[development]
host = "localhost"
port = 8080
log_level = "trace"
log_to_stdout = true
postgres_host = "localhost"
postgres_port = "5432"
postgres_db_name = "fitbot_dev"
redis_host = "localhost"
redis_port = "6379"
login_rate_limit_per_min = 15
chat_rate_limit_per_min = 30
price_id_basic = "price_basic_dev"
price_id_pro = "price_pro_dev"
price_id_elite = "price_elite_dev"
cors_allowed_origins = ["http://localhost:8080"]

[production]
host = "0.0.0.0"
port = 9000
log_level = "debug"
logs_path = "/var/log/fitbot/service.log"
postgres_db_name = "fitbot"
`

func TestLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0600))

	cfg, err := Load("development", configPath)
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "fitbot_dev", cfg.PostgresDBName)
	assert.Equal(t, 15, cfg.LoginRateLimitAllowedPerMin)
	assert.Equal(t, "price_pro_dev", cfg.PriceIDPro)
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.CorsAllowedOrigins)

	prodCfg, err := Load("prod", configPath)
	require.NoError(t, err)
	assert.Equal(t, 9000, prodCfg.Port)
	assert.Equal(t, "/var/log/fitbot/service.log", prodCfg.LogsPath)
}

func TestLoad_UnknownEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(testConfigContent), 0600))

	_, err := Load("staging", configPath)
	require.Error(t, err)
}
