package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault 测试默认配置
func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, float64(100), cfg.Server.RateLimitRPS)
	assert.Equal(t, 200, cfg.Server.RateLimitBurst)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "fiches", cfg.Database.DBName)
	assert.Equal(t, 7, cfg.Alert.StaleAfterDays)
	assert.Equal(t, 30, cfg.Alert.OverdueAfterDays)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

// TestAlertConfig_Durations 测试告警阈值换算
func TestAlertConfig_Durations(t *testing.T) {
	cfg := AlertConfig{StaleAfterDays: 7, OverdueAfterDays: 30}
	assert.Equal(t, 7*24*time.Hour, cfg.StaleAfter())
	assert.Equal(t, 30*24*time.Hour, cfg.OverdueAfter())
}

// TestLoad_FromFile 测试从配置文件加载
func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
env: production
server:
  port: 9090
alert:
  stale_after_days: 3
  overdue_after_days: 15
`)
	require.NoError(t, os.WriteFile(path, content, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.Env)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Alert.StaleAfterDays)
	assert.Equal(t, 15, cfg.Alert.OverdueAfterDays)
	// 未覆盖的字段保持默认值
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "localhost", cfg.Database.Host)
}

// TestLoad_MissingFile 测试配置文件不存在时报错
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

// TestLoad_EnvOverride 测试环境变量覆盖
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "7070")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
}
