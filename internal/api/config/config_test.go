package config

import (
	"os"
	"path/filepath"
	"testing"

	"Plume/internal/pkg/aggregate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	return dir
}

func TestLoadConfigFrom(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: 9090
database:
  dsn: "root:pw@tcp(127.0.0.1:3306)/plume?parseTime=true"
  max_idle: 5
accounting:
  realtime_cutoff: "2024-01-10"
  accrual_start_cutoff: "2024-01-01"
  historical_archive_end: "2024-01-09"
  weekly_alignment: calendar
kafka_ingest_consumer:
  topic: canal_ingest
  group_id: plume_ingest
`)
	require.NoError(t, LoadConfigFrom(dir))

	assert.Equal(t, 9090, Cfg.Server.Port)
	assert.Equal(t, 5, Cfg.DB.MaxIdle)
	assert.Equal(t, "canal_ingest", Cfg.KafkaIngestConsumer.Topic)
	// 未配置的项取默认值
	assert.Equal(t, aggregate.DefaultAccrualLookbackDays, Cfg.Accounting.AccrualLookbackDays)
	assert.Equal(t, 30, Cfg.Accounting.DefaultRangeDays)
	assert.Equal(t, "@every 1m", Cfg.Cache.BumpSpec)

	acc, err := Cfg.Accounting.Engine()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", aggregate.DateKey(acc.RealtimeCutoff))
	assert.Equal(t, "2024-01-09", aggregate.DateKey(acc.HistoricalArchiveEnd))
	assert.Equal(t, aggregate.AlignCalendar, acc.WeeklyAlignment)
}

func TestLoadConfigFrom_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "server:\n  port: 9090\n")
	t.Setenv("PLUME_SERVER_PORT", "9191")
	require.NoError(t, LoadConfigFrom(dir))
	assert.Equal(t, 9191, Cfg.Server.Port)
}

func TestLoadConfigFrom_Missing(t *testing.T) {
	err := LoadConfigFrom(t.TempDir())
	assert.Error(t, err)
}

func TestAccountingConfig_Engine(t *testing.T) {
	acc, err := AccountingConfig{}.Engine()
	require.NoError(t, err)
	assert.True(t, acc.RealtimeCutoff.IsZero())
	assert.Equal(t, aggregate.AlignCutoff, acc.WeeklyAlignment)

	_, err = AccountingConfig{RealtimeCutoff: "2024/01/10"}.Engine()
	assert.Error(t, err)

	_, err = AccountingConfig{WeeklyAlignment: "sunday"}.Engine()
	assert.Error(t, err)
}
