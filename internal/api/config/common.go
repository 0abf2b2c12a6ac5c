package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Plume/internal/pkg/aggregate"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从 ./configs 加载配置并填充到 Cfg
func LoadConfig() error {
	return LoadConfigFrom("./configs")
}

// LoadConfigFrom 从指定目录加载 config.yaml，环境变量 PLUME_* 优先
func LoadConfigFrom(dir string) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	v.SetEnvPrefix("PLUME")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
		return fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("accounting.accrual_lookback_days", aggregate.DefaultAccrualLookbackDays)
	v.SetDefault("accounting.weekly_alignment", string(aggregate.AlignCutoff))
	v.SetDefault("accounting.default_range_days", 30)
	v.SetDefault("cache.bump_spec", "@every 1m")
	v.SetDefault("log.level", "info")
}

// Engine 转换为引擎使用的记账配置
func (c AccountingConfig) Engine() (aggregate.AccountingConfig, error) {
	var (
		out aggregate.AccountingConfig
		err error
	)
	if out.RealtimeCutoff, err = parseDate("realtime_cutoff", c.RealtimeCutoff); err != nil {
		return out, err
	}
	if out.AccrualStartCutoff, err = parseDate("accrual_start_cutoff", c.AccrualStartCutoff); err != nil {
		return out, err
	}
	if out.HistoricalArchiveEnd, err = parseDate("historical_archive_end", c.HistoricalArchiveEnd); err != nil {
		return out, err
	}
	alignment, ok := aggregate.ParseAlignment(c.WeeklyAlignment)
	if !ok {
		return out, fmt.Errorf("invalid weekly_alignment %q", c.WeeklyAlignment)
	}
	out.WeeklyAlignment = alignment
	out.AccrualLookbackDays = c.AccrualLookbackDays
	out.FilterHashtagsInAccrual = c.FilterHashtagsInAccrual
	return out, nil
}

func parseDate(name, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return t, nil
}
