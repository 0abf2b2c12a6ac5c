package dto

import (
	"Plume/internal/pkg/aggregate"
)

// DashboardQuery 看板查询参数，日期格式 YYYY-MM-DD，缺省时按范围类型取默认区间
type DashboardQuery struct {
	Start           string `form:"start" validate:"omitempty,datetime=2006-01-02"`
	End             string `form:"end" validate:"omitempty,datetime=2006-01-02"`
	Granularity     string `form:"granularity" validate:"omitempty,oneof=daily weekly monthly"`
	Mode            string `form:"mode" validate:"omitempty,oneof=post_date accrual"`
	MergeIdentities bool   `form:"merge_identities"`
}

// DashboardDTO 看板返回，PerEntitySeries 仅活动与分组范围返回
type DashboardDTO struct {
	Scope             string                  `json:"scope"`
	Granularity       string                  `json:"granularity"`
	Mode              string                  `json:"mode"`
	RangeStart        string                  `json:"range_start"`
	RangeEnd          string                  `json:"range_end"`
	SeriesTotal       []aggregate.SeriesPoint `json:"series_total"`
	SeriesPerPlatform []*PlatformSeriesDTO    `json:"series_per_platform"`
	Totals            aggregate.Metrics       `json:"totals"`
	PerEntitySeries   []*EntitySeriesDTO      `json:"per_entity_series,omitempty"`
	Stats             *StatsDTO               `json:"stats"`
	GeneratedAt       string                  `json:"generated_at"`
}

// PlatformSeriesDTO 单平台序列
type PlatformSeriesDTO struct {
	Platform string                  `json:"platform"`
	Series   []aggregate.SeriesPoint `json:"series"`
	Totals   aggregate.Metrics       `json:"totals"`
}

// EntitySeriesDTO 员工或活动维度的序列
type EntitySeriesDTO struct {
	ID          uint64                  `json:"id"`
	Type        string                  `json:"type"` // employee 或 campaign
	Name        string                  `json:"name"`
	Username    string                  `json:"username,omitempty"`
	DisplayName string                  `json:"display_name,omitempty"`
	Handles     map[string][]string     `json:"handles,omitempty"`
	Series      []aggregate.SeriesPoint `json:"series"`
	Totals      aggregate.Metrics       `json:"totals"`
}

// StatsDTO 数据质量统计
type StatsDTO struct {
	Posts               int `json:"posts"`
	DuplicatesDropped   int `json:"duplicates_dropped"`
	HashtagFiltered     int `json:"hashtag_filtered"`
	HistoricalBuckets   int `json:"historical_buckets"`
	OutOfOrderSnapshots int `json:"out_of_order_snapshots"`
	ClampedDeltas       int `json:"clamped_deltas"`
	AccrualFallbacks    int `json:"accrual_fallbacks"`
}
