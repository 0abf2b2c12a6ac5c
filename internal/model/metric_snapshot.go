package model

import (
	"time"

	"Plume/internal/pkg/aggregate"
)

// MetricSnapshot 某员工某平台在采集时刻的累计指标
type MetricSnapshot struct {
	ID         uint64    `gorm:"primaryKey"`
	UserID     uint64    `gorm:"not null;index:idx_snap_user_platform_time,priority:1"`
	Platform   string    `gorm:"type:varchar(20);not null;index:idx_snap_user_platform_time,priority:2"`
	CapturedAt time.Time `gorm:"not null;index:idx_snap_user_platform_time,priority:3"`
	Views      int64     `gorm:"not null;default:0"`
	Likes      int64     `gorm:"not null;default:0"`
	Comments   int64     `gorm:"not null;default:0"`
	Shares     int64     `gorm:"not null;default:0"`
	Saves      int64     `gorm:"not null;default:0"`
}

func (MetricSnapshot) TableName() string {
	return "metric_snapshots"
}

func (s *MetricSnapshot) ToSnapshot() aggregate.Snapshot {
	p, _ := aggregate.ParsePlatform(s.Platform)
	return aggregate.Snapshot{
		UserID:     s.UserID,
		Platform:   p,
		CapturedAt: s.CapturedAt,
		Metrics: aggregate.Metrics{
			Views:    s.Views,
			Likes:    s.Likes,
			Comments: s.Comments,
			Shares:   s.Shares,
			Saves:    s.Saves,
		},
	}
}
