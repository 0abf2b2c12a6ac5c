package aggregate

import (
	"time"
)

// Platform 社交平台标识
type Platform string

const (
	PlatformTikTok    Platform = "tiktok"
	PlatformInstagram Platform = "instagram"
	PlatformYouTube   Platform = "youtube"
)

// Platforms 固定的平台遍历顺序，所有输出按此顺序排列
var Platforms = []Platform{PlatformTikTok, PlatformInstagram, PlatformYouTube}

// ParsePlatform 解析平台名称，大小写不敏感
func ParsePlatform(s string) (Platform, bool) {
	switch Platform(lower(s)) {
	case PlatformTikTok:
		return PlatformTikTok, true
	case PlatformInstagram:
		return PlatformInstagram, true
	case PlatformYouTube:
		return PlatformYouTube, true
	}
	return "", false
}

// Metrics 五项互动指标
type Metrics struct {
	Views    int64 `json:"views"`
	Likes    int64 `json:"likes"`
	Comments int64 `json:"comments"`
	Shares   int64 `json:"shares"`
	Saves    int64 `json:"saves"`
}

// Add 返回两组指标之和
func (m Metrics) Add(o Metrics) Metrics {
	return Metrics{
		Views:    m.Views + o.Views,
		Likes:    m.Likes + o.Likes,
		Comments: m.Comments + o.Comments,
		Shares:   m.Shares + o.Shares,
		Saves:    m.Saves + o.Saves,
	}
}

// IsZero 所有指标均为 0
func (m Metrics) IsZero() bool {
	return m == Metrics{}
}

// DeltaSince 逐项计算 m - prev，负值截断为 0
func (m Metrics) DeltaSince(prev Metrics) Metrics {
	return Metrics{
		Views:    clampSub(m.Views, prev.Views),
		Likes:    clampSub(m.Likes, prev.Likes),
		Comments: clampSub(m.Comments, prev.Comments),
		Shares:   clampSub(m.Shares, prev.Shares),
		Saves:    clampSub(m.Saves, prev.Saves),
	}
}

// divide 平均分摊，整数除法，余数丢弃
func (m Metrics) divide(n int64) Metrics {
	if n <= 0 {
		return Metrics{}
	}
	return Metrics{
		Views:    m.Views / n,
		Likes:    m.Likes / n,
		Comments: m.Comments / n,
		Shares:   m.Shares / n,
		Saves:    m.Saves / n,
	}
}

func clampSub(cur, prev int64) int64 {
	if cur <= prev {
		return 0
	}
	return cur - prev
}

// RawPost 一次帖子抓取观测
type RawPost struct {
	Platform   Platform
	ExternalID string
	Handle     Handle
	PostedAt   time.Time
	Metrics
	Text string
}

// Snapshot 某用户某平台在 CapturedAt 时刻的累计指标
type Snapshot struct {
	UserID     uint64
	Platform   Platform
	CapturedAt time.Time
	Metrics
}

// HistoricalBucket 历史归档中的一条周聚合记录，StartDate/EndDate 均为闭区间日期
type HistoricalBucket struct {
	Platform  Platform
	StartDate time.Time
	EndDate   time.Time
	Metrics
}

// SeriesPoint 时间序列中的一个桶
type SeriesPoint struct {
	Date string `json:"date"`
	Metrics
}

// DateRange 闭区间日期范围，Start/End 均截断到 UTC 零点
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange 构造日期范围，End 早于 Start 时返回 ErrInvalidRange
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	if r.Start.IsZero() || r.End.IsZero() || r.End.Before(r.Start) {
		return DateRange{}, ErrInvalidRange
	}
	return r, nil
}

// Days 范围内的天数
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Contains 判断某天是否落在范围内
func (r DateRange) Contains(t time.Time) bool {
	d := Day(t)
	return !d.Before(r.Start) && !d.After(r.End)
}

// Day 截断到 UTC 零点
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// DateKey 输出用的 YYYY-MM-DD
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Mode 记账口径
type Mode string

const (
	// ModePostDate 按发布日期汇总帖子指标
	ModePostDate Mode = "post_date"
	// ModeAccrual 按快照增量记账
	ModeAccrual Mode = "accrual"
)

// ParseMode 解析记账口径，空串默认 post_date
func ParseMode(s string) (Mode, bool) {
	switch Mode(lower(s)) {
	case "", ModePostDate:
		return ModePostDate, true
	case ModeAccrual:
		return ModeAccrual, true
	}
	return "", false
}
