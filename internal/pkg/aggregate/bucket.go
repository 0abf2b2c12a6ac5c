package aggregate

import (
	"time"
)

// Granularity 时间分桶粒度
type Granularity string

const (
	Daily   Granularity = "daily"
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// ParseGranularity 解析粒度，空串默认 daily
func ParseGranularity(s string) (Granularity, bool) {
	switch Granularity(lower(s)) {
	case "", Daily:
		return Daily, true
	case Weekly:
		return Weekly, true
	case Monthly:
		return Monthly, true
	}
	return "", false
}

// Alignment 周桶对齐方式
type Alignment string

const (
	// AlignCalendar 周一对齐
	AlignCalendar Alignment = "calendar"
	// AlignCutoff 截止日及之后从截止日起每 7 天一桶，之前仍按周一对齐
	AlignCutoff Alignment = "cutoff"
)

// ParseAlignment 解析对齐方式，空串默认 cutoff
func ParseAlignment(s string) (Alignment, bool) {
	switch Alignment(lower(s)) {
	case "", AlignCutoff:
		return AlignCutoff, true
	case AlignCalendar:
		return AlignCalendar, true
	}
	return "", false
}

// Bucketer 将日期映射到桶起始日
type Bucketer struct {
	Granularity Granularity
	Alignment   Alignment
	Cutoff      time.Time
}

// Start 返回日期所在桶的起始日 (UTC)
func (b Bucketer) Start(t time.Time) time.Time {
	d := Day(t)
	switch b.Granularity {
	case Monthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC)
	case Weekly:
		cutoff := Day(b.Cutoff)
		if b.Alignment == AlignCutoff && !cutoff.IsZero() && !d.Before(cutoff) {
			days := daysBetween(cutoff, d)
			return cutoff.AddDate(0, 0, 7*(days/7))
		}
		return mondayOf(d)
	default:
		return d
	}
}

// Key 返回桶键 YYYY-MM-DD
func (b Bucketer) Key(t time.Time) string {
	return DateKey(b.Start(t))
}

// Keys 按顺序列出范围内的全部桶键，首个桶键可能早于 r.Start
func (b Bucketer) Keys(r DateRange) []string {
	keys := make([]string, 0, r.Days())
	last := ""
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		k := b.Key(d)
		if k != last {
			keys = append(keys, k)
			last = k
		}
	}
	return keys
}

// Validate 校验粒度与对齐方式
func (b Bucketer) Validate() error {
	switch b.Granularity {
	case Daily, Weekly, Monthly:
	default:
		return ErrInvalidRange
	}
	switch b.Alignment {
	case AlignCalendar, AlignCutoff:
	default:
		return ErrInvalidRange
	}
	return nil
}

func mondayOf(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

func daysBetween(from, to time.Time) int {
	return int(Day(to).Sub(Day(from)).Hours() / 24)
}
