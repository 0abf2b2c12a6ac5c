package aggregate

import (
	"time"
)

// AccountingConfig 每次计算显式传入的记账配置，引擎内部不读取任何全局状态
type AccountingConfig struct {
	// RealtimeCutoff 历史归档与实时计算的分界日，当天起走实时计算
	RealtimeCutoff time.Time
	// AccrualStartCutoff 之前的日期增量一律为 0
	AccrualStartCutoff time.Time
	// HistoricalArchiveEnd 归档覆盖的最后一天（含）
	HistoricalArchiveEnd time.Time
	AccrualLookbackDays  int
	WeeklyAlignment      Alignment
	// FilterHashtagsInAccrual 增量口径下，兜底检测用的帖子活跃度同样按话题过滤
	FilterHashtagsInAccrual bool
}

// AccrualOptions 派生增量计算参数
func (c AccountingConfig) AccrualOptions() AccrualOptions {
	return AccrualOptions{
		StartCutoff:  c.AccrualStartCutoff,
		LookbackDays: c.AccrualLookbackDays,
	}
}

// archiveEnabled 归档与截止日均已配置
func (c AccountingConfig) archiveEnabled() bool {
	return !c.RealtimeCutoff.IsZero() && !c.HistoricalArchiveEnd.IsZero()
}

// archiveCovers 某天由历史归档提供
func (c AccountingConfig) archiveCovers(d time.Time) bool {
	if !c.archiveEnabled() {
		return false
	}
	d = Day(d)
	return d.Before(Day(c.RealtimeCutoff)) && !d.After(Day(c.HistoricalArchiveEnd))
}

// Split 将请求范围拆成历史部分与实时部分，ok=false 表示该部分为空
func (c AccountingConfig) Split(r DateRange, useArchive bool) (hist DateRange, histOK bool, live DateRange, liveOK bool) {
	if !useArchive || !c.archiveEnabled() {
		return DateRange{}, false, r, true
	}
	// 归档覆盖 [r.Start, lastArchived]，其余交给实时计算
	lastArchived := Day(c.HistoricalArchiveEnd)
	if cutoffEve := Day(c.RealtimeCutoff).AddDate(0, 0, -1); cutoffEve.Before(lastArchived) {
		lastArchived = cutoffEve
	}
	if lastArchived.Before(r.Start) {
		return DateRange{}, false, r, true
	}
	histEnd := lastArchived
	if r.End.Before(histEnd) {
		histEnd = r.End
	}
	hist, histOK = DateRange{Start: r.Start, End: histEnd}, true
	liveStart := histEnd.AddDate(0, 0, 1)
	if liveStart.After(r.End) {
		return hist, histOK, DateRange{}, false
	}
	return hist, histOK, DateRange{Start: liveStart, End: r.End}, true
}

// HistoricalPartial 将周归档转换为目标粒度的部分序列
//
// 归档行完整落在历史区间内且只对应一个周桶时直接整行计入；
// 其余情况把每周数值按天平均分摊（整数除法），逐天裁剪后再重新分桶。
func HistoricalPartial(buckets []HistoricalBucket, hist DateRange, b Bucketer, cfg AccountingConfig) Partial {
	out := make(Partial)
	for _, bk := range buckets {
		start, end := Day(bk.StartDate), Day(bk.EndDate)
		if end.Before(start) || end.Before(hist.Start) || start.After(hist.End) {
			continue
		}
		if b.Granularity == Weekly && wholeRow(start, end, hist, b, cfg) {
			k := b.Key(start)
			out[k] = out[k].Add(bk.Metrics)
			continue
		}
		n := int64(daysBetween(start, end) + 1)
		perDay := bk.Metrics.divide(n)
		if perDay.IsZero() {
			continue
		}
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			if !hist.Contains(d) || !cfg.archiveCovers(d) {
				continue
			}
			k := b.Key(d)
			out[k] = out[k].Add(perDay)
		}
	}
	return out
}

// wholeRow 归档天数是连续区间，只需检查首尾两天
func wholeRow(start, end time.Time, hist DateRange, b Bucketer, cfg AccountingConfig) bool {
	return hist.Contains(start) && hist.Contains(end) &&
		cfg.archiveCovers(start) && cfg.archiveCovers(end) &&
		b.Key(start) == b.Key(end)
}
