package aggregate

import (
	"sort"
	"time"
)

// DefaultAccrualLookbackDays 向前寻找基线快照的最大天数
const DefaultAccrualLookbackDays = 30

// AccrualOptions 增量计算参数
type AccrualOptions struct {
	// StartCutoff 之前的日期一律记 0
	StartCutoff  time.Time
	LookbackDays int
}

func (o AccrualOptions) lookback() int {
	if o.LookbackDays <= 0 {
		return DefaultAccrualLookbackDays
	}
	return o.LookbackDays
}

// DailyValue 单日指标
type DailyValue struct {
	Date time.Time
	Metrics
}

// AccrualResult 单个用户的逐日增量
type AccrualResult struct {
	UserID uint64
	Days   []DailyValue
	// OutOfOrder 输入中 captured_at 倒序出现的快照数
	OutOfOrder int
	// Clamped 被截断为 0 的负增量天数
	Clamped int
}

// Total 范围内增量合计
func (r AccrualResult) Total() Metrics {
	var total Metrics
	for _, d := range r.Days {
		total = total.Add(d.Metrics)
	}
	return total
}

// Accrue 将同一用户同一平台的累计快照转换为 r 内每天一个的非负增量
//
// 同一天只取最后一条快照；prev 为当天之前、回看窗口内最近的一条快照，
// 有 cur 的日子结束后 prev 前移到 cur（无论当天是否计入）。
func Accrue(snaps []Snapshot, r DateRange, opts AccrualOptions) AccrualResult {
	ordered, outOfOrder := sortSnapshots(snaps)

	byDay := make(map[time.Time]Metrics, len(ordered))
	days := make([]time.Time, 0, len(ordered))
	for _, s := range ordered {
		d := Day(s.CapturedAt)
		if _, ok := byDay[d]; !ok {
			days = append(days, d)
		}
		byDay[d] = s.Metrics
	}

	res := AccrualResult{
		Days:       make([]DailyValue, 0, r.Days()),
		OutOfOrder: outOfOrder,
	}
	if len(snaps) > 0 {
		res.UserID = snaps[0].UserID
	}

	var (
		prev     Metrics
		prevDay  time.Time
		hasPrev  bool
		lookback = opts.lookback()
		cutoff   = Day(opts.StartCutoff)
	)
	for _, d := range days {
		if !d.Before(r.Start) {
			break
		}
		prev, prevDay, hasPrev = byDay[d], d, true
	}

	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		cur, hasCur := byDay[d]
		prevOK := hasPrev && daysBetween(prevDay, d) <= lookback
		counted := cutoff.IsZero() || !d.Before(cutoff)

		var delta Metrics
		if hasCur && prevOK && counted {
			delta = cur.DeltaSince(prev)
			if decreased(cur, prev) {
				res.Clamped++
			}
		}
		res.Days = append(res.Days, DailyValue{Date: d, Metrics: delta})

		if hasCur {
			prev, prevDay, hasPrev = cur, d, true
		}
	}
	return res
}

// AccrueUsers 按 user_id 分组后逐用户计算，返回顺序与首次出现顺序一致
func AccrueUsers(snaps []Snapshot, r DateRange, opts AccrualOptions) []AccrualResult {
	groups := make(map[uint64][]Snapshot)
	order := make([]uint64, 0)
	for _, s := range snaps {
		if _, ok := groups[s.UserID]; !ok {
			order = append(order, s.UserID)
		}
		groups[s.UserID] = append(groups[s.UserID], s)
	}
	out := make([]AccrualResult, 0, len(order))
	for _, uid := range order {
		res := Accrue(groups[uid], r, opts)
		res.UserID = uid
		out = append(out, res)
	}
	return out
}

func sortSnapshots(snaps []Snapshot) ([]Snapshot, int) {
	outOfOrder := 0
	for i := 1; i < len(snaps); i++ {
		if snaps[i].CapturedAt.Before(snaps[i-1].CapturedAt) {
			outOfOrder++
		}
	}
	if outOfOrder == 0 {
		return snaps, 0
	}
	cp := make([]Snapshot, len(snaps))
	copy(cp, snaps)
	sort.SliceStable(cp, func(i, j int) bool {
		return cp[i].CapturedAt.Before(cp[j].CapturedAt)
	})
	return cp, outOfOrder
}

func decreased(cur, prev Metrics) bool {
	return cur.Views < prev.Views ||
		cur.Likes < prev.Likes ||
		cur.Comments < prev.Comments ||
		cur.Shares < prev.Shares ||
		cur.Saves < prev.Saves
}
