package aggregate

import (
	"context"
	log "log/slog"
	"sort"

	"golang.org/x/sync/errgroup"
)

// PostSource 帖子存储
type PostSource interface {
	QueryPosts(ctx context.Context, p Platform, handles []Handle, r DateRange) ([]RawPost, error)
}

// SnapshotSource 快照存储，结果按 (user_id, captured_at) 升序
type SnapshotSource interface {
	QuerySnapshots(ctx context.Context, userIDs []uint64, p Platform, r DateRange) ([]Snapshot, error)
}

// HistoricalSource 历史周归档
type HistoricalSource interface {
	QueryHistorical(ctx context.Context, p Platform, r DateRange) ([]HistoricalBucket, error)
}

// Target 计算对象
type Target struct {
	// Handles post_date 口径使用的账号集合
	Handles HandleSet
	// UserIDs accrual 口径使用的员工
	UserIDs []uint64
	// UserHandles 增量兜底检测时按用户查询帖子活跃度
	UserHandles      map[uint64]HandleSet
	RequiredHashtags []string
	// UseArchive 历史归档为平台级全量数据，仅全局视图使用
	UseArchive bool
}

// Query 计算参数
type Query struct {
	Range       DateRange
	Granularity Granularity
	Mode        Mode
	Config      AccountingConfig
}

// Bucketer 由查询参数构造分桶器
func (q Query) Bucketer() Bucketer {
	alignment := q.Config.WeeklyAlignment
	if alignment == "" {
		alignment = AlignCutoff
	}
	return Bucketer{
		Granularity: q.Granularity,
		Alignment:   alignment,
		Cutoff:      q.Config.RealtimeCutoff,
	}
}

// Validate 在任何查询之前校验
func (q Query) Validate() error {
	if q.Range.Start.IsZero() || q.Range.End.IsZero() || q.Range.End.Before(q.Range.Start) {
		return ErrInvalidRange
	}
	if _, ok := ParseMode(string(q.Mode)); !ok {
		return ErrInvalidRange
	}
	return q.Bucketer().Validate()
}

// Stats 数据质量统计
type Stats struct {
	Posts               int
	DuplicatesDropped   int
	HashtagFiltered     int
	HistoricalBuckets   int
	OutOfOrderSnapshots int
	ClampedDeltas       int
	AccrualFallbacks    int
}

func (s Stats) add(o Stats) Stats {
	return Stats{
		Posts:               s.Posts + o.Posts,
		DuplicatesDropped:   s.DuplicatesDropped + o.DuplicatesDropped,
		HashtagFiltered:     s.HashtagFiltered + o.HashtagFiltered,
		HistoricalBuckets:   s.HistoricalBuckets + o.HistoricalBuckets,
		OutOfOrderSnapshots: s.OutOfOrderSnapshots + o.OutOfOrderSnapshots,
		ClampedDeltas:       s.ClampedDeltas + o.ClampedDeltas,
		AccrualFallbacks:    s.AccrualFallbacks + o.AccrualFallbacks,
	}
}

// PlatformReport 单平台序列
type PlatformReport struct {
	Platform Platform
	Series   []SeriesPoint
	Totals   Metrics
}

// Report 计算结果，Series 与每个平台的序列长度都等于 len(Keys)
type Report struct {
	Keys      []string
	Series    []SeriesPoint
	Totals    Metrics
	Platforms []PlatformReport
	Stats     Stats
}

// Platform 取单平台结果
func (r *Report) Platform(p Platform) PlatformReport {
	for _, pr := range r.Platforms {
		if pr.Platform == p {
			return pr
		}
	}
	return PlatformReport{Platform: p}
}

// Engine 指标对账引擎，无状态，可并发使用
type Engine struct {
	posts      PostSource
	snapshots  SnapshotSource
	historical HistoricalSource
}

// NewEngine historical 可为 nil，此时不拼接归档
func NewEngine(posts PostSource, snapshots SnapshotSource, historical HistoricalSource) *Engine {
	return &Engine{
		posts:      posts,
		snapshots:  snapshots,
		historical: historical,
	}
}

type platformResult struct {
	partial Partial
	stats   Stats
}

// Compute 计算目标在查询范围内的逐桶序列与汇总
//
// 各平台并发查询，任一数据源失败则整体失败，不返回部分结果。
func (e *Engine) Compute(ctx context.Context, t Target, q Query) (*Report, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if q.Mode == "" {
		q.Mode = ModePostDate
	}
	b := q.Bucketer()
	keys := b.Keys(q.Range)

	results := make([]platformResult, len(Platforms))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range Platforms {
		g.Go(func() error {
			part, stats, err := e.computePlatform(gctx, p, t, q, b)
			if err != nil {
				return err
			}
			results[i] = platformResult{partial: part, stats: stats}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Keys:      keys,
		Platforms: make([]PlatformReport, 0, len(Platforms)),
	}
	perPlatform := make(map[Platform][]SeriesPoint, len(Platforms))
	for i, p := range Platforms {
		series := Fill(results[i].partial, keys)
		perPlatform[p] = series
		report.Platforms = append(report.Platforms, PlatformReport{
			Platform: p,
			Series:   series,
			Totals:   Totals(series),
		})
		report.Stats = report.Stats.add(results[i].stats)
	}
	report.Series = CombinePlatforms(perPlatform, keys)
	report.Totals = Totals(report.Series)

	if report.Stats.OutOfOrderSnapshots > 0 {
		log.WarnContext(ctx, "snapshots out of order, deltas clamped",
			"error", ErrInconsistentSnapshotOrder,
			"out_of_order", report.Stats.OutOfOrderSnapshots,
			"clamped", report.Stats.ClampedDeltas)
	}
	return report, nil
}

func (e *Engine) computePlatform(ctx context.Context, p Platform, t Target, q Query, b Bucketer) (Partial, Stats, error) {
	var stats Stats
	hist, histOK, live, liveOK := q.Config.Split(q.Range, t.UseArchive)
	parts := make([]Partial, 0, 2)

	if histOK && e.historical != nil {
		buckets, err := e.historical.QueryHistorical(ctx, p, hist)
		if err != nil {
			return nil, stats, adapterErr("historical", p, err)
		}
		stats.HistoricalBuckets = len(buckets)
		parts = append(parts, HistoricalPartial(buckets, hist, b, q.Config))
	}

	if liveOK {
		var (
			days []DailyValue
			err  error
		)
		switch q.Mode {
		case ModeAccrual:
			days, err = e.accrualDays(ctx, p, t, live, q.Config, &stats)
		default:
			days, err = e.postDateDays(ctx, p, t.Handles[p], t.RequiredHashtags, live, &stats)
		}
		if err != nil {
			return nil, stats, err
		}
		parts = append(parts, Rebucket(days, b))
	}
	return MergePartials(parts...), stats, nil
}

// postDateDays 去重、话题过滤后按发布日汇总
func (e *Engine) postDateDays(ctx context.Context, p Platform, handles []Handle, hashtags []string, r DateRange, stats *Stats) ([]DailyValue, error) {
	posts, err := e.cleanPosts(ctx, p, handles, hashtags, r, stats)
	if err != nil {
		return nil, err
	}
	return dailyPostTotals(posts), nil
}

func (e *Engine) cleanPosts(ctx context.Context, p Platform, handles []Handle, hashtags []string, r DateRange, stats *Stats) ([]RawPost, error) {
	if len(handles) == 0 || e.posts == nil {
		return nil, nil
	}
	query := r
	if p == PlatformYouTube {
		// 重抓取的副本可能落在区间内，而原视频发布于区间之前
		query.Start = r.Start.AddDate(0, 0, -RepostLookbackDays)
	}
	raw, err := e.posts.QueryPosts(ctx, p, handles, query)
	if err != nil {
		return nil, adapterErr("posts", p, err)
	}
	unique := Dedup(p, raw)
	inRange := make([]RawPost, 0, len(unique))
	for _, post := range unique {
		if r.Contains(post.PostedAt) {
			inRange = append(inRange, post)
		}
	}
	kept := FilterByHashtags(inRange, hashtags)
	if stats != nil {
		stats.Posts += len(kept)
		stats.DuplicatesDropped += len(raw) - len(unique)
		stats.HashtagFiltered += len(inRange) - len(kept)
	}
	return kept, nil
}

func dailyPostTotals(posts []RawPost) []DailyValue {
	byDay := make(map[int64]*DailyValue)
	for _, post := range posts {
		d := Day(post.PostedAt)
		dv, ok := byDay[d.Unix()]
		if !ok {
			dv = &DailyValue{Date: d}
			byDay[d.Unix()] = dv
		}
		dv.Metrics = dv.Metrics.Add(post.Metrics)
	}
	out := make([]DailyValue, 0, len(byDay))
	for _, dv := range byDay {
		out = append(out, *dv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// accrualDays 逐用户计算增量后逐日求和
func (e *Engine) accrualDays(ctx context.Context, p Platform, t Target, r DateRange, cfg AccountingConfig, stats *Stats) ([]DailyValue, error) {
	if len(t.UserIDs) == 0 || e.snapshots == nil {
		return nil, nil
	}
	opts := cfg.AccrualOptions()
	window := DateRange{Start: r.Start.AddDate(0, 0, -opts.lookback()), End: r.End}

	snaps, err := e.snapshots.QuerySnapshots(ctx, t.UserIDs, p, window)
	if err != nil {
		return nil, adapterErr("snapshots", p, err)
	}
	byUser := make(map[uint64]AccrualResult, len(t.UserIDs))
	for _, res := range AccrueUsers(snaps, r, opts) {
		byUser[res.UserID] = res
	}

	var hashtags []string
	if cfg.FilterHashtagsInAccrual {
		hashtags = t.RequiredHashtags
	}

	sum := make([]DailyValue, r.Days())
	for i := range sum {
		sum[i].Date = r.Start.AddDate(0, 0, i)
	}
	for _, uid := range t.UserIDs {
		res, ok := byUser[uid]
		if !ok || res.Total().IsZero() {
			recomputed, fellBack, err := e.accrualFallback(ctx, p, uid, t.UserHandles[uid][p], hashtags, r, window, opts)
			if err != nil {
				return nil, err
			}
			if fellBack {
				res = recomputed
				stats.AccrualFallbacks++
			}
		}
		stats.OutOfOrderSnapshots += res.OutOfOrder
		stats.ClampedDeltas += res.Clamped
		for i, d := range res.Days {
			if i < len(sum) {
				sum[i].Metrics = sum[i].Metrics.Add(d.Metrics)
			}
		}
	}
	return sum, nil
}

// accrualFallback 增量为 0 但帖子显示有活跃时，单独为该用户重新查询快照并重算
func (e *Engine) accrualFallback(ctx context.Context, p Platform, uid uint64, handles []Handle, hashtags []string, r, window DateRange, opts AccrualOptions) (AccrualResult, bool, error) {
	if len(handles) == 0 {
		return AccrualResult{}, false, nil
	}
	posts, err := e.cleanPosts(ctx, p, handles, hashtags, r, nil)
	if err != nil {
		return AccrualResult{}, false, err
	}
	active := false
	for _, post := range posts {
		if !post.Metrics.IsZero() {
			active = true
			break
		}
	}
	if !active {
		return AccrualResult{}, false, nil
	}
	snaps, err := e.snapshots.QuerySnapshots(ctx, []uint64{uid}, p, window)
	if err != nil {
		return AccrualResult{}, false, adapterErr("snapshots", p, err)
	}
	res := Accrue(snaps, r, opts)
	res.UserID = uid
	return res, true, nil
}

// SumReports 逐桶累加同一查询下的多个结果，汇总值由累加后的序列重新计算
func SumReports(keys []string, reports ...*Report) *Report {
	out := &Report{
		Keys:      keys,
		Platforms: make([]PlatformReport, 0, len(Platforms)),
	}
	totals := make([][]SeriesPoint, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		totals = append(totals, r.Series)
		out.Stats = out.Stats.add(r.Stats)
	}
	out.Series = SumSeries(keys, totals...)
	out.Totals = Totals(out.Series)

	for _, p := range Platforms {
		series := make([][]SeriesPoint, 0, len(reports))
		for _, r := range reports {
			if r == nil {
				continue
			}
			series = append(series, r.Platform(p).Series)
		}
		summed := SumSeries(keys, series...)
		out.Platforms = append(out.Platforms, PlatformReport{
			Platform: p,
			Series:   summed,
			Totals:   Totals(summed),
		})
	}
	return out
}
