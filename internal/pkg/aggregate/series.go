package aggregate

// Partial 以桶键为索引的部分序列，缺失的桶视为 0
type Partial map[string]Metrics

// Rebucket 将逐日数值按 b 重新分桶，返回新的 Partial
func Rebucket(days []DailyValue, b Bucketer) Partial {
	out := make(Partial)
	for _, d := range days {
		if d.Metrics.IsZero() {
			continue
		}
		k := b.Key(d.Date)
		out[k] = out[k].Add(d.Metrics)
	}
	return out
}

// MergePartials 同键相加（缝合周的历史与实时贡献相加而不是覆盖）
func MergePartials(parts ...Partial) Partial {
	out := make(Partial)
	for _, p := range parts {
		for k, m := range p {
			out[k] = out[k].Add(m)
		}
	}
	return out
}

// Fill 按 keys 顺序输出完整序列，缺失桶补 0；不在 keys 中的键被忽略
func Fill(p Partial, keys []string) []SeriesPoint {
	out := make([]SeriesPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, SeriesPoint{Date: k, Metrics: p[k]})
	}
	return out
}

// Totals 由补全后的序列求和，保证图表与汇总数字一致
func Totals(series []SeriesPoint) Metrics {
	var total Metrics
	for _, pt := range series {
		total = total.Add(pt.Metrics)
	}
	return total
}

// CombinePlatforms 跨平台合并：views/likes/comments 求和，shares/saves 仅取 TikTok
//
// 所有输入序列必须由同一组 keys 补全。
func CombinePlatforms(perPlatform map[Platform][]SeriesPoint, keys []string) []SeriesPoint {
	out := Fill(nil, keys)
	for _, p := range Platforms {
		series, ok := perPlatform[p]
		if !ok {
			continue
		}
		for i := range out {
			if i >= len(series) {
				break
			}
			m := series[i].Metrics
			out[i].Views += m.Views
			out[i].Likes += m.Likes
			out[i].Comments += m.Comments
			if p == PlatformTikTok {
				out[i].Shares += m.Shares
				out[i].Saves += m.Saves
			}
		}
	}
	return out
}

// SumSeries 逐桶累加多条同键序列（全部五项指标）
func SumSeries(keys []string, series ...[]SeriesPoint) []SeriesPoint {
	out := Fill(nil, keys)
	for _, s := range series {
		for i := range out {
			if i >= len(s) {
				break
			}
			out[i].Metrics = out[i].Metrics.Add(s[i].Metrics)
		}
	}
	return out
}
