package aggregate

import (
	"sort"
)

// RepostLookbackDays YouTube 查询向前多取的天数，用于识别区间开始前已发布的视频
const RepostLookbackDays = 30

// Dedup 按 external_id 去重，返回新切片
//
// 全零互动的记录先被丢弃。TikTok/Instagram 按播放量降序稳定排序后保留首次出现的记录；
// YouTube 保留发布时间最早的记录，同一时间取播放量更高者，避免重抓取把视频挪到后面的周。
func Dedup(p Platform, posts []RawPost) []RawPost {
	rows := make([]RawPost, 0, len(posts))
	for _, post := range posts {
		if post.Metrics.IsZero() || post.ExternalID == "" {
			continue
		}
		rows = append(rows, post)
	}

	if p == PlatformYouTube {
		return dedupEarliest(rows)
	}
	return dedupFirstSeen(rows)
}

func dedupFirstSeen(rows []RawPost) []RawPost {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Views > rows[j].Views
	})
	seen := make(map[string]struct{}, len(rows))
	out := make([]RawPost, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ExternalID]; ok {
			continue
		}
		seen[row.ExternalID] = struct{}{}
		out = append(out, row)
	}
	return out
}

func dedupEarliest(rows []RawPost) []RawPost {
	best := make(map[string]int, len(rows))
	order := make([]string, 0, len(rows))
	for i, row := range rows {
		j, ok := best[row.ExternalID]
		if !ok {
			best[row.ExternalID] = i
			order = append(order, row.ExternalID)
			continue
		}
		cur := rows[j]
		if row.PostedAt.Before(cur.PostedAt) ||
			(row.PostedAt.Equal(cur.PostedAt) && row.Views > cur.Views) {
			best[row.ExternalID] = i
		}
	}
	out := make([]RawPost, 0, len(order))
	for _, id := range order {
		out = append(out, rows[best[id]])
	}
	return out
}
