package aggregate

import (
	"sort"
	"strings"
)

// Handle 归一化后的平台账号标识
type Handle string

// NormalizeHandle 归一化账号：TikTok/Instagram 去首部 @ 并转小写，YouTube 频道 ID 仅去空白
func NormalizeHandle(p Platform, raw string) Handle {
	s := strings.TrimSpace(raw)
	switch p {
	case PlatformTikTok, PlatformInstagram:
		s = strings.ToLower(strings.TrimLeft(s, "@"))
		s = strings.TrimSpace(s)
	}
	return Handle(s)
}

// HandleSet 按平台分组的账号集合
type HandleSet map[Platform][]Handle

// NewHandleSet 创建空集合
func NewHandleSet() HandleSet {
	return make(HandleSet)
}

// Add 归一化后加入集合，空值忽略
func (s HandleSet) Add(p Platform, raw string) {
	h := NormalizeHandle(p, raw)
	if h == "" {
		return
	}
	for _, existing := range s[p] {
		if existing == h {
			return
		}
	}
	s[p] = append(s[p], h)
}

// Union 合并另一个集合，返回新集合
func (s HandleSet) Union(o HandleSet) HandleSet {
	out := NewHandleSet()
	for _, src := range []HandleSet{s, o} {
		for p, handles := range src {
			for _, h := range handles {
				out.Add(p, string(h))
			}
		}
	}
	return out
}

// Empty 所有平台均无账号
func (s HandleSet) Empty() bool {
	for _, handles := range s {
		if len(handles) > 0 {
			return false
		}
	}
	return true
}

// Sorted 返回排序后的副本，便于生成稳定的缓存键
func (s HandleSet) Sorted() HandleSet {
	out := make(HandleSet, len(s))
	for p, handles := range s {
		if len(handles) == 0 {
			continue
		}
		cp := make([]Handle, len(handles))
		copy(cp, handles)
		sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
		out[p] = cp
	}
	return out
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
