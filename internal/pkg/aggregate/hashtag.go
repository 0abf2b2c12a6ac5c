package aggregate

import (
	"strings"
)

// NormalizeHashtags 统一为小写 #tag 形式，去空去重；结果为空表示不过滤
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimLeft(lower(t), "#")
		if t == "" {
			continue
		}
		t = "#" + t
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// MatchesHashtags 文案包含任意一个必需话题即通过；required 为空时恒为 true
func MatchesHashtags(text string, required []string) bool {
	tags := NormalizeHashtags(required)
	if len(tags) == 0 {
		return true
	}
	body := strings.ToLower(text)
	for _, tag := range tags {
		if strings.Contains(body, tag) {
			return true
		}
	}
	return false
}

// FilterByHashtags 返回满足话题要求的帖子
func FilterByHashtags(posts []RawPost, required []string) []RawPost {
	if len(NormalizeHashtags(required)) == 0 {
		return posts
	}
	out := make([]RawPost, 0, len(posts))
	for _, post := range posts {
		if MatchesHashtags(post.Text, required) {
			out = append(out, post)
		}
	}
	return out
}
