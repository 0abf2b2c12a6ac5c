package model

import (
	"time"

	"Plume/internal/pkg/aggregate"
)

// TikTokPost 抓取的 TikTok 视频，同一 video_id 可能被多次抓取
type TikTokPost struct {
	ID           uint64    `gorm:"primaryKey"`
	VideoID      string    `gorm:"type:varchar(64);not null;index:idx_tt_video"`
	Username     string    `gorm:"type:varchar(100);not null;index:idx_tt_user_posted,priority:1"`
	PostedAt     time.Time `gorm:"not null;index:idx_tt_user_posted,priority:2"`
	PlayCount    *int64
	ViewCount    *int64
	LikeCount    int64 `gorm:"not null;default:0"`
	CommentCount int64 `gorm:"not null;default:0"`
	ShareCount   int64 `gorm:"not null;default:0"`
	SaveCount    int64 `gorm:"not null;default:0"`
	Description  string `gorm:"type:text"`
	ScrapedAt    time.Time
}

func (TikTokPost) TableName() string {
	return "tiktok_posts"
}

// ToRawPost 播放量优先取 play_count，缺失时退回 view_count
func (p *TikTokPost) ToRawPost() aggregate.RawPost {
	return aggregate.RawPost{
		Platform:   aggregate.PlatformTikTok,
		ExternalID: p.VideoID,
		Handle:     aggregate.NormalizeHandle(aggregate.PlatformTikTok, p.Username),
		PostedAt:   p.PostedAt,
		Metrics: aggregate.Metrics{
			Views:    firstCount(p.PlayCount, p.ViewCount),
			Likes:    p.LikeCount,
			Comments: p.CommentCount,
			Shares:   p.ShareCount,
			Saves:    p.SaveCount,
		},
		Text: p.Description,
	}
}

// InstagramPost 抓取的 Instagram 帖子
type InstagramPost struct {
	ID             uint64    `gorm:"primaryKey"`
	Shortcode      string    `gorm:"type:varchar(64);not null;index:idx_ig_code"`
	OwnerUsername  string    `gorm:"type:varchar(100);not null;index:idx_ig_owner_taken,priority:1"`
	TakenAt        time.Time `gorm:"not null;index:idx_ig_owner_taken,priority:2"`
	VideoViewCount *int64
	PlayCount      *int64
	LikeCount      int64  `gorm:"not null;default:0"`
	CommentCount   int64  `gorm:"not null;default:0"`
	Caption        string `gorm:"type:text"`
	ScrapedAt      time.Time
}

func (InstagramPost) TableName() string {
	return "instagram_posts"
}

// ToRawPost 播放量优先取 video_view_count，缺失时退回 play_count
func (p *InstagramPost) ToRawPost() aggregate.RawPost {
	return aggregate.RawPost{
		Platform:   aggregate.PlatformInstagram,
		ExternalID: p.Shortcode,
		Handle:     aggregate.NormalizeHandle(aggregate.PlatformInstagram, p.OwnerUsername),
		PostedAt:   p.TakenAt,
		Metrics: aggregate.Metrics{
			Views:    firstCount(p.VideoViewCount, p.PlayCount),
			Likes:    p.LikeCount,
			Comments: p.CommentCount,
		},
		Text: p.Caption,
	}
}

// YouTubeVideo 抓取的 YouTube 视频
type YouTubeVideo struct {
	ID           uint64    `gorm:"primaryKey"`
	VideoID      string    `gorm:"type:varchar(64);not null;index:idx_yt_video"`
	ChannelID    string    `gorm:"type:varchar(64);not null;index:idx_yt_channel_published,priority:1"`
	PublishedAt  time.Time `gorm:"not null;index:idx_yt_channel_published,priority:2"`
	ViewCount    int64     `gorm:"not null;default:0"`
	LikeCount    int64     `gorm:"not null;default:0"`
	CommentCount int64     `gorm:"not null;default:0"`
	Title        string    `gorm:"type:varchar(255)"`
	Description  string    `gorm:"type:text"`
	ScrapedAt    time.Time
}

func (YouTubeVideo) TableName() string {
	return "youtube_videos"
}

// ToRawPost 话题匹配同时检查标题与简介
func (v *YouTubeVideo) ToRawPost() aggregate.RawPost {
	text := v.Title
	if v.Description != "" {
		text += "\n" + v.Description
	}
	return aggregate.RawPost{
		Platform:   aggregate.PlatformYouTube,
		ExternalID: v.VideoID,
		Handle:     aggregate.NormalizeHandle(aggregate.PlatformYouTube, v.ChannelID),
		PostedAt:   v.PublishedAt,
		Metrics: aggregate.Metrics{
			Views:    v.ViewCount,
			Likes:    v.LikeCount,
			Comments: v.CommentCount,
		},
		Text: text,
	}
}

// firstCount 返回第一个非空且大于 0 的计数
func firstCount(counts ...*int64) int64 {
	for _, c := range counts {
		if c != nil && *c > 0 {
			return *c
		}
	}
	return 0
}
