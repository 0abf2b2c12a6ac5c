package model

import (
	"time"
)

// User 员工档案，平台账号列为单一规范账号，作为身份解析的最后一级来源
type User struct {
	ID               uint64  `gorm:"primaryKey"`
	Username         string  `gorm:"type:varchar(50);uniqueIndex:idx_username;not null"`
	DisplayName      string  `gorm:"type:varchar(100)"`
	TikTokHandle     *string `gorm:"column:tiktok_handle;type:varchar(100)"`
	InstagramHandle  *string `gorm:"column:instagram_handle;type:varchar(100)"`
	YouTubeChannelID *string `gorm:"column:youtube_channel_id;type:varchar(64)"`
	IsEmployee       bool    `gorm:"type:tinyint(1);default:1;index:idx_employee"`
	IsDelete         bool    `gorm:"type:tinyint(1);default:0"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (User) TableName() string {
	return "users"
}

// UserHandle 全局账号映射，一个用户在同一平台可有多个账号
type UserHandle struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;uniqueIndex:idx_user_platform_handle,priority:1"`
	Platform  string `gorm:"type:varchar(20);not null;uniqueIndex:idx_user_platform_handle,priority:2"`
	Handle    string `gorm:"type:varchar(100);not null;uniqueIndex:idx_user_platform_handle,priority:3"`
	CreatedAt time.Time
}

func (UserHandle) TableName() string {
	return "user_handles"
}
