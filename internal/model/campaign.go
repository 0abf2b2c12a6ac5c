package model

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

type Campaign struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"type:varchar(100);not null" json:"name"`
	StartDate        time.Time  `gorm:"type:date;not null" json:"start_date"`
	EndDate          time.Time  `gorm:"type:date;not null" json:"end_date"`
	RequiredHashtags StringList `gorm:"type:json" json:"required_hashtags"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

// CampaignMember 活动的员工分配
type CampaignMember struct {
	CampaignID uint64 `gorm:"primaryKey"`
	UserID     uint64 `gorm:"primaryKey;index:idx_member_user"`
	CreatedAt  time.Time
}

func (CampaignMember) TableName() string {
	return "campaign_members"
}

// CampaignEmployeeHandle 活动内为某员工单独指定的账号
type CampaignEmployeeHandle struct {
	ID         uint64 `gorm:"primaryKey"`
	CampaignID uint64 `gorm:"not null;uniqueIndex:idx_ceh,priority:1"`
	UserID     uint64 `gorm:"not null;uniqueIndex:idx_ceh,priority:2"`
	Platform   string `gorm:"type:varchar(20);not null;uniqueIndex:idx_ceh,priority:3"`
	Handle     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_ceh,priority:4"`
	CreatedAt  time.Time
}

func (CampaignEmployeeHandle) TableName() string {
	return "campaign_employee_handles"
}

// CampaignParticipant 活动级参与账号，不归属具体员工
type CampaignParticipant struct {
	ID         uint64 `gorm:"primaryKey"`
	CampaignID uint64 `gorm:"not null;uniqueIndex:idx_cp,priority:1"`
	Platform   string `gorm:"type:varchar(20);not null;uniqueIndex:idx_cp,priority:2"`
	Handle     string `gorm:"type:varchar(100);not null;uniqueIndex:idx_cp,priority:3"`
	CreatedAt  time.Time
}

func (CampaignParticipant) TableName() string {
	return "campaign_participants"
}

// StringList JSON 数组列
type StringList []string

func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSON value:", value))
	}
	if len(bytes) == 0 {
		*s = nil
		return nil
	}
	return json.Unmarshal(bytes, s)
}
