package mongo

import (
	"time"

	"Plume/internal/pkg/aggregate"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultHistoricalCollection 历史周归档集合
const DefaultHistoricalCollection = "historical_weekly"

// HistoricalWeekly 截止日之前的平台级周聚合，写入后不再修改
type HistoricalWeekly struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Platform  string             `bson:"platform"`
	StartDate time.Time          `bson:"start_date"`
	EndDate   time.Time          `bson:"end_date"`
	Views     int64              `bson:"views"`
	Likes     int64              `bson:"likes"`
	Comments  int64              `bson:"comments"`
	Shares    int64              `bson:"shares"`
	Saves     int64              `bson:"saves"`
}

// ToBucket 日期截断到 UTC 零点，平台未知时返回 false
func (h *HistoricalWeekly) ToBucket() (aggregate.HistoricalBucket, bool) {
	p, ok := aggregate.ParsePlatform(h.Platform)
	if !ok {
		return aggregate.HistoricalBucket{}, false
	}
	return aggregate.HistoricalBucket{
		Platform:  p,
		StartDate: aggregate.Day(h.StartDate),
		EndDate:   aggregate.Day(h.EndDate),
		Metrics: aggregate.Metrics{
			Views:    h.Views,
			Likes:    h.Likes,
			Comments: h.Comments,
			Shares:   h.Shares,
			Saves:    h.Saves,
		},
	}, true
}
