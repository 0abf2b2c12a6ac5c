package mongo

import (
	"context"
	log "log/slog"

	"Plume/internal/api/config"
	"Plume/internal/pkg/aggregate"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type HistoricalRepo interface {
	QueryHistorical(ctx context.Context, p aggregate.Platform, r aggregate.DateRange) ([]aggregate.HistoricalBucket, error)
}

type historicalRepoImpl struct {
	col *mongo.Collection
}

func NewHistoricalRepo(db *mongo.Database, cfg config.MongoConfig) HistoricalRepo {
	return &historicalRepoImpl{
		col: db.Collection(collectionName(cfg)),
	}
}

// QueryHistorical 返回与范围有交集的周桶，按 start_date 升序
func (s *historicalRepoImpl) QueryHistorical(ctx context.Context, p aggregate.Platform, r aggregate.DateRange) ([]aggregate.HistoricalBucket, error) {
	filter := bson.M{
		"platform":   string(p),
		"start_date": bson.M{"$lte": r.End},
		"end_date":   bson.M{"$gte": r.Start},
	}
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "find %s buckets", p)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []*HistoricalWeekly
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, errors.Wrapf(err, "decode %s buckets", p)
	}

	out := make([]aggregate.HistoricalBucket, 0, len(docs))
	for _, doc := range docs {
		b, ok := doc.ToBucket()
		if !ok {
			log.WarnContext(ctx, "skip historical bucket with unknown platform", "platform", doc.Platform, "id", doc.ID.Hex())
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func ensureHistoricalIndexes(ctx context.Context, col *mongo.Collection) error {
	_, err := col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "platform", Value: 1},
			{Key: "start_date", Value: 1},
		},
	})
	return err
}
