package mongo

import (
	"context"
	log "log/slog"
	"time"

	"Plume/internal/api/config"
	"Plume/internal/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitMongo 建立连接并返回 Database 引用，同时初始化索引
func InitMongo(cfg config.MongoConfig) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// 建立连接
	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.URI).
		SetMonitor(logger.NewMongoMonitor()),
	)
	if err != nil {
		return nil, err
	}

	// 检查连通性
	if err = client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	db := client.Database(cfg.Database)
	if err = ensureHistoricalIndexes(ctx, db.Collection(collectionName(cfg))); err != nil {
		log.Warn("MongoDB index init failed", "err", err)
	}

	log.Info("MongoDB initialized successfully", "db", cfg.Database)
	return db, nil
}

func collectionName(cfg config.MongoConfig) string {
	if cfg.Collection == "" {
		return DefaultHistoricalCollection
	}
	return cfg.Collection
}
