package kafka

import (
	"context"
	log "log/slog"

	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/monitor"
	"Plume/internal/pkg/redis"

	"github.com/IBM/sarama"
)

// TrackedTables 会影响看板结果的表
var TrackedTables = map[string]struct{}{
	"tiktok_posts":              {},
	"instagram_posts":           {},
	"youtube_videos":            {},
	"metric_snapshots":          {},
	"users":                     {},
	"user_handles":              {},
	"campaigns":                 {},
	"campaign_members":          {},
	"campaign_employee_handles": {},
	"campaign_participants":     {},
}

// IngestHandler 监听抓取与身份映射表的变更，把变更的表记入脏集合，由定时任务刷新缓存版本
type IngestHandler struct{}

func NewIngestHandler() *IngestHandler {
	return &IngestHandler{}
}

func (s *IngestHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("ingest consumer setup")
	return nil
}

func (s *IngestHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("ingest consumer cleanup")
	return nil
}

func (s *IngestHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	return pullMessageBatch(session, claim, s.logic)
}

func (s *IngestHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	canalMsg, err := ParseCanalMessage(msg)
	if err != nil {
		// 无法解析的消息重试也不会成功
		log.WarnContext(ctx, "skip malformed canal message", "err", err)
		monitor.IngestMessages.WithLabelValues("malformed").Inc()
		return nil
	}
	if canalMsg == nil {
		monitor.IngestMessages.WithLabelValues("ignored").Inc()
		return nil
	}
	if _, ok := TrackedTables[canalMsg.Table]; !ok {
		monitor.IngestMessages.WithLabelValues("ignored").Inc()
		return nil
	}

	if err = redis.AddToSet(ctx, consts.DashboardDirtyKey, canalMsg.Table); err != nil {
		return err
	}
	monitor.IngestMessages.WithLabelValues("dirty").Inc()
	log.DebugContext(ctx, "dashboard data changed", "table", canalMsg.Table, "type", canalMsg.Type, "rows", len(canalMsg.Data))
	return nil
}
