package job

import (
	"context"
	log "log/slog"
	"time"

	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/logger"
	"Plume/internal/pkg/monitor"
	"Plume/internal/pkg/redis"

	"github.com/google/uuid"
)

const bumpLockTTL = 30 * time.Second

// DashboardCacheJob 抓取数据有变更时刷新看板缓存版本
type DashboardCacheJob struct{}

func NewDashboardCacheJob() *DashboardCacheJob {
	return &DashboardCacheJob{}
}

func (s *DashboardCacheJob) Run() {
	ctx := logger.WithTraceID(context.Background(), "job-", "")
	if _, err := s.Bump(ctx); err != nil {
		log.ErrorContext(ctx, "bump dashboard cache version error", "err", err)
	}
}

// Bump 消费脏表集合并自增版本号，无变更时返回 0
func (s *DashboardCacheJob) Bump(ctx context.Context) (int64, error) {
	lockValue := uuid.NewString()
	ok, err := redis.TryLock(ctx, consts.DashboardBumpLock, lockValue, bumpLockTTL, 1)
	if err != nil {
		return 0, err
	}
	if !ok {
		log.InfoContext(ctx, "dashboard cache bump already running")
		return 0, nil
	}
	defer redis.UnLock(ctx, consts.DashboardBumpLock, lockValue)

	// 上次未处理完的集合会被覆盖，此时仍会自增一次
	if _, err = redis.Rename(ctx, consts.DashboardDirtyKey, consts.DashboardDirtyProcessKey); err != nil {
		return 0, err
	}

	tables, err := redis.GetSet(ctx, consts.DashboardDirtyProcessKey)
	if err != nil {
		return 0, err
	}
	if len(tables) == 0 {
		return 0, nil
	}

	version, err := redis.Incr(ctx, consts.DashboardVersionKey)
	if err != nil {
		return 0, err
	}
	monitor.CacheVersionBumps.Inc()

	if err = redis.DeleteKey(ctx, consts.DashboardDirtyProcessKey); err != nil {
		log.ErrorContext(ctx, "delete dirty set error", "err", err)
	}

	log.InfoContext(ctx, "dashboard cache version bumped", "version", version, "tables", tables)
	return version, nil
}
