package service

import (
	"context"
	log "log/slog"
	"time"

	"Plume/internal/api/dto"
	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/monitor"
	"Plume/internal/pkg/redis"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// dashboardCache 看板结果缓存，键包含内容版本，数据变更后由定时任务递增版本使旧键失效
type dashboardCache struct {
	enabled bool
}

func (c *dashboardCache) key(ctx context.Context, r *request) string {
	if !c.enabled {
		return ""
	}
	version, err := redis.GetValue(ctx, consts.DashboardVersionKey)
	if err != nil {
		log.WarnContext(ctx, "read dashboard cache version failed", "err", err)
		return ""
	}
	if version == "" {
		version = "0"
	}
	digest := uuid.NewSHA1(uuid.NameSpaceOID, []byte(r.cacheIdentity())).String()
	return consts.DashboardCacheKey + version + ":" + r.scope + ":" + digest
}

func (c *dashboardCache) get(ctx context.Context, key string) *dto.DashboardDTO {
	if key == "" {
		return nil
	}
	raw, err := redis.GetValue(ctx, key)
	if err != nil {
		log.WarnContext(ctx, "read dashboard cache failed", "key", key, "err", err)
		return nil
	}
	if raw == "" {
		monitor.DashboardCache.WithLabelValues("miss").Inc()
		return nil
	}
	out := &dto.DashboardDTO{}
	if err = json.Unmarshal([]byte(raw), out); err != nil {
		log.WarnContext(ctx, "decode dashboard cache failed", "key", key, "err", err)
		return nil
	}
	monitor.DashboardCache.WithLabelValues("hit").Inc()
	return out
}

// set 缓存到当天 UTC 零点，跨天后默认区间随之变化
func (c *dashboardCache) set(ctx context.Context, key string, out *dto.DashboardDTO, now time.Time) {
	if key == "" {
		return
	}
	payload, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err = redis.SetWithMidnightExpiration(ctx, key, string(payload), now); err != nil {
		log.WarnContext(ctx, "write dashboard cache failed", "key", key, "err", err)
	}
}
