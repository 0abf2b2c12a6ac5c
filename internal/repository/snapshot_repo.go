package repository

import (
	"context"

	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// SnapshotRepo 员工累计指标快照
type SnapshotRepo interface {
	QuerySnapshots(ctx context.Context, userIDs []uint64, p aggregate.Platform, r aggregate.DateRange) ([]aggregate.Snapshot, error)
}

type snapshotRepoImpl struct {
	db *gorm.DB
}

func NewSnapshotRepository(db *gorm.DB) SnapshotRepo {
	return &snapshotRepoImpl{db: db}
}

// QuerySnapshots 结果按 (user_id, captured_at) 升序
func (r *snapshotRepoImpl) QuerySnapshots(ctx context.Context, userIDs []uint64, p aggregate.Platform, dr aggregate.DateRange) ([]aggregate.Snapshot, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	from, to := dayBounds(dr)
	rows := make([]*model.MetricSnapshot, 0)
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", userIDs).
		Where("platform = ?", string(p)).
		Where("captured_at >= ? AND captured_at < ?", from, to).
		Order("user_id ASC, captured_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "query metric_snapshots (%d users, %s)", len(userIDs), p)
	}

	out := make([]aggregate.Snapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToSnapshot())
	}
	return out, nil
}
