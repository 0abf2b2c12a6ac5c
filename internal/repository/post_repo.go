package repository

import (
	"context"
	"time"

	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// postHandleBatch 单次 IN 查询的账号数量上限
const postHandleBatch = 200

// PostRepo 帖子存储，账号按归一化形式匹配，结果按播放量降序
type PostRepo interface {
	QueryPosts(ctx context.Context, p aggregate.Platform, handles []aggregate.Handle, r aggregate.DateRange) ([]aggregate.RawPost, error)
}

type PostRepoImpl struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepo {
	return &PostRepoImpl{
		db: db,
	}
}

// QueryPosts 按账号分批并发查询，批次结果按批次顺序拼接
func (s *PostRepoImpl) QueryPosts(ctx context.Context, p aggregate.Platform, handles []aggregate.Handle, r aggregate.DateRange) ([]aggregate.RawPost, error) {
	if len(handles) == 0 {
		return nil, nil
	}
	batches := chunkHandles(handles, postHandleBatch)
	results := make([][]aggregate.RawPost, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	for i, batch := range batches {
		g.Go(func() error {
			rows, err := s.queryBatch(gctx, p, batch, r)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]aggregate.RawPost, 0)
	for _, rows := range results {
		out = append(out, rows...)
	}
	return out, nil
}

func (s *PostRepoImpl) queryBatch(ctx context.Context, p aggregate.Platform, handles []aggregate.Handle, r aggregate.DateRange) ([]aggregate.RawPost, error) {
	from, to := dayBounds(r)
	names := handleStrings(handles)
	db := s.db.WithContext(ctx)

	switch p {
	case aggregate.PlatformTikTok:
		rows := make([]*model.TikTokPost, 0)
		err := db.
			Where("LOWER(TRIM(LEADING '@' FROM TRIM(username))) IN ?", names).
			Where("posted_at >= ? AND posted_at < ?", from, to).
			Order("COALESCE(NULLIF(play_count, 0), view_count, 0) DESC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, errors.Wrapf(err, "query tiktok_posts (%d handles)", len(names))
		}
		out := make([]aggregate.RawPost, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.ToRawPost())
		}
		return out, nil

	case aggregate.PlatformInstagram:
		rows := make([]*model.InstagramPost, 0)
		err := db.
			Where("LOWER(TRIM(LEADING '@' FROM TRIM(owner_username))) IN ?", names).
			Where("taken_at >= ? AND taken_at < ?", from, to).
			Order("COALESCE(NULLIF(video_view_count, 0), play_count, 0) DESC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, errors.Wrapf(err, "query instagram_posts (%d handles)", len(names))
		}
		out := make([]aggregate.RawPost, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.ToRawPost())
		}
		return out, nil

	case aggregate.PlatformYouTube:
		rows := make([]*model.YouTubeVideo, 0)
		err := db.
			Where("TRIM(channel_id) IN ?", names).
			Where("published_at >= ? AND published_at < ?", from, to).
			Order("view_count DESC, id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, errors.Wrapf(err, "query youtube_videos (%d channels)", len(names))
		}
		out := make([]aggregate.RawPost, 0, len(rows))
		for _, row := range rows {
			out = append(out, row.ToRawPost())
		}
		return out, nil
	}
	return nil, errors.Errorf("unknown platform %q", p)
}

// dayBounds 闭区间日期范围转换为 [from, to) 时间区间
func dayBounds(r aggregate.DateRange) (time.Time, time.Time) {
	return r.Start, r.End.AddDate(0, 0, 1)
}

func handleStrings(handles []aggregate.Handle) []string {
	out := make([]string, 0, len(handles))
	for _, h := range handles {
		out = append(out, string(h))
	}
	return out
}

func chunkHandles(handles []aggregate.Handle, size int) [][]aggregate.Handle {
	out := make([][]aggregate.Handle, 0, (len(handles)+size-1)/size)
	for start := 0; start < len(handles); start += size {
		end := start + size
		if end > len(handles) {
			end = len(handles)
		}
		out = append(out, handles[start:end])
	}
	return out
}
