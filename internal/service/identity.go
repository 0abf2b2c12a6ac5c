package service

import (
	"context"
	log "log/slog"

	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"
	"Plume/internal/pkg/monitor"
	"Plume/internal/repository"
)

// 身份解析来源，按优先级排列
const (
	SourceCampaignAssignment   = "campaign_assignment"
	SourceCampaignParticipants = "campaign_participants"
	SourceUserHandles          = "user_handles"
	SourceUserProfile          = "user_profile"
)

// NewIdentityResolver 活动指定账号 > 活动参与账号 > 全局映射 > 档案账号
func NewIdentityResolver(identityRepo repository.IdentityRepo, userRepo repository.UserRepo) *aggregate.Resolver {
	return aggregate.NewResolver(
		aggregate.NewStrategy(SourceCampaignAssignment, func(ctx context.Context, q aggregate.IdentityQuery) (aggregate.HandleSet, bool, error) {
			if q.CampaignID == 0 || q.UserID == 0 {
				return nil, false, nil
			}
			rows, err := identityRepo.GetCampaignEmployeeHandles(ctx, q.CampaignID, q.UserID)
			if err != nil {
				return nil, false, err
			}
			set := aggregate.NewHandleSet()
			for _, row := range rows {
				addHandle(set, row.Platform, row.Handle)
			}
			return set, !set.Empty(), nil
		}),
		aggregate.NewStrategy(SourceCampaignParticipants, func(ctx context.Context, q aggregate.IdentityQuery) (aggregate.HandleSet, bool, error) {
			if q.CampaignID == 0 {
				return nil, false, nil
			}
			rows, err := identityRepo.GetCampaignParticipants(ctx, q.CampaignID)
			if err != nil {
				return nil, false, err
			}
			set := aggregate.NewHandleSet()
			for _, row := range rows {
				addHandle(set, row.Platform, row.Handle)
			}
			return set, !set.Empty(), nil
		}),
		aggregate.NewStrategy(SourceUserHandles, func(ctx context.Context, q aggregate.IdentityQuery) (aggregate.HandleSet, bool, error) {
			if q.UserID == 0 {
				return nil, false, nil
			}
			rows, err := identityRepo.GetUserHandles(ctx, q.UserID)
			if err != nil {
				return nil, false, err
			}
			set := aggregate.NewHandleSet()
			for _, row := range rows {
				addHandle(set, row.Platform, row.Handle)
			}
			return set, !set.Empty(), nil
		}),
		aggregate.NewStrategy(SourceUserProfile, func(ctx context.Context, q aggregate.IdentityQuery) (aggregate.HandleSet, bool, error) {
			if q.UserID == 0 {
				return nil, false, nil
			}
			user, err := userRepo.GetUserById(ctx, q.UserID)
			if err != nil {
				return nil, false, err
			}
			if user == nil {
				return nil, false, aggregate.ErrIdentityNotFound
			}
			set := profileHandles(user)
			return set, !set.Empty(), nil
		}),
	).OnResolved(youTubeMirror(identityRepo))
}

func addHandle(set aggregate.HandleSet, platform, handle string) {
	p, ok := aggregate.ParsePlatform(platform)
	if !ok {
		return
	}
	set.Add(p, handle)
}

func profileHandles(user *model.User) aggregate.HandleSet {
	set := aggregate.NewHandleSet()
	if user.TikTokHandle != nil {
		set.Add(aggregate.PlatformTikTok, *user.TikTokHandle)
	}
	if user.InstagramHandle != nil {
		set.Add(aggregate.PlatformInstagram, *user.InstagramHandle)
	}
	if user.YouTubeChannelID != nil {
		set.Add(aggregate.PlatformYouTube, *user.YouTubeChannelID)
	}
	return set
}

// youTubeMirror 活动内首次从全局映射或档案解析到 YouTube 频道时回写活动指定账号，
// 档案来源同时回写全局映射，失败只记录日志
func youTubeMirror(identityRepo repository.IdentityRepo) aggregate.ResolvedHook {
	return func(ctx context.Context, q aggregate.IdentityQuery, res aggregate.Resolution) {
		if q.UserID == 0 {
			return
		}
		source := res.Sources[aggregate.PlatformYouTube]
		if source != SourceUserHandles && source != SourceUserProfile {
			return
		}
		for _, h := range res.Handles[aggregate.PlatformYouTube] {
			if q.CampaignID != 0 {
				err := identityRepo.SaveCampaignEmployeeHandle(ctx, &model.CampaignEmployeeHandle{
					CampaignID: q.CampaignID,
					UserID:     q.UserID,
					Platform:   string(aggregate.PlatformYouTube),
					Handle:     string(h),
				})
				recordMirror(ctx, "campaign_employee_handles", q, h, err)
			}
			if source == SourceUserProfile {
				err := identityRepo.SaveUserHandle(ctx, &model.UserHandle{
					UserID:   q.UserID,
					Platform: string(aggregate.PlatformYouTube),
					Handle:   string(h),
				})
				recordMirror(ctx, "user_handles", q, h, err)
			}
		}
	}
}

func recordMirror(ctx context.Context, table string, q aggregate.IdentityQuery, h aggregate.Handle, err error) {
	if err != nil {
		monitor.IdentityMirrors.WithLabelValues(table, "error").Inc()
		log.WarnContext(ctx, "mirror youtube channel failed",
			"table", table, "user_id", q.UserID, "campaign_id", q.CampaignID, "channel", h, "err", err)
		return
	}
	monitor.IdentityMirrors.WithLabelValues(table, "ok").Inc()
}
