package service

import (
	"context"
	"fmt"
	log "log/slog"
	"strconv"
	"strings"
	"time"

	"Plume/internal/api/dto"
	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"
	"Plume/internal/pkg/monitor"
	"Plume/internal/pkg/util"
	"Plume/internal/repository"

	"github.com/jinzhu/copier"
	"golang.org/x/sync/errgroup"
)

// 看板范围
const (
	ScopeEmployee = "employee"
	ScopeCampaign = "campaign"
	ScopeGroup    = "group"
	ScopeGlobal   = "global"
)

// resolveConcurrency 同时解析身份的员工数
const resolveConcurrency = 8

type DashboardService interface {
	GetEmployeeDashboard(ctx context.Context, userID uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error)
	GetCampaignDashboard(ctx context.Context, campaignID uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error)
	GetGroupDashboard(ctx context.Context, campaignIDs []uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error)
	GetGlobalDashboard(ctx context.Context, req *dto.DashboardQuery) (*dto.DashboardDTO, error)
}

// DashboardOptions 看板服务参数
type DashboardOptions struct {
	Accounting       aggregate.AccountingConfig
	DefaultRangeDays int
	CacheEnabled     bool
	// Now 为空时使用 time.Now
	Now func() time.Time
}

type dashboardServiceImpl struct {
	engine       *aggregate.Engine
	resolver     *aggregate.Resolver
	userRepo     repository.UserRepo
	campaignRepo repository.CampaignRepo
	opts         DashboardOptions
	cache        *dashboardCache
}

func NewDashboardService(
	engine *aggregate.Engine,
	resolver *aggregate.Resolver,
	userRepo repository.UserRepo,
	campaignRepo repository.CampaignRepo,
	opts DashboardOptions,
) DashboardService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultRangeDays <= 0 {
		opts.DefaultRangeDays = 30
	}
	return &dashboardServiceImpl{
		engine:       engine,
		resolver:     resolver,
		userRepo:     userRepo,
		campaignRepo: campaignRepo,
		opts:         opts,
		cache:        &dashboardCache{enabled: opts.CacheEnabled},
	}
}

// request 单次请求内固定的参数，now 只取一次
type request struct {
	scope string
	ids   []uint64
	now   time.Time
	query aggregate.Query
	merge bool
}

func (r *request) cacheIdentity() string {
	ids := make([]string, 0, len(r.ids))
	for _, id := range r.ids {
		ids = append(ids, strconv.FormatUint(id, 10))
	}
	return strings.Join([]string{
		r.scope,
		strings.Join(ids, ","),
		aggregate.DateKey(r.query.Range.Start),
		aggregate.DateKey(r.query.Range.End),
		string(r.query.Granularity),
		string(r.query.Mode),
		strconv.FormatBool(r.merge),
	}, "|")
}

// GetEmployeeDashboard 单个员工，不返回分项序列
func (s *dashboardServiceImpl) GetEmployeeDashboard(ctx context.Context, userID uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	now := s.opts.Now().UTC()
	user, err := s.userRepo.GetUserById(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	r, err := s.newRequest(ScopeEmployee, []uint64{userID}, req, now, s.lastDays(now))
	if err != nil {
		return nil, err
	}

	return s.cached(ctx, r, func() (*dto.DashboardDTO, error) {
		res, err := s.resolver.Resolve(ctx, aggregate.IdentityQuery{UserID: userID}, r.merge)
		if err != nil {
			return nil, err
		}
		target := aggregate.Target{
			Handles:     res.Handles,
			UserIDs:     []uint64{userID},
			UserHandles: map[uint64]aggregate.HandleSet{userID: res.Handles},
		}
		report, err := s.engine.Compute(ctx, target, r.query)
		if err != nil {
			return nil, err
		}
		return s.toDTO(r, report, nil), nil
	})
}

// GetCampaignDashboard 活动总计加每个员工的序列，默认区间为活动周期
func (s *dashboardServiceImpl) GetCampaignDashboard(ctx context.Context, campaignID uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	now := s.opts.Now().UTC()
	campaign, err := s.campaignRepo.GetCampaignById(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign == nil {
		return nil, ErrCampaignNotFound
	}
	window, err := aggregate.NewDateRange(campaign.StartDate, campaign.EndDate)
	if err != nil {
		window = s.lastDays(now)
	}
	r, err := s.newRequest(ScopeCampaign, []uint64{campaignID}, req, now, window)
	if err != nil {
		return nil, err
	}

	return s.cached(ctx, r, func() (*dto.DashboardDTO, error) {
		ct, err := s.campaignTarget(ctx, campaign, r.merge)
		if err != nil {
			return nil, err
		}
		users, err := s.userRepo.GetUserByIds(ctx, ct.memberIDs)
		if err != nil {
			return nil, err
		}
		userMap := make(map[uint64]*model.User, len(users))
		for _, u := range users {
			userMap[u.ID] = u
		}

		var total *aggregate.Report
		reports := make([]*aggregate.Report, len(ct.memberIDs))
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			report, err := s.engine.Compute(gctx, ct.target, r.query)
			if err != nil {
				return err
			}
			total = report
			return nil
		})
		for i, uid := range ct.memberIDs {
			g.Go(func() error {
				handles := ct.target.UserHandles[uid]
				report, err := s.engine.Compute(gctx, aggregate.Target{
					Handles:          handles,
					UserIDs:          []uint64{uid},
					UserHandles:      map[uint64]aggregate.HandleSet{uid: handles},
					RequiredHashtags: ct.target.RequiredHashtags,
				}, r.query)
				if err != nil {
					return err
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		entities := make([]*dto.EntitySeriesDTO, 0, len(ct.memberIDs))
		for i, uid := range ct.memberIDs {
			entity := employeeEntity(uid, userMap[uid], ct.target.UserHandles[uid])
			entity.Series = reports[i].Series
			entity.Totals = reports[i].Totals
			entities = append(entities, entity)
		}
		return s.toDTO(r, total, entities), nil
	})
}

// GetGroupDashboard 多个活动，每个活动一条序列，总计为各活动逐桶相加
func (s *dashboardServiceImpl) GetGroupDashboard(ctx context.Context, campaignIDs []uint64, req *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	now := s.opts.Now().UTC()
	campaignIDs = uniqueIDs(campaignIDs)
	if len(campaignIDs) == 0 {
		return nil, ErrParamInvalid
	}
	campaigns, err := s.campaignRepo.GetCampaignByIds(ctx, campaignIDs)
	if err != nil {
		return nil, err
	}
	if len(campaigns) != len(campaignIDs) {
		return nil, ErrCampaignNotFound
	}
	r, err := s.newRequest(ScopeGroup, campaignIDs, req, now, envelope(campaigns, s.lastDays(now)))
	if err != nil {
		return nil, err
	}

	return s.cached(ctx, r, func() (*dto.DashboardDTO, error) {
		reports := make([]*aggregate.Report, len(campaigns))
		g, gctx := errgroup.WithContext(ctx)
		for i, campaign := range campaigns {
			g.Go(func() error {
				ct, err := s.campaignTarget(gctx, campaign, r.merge)
				if err != nil {
					return err
				}
				report, err := s.engine.Compute(gctx, ct.target, r.query)
				if err != nil {
					return err
				}
				reports[i] = report
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		keys := r.query.Bucketer().Keys(r.query.Range)
		total := aggregate.SumReports(keys, reports...)
		entities := make([]*dto.EntitySeriesDTO, 0, len(campaigns))
		for i, campaign := range campaigns {
			entity := &dto.EntitySeriesDTO{}
			if err := copier.Copy(entity, campaign); err != nil {
				return nil, err
			}
			entity.Type = ScopeCampaign
			entity.Series = reports[i].Series
			entity.Totals = reports[i].Totals
			entities = append(entities, entity)
		}
		return s.toDTO(r, total, entities), nil
	})
}

// GetGlobalDashboard 全部员工，早于截止日的部分使用历史归档
func (s *dashboardServiceImpl) GetGlobalDashboard(ctx context.Context, req *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	now := s.opts.Now().UTC()
	r, err := s.newRequest(ScopeGlobal, nil, req, now, s.lastDays(now))
	if err != nil {
		return nil, err
	}

	return s.cached(ctx, r, func() (*dto.DashboardDTO, error) {
		userIDs, err := s.userRepo.GetEmployeeIDs(ctx)
		if err != nil {
			return nil, err
		}
		perUser, union, err := s.resolveUsers(ctx, userIDs, 0, r.merge)
		if err != nil {
			return nil, err
		}
		report, err := s.engine.Compute(ctx, aggregate.Target{
			Handles:     union,
			UserIDs:     userIDs,
			UserHandles: perUser,
			UseArchive:  true,
		}, r.query)
		if err != nil {
			return nil, err
		}
		return s.toDTO(r, report, nil), nil
	})
}

type campaignTarget struct {
	memberIDs []uint64
	target    aggregate.Target
}

// campaignTarget 解析活动内每个员工的账号；没有员工时使用活动参与账号
func (s *dashboardServiceImpl) campaignTarget(ctx context.Context, campaign *model.Campaign, merge bool) (*campaignTarget, error) {
	memberIDs, err := s.campaignRepo.GetMemberIDs(ctx, campaign.ID)
	if err != nil {
		return nil, err
	}
	out := &campaignTarget{
		memberIDs: memberIDs,
		target: aggregate.Target{
			UserIDs:          memberIDs,
			RequiredHashtags: campaign.RequiredHashtags,
		},
	}

	if len(memberIDs) == 0 {
		res, err := s.resolver.Resolve(ctx, aggregate.IdentityQuery{CampaignID: campaign.ID}, merge)
		if err != nil {
			return nil, err
		}
		out.target.Handles = res.Handles
		out.target.UserHandles = map[uint64]aggregate.HandleSet{}
		return out, nil
	}

	perUser, union, err := s.resolveUsers(ctx, memberIDs, campaign.ID, merge)
	if err != nil {
		return nil, err
	}
	out.target.Handles = union
	out.target.UserHandles = perUser
	return out, nil
}

// resolveUsers 并发解析，返回每个员工的账号与并集
func (s *dashboardServiceImpl) resolveUsers(ctx context.Context, userIDs []uint64, campaignID uint64, merge bool) (map[uint64]aggregate.HandleSet, aggregate.HandleSet, error) {
	sets := make([]aggregate.HandleSet, len(userIDs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resolveConcurrency)
	for i, uid := range userIDs {
		g.Go(func() error {
			res, err := s.resolver.Resolve(gctx, aggregate.IdentityQuery{UserID: uid, CampaignID: campaignID}, merge)
			if err != nil {
				return err
			}
			sets[i] = res.Handles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	perUser := make(map[uint64]aggregate.HandleSet, len(userIDs))
	union := aggregate.NewHandleSet()
	for i, uid := range userIDs {
		perUser[uid] = sets[i]
		union = union.Union(sets[i])
	}
	return perUser, union, nil
}

// newRequest 校验参数并补全默认区间
func (s *dashboardServiceImpl) newRequest(scope string, ids []uint64, req *dto.DashboardQuery, now time.Time, defaults aggregate.DateRange) (*request, error) {
	if req == nil {
		req = &dto.DashboardQuery{}
	}
	if err := util.ValidateDTO(req); err != nil {
		return nil, fmt.Errorf("%w: %v", aggregate.ErrInvalidRange, err)
	}
	dr, err := resolveRange(req.Start, req.End, defaults, now)
	if err != nil {
		return nil, err
	}
	granularity, ok := aggregate.ParseGranularity(req.Granularity)
	if !ok {
		return nil, aggregate.ErrInvalidRange
	}
	mode, ok := aggregate.ParseMode(req.Mode)
	if !ok {
		return nil, aggregate.ErrInvalidRange
	}
	return &request{
		scope: scope,
		ids:   ids,
		now:   now,
		merge: req.MergeIdentities,
		query: aggregate.Query{
			Range:       dr,
			Granularity: granularity,
			Mode:        mode,
			Config:      s.opts.Accounting,
		},
	}, nil
}

// resolveRange 只给出一端时：缺 end 取今天，缺 start 取 end 往前与默认区间等长
func resolveRange(start, end string, defaults aggregate.DateRange, now time.Time) (aggregate.DateRange, error) {
	if start == "" && end == "" {
		return defaults, nil
	}
	var (
		from, to time.Time
		err      error
	)
	if end != "" {
		if to, err = time.Parse(time.DateOnly, end); err != nil {
			return aggregate.DateRange{}, aggregate.ErrInvalidRange
		}
	} else {
		to = aggregate.Day(now)
	}
	if start != "" {
		if from, err = time.Parse(time.DateOnly, start); err != nil {
			return aggregate.DateRange{}, aggregate.ErrInvalidRange
		}
	} else {
		from = to.AddDate(0, 0, -(defaults.Days() - 1))
	}
	return aggregate.NewDateRange(from, to)
}

// lastDays 截至今天的默认区间
func (s *dashboardServiceImpl) lastDays(now time.Time) aggregate.DateRange {
	today := aggregate.Day(now)
	return aggregate.DateRange{
		Start: today.AddDate(0, 0, -(s.opts.DefaultRangeDays - 1)),
		End:   today,
	}
}

// envelope 覆盖所有活动周期的最小区间
func envelope(campaigns []*model.Campaign, fallback aggregate.DateRange) aggregate.DateRange {
	var out aggregate.DateRange
	for _, c := range campaigns {
		window, err := aggregate.NewDateRange(c.StartDate, c.EndDate)
		if err != nil {
			continue
		}
		if out.Start.IsZero() || window.Start.Before(out.Start) {
			out.Start = window.Start
		}
		if out.End.IsZero() || window.End.After(out.End) {
			out.End = window.End
		}
	}
	if out.Start.IsZero() {
		return fallback
	}
	return out
}

// uniqueIDs 去重并保持顺序
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func employeeEntity(uid uint64, user *model.User, handles aggregate.HandleSet) *dto.EntitySeriesDTO {
	entity := &dto.EntitySeriesDTO{ID: uid, Type: ScopeEmployee}
	if user != nil {
		_ = copier.Copy(entity, user)
		entity.Name = user.DisplayName
		if entity.Name == "" {
			entity.Name = user.Username
		}
	}
	if len(handles) > 0 {
		entity.Handles = make(map[string][]string, len(handles))
		for p, hs := range handles.Sorted() {
			for _, h := range hs {
				entity.Handles[string(p)] = append(entity.Handles[string(p)], string(h))
			}
		}
	}
	return entity
}

func (s *dashboardServiceImpl) toDTO(r *request, report *aggregate.Report, entities []*dto.EntitySeriesDTO) *dto.DashboardDTO {
	out := &dto.DashboardDTO{
		Scope:             r.scope,
		Granularity:       string(r.query.Granularity),
		Mode:              string(r.query.Mode),
		RangeStart:        aggregate.DateKey(r.query.Range.Start),
		RangeEnd:          aggregate.DateKey(r.query.Range.End),
		SeriesTotal:       report.Series,
		SeriesPerPlatform: make([]*dto.PlatformSeriesDTO, 0, len(report.Platforms)),
		Totals:            report.Totals,
		PerEntitySeries:   entities,
		Stats:             &dto.StatsDTO{},
		GeneratedAt:       r.now.Format(time.RFC3339),
	}
	for _, pr := range report.Platforms {
		out.SeriesPerPlatform = append(out.SeriesPerPlatform, &dto.PlatformSeriesDTO{
			Platform: string(pr.Platform),
			Series:   pr.Series,
			Totals:   pr.Totals,
		})
	}
	_ = copier.Copy(out.Stats, &report.Stats)
	return out
}

// cached 先查缓存，未命中时计算并记录指标
func (s *dashboardServiceImpl) cached(ctx context.Context, r *request, compute func() (*dto.DashboardDTO, error)) (*dto.DashboardDTO, error) {
	key := s.cache.key(ctx, r)
	if hit := s.cache.get(ctx, key); hit != nil {
		return hit, nil
	}

	start := time.Now()
	out, err := compute()
	monitor.DashboardLatency.WithLabelValues(r.scope).Observe(time.Since(start).Seconds())
	if err != nil {
		kind := aggregate.Kind(err)
		if kind == "" {
			kind = "error"
		}
		monitor.DashboardComputations.WithLabelValues(r.scope, string(r.query.Mode), kind).Inc()
		log.ErrorContext(ctx, "compute dashboard failed", "scope", r.scope, "ids", r.ids, "err", err)
		return nil, err
	}
	monitor.DashboardComputations.WithLabelValues(r.scope, string(r.query.Mode), "ok").Inc()
	recordStats(out.Stats)

	s.cache.set(ctx, key, out, r.now)
	return out, nil
}

func recordStats(st *dto.StatsDTO) {
	if st == nil {
		return
	}
	monitor.DuplicatesDropped.Add(float64(st.DuplicatesDropped))
	monitor.ClampedDeltas.Add(float64(st.ClampedDeltas))
	monitor.OutOfOrderSnapshots.Add(float64(st.OutOfOrderSnapshots))
	monitor.AccrualFallbacks.Add(float64(st.AccrualFallbacks))
}
