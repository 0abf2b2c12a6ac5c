package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"Plume/internal/model"
	"Plume/internal/pkg/aggregate"
)

type fakeUserRepo struct {
	users map[uint64]*model.User
	err   error
}

func (f *fakeUserRepo) GetUserById(ctx context.Context, id uint64) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func (f *fakeUserRepo) GetUserByIds(ctx context.Context, ids []uint64) ([]*model.User, error) {
	out := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) GetEmployeeIDs(ctx context.Context) ([]uint64, error) {
	ids := make([]uint64, 0, len(f.users))
	for id, u := range f.users {
		if u.IsEmployee {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

type fakeCampaignRepo struct {
	campaigns map[uint64]*model.Campaign
	members   map[uint64][]uint64
}

func (f *fakeCampaignRepo) GetCampaignById(ctx context.Context, id uint64) (*model.Campaign, error) {
	return f.campaigns[id], nil
}

func (f *fakeCampaignRepo) GetCampaignByIds(ctx context.Context, ids []uint64) ([]*model.Campaign, error) {
	// 与 IN 查询一致，重复 ID 只返回一行
	out := make([]*model.Campaign, 0, len(ids))
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if c, ok := f.campaigns[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCampaignRepo) GetMemberIDs(ctx context.Context, campaignID uint64) ([]uint64, error) {
	return f.members[campaignID], nil
}

type fakeIdentityRepo struct {
	assigned     []*model.CampaignEmployeeHandle
	participants []*model.CampaignParticipant
	userHandles  []*model.UserHandle
	saveErr      error

	mu             sync.Mutex
	savedAssigned  []*model.CampaignEmployeeHandle
	savedUserLinks []*model.UserHandle
}

func (f *fakeIdentityRepo) GetCampaignEmployeeHandles(ctx context.Context, campaignID, userID uint64) ([]*model.CampaignEmployeeHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.CampaignEmployeeHandle
	for _, h := range f.assigned {
		if h.CampaignID == campaignID && h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) GetCampaignParticipants(ctx context.Context, campaignID uint64) ([]*model.CampaignParticipant, error) {
	var out []*model.CampaignParticipant
	for _, p := range f.participants {
		if p.CampaignID == campaignID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) GetUserHandles(ctx context.Context, userID uint64) ([]*model.UserHandle, error) {
	var out []*model.UserHandle
	for _, h := range f.userHandles {
		if h.UserID == userID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeIdentityRepo) SaveCampaignEmployeeHandle(ctx context.Context, h *model.CampaignEmployeeHandle) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedAssigned = append(f.savedAssigned, h)
	return nil
}

func (f *fakeIdentityRepo) SaveUserHandle(ctx context.Context, h *model.UserHandle) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.savedUserLinks = append(f.savedUserLinks, h)
	return nil
}

type fakePostSource struct {
	rows  []aggregate.RawPost
	err   error
	calls atomic.Int32
}

func (f *fakePostSource) QueryPosts(ctx context.Context, p aggregate.Platform, handles []aggregate.Handle, r aggregate.DateRange) ([]aggregate.RawPost, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	var out []aggregate.RawPost
	for _, row := range f.rows {
		if row.Platform != p || !r.Contains(row.PostedAt) {
			continue
		}
		for _, h := range handles {
			if h == row.Handle {
				out = append(out, row)
				break
			}
		}
	}
	return out, nil
}

type fakeSnapshotSource struct {
	rows []aggregate.Snapshot
}

func (f *fakeSnapshotSource) QuerySnapshots(ctx context.Context, userIDs []uint64, p aggregate.Platform, r aggregate.DateRange) ([]aggregate.Snapshot, error) {
	wanted := make(map[uint64]bool, len(userIDs))
	for _, id := range userIDs {
		wanted[id] = true
	}
	var out []aggregate.Snapshot
	for _, s := range f.rows {
		if s.Platform == p && wanted[s.UserID] && r.Contains(s.CapturedAt) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeHistoricalSource struct {
	rows []aggregate.HistoricalBucket
}

func (f *fakeHistoricalSource) QueryHistorical(ctx context.Context, p aggregate.Platform, r aggregate.DateRange) ([]aggregate.HistoricalBucket, error) {
	var out []aggregate.HistoricalBucket
	for _, b := range f.rows {
		if b.Platform == p {
			out = append(out, b)
		}
	}
	return out, nil
}

