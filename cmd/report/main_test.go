package main

import (
	"bytes"
	"context"
	"testing"

	"Plume/internal/api/dto"
	"Plume/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingService struct {
	calls []string
	ids   []uint64
}

func (r *recordingService) GetEmployeeDashboard(_ context.Context, userID uint64, _ *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	r.calls = append(r.calls, service.ScopeEmployee)
	r.ids = []uint64{userID}
	return &dto.DashboardDTO{Scope: service.ScopeEmployee}, nil
}

func (r *recordingService) GetCampaignDashboard(_ context.Context, campaignID uint64, _ *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	r.calls = append(r.calls, service.ScopeCampaign)
	r.ids = []uint64{campaignID}
	return &dto.DashboardDTO{Scope: service.ScopeCampaign}, nil
}

func (r *recordingService) GetGroupDashboard(_ context.Context, campaignIDs []uint64, _ *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	r.calls = append(r.calls, service.ScopeGroup)
	r.ids = campaignIDs
	return &dto.DashboardDTO{Scope: service.ScopeGroup}, nil
}

func (r *recordingService) GetGlobalDashboard(_ context.Context, _ *dto.DashboardQuery) (*dto.DashboardDTO, error) {
	r.calls = append(r.calls, service.ScopeGlobal)
	return &dto.DashboardDTO{Scope: service.ScopeGlobal}, nil
}

func TestRunReport(t *testing.T) {
	ctx := context.Background()
	svc := &recordingService{}

	out, err := runReport(ctx, svc, &reportOptions{scope: service.ScopeEmployee, id: 7})
	require.NoError(t, err)
	assert.Equal(t, service.ScopeEmployee, out.Scope)
	assert.Equal(t, []uint64{7}, svc.ids)

	_, err = runReport(ctx, svc, &reportOptions{scope: service.ScopeCampaign, id: 3})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3}, svc.ids)

	_, err = runReport(ctx, svc, &reportOptions{scope: service.ScopeGroup, ids: "3, 4"})
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4}, svc.ids)

	_, err = runReport(ctx, svc, &reportOptions{scope: service.ScopeGlobal})
	require.NoError(t, err)

	assert.Equal(t, []string{service.ScopeEmployee, service.ScopeCampaign, service.ScopeGroup, service.ScopeGlobal}, svc.calls)
}

func TestRunReport_InvalidArgs(t *testing.T) {
	ctx := context.Background()
	svc := &recordingService{}

	_, err := runReport(ctx, svc, &reportOptions{scope: service.ScopeEmployee})
	assert.Error(t, err)
	_, err = runReport(ctx, svc, &reportOptions{scope: service.ScopeGroup})
	assert.Error(t, err)
	_, err = runReport(ctx, svc, &reportOptions{scope: service.ScopeGroup, ids: "a,b"})
	assert.Error(t, err)
	_, err = runReport(ctx, svc, &reportOptions{scope: "team"})
	assert.Error(t, err)
	assert.Empty(t, svc.calls)
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, &dto.DashboardDTO{Scope: "global", RangeStart: "2024-01-01"}))
	assert.Contains(t, buf.String(), `"scope": "global"`)
	assert.Contains(t, buf.String(), `"range_start": "2024-01-01"`)
}
