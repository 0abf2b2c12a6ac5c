package handler

import (
	"slices"
	"strconv"

	"Plume/internal/api/dto"
	"Plume/internal/pkg/consts"
	"Plume/internal/pkg/response"
	"Plume/internal/pkg/util"
	"Plume/internal/service"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
	}
}

// Me 当前登录员工的看板
func (s *DashboardHandler) Me(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	userID := c.GetUint64(consts.CtxUserID)
	data, err := s.dashboardSvc.GetEmployeeDashboard(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

// Employee 指定员工的看板，仅本人或管理角色可查看
func (s *DashboardHandler) Employee(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	if userID != c.GetUint64(consts.CtxUserID) && !hasAnyRole(c, consts.RoleAdmin, consts.RoleManager) {
		response.FailWithKind(c, response.Forbidden, "Forbidden", "权限不足：无权访问该资源")
		return
	}
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	data, err := s.dashboardSvc.GetEmployeeDashboard(c.Request.Context(), userID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

func (s *DashboardHandler) Campaign(c *gin.Context) {
	campaignID, err := strconv.ParseUint(c.Param("campaign_id"), 10, 64)
	if err != nil {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	data, err := s.dashboardSvc.GetCampaignDashboard(c.Request.Context(), campaignID, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

// Group campaign_ids 为逗号分隔的活动 ID
func (s *DashboardHandler) Group(c *gin.Context) {
	campaignIDs, err := util.ParseUint64List(c.Query("campaign_ids"))
	if err != nil || len(campaignIDs) == 0 {
		response.Error(c, service.ErrParamInvalid)
		return
	}
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	data, err := s.dashboardSvc.GetGroupDashboard(c.Request.Context(), campaignIDs, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

func (s *DashboardHandler) Global(c *gin.Context) {
	query, ok := bindQuery(c)
	if !ok {
		return
	}
	data, err := s.dashboardSvc.GetGlobalDashboard(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, data)
}

func bindQuery(c *gin.Context) (*dto.DashboardQuery, bool) {
	var query dto.DashboardQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, service.ErrParamInvalid)
		return nil, false
	}
	return &query, true
}

func hasAnyRole(c *gin.Context, roles ...string) bool {
	owned := c.GetStringSlice(consts.CtxRoles)
	for _, role := range roles {
		if slices.Contains(owned, role) {
			return true
		}
	}
	return false
}
