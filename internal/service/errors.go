package service

import (
	"errors"

	"Plume/internal/pkg/aggregate"
)

const (
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	InternalServerError = 500
	ServiceUnavailable  = 503
)

var (
	ErrParamInvalid     = errors.New("参数错误")
	ErrUserNotFound     = errors.New("员工不存在")
	ErrCampaignNotFound = errors.New("活动不存在")
	UnauthorizedError   = errors.New("权限不足")
	UnExpectedError     = errors.New("系统异常，请稍后重试")
)

var ErrorMap = map[error]int{
	ErrParamInvalid:                 BadRequest,
	ErrUserNotFound:                 NotFound,
	ErrCampaignNotFound:             NotFound,
	UnauthorizedError:               Forbidden,
	UnExpectedError:                 InternalServerError,
	aggregate.ErrInvalidRange:       BadRequest,
	aggregate.ErrAdapterUnavailable: ServiceUnavailable,
}

// ErrorKinds 业务错误的机器可读类别，引擎错误由 aggregate.Kind 给出
var ErrorKinds = map[error]string{
	ErrParamInvalid:     "InvalidArgument",
	ErrUserNotFound:     "NotFound",
	ErrCampaignNotFound: "NotFound",
	UnauthorizedError:   "Forbidden",
	UnExpectedError:     "Internal",
}

// LookupError 按 errors.Is 匹配已知错误，返回业务码与类别
func LookupError(err error) (int, string, bool) {
	for target, code := range ErrorMap {
		if errors.Is(err, target) {
			kind := ErrorKinds[target]
			if kind == "" {
				kind = aggregate.Kind(err)
			}
			return code, kind, true
		}
	}
	return 0, "", false
}
