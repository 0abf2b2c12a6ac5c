package consts

const (
	TokenBlacklistKey        = "token:blacklist:"
	DashboardCacheKey        = "dashboard:cache:"
	DashboardVersionKey      = "dashboard:version"
	DashboardDirtyKey        = "dashboard:dirty"
	DashboardDirtyProcessKey = "dashboard:dirty:processing"
)

const (
	DashboardBumpLock = "lock:dashboard:bump"
)
