package consts

const (
	RoleAdmin    = "ADMIN"
	RoleEmployee = "EMPLOYEE"
	RoleManager  = "MANAGER"
)

// gin.Context 与 context 中的用户信息键
const (
	CtxUserID = "user_id"
	CtxRoles  = "roles"
)
