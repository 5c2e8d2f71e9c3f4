package model

// Role 用户角色（封闭枚举）
type Role string

const (
	RoleMember  Role = "member"
	RoleCurator Role = "curator"
	RoleAdmin   Role = "admin"
)

// Capability 角色可执行的动作
type Capability string

const (
	CapSubmit   Capability = "submit"
	CapVote     Capability = "vote"
	CapModerate Capability = "moderate"
)

// capabilities 角色权限表，审核闸门据此判断
var capabilities = map[Role]map[Capability]bool{
	RoleMember:  {CapSubmit: true, CapVote: true},
	RoleCurator: {CapSubmit: true, CapVote: true, CapModerate: true},
	RoleAdmin:   {CapSubmit: true, CapVote: true, CapModerate: true},
}

func (r Role) Valid() bool {
	_, ok := capabilities[r]
	return ok
}

// Can 未知角色没有任何权限
func (r Role) Can(c Capability) bool {
	return capabilities[r][c]
}

// Principal 经过认证的调用方
type Principal struct {
	UserID string
	Role   Role
}
