package workflow

// Role 用户全局角色
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleDSCMember    Role = "dsc_member"
	RoleSupervisor   Role = "supervisor"
	RoleCoSupervisor Role = "co_supervisor"
	RoleStudent      Role = "student"
)

// Valid 角色是否合法
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDSCMember, RoleSupervisor, RoleCoSupervisor, RoleStudent:
		return true
	}
	return false
}

// Faculty 是否为需要委员会成员资格才能审核的教师角色
func (r Role) Faculty() bool {
	_, ok := r.CommitteeRole()
	return ok
}

// CommitteeRole 全局角色对应的委员会内角色
func (r Role) CommitteeRole() (CommitteeRole, bool) {
	switch r {
	case RoleSupervisor:
		return CommitteeSupervisor, true
	case RoleCoSupervisor:
		return CommitteeCoSupervisor, true
	case RoleDSCMember:
		return CommitteeMember, true
	}
	return "", false
}

// Stage 该角色负责审核的状态；学生没有审核阶段
func (r Role) Stage() (Status, bool) {
	switch r {
	case RoleCoSupervisor:
		return StatusPendingCoSupervisorApproval, true
	case RoleSupervisor:
		return StatusPendingSupervisorApproval, true
	case RoleDSCMember:
		return StatusPendingDSCApproval, true
	case RoleAdmin:
		return StatusPending, true
	}
	return "", false
}

// CommitteeRole 委员会内角色
type CommitteeRole string

const (
	CommitteeSupervisor   CommitteeRole = "supervisor"
	CommitteeCoSupervisor CommitteeRole = "co_supervisor"
	CommitteeMember       CommitteeRole = "member"
)

// Valid 委员会角色是否合法
func (r CommitteeRole) Valid() bool {
	switch r {
	case CommitteeSupervisor, CommitteeCoSupervisor, CommitteeMember:
		return true
	}
	return false
}
