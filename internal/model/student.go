package model

// Student 学生档案表：对应 students，与 role=student 的用户一一对应
type Student struct {
	UserID        string  `gorm:"type:uuid;primaryKey"                        json:"user_id"`
	Program       string  `gorm:"type:varchar(100);not null"                  json:"program"`
	StudentNumber *string `gorm:"type:varchar(30)"                            json:"student_number,omitempty"`
	Status        string  `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending | active | rejected | graduated
	CommitteeID   *string `gorm:"type:uuid"                                   json:"committee_id,omitempty"`
	VersionedModel

	// 关联
	User      *User      `gorm:"foreignKey:UserID;references:UserID"           json:"user,omitempty"`
	Committee *Committee `gorm:"foreignKey:CommitteeID;references:CommitteeID" json:"committee,omitempty"`
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// 学生生命周期状态
const (
	StudentStatusPending   = "pending"
	StudentStatusActive    = "active"
	StudentStatusRejected  = "rejected"
	StudentStatusGraduated = "graduated"
)

// ValidStudentStatus 学生状态是否合法
func ValidStudentStatus(s string) bool {
	switch s {
	case StudentStatusPending, StudentStatusActive, StudentStatusRejected, StudentStatusGraduated:
		return true
	}
	return false
}
