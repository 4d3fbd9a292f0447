package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User          UserRepository
	Committee     CommitteeRepository
	Membership    MembershipRepository
	Student       StudentRepository
	Submission    SubmissionRepository
	Feedback      FeedbackRepository
	StatusHistory StatusHistoryRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:          NewUserRepo(db),
		Committee:     NewCommitteeRepo(db),
		Membership:    NewMembershipRepo(db),
		Student:       NewStudentRepo(db),
		Submission:    NewSubmissionRepo(db),
		Feedback:      NewFeedbackRepo(db),
		StatusHistory: NewStatusHistoryRepo(db),
	}
}
