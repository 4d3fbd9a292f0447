package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/repository"
	"phd-portal/backend/internal/workflow"
	pkgerrors "phd-portal/backend/pkg/errors"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) add(id string, role workflow.Role) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u := &model.User{UserID: id, Name: "name-" + id, Email: id + "@uni.test", Role: role}
	u.Version = 1
	m.users[id] = u
	return u
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role workflow.Role, offset, limit int) ([]model.User, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			result = append(result, *u)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if offset >= len(result) {
		return []model.User{}, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

func (m *mockUserRepo) UpdateRole(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[user.UserID]
	if !ok || cur.Version != user.Version {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version++
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	mu       sync.RWMutex
	students map[string]*model.Student
	err      error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.Version = 1
	cp := *s
	m.students[s.UserID] = &cp
	return nil
}

func (m *mockStudentRepo) GetByUserID(_ context.Context, userID string) (*model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if s, ok := m.students[userID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListByCommittee(_ context.Context, committeeID string) ([]model.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.Student
	for _, s := range m.students {
		if s.CommitteeID != nil && *s.CommitteeID == committeeID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockStudentRepo) Update(_ context.Context, s *model.Student) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.students[s.UserID]
	if !ok || cur.Version != s.Version {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	cp := *s
	m.students[s.UserID] = &cp
	return nil
}

// ── Mock CommitteeRepository ──

type mockCommitteeRepo struct {
	mu         sync.RWMutex
	committees map[string]*model.Committee
	members    *mockMembershipRepo
}

func newMockCommitteeRepo(members *mockMembershipRepo) *mockCommitteeRepo {
	return &mockCommitteeRepo{committees: make(map[string]*model.Committee), members: members}
}

func (m *mockCommitteeRepo) Create(_ context.Context, c *model.Committee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.CommitteeID == "" {
		c.CommitteeID = uuid.New().String()
	}
	c.Version = 1
	cp := *c
	m.committees[c.CommitteeID] = &cp
	return nil
}

func (m *mockCommitteeRepo) GetByID(_ context.Context, id string) (*model.Committee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.committees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	if m.members != nil {
		cp.Members = m.members.list(id)
	}
	return &cp, nil
}

func (m *mockCommitteeRepo) List(_ context.Context, status string) ([]model.Committee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.Committee
	for _, c := range m.committees {
		if status == "" || c.Status == status {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCommitteeRepo) Update(_ context.Context, c *model.Committee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.committees[c.CommitteeID]
	if !ok || cur.Version != c.Version {
		return pkgerrors.ErrOptimisticLock
	}
	c.Version++
	cp := *c
	cp.Members = nil
	m.committees[c.CommitteeID] = &cp
	return nil
}

// ── Mock MembershipRepository ──

type membershipKey struct {
	committeeID string
	userID      string
}

type mockMembershipRepo struct {
	mu       sync.RWMutex
	roles    map[membershipKey]workflow.CommitteeRole
	students *mockStudentRepo
	err      error
}

func newMockMembershipRepo(students *mockStudentRepo) *mockMembershipRepo {
	return &mockMembershipRepo{roles: make(map[membershipKey]workflow.CommitteeRole), students: students}
}

func (m *mockMembershipRepo) Replace(_ context.Context, mb *model.CommitteeMembership) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[membershipKey{mb.CommitteeID, mb.UserID}] = mb.CommitteeRole
	return nil
}

func (m *mockMembershipRepo) Remove(_ context.Context, committeeID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := membershipKey{committeeID, userID}
	if _, ok := m.roles[k]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.roles, k)
	return nil
}

func (m *mockMembershipRepo) RemoveAllByRole(_ context.Context, committeeID string, role workflow.CommitteeRole) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, r := range m.roles {
		if k.committeeID == committeeID && r == role {
			delete(m.roles, k)
			n++
		}
	}
	return n, nil
}

func (m *mockMembershipRepo) GetRole(_ context.Context, committeeID, userID string) (workflow.CommitteeRole, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return "", m.err
	}
	if r, ok := m.roles[membershipKey{committeeID, userID}]; ok {
		return r, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (m *mockMembershipRepo) FindStudentsFor(_ context.Context, userID string, role workflow.CommitteeRole) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	committees := make(map[string]bool)
	for k, r := range m.roles {
		if k.userID == userID && r == role {
			committees[k.committeeID] = true
		}
	}

	m.students.mu.RLock()
	defer m.students.mu.RUnlock()
	var ids []string
	for _, s := range m.students.students {
		if s.CommitteeID != nil && committees[*s.CommitteeID] {
			ids = append(ids, s.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockMembershipRepo) list(committeeID string) []model.CommitteeMembership {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []model.CommitteeMembership
	for k, r := range m.roles {
		if k.committeeID == committeeID {
			result = append(result, model.CommitteeMembership{CommitteeID: k.committeeID, UserID: k.userID, CommitteeRole: r})
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return result
}

// ── Mock 文档存储（Submission / Feedback / StatusHistory 共用一把锁，模拟事务） ──

type mockSubmissionStore struct {
	mu          sync.Mutex
	submissions map[string]*model.Submission
	feedbacks   []model.Feedback
	history     []model.SubmissionStatusHistory
	users       *mockUserRepo
	countErr    error
	countCalls  int
}

func newMockSubmissionStore(users *mockUserRepo) *mockSubmissionStore {
	return &mockSubmissionStore{submissions: make(map[string]*model.Submission), users: users}
}

func (m *mockSubmissionStore) withStudent(s *model.Submission) *model.Submission {
	cp := *s
	if u, err := m.users.GetByID(context.Background(), s.StudentID); err == nil {
		cp.Student = u
	}
	return &cp
}

func (m *mockSubmissionStore) Create(_ context.Context, sub *model.Submission) error {
	if !sub.Status.Valid() {
		return pkgerrors.ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if sub.SubmissionID == "" {
		sub.SubmissionID = uuid.New().String()
	}
	sub.Version = 1
	cp := *sub
	m.submissions[sub.SubmissionID] = &cp
	m.history = append(m.history, model.SubmissionStatusHistory{
		SubmissionID: sub.SubmissionID,
		NewStatus:    string(sub.Status),
		Action:       repository.ActionSubmit,
		ChangedBy:    sub.StudentID,
		CreatedAt:    sub.SubmittedAt,
	})
	return nil
}

func (m *mockSubmissionStore) GetByID(_ context.Context, id string) (*model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.submissions[id]; ok {
		return m.withStudent(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSubmissionStore) ListByOwner(_ context.Context, studentID string) ([]model.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Submission
	for _, s := range m.submissions {
		if s.StudentID == studentID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSubmissionStore) inScope(scope repository.Scope, s *model.Submission) bool {
	if scope.All {
		return true
	}
	for _, id := range scope.StudentIDs {
		if id == s.StudentID {
			return true
		}
	}
	return false
}

func (m *mockSubmissionStore) ListFiltered(_ context.Context, f repository.SubmissionFilter) ([]model.Submission, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Submission
	for _, s := range m.submissions {
		if !m.inScope(f.Scope, s) {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		if f.Type != "" && s.Type != f.Type {
			continue
		}
		result = append(result, *m.withStudent(s))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubmissionID < result[j].SubmissionID })
	total := int64(len(result))
	if f.Limit > 0 {
		if f.Offset >= len(result) {
			return []model.Submission{}, total, nil
		}
		end := f.Offset + f.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[f.Offset:end]
	}
	return result, total, nil
}

func (m *mockSubmissionStore) CountByStatus(_ context.Context, scope repository.Scope) (map[workflow.Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.countCalls++
	if m.countErr != nil {
		return nil, m.countErr
	}
	counts := make(map[workflow.Status]int64)
	for _, s := range m.submissions {
		if m.inScope(scope, s) {
			counts[s.Status]++
		}
	}
	return counts, nil
}

func (m *mockSubmissionStore) Transition(_ context.Context, t *repository.Transition) (*model.Submission, error) {
	if !t.To.Valid() {
		return nil, pkgerrors.ErrInvalidStatus
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.submissions[t.SubmissionID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if cur.Status != t.From || cur.Version != t.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	now := time.Now()
	cur.Status = t.To
	cur.Version++
	cur.UpdatedAt = now
	if t.Content != nil {
		cur.Title = t.Content.Title
		cur.Abstract = t.Content.Abstract
		cur.ContentLocator = t.Content.ContentLocator
		cur.SubmittedAt = now
	}
	if t.Feedback != nil {
		fb := *t.Feedback
		fb.FeedbackID = uuid.New().String()
		fb.SubmissionID = t.SubmissionID
		fb.CreatedAt = now
		m.feedbacks = append(m.feedbacks, fb)
	}
	old := string(t.From)
	m.history = append(m.history, model.SubmissionStatusHistory{
		SubmissionID: t.SubmissionID,
		OldStatus:    &old,
		NewStatus:    string(t.To),
		Action:       t.Action,
		ChangedBy:    t.ActorID,
		CreatedAt:    now,
	})
	return m.withStudent(cur), nil
}

func (m *mockSubmissionStore) Delete(_ context.Context, id string, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.submissions, id)
	return nil
}

func (m *mockSubmissionStore) feedbackCount(submissionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, fb := range m.feedbacks {
		if fb.SubmissionID == submissionID {
			n++
		}
	}
	return n
}

func (m *mockSubmissionStore) status(submissionID string) workflow.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.submissions[submissionID]; ok {
		return s.Status
	}
	return ""
}

// mockFeedbackRepo / mockStatusHistoryRepo 读取同一存储

type mockFeedbackRepo struct{ store *mockSubmissionStore }

func (m *mockFeedbackRepo) Append(_ context.Context, fb *model.Feedback) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	fb.FeedbackID = uuid.New().String()
	m.store.feedbacks = append(m.store.feedbacks, *fb)
	return nil
}

func (m *mockFeedbackRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.Feedback, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var result []model.Feedback
	for _, fb := range m.store.feedbacks {
		if fb.SubmissionID == submissionID {
			result = append(result, fb)
		}
	}
	return result, nil
}

func (m *mockFeedbackRepo) CountBySubmission(_ context.Context, submissionID string) (int64, error) {
	return int64(m.store.feedbackCount(submissionID)), nil
}

type mockStatusHistoryRepo struct{ store *mockSubmissionStore }

func (m *mockStatusHistoryRepo) ListBySubmission(_ context.Context, submissionID string) ([]model.SubmissionStatusHistory, error) {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	var result []model.SubmissionStatusHistory
	for _, h := range m.store.history {
		if h.SubmissionID == submissionID {
			result = append(result, h)
		}
	}
	return result, nil
}

// ── Mock CountCache ──

type mockCountCache struct {
	mu      sync.Mutex
	gen     int64
	entries map[string]map[string]int64
	bumps   int
	err     error
}

func newMockCountCache() *mockCountCache {
	return &mockCountCache{entries: make(map[string]map[string]int64)}
}

func (m *mockCountCache) key(actorID string, gen int64) string {
	return fmt.Sprintf("%d:%s", gen, actorID)
}

func (m *mockCountCache) CountGeneration(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen, m.err
}

func (m *mockCountCache) BumpCountGeneration(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gen++
	m.bumps++
	return m.err
}

func (m *mockCountCache) GetCounts(_ context.Context, actorID string, gen int64) (map[string]int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.entries[m.key(actorID, gen)]
	return c, ok, nil
}

func (m *mockCountCache) SetCounts(_ context.Context, actorID string, gen int64, counts map[string]int64, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[m.key(actorID, gen)] = counts
	return nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu      sync.Mutex
	notices []DecisionNotice
	err     error
}

func (m *mockNotifier) NotifyDecision(_ context.Context, n *DecisionNotice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notices = append(m.notices, *n)
	return m.err
}

// ── 测试夹具 ──

// testEnv 一个委员会 c1，学生 stu（已分配 c1），
// co（副导师）、sup（导师）、dsc（委员）均为 c1 成员；outsider 为未加入任何委员会的副导师
type testEnv struct {
	repo        *repository.Repository
	users       *mockUserRepo
	students    *mockStudentRepo
	committees  *mockCommitteeRepo
	memberships *mockMembershipRepo
	store       *mockSubmissionStore
	cache       *mockCountCache
	notifier    *mockNotifier
	guard       *Guard
}

const (
	idAdmin    = "u-admin"
	idStudent  = "u-stu"
	idStudent2 = "u-stu2"
	idCoSup    = "u-co"
	idSup      = "u-sup"
	idDSC      = "u-dsc"
	idOutsider = "u-outsider"
	idC1       = "c1"
)

func newTestEnv() *testEnv {
	users := newMockUserRepo()
	students := newMockStudentRepo()
	memberships := newMockMembershipRepo(students)
	committees := newMockCommitteeRepo(memberships)
	store := newMockSubmissionStore(users)

	users.add(idAdmin, workflow.RoleAdmin)
	users.add(idStudent, workflow.RoleStudent)
	users.add(idStudent2, workflow.RoleStudent)
	users.add(idCoSup, workflow.RoleCoSupervisor)
	users.add(idSup, workflow.RoleSupervisor)
	users.add(idDSC, workflow.RoleDSCMember)
	users.add(idOutsider, workflow.RoleCoSupervisor)

	_ = committees.Create(context.Background(), &model.Committee{CommitteeID: idC1, Name: "DSC-1", Status: "active"})
	c1 := idC1
	_ = students.Create(context.Background(), &model.Student{UserID: idStudent, Program: "CS", Status: model.StudentStatusActive, CommitteeID: &c1})
	_ = students.Create(context.Background(), &model.Student{UserID: idStudent2, Program: "CS", Status: model.StudentStatusPending})

	ctx := context.Background()
	_ = memberships.Replace(ctx, &model.CommitteeMembership{CommitteeID: idC1, UserID: idCoSup, CommitteeRole: workflow.CommitteeCoSupervisor})
	_ = memberships.Replace(ctx, &model.CommitteeMembership{CommitteeID: idC1, UserID: idSup, CommitteeRole: workflow.CommitteeSupervisor})
	_ = memberships.Replace(ctx, &model.CommitteeMembership{CommitteeID: idC1, UserID: idDSC, CommitteeRole: workflow.CommitteeMember})

	repo := &repository.Repository{
		User:          users,
		Committee:     committees,
		Membership:    memberships,
		Student:       students,
		Submission:    store,
		Feedback:      &mockFeedbackRepo{store: store},
		StatusHistory: &mockStatusHistoryRepo{store: store},
	}

	return &testEnv{
		repo:        repo,
		users:       users,
		students:    students,
		committees:  committees,
		memberships: memberships,
		store:       store,
		cache:       newMockCountCache(),
		notifier:    &mockNotifier{},
		guard:       NewGuard(repo, zap.NewNop()),
	}
}

func (e *testEnv) reviewService() ReviewService {
	return NewReviewService(e.repo, e.guard, e.cache, e.notifier, zap.NewNop())
}

// seed 直接写入一份指定状态的文档
func (e *testEnv) seed(studentID string, t workflow.SubmissionType, status workflow.Status) *model.Submission {
	sub := &model.Submission{
		StudentID:      studentID,
		Type:           t,
		Status:         status,
		Title:          "Thesis " + string(status),
		ContentLocator: "files/doc.pdf",
		SubmittedAt:    time.Now(),
	}
	_ = e.store.Create(context.Background(), sub)
	return sub
}
