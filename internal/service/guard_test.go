package service

import (
	"context"
	"errors"
	"testing"

	"phd-portal/backend/internal/model"
	"phd-portal/backend/internal/workflow"
)

func TestGuard_CanAct(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	sub := &model.Submission{SubmissionID: "s1", StudentID: idStudent, Status: workflow.StatusPendingSupervisorApproval}

	tests := []struct {
		name    string
		actor   string
		action  Action
		wantErr error
	}{
		{"admin 查看", idAdmin, ActionView, nil},
		{"admin 审核", idAdmin, ActionReview, nil},
		{"学生查看自己", idStudent, ActionView, nil},
		{"学生审核自己", idStudent, ActionReview, ErrForbidden},
		{"学生查看他人", idStudent2, ActionView, ErrForbidden},
		{"导师在本阶段审核", idSup, ActionReview, nil},
		{"导师在本阶段转交", idSup, ActionForward, nil},
		{"副导师越阶段审核", idCoSup, ActionReview, ErrWrongStage},
		{"副导师查看", idCoSup, ActionView, nil},
		{"委员越阶段转交", idDSC, ActionForward, ErrWrongStage},
		{"非成员副导师查看", idOutsider, ActionView, ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor, err := env.guard.Actor(ctx, tt.actor)
			if err != nil {
				t.Fatalf("Actor 失败: %v", err)
			}
			err = env.guard.CanAct(ctx, actor, sub, tt.action)
			if tt.wantErr == nil && err != nil {
				t.Errorf("期望允许，实际: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际: %v", tt.wantErr, err)
			}
		})
	}
}

func TestGuard_NoCommitteeMeansNoFacultyReviewer(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	// u-stu2 未分配委员会
	sub := &model.Submission{SubmissionID: "s2", StudentID: idStudent2, Status: workflow.StatusPendingCoSupervisorApproval}

	for _, id := range []string{idCoSup, idSup, idDSC} {
		actor, _ := env.guard.Actor(ctx, id)
		if err := env.guard.CanAct(ctx, actor, sub, ActionView); !errors.Is(err, ErrForbidden) {
			t.Errorf("%s 查看未分配委员会学生的文档期望 ErrForbidden，实际: %v", id, err)
		}
	}
}

func TestGuard_MembershipRoleMustMatch(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	// 导师在 c1 中被替换为副导师角色后，不再是 c1 的导师
	_ = env.memberships.Replace(ctx, &model.CommitteeMembership{CommitteeID: idC1, UserID: idSup, CommitteeRole: workflow.CommitteeCoSupervisor})

	sub := &model.Submission{SubmissionID: "s1", StudentID: idStudent, Status: workflow.StatusPendingSupervisorApproval}
	actor, _ := env.guard.Actor(ctx, idSup)
	if err := env.guard.CanAct(ctx, actor, sub, ActionReview); !errors.Is(err, ErrForbidden) {
		t.Errorf("委员会角色不匹配期望 ErrForbidden，实际: %v", err)
	}
}

func TestGuard_StoreFailureIsNotForbidden(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	storeErr := errors.New("connection reset")
	env.memberships.err = storeErr

	sub := &model.Submission{SubmissionID: "s1", StudentID: idStudent, Status: workflow.StatusPendingSupervisorApproval}
	actor, _ := env.guard.Actor(ctx, idSup)
	err := env.guard.CanAct(ctx, actor, sub, ActionReview)
	if !errors.Is(err, storeErr) || errors.Is(err, ErrForbidden) {
		t.Errorf("存储故障应原样返回，实际: %v", err)
	}
}

func TestGuard_Scope(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	admin, _ := env.guard.Actor(ctx, idAdmin)
	scope, err := env.guard.Scope(ctx, admin)
	if err != nil || !scope.All {
		t.Errorf("admin 应为全部范围: %+v %v", scope, err)
	}

	stu, _ := env.guard.Actor(ctx, idStudent)
	scope, _ = env.guard.Scope(ctx, stu)
	if scope.All || len(scope.StudentIDs) != 1 || scope.StudentIDs[0] != idStudent {
		t.Errorf("学生范围应仅为本人: %+v", scope)
	}

	sup, _ := env.guard.Actor(ctx, idSup)
	scope, _ = env.guard.Scope(ctx, sup)
	if len(scope.StudentIDs) != 1 || scope.StudentIDs[0] != idStudent {
		t.Errorf("导师范围应为 c1 下学生: %+v", scope)
	}

	outsider, _ := env.guard.Actor(ctx, idOutsider)
	scope, _ = env.guard.Scope(ctx, outsider)
	if !scope.Empty() {
		t.Errorf("非成员范围应为空: %+v", scope)
	}
}
