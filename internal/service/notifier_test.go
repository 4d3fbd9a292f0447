package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type recordingSender struct {
	to      []string
	subject string
	html    string
	err     error
}

func (r *recordingSender) Send(to []string, subject, html string) error {
	r.to, r.subject, r.html = to, subject, html
	return r.err
}

func TestNewNotifier_NilSenderIsNop(t *testing.T) {
	n := NewNotifier(nil, "http://localhost")
	if err := n.NotifyDecision(context.Background(), &DecisionNotice{To: "a@b.c"}); err != nil {
		t.Errorf("空实现不应返回错误: %v", err)
	}
}

func TestMailNotifier_RendersAndEscapes(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, "https://portal.example.edu/")

	err := n.NotifyDecision(context.Background(), &DecisionNotice{
		To:           "stu@uni.test",
		StudentName:  "Ada",
		SubmissionID: "sub-1",
		Title:        "Thesis <draft>",
		Type:         "Final-Thesis",
		Decision:     "revision",
		Status:       "revision_required",
		Comment:      "fix chapter 2",
		ReviewerName: "Prof. Turing",
	})
	if err != nil {
		t.Fatalf("NotifyDecision 失败: %v", err)
	}
	if len(sender.to) != 1 || sender.to[0] != "stu@uni.test" {
		t.Errorf("收件人不符: %v", sender.to)
	}
	if !strings.Contains(sender.subject, "revision") {
		t.Errorf("主题应包含决定: %s", sender.subject)
	}
	if !strings.Contains(sender.html, "Thesis &lt;draft&gt;") {
		t.Error("标题应被转义")
	}
	if !strings.Contains(sender.html, "https://portal.example.edu/submissions/sub-1") {
		t.Error("应包含文档链接")
	}
	if !strings.Contains(sender.html, "fix chapter 2") {
		t.Error("应包含审核意见")
	}
}

func TestMailNotifier_SkipsEmptyRecipient(t *testing.T) {
	sender := &recordingSender{err: errors.New("should not be called")}
	n := NewNotifier(sender, "")
	if err := n.NotifyDecision(context.Background(), &DecisionNotice{}); err != nil {
		t.Errorf("无收件人时应跳过: %v", err)
	}
}
