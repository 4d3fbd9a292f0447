package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
)

// DecisionNotice 审核结果通知内容
type DecisionNotice struct {
	To           string
	StudentName  string
	SubmissionID string
	Title        string
	Type         string
	Decision     string
	Status       string
	Comment      string
	ReviewerName string
}

// Notifier 审核结果通知
// 通知为尽力而为：发送失败只记录日志，不影响已提交的流转
type Notifier interface {
	NotifyDecision(ctx context.Context, n *DecisionNotice) error
}

// MailSender 邮件发送能力，由 pkg/mailer.Mailer 实现
type MailSender interface {
	Send(to []string, subject, html string) error
}

// NewNotifier 创建通知器；sender 为 nil 时返回空实现
func NewNotifier(sender MailSender, baseURL string) Notifier {
	if sender == nil {
		return nopNotifier{}
	}
	return &mailNotifier{sender: sender, baseURL: strings.TrimRight(baseURL, "/")}
}

type nopNotifier struct{}

func (nopNotifier) NotifyDecision(context.Context, *DecisionNotice) error { return nil }

type mailNotifier struct {
	sender  MailSender
	baseURL string
}

var decisionMailTmpl = template.Must(template.New("decision").Parse(`<div style="font-family:Arial,sans-serif;font-size:14px;color:#111827;">
<p>Dear {{.StudentName}},</p>
<p>Your {{.Type}} <strong>{{.Title}}</strong> has been reviewed by {{.ReviewerName}}.</p>
<table cellpadding="6" style="border:1px solid #e5e7eb;border-collapse:collapse;">
<tr><td style="color:#6b7280;">Decision</td><td>{{.Decision}}</td></tr>
<tr><td style="color:#6b7280;">Current status</td><td>{{.Status}}</td></tr>
{{if .Comment}}<tr><td style="color:#6b7280;">Comments</td><td style="white-space:pre-wrap;">{{.Comment}}</td></tr>{{end}}
</table>
{{if .Link}}<p><a href="{{.Link}}">View submission</a></p>{{end}}
</div>`))

func (m *mailNotifier) NotifyDecision(_ context.Context, n *DecisionNotice) error {
	if n.To == "" {
		return nil
	}

	data := struct {
		*DecisionNotice
		Link string
	}{DecisionNotice: n}
	if m.baseURL != "" {
		data.Link = fmt.Sprintf("%s/submissions/%s", m.baseURL, n.SubmissionID)
	}

	var buf bytes.Buffer
	if err := decisionMailTmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("渲染通知邮件失败: %w", err)
	}

	subject := fmt.Sprintf("[PhD Portal] %s: %s", n.Title, n.Decision)
	return m.sender.Send([]string{n.To}, subject, buf.String())
}
