package mailer

import (
	"bytes"
	"strings"
	"testing"

	"phd-portal/backend/config"
)

func TestNew_DisabledWithoutHost(t *testing.T) {
	if m := New(&config.MailConfig{From: "noreply@uni.edu"}); m != nil {
		t.Error("未配置 SMTP 主机时应返回 nil")
	}
}

func TestNew_Enabled(t *testing.T) {
	m := New(&config.MailConfig{SMTPHost: "smtp.uni.edu", SMTPPort: 587, From: "noreply@uni.edu"})
	if m == nil {
		t.Fatal("配置完整时不应返回 nil")
	}
	if err := m.Send(nil, "subject", "body"); err != nil {
		t.Errorf("无收件人时应直接返回 nil，实际: %v", err)
	}
}

func TestBuildMessage(t *testing.T) {
	msg := BuildMessage("noreply@uni.edu", []string{"s@uni.edu"}, "审核结果", "<p>approved</p>")

	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo 失败: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "To: s@uni.edu") {
		t.Errorf("邮件头缺少收件人: %s", out)
	}
	if !strings.Contains(out, "approved") {
		t.Errorf("邮件正文缺失: %s", out)
	}
}
