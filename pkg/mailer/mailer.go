package mailer

import (
	"crypto/tls"
	"fmt"

	mail "github.com/go-mail/mail/v2"

	"phd-portal/backend/config"
)

// Mailer SMTP 发信封装
type Mailer struct {
	dialer *mail.Dialer
	from   string
}

// New 根据配置创建 Mailer；未配置 SMTP 时返回 nil，调用方据此跳过通知
func New(cfg *config.MailConfig) *Mailer {
	if !cfg.Enabled() {
		return nil
	}

	d := mail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.Username, cfg.Password)
	d.StartTLSPolicy = mail.MandatoryStartTLS
	d.TLSConfig = &tls.Config{
		ServerName:         cfg.SMTPHost,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &Mailer{dialer: d, from: cfg.From}
}

// Send 发送 HTML 邮件
func (m *Mailer) Send(to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}

	msg := BuildMessage(m.from, to, subject, html)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("发送邮件失败: %w", err)
	}
	return nil
}

// BuildMessage 组装邮件
func BuildMessage(from string, to []string, subject, html string) *mail.Message {
	msg := mail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return msg
}
