package services

import (
	"fmt"
	"net/smtp"
	"strings"

	"kiranamart/internal/config"
)

// MailerService sends transactional mail over plain SMTP. No template
// engine: the two mails the system sends are short enough to build
// inline.
type MailerService interface {
	SendOTPEmail(to, ownerName, otp string) error
	SendShopApprovedEmail(to, ownerName, shopName, shopCode string) error
}

type smtpMailer struct {
	cfg      config.MailerConfig
	password string
}

// NewSMTPMailer creates a mailer from config; the password comes from the
// environment, not the config file.
func NewSMTPMailer(cfg config.MailerConfig, password string) MailerService {
	return &smtpMailer{cfg: cfg, password: password}
}

func (m *smtpMailer) send(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s <%s>\r\n", m.cfg.FromName, m.cfg.FromAddress)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	var auth smtp.Auth
	if m.password != "" {
		auth = smtp.PlainAuth("", m.cfg.FromAddress, m.password, m.cfg.Host)
	}
	return smtp.SendMail(addr, auth, m.cfg.FromAddress, []string{to}, []byte(msg.String()))
}

func (m *smtpMailer) SendOTPEmail(to, ownerName, otp string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour verification code is %s. It expires in 10 minutes.\n\nIf you did not request this, ignore this mail.\n",
		ownerName, otp)
	return m.send(to, "Your verification code", body)
}

func (m *smtpMailer) SendShopApprovedEmail(to, ownerName, shopName, shopCode string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour shop %q has been approved. You can now log in and start billing.\n\nYour customers can sign in with shop code %s.\n",
		ownerName, shopName, shopCode)
	return m.send(to, "Your shop is approved", body)
}
