package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/jordan-wright/email"

	"github.com/funkystitch/storefront/internal/core/domain"
)

type SMTPMailer struct {
	addr         string
	auth         smtp.Auth
	senderName   string
	fromAddress  string
	companyInbox string
}

func NewSMTPMailer(host string, port int, username, password, senderName, fromAddress, companyInbox string) *SMTPMailer {
	return &SMTPMailer{
		addr:         fmt.Sprintf("%s:%d", host, port),
		auth:         smtp.PlainAuth("", username, password, host),
		senderName:   senderName,
		fromAddress:  fromAddress,
		companyInbox: companyInbox,
	}
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, otp string) error {
	body, err := render(otpTemplate, map[string]string{"OTP": otp})
	if err != nil {
		return err
	}
	return m.send(to, "Your OTP for Registration", body)
}

func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, resetURL string) error {
	body, err := render(resetTemplate, map[string]string{"Email": to, "ResetURL": resetURL})
	if err != nil {
		return err
	}
	return m.send(to, "Password Reset Request", body)
}

func (m *SMTPMailer) SendContact(ctx context.Context, msg domain.ContactMessage) error {
	body, err := render(contactTemplate, msg)
	if err != nil {
		return err
	}
	return m.send(m.companyInbox, "New Contact Form Submission: "+msg.Subject, body)
}

func (m *SMTPMailer) send(to, subject string, body []byte) error {
	e := email.NewEmail()
	e.From = fmt.Sprintf("%q <%s>", m.senderName, m.fromAddress)
	e.To = []string{to}
	e.Subject = subject
	e.HTML = body

	if err := e.Send(m.addr, m.auth); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

func render(tmpl *template.Template, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render mail template: %w", err)
	}
	return buf.Bytes(), nil
}

var otpTemplate = template.Must(template.New("otp").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2c3e50;">Your Verification Code</h2>
  <p style="font-size: 16px;">Please use the following code to verify your email:</p>
  <div style="background: #f8f9fa; padding: 20px; text-align: center; margin: 20px 0; font-size: 24px; font-weight: bold; letter-spacing: 2px;">
    {{.OTP}}
  </div>
  <p style="font-size: 14px; color: #7f8c8d;">This code will expire in 15 minutes.</p>
</div>
`))

var resetTemplate = template.Must(template.New("reset").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #333;">Password Reset Request</h2>
  <p>You requested to reset the password for your account with email: <strong>{{.Email}}</strong>.</p>
  <p>Please click the button below to reset your password:</p>
  <div style="text-align: center; margin: 25px 0;">
    <a href="{{.ResetURL}}" style="background-color:#FF5252; color: white; padding: 12px 20px; text-decoration: none; border-radius: 4px;">
      Reset Password
    </a>
  </div>
  <p>This link will expire in 30 minutes.</p>
  <p>If you didn't request this password reset, please ignore this email.</p>
</div>
`))

var contactTemplate = template.Must(template.New("contact").Parse(`
<h2>New Contact Form Submission</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))
