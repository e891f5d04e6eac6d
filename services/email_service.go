package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strings"
	"time"

	"github.com/Dosada05/football-tournaments/config"
)

//go:embed templates/emails/*.html
var emailTemplatesFS embed.FS

var emailTemplates = template.Must(template.ParseFS(emailTemplatesFS, "templates/emails/*.html"))

// Mailer отправляет одно HTML-письмо.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, htmlBody string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

func NewSMTPMailer(cfg config.SMTPConfig) Mailer {
	return &smtpMailer{cfg: cfg}
}

func (m *smtpMailer) Send(ctx context.Context, to []string, subject string, body string) error {
	if len(to) == 0 {
		return nil
	}
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)

	msg := []byte("To: " + strings.Join(to, ", ") + "\r\n" +
		"From: " + m.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	tlsconfig := &tls.Config{ServerName: m.cfg.Host}

	var client *smtp.Client
	if m.cfg.Port == 465 {
		// Прямое TLS-соединение
		dialer := &tls.Dialer{Config: tlsconfig}
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		client, err = smtp.NewClient(conn, m.cfg.Host)
		if err != nil {
			conn.Close()
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS (обычно порт 587)
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
	}
	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}
	return nil
}

// logMailer используется, когда SMTP не настроен: письмо только логируется.
type logMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) Mailer {
	return &logMailer{logger: logger}
}

func (m *logMailer) Send(ctx context.Context, to []string, subject, htmlBody string) error {
	m.logger.InfoContext(ctx, "email not sent, SMTP is not configured",
		slog.Any("to", to), slog.String("subject", subject), slog.Int("body_bytes", len(htmlBody)))
	return nil
}

// EmailService рендерит шаблоны писем и отправляет их через Mailer.
// Ошибки отправки логируются и не прерывают основную операцию.
type EmailService struct {
	mailer    Mailer
	publicURL string
	logger    *slog.Logger
}

func NewEmailService(mailer Mailer, publicURL string, logger *slog.Logger) *EmailService {
	return &EmailService{
		mailer:    mailer,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}
}

func (s *EmailService) link(format string, args ...interface{}) string {
	return s.publicURL + fmt.Sprintf(format, args...)
}

func GenerateEmailBody(name string, data interface{}) (string, error) {
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, name, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", name, err)
	}
	return body.String(), nil
}

func (s *EmailService) send(ctx context.Context, to, subject, templateName string, data interface{}) {
	if s == nil || to == "" {
		return
	}
	body, err := GenerateEmailBody(templateName, data)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to render email", slog.String("template", templateName), slog.Any("error", err))
		return
	}
	if err := s.mailer.Send(ctx, []string{to}, subject, body); err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			slog.String("template", templateName), slog.String("to", to), slog.Any("error", err))
	}
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, name, email, confirmationToken string) {
	s.send(ctx, email, "Welcome to the tournament platform", "welcome_email.html", struct {
		Name             string
		Email            string
		ConfirmationLink string
	}{
		Name:             name,
		Email:            email,
		ConfirmationLink: s.link("/confirm-email?token=%s", confirmationToken),
	})
}

func (s *EmailService) SendPasswordResetEmail(ctx context.Context, email, resetToken string) {
	s.send(ctx, email, "Password reset", "password_reset_email.html", struct {
		Email     string
		ResetLink string
	}{
		Email:     email,
		ResetLink: s.link("/reset-password?token=%s", resetToken),
	})
}

func (s *EmailService) SendInvitationEmail(ctx context.Context, email, clubName, invitedBy, token string, expiresAt time.Time) {
	s.send(ctx, email, fmt.Sprintf("Invitation to manage %s", clubName), "invitation_email.html", struct {
		ClubName   string
		InvitedBy  string
		InviteLink string
		ExpiresAt  string
	}{
		ClubName:   clubName,
		InvitedBy:  invitedBy,
		InviteLink: s.link("/invitations/%s", token),
		ExpiresAt:  expiresAt.Format("2006-01-02 15:04 MST"),
	})
}

func (s *EmailService) SendRegistrationStatusEmail(ctx context.Context, email, tournamentName, ageGroupName, teamName string, status string, reason string, registrationID int) {
	s.send(ctx, email, fmt.Sprintf("%s: registration %s", tournamentName, status), "registration_status_email.html", struct {
		TournamentName string
		AgeGroupName   string
		TeamName       string
		Status         string
		Reason         string
		Link           string
	}{
		TournamentName: tournamentName,
		AgeGroupName:   ageGroupName,
		TeamName:       teamName,
		Status:         status,
		Reason:         reason,
		Link:           s.link("/registrations/%d", registrationID),
	})
}

func (s *EmailService) SendDrawCompletedEmail(ctx context.Context, email, tournamentName, ageGroupName, teamName, groupName string, tournamentID int) {
	s.send(ctx, email, fmt.Sprintf("%s: draw completed", tournamentName), "draw_completed_email.html", struct {
		TournamentName string
		AgeGroupName   string
		TeamName       string
		GroupName      string
		Link           string
	}{
		TournamentName: tournamentName,
		AgeGroupName:   ageGroupName,
		TeamName:       teamName,
		GroupName:      groupName,
		Link:           s.link("/tournaments/%d", tournamentID),
	})
}
