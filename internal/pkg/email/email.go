package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"strconv"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/config"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Notifier sends payroll results to administrators.
type Notifier interface {
	SendPayrollSummary(ctx context.Context, to string, report payroll.PeriodReport) error
	SendShiftAudit(ctx context.Context, to string, audit payroll.ShiftAudit) error
}

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpNotifier struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendMailFunc
	backoff   func(attempt int) time.Duration
}

// NewNotifier creates an SMTP notifier. With no SMTP host configured every
// send is logged and skipped.
func NewNotifier(cfg config.SMTPConfig) (Notifier, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &smtpNotifier{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			// 1s, 2s, 4s
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

type summaryRow struct {
	Name  string
	Role  string
	Hours string
	Pay   string
}

type payrollSummaryData struct {
	RunID              string
	Start              string
	End                string
	TotalPay           string
	TotalHours         string
	Rows               []summaryRow
	UnattributedShifts int
	UnattributedHours  string
	DataQuality        []string
}

func hours(h float64) string {
	return strconv.FormatFloat(h, 'f', 2, 64)
}

// SendPayrollSummary mails the per-staff totals of a period report.
func (s *smtpNotifier) SendPayrollSummary(ctx context.Context, to string, report payroll.PeriodReport) error {
	data := payrollSummaryData{
		RunID:              report.RunID,
		Start:              report.Period.Start,
		End:                report.Period.End,
		TotalPay:           report.TotalPay.StringFixed(2),
		TotalHours:         hours(report.TotalHours),
		UnattributedShifts: report.Unattributed.ShiftCount,
		UnattributedHours:  hours(report.Unattributed.Hours),
		DataQuality:        report.DataQuality,
	}
	for _, summary := range report.StaffSummary {
		data.Rows = append(data.Rows, summaryRow{
			Name:  summary.StaffName,
			Role:  summary.Role,
			Hours: hours(summary.TotalHours),
			Pay:   summary.TotalPay.StringFixed(2),
		})
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "payroll_summary.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Payroll summary %s to %s", report.Period.Start, report.Period.End)
	return s.sendHTML(ctx, to, subject, body.String())
}

type shiftAuditData struct {
	StaffName string
	Site      string
	Date      string
	StartTime string
	EndTime   string
	ShiftType string
	Hours     string
	Cost      string
	Breakdown string
	Notes     []string
}

// SendShiftAudit mails the cost attribution of a single shift.
func (s *smtpNotifier) SendShiftAudit(ctx context.Context, to string, audit payroll.ShiftAudit) error {
	data := shiftAuditData{
		StaffName: audit.StaffName,
		Site:      audit.Site,
		Date:      audit.Date,
		StartTime: audit.StartTime,
		EndTime:   audit.EndTime,
		ShiftType: audit.ShiftType,
		Hours:     hours(audit.Hours),
		Cost:      audit.Cost.StringFixed(2),
		Breakdown: audit.Breakdown,
		Notes:     audit.Notes,
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, "shift_audit.html", data); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	subject := fmt.Sprintf("Shift audit: %s on %s", audit.StaffName, audit.Date)
	return s.sendHTML(ctx, to, subject, body.String())
}

func (s *smtpNotifier) sendHTML(ctx context.Context, to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if !s.cfg.Enabled() {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}
	if to == "" {
		slog.Warn("No recipient configured, skipping email send", "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.backoff(attempt)):
			}
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
