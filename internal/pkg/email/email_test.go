package email

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/config"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestNotifier(t *testing.T, cfg config.SMTPConfig, failures int) (*smtpNotifier, *[]capturedMail) {
	t.Helper()

	n, err := NewNotifier(cfg)
	require.NoError(t, err)

	impl := n.(*smtpNotifier)
	impl.backoff = func(int) time.Duration { return time.Millisecond }

	var sent []capturedMail
	calls := 0
	impl.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		calls++
		if calls <= failures {
			return errors.New("connection refused")
		}
		sent = append(sent, capturedMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return impl, &sent
}

func sampleReport() payroll.PeriodReport {
	return payroll.PeriodReport{
		RunID:      "run-1",
		Period:     payroll.Period{Start: "2026-01-11", End: "2026-01-17"},
		TotalPay:   decimal.RequireFromString("320"),
		TotalHours: 24,
		StaffSummary: []payroll.StaffPeriodSummary{
			{StaffName: "Alice Carer", Role: "Carer", TotalHours: 24, TotalPay: decimal.RequireFromString("320")},
		},
		DataQuality: []string{"Missing rate: night rate unset for Alice Carer"},
	}
}

var smtpCfg = config.SMTPConfig{Host: "smtp.example.com", Port: 587, From: "payroll@example.com", FromName: "Rota Payroll"}

func TestSendPayrollSummary(t *testing.T) {
	n, sent := newTestNotifier(t, smtpCfg, 0)

	err := n.SendPayrollSummary(context.Background(), "admin@example.com", sampleReport())
	require.NoError(t, err)
	require.Len(t, *sent, 1)

	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, []string{"admin@example.com"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: Payroll summary 2026-01-11 to 2026-01-17")
	assert.Contains(t, mail.msg, "Alice Carer")
	assert.Contains(t, mail.msg, "£320.00")
	assert.Contains(t, mail.msg, "Missing rate")
}

func TestSendShiftAudit_RetriesThenSucceeds(t *testing.T) {
	n, sent := newTestNotifier(t, smtpCfg, 2)

	audit := payroll.ShiftAudit{
		StaffName: "Bob Night", Site: "Oak House", Date: "2026-01-12",
		StartTime: "20:00", EndTime: "08:00", ShiftType: "Night",
		Hours: 12, Cost: decimal.RequireFromString("180"), Breakdown: "12.00h Night Rate @ £15.00",
	}
	err := n.SendShiftAudit(context.Background(), "admin@example.com", audit)
	require.NoError(t, err)
	require.Len(t, *sent, 1)
	assert.Contains(t, (*sent)[0].msg, "Shift audit: Bob Night on 2026-01-12")
}

func TestSend_GivesUpAfterMaxRetries(t *testing.T) {
	n, sent := newTestNotifier(t, smtpCfg, maxRetries)

	err := n.SendPayrollSummary(context.Background(), "admin@example.com", sampleReport())
	assert.ErrorContains(t, err, "after 3 attempts")
	assert.Empty(t, *sent)
}

func TestSend_SkipsWhenUnconfigured(t *testing.T) {
	n, sent := newTestNotifier(t, config.SMTPConfig{}, 0)

	require.NoError(t, n.SendPayrollSummary(context.Background(), "admin@example.com", sampleReport()))
	assert.Empty(t, *sent)

	n, sent = newTestNotifier(t, smtpCfg, 0)
	require.NoError(t, n.SendPayrollSummary(context.Background(), "", sampleReport()))
	assert.Empty(t, *sent)
}
