package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/email"
)

type PayrollHandler interface {
	GetPeriodReport(w http.ResponseWriter, r *http.Request)
	ExportPeriod(w http.ResponseWriter, r *http.Request)
	AuditShift(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
	notifier       email.Notifier
	adminEmail     string
}

func NewPayrollHandler(payrollService payroll.PayrollService, notifier email.Notifier, adminEmail string) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
		notifier:       notifier,
		adminEmail:     adminEmail,
	}
}

func periodRequest(r *http.Request) payroll.PeriodRequest {
	q := r.URL.Query()
	return payroll.PeriodRequest{
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
		StaffID:   q.Get("staff_id"),
	}
}

// GetPeriodReport handles GET /payroll/period?start=&end=[&staff_id=]
func (h *payrollHandlerImpl) GetPeriodReport(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.CalculatePayForPeriod(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ExportPeriod handles GET /payroll/period/export?start=&end=
func (h *payrollHandlerImpl) ExportPeriod(w http.ResponseWriter, r *http.Request) {
	file, err := h.payrollService.ExportPeriodXLSX(r.Context(), periodRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Attachment(w, file.FileName, file.ContentType, file.Content)
}

// AuditShift handles GET /payroll/shifts/{id}/audit[?notify=true]
func (h *payrollHandlerImpl) AuditShift(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Shift ID is required", nil)
		return
	}

	result, err := h.payrollService.AuditSingleShift(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if notify, _ := strconv.ParseBool(r.URL.Query().Get("notify")); notify {
		// The audit is already logged; a mail failure should not fail the request.
		if err := h.notifier.SendShiftAudit(r.Context(), h.adminEmail, result); err != nil {
			slog.Error("Failed to send shift audit", "shift_id", id, "error", err)
			response.SuccessWithMessage(w, "Audit calculated, notification failed", result)
			return
		}
		response.SuccessWithMessage(w, "Audit calculated and sent", result)
		return
	}

	response.Success(w, result)
}
