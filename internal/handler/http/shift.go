package http

import (
	"net/http"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
)

type ShiftHandler interface {
	GetWeekDeadline(w http.ResponseWriter, r *http.Request)
	OperationalAudit(w http.ResponseWriter, r *http.Request)
	RemoveDuplicates(w http.ResponseWriter, r *http.Request)
}

type shiftHandlerImpl struct {
	shiftService shift.ShiftService
}

func NewShiftHandler(shiftService shift.ShiftService) ShiftHandler {
	return &shiftHandlerImpl{shiftService: shiftService}
}

// GetWeekDeadline handles GET /shifts/deadline?date=
func (h *shiftHandlerImpl) GetWeekDeadline(w http.ResponseWriter, r *http.Request) {
	req := shift.WeekDeadlineRequest{Date: r.URL.Query().Get("date")}

	result, err := h.shiftService.GetWeekDeadline(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// OperationalAudit handles GET /shifts/operational-audit?date=
func (h *shiftHandlerImpl) OperationalAudit(w http.ResponseWriter, r *http.Request) {
	req := shift.OperationalAuditRequest{Date: r.URL.Query().Get("date")}

	result, err := h.shiftService.DailyOperationalAudit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RemoveDuplicates handles POST /shifts/remove-duplicates
func (h *shiftHandlerImpl) RemoveDuplicates(w http.ResponseWriter, r *http.Request) {
	result, err := h.shiftService.RemoveDuplicates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Duplicate shifts removed", result)
}
