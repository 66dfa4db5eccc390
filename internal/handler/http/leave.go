package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/auth"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/middleware"
	"github.com/socialcare-homes/rota-backend-go/internal/handler/http/response"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
)

type LeaveHandler interface {
	GetAccrual(w http.ResponseWriter, r *http.Request)
	GetAccrualBreakdown(w http.ResponseWriter, r *http.Request)

	GetBalance(w http.ResponseWriter, r *http.Request)
	RecordUsage(w http.ResponseWriter, r *http.Request)
	RefreshBalances(w http.ResponseWriter, r *http.Request)
	MigrateEntitlement(w http.ResponseWriter, r *http.Request)
}

type leaveHandlerImpl struct {
	leaveService leave.LeaveService
	now          func() time.Time
}

func NewLeaveHandler(leaveService leave.LeaveService) LeaveHandler {
	return &leaveHandlerImpl{
		leaveService: leaveService,
		now:          time.Now,
	}
}

// yearParam reads ?year=, defaulting to the current year.
func (h *leaveHandlerImpl) yearParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("year")
	if raw == "" {
		return h.now().Year(), nil
	}
	year, ok := validator.ParseYear(raw)
	if !ok {
		return 0, validator.ValidationErrors{{Field: "year", Message: "year must be a 4-digit year"}}
	}
	return year, nil
}

func accrualRequest(r *http.Request) leave.AccrualRequest {
	q := r.URL.Query()
	req := leave.AccrualRequest{StartDate: q.Get("start_date")}
	if asOf := q.Get("as_of"); asOf != "" {
		req.AsOfDate = &asOf
	}
	return req
}

// canAccessStaff lets staff read only their own balance.
func canAccessStaff(r *http.Request, staffID string) bool {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		return false
	}
	if auth.HasPermission(principal.Role, auth.PermissionLeaveManage) || principal.Role == auth.RoleManager {
		return true
	}
	return principal.StaffID != "" && principal.StaffID == staffID
}

func (h *leaveHandlerImpl) GetAccrual(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.CalculateAccruedLeave(r.Context(), accrualRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetAccrualBreakdown(w http.ResponseWriter, r *http.Request) {
	result, err := h.leaveService.GetAccrualBreakdown(r.Context(), accrualRequest(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) GetBalance(w http.ResponseWriter, r *http.Request) {
	staffID := chi.URLParam(r, "staffID")
	if !canAccessStaff(r, staffID) {
		response.HandleError(w, auth.ErrInsufficientAccess)
		return
	}

	year, err := h.yearParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.GetBalance(r.Context(), leave.BalanceRequest{StaffID: staffID, Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *leaveHandlerImpl) RecordUsage(w http.ResponseWriter, r *http.Request) {
	var req leave.RecordUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.StaffID = chi.URLParam(r, "staffID")
	if req.Year == 0 {
		req.Year = h.now().Year()
	}

	result, err := h.leaveService.RecordUsage(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave usage recorded", result)
}

func (h *leaveHandlerImpl) RefreshBalances(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.RefreshBalances(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balances refreshed", result)
}

func (h *leaveHandlerImpl) MigrateEntitlement(w http.ResponseWriter, r *http.Request) {
	year, err := h.yearParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.leaveService.MigrateEntitlement(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave entitlement migrated", result)
}
