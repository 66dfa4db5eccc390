package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/payroll"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const handlerTestSecret = "test-secret-key-for-jwt"

type fakePayrollService struct {
	audits map[string]payroll.ShiftAudit
}

func (f *fakePayrollService) CalculatePayForPeriod(_ context.Context, req payroll.PeriodRequest) (payroll.PeriodReport, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodReport{}, err
	}
	return payroll.PeriodReport{
		RunID:    "run-1",
		Period:   payroll.Period{Start: req.StartDate, End: req.EndDate},
		TotalPay: decimal.RequireFromString("320"),
	}, nil
}

func (f *fakePayrollService) AuditSingleShift(_ context.Context, shiftID string) (payroll.ShiftAudit, error) {
	audit, ok := f.audits[shiftID]
	if !ok {
		return payroll.ShiftAudit{}, shift.ErrShiftNotFound
	}
	return audit, nil
}

func (f *fakePayrollService) ExportPeriodXLSX(_ context.Context, req payroll.PeriodRequest) (payroll.ExportFile, error) {
	if err := req.Validate(); err != nil {
		return payroll.ExportFile{}, err
	}
	return payroll.ExportFile{
		FileName:    "payroll_" + req.StartDate + "_" + req.EndDate + ".xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     []byte("PK"),
	}, nil
}

type fakeNotifier struct {
	audits []payroll.ShiftAudit
}

func (f *fakeNotifier) SendPayrollSummary(context.Context, string, payroll.PeriodReport) error {
	return nil
}

func (f *fakeNotifier) SendShiftAudit(_ context.Context, _ string, audit payroll.ShiftAudit) error {
	f.audits = append(f.audits, audit)
	return nil
}

type fakeLeaveService struct {
	leave.LeaveService
	remaining int
	usage     []leave.RecordUsageRequest
}

func (f *fakeLeaveService) GetBalance(_ context.Context, req leave.BalanceRequest) (leave.BalanceResponse, error) {
	return leave.BalanceResponse{StaffID: req.StaffID, Year: req.Year, HoursRemaining: f.remaining}, nil
}

func (f *fakeLeaveService) RecordUsage(_ context.Context, req leave.RecordUsageRequest) (leave.BalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.BalanceResponse{}, err
	}
	if req.Hours > f.remaining {
		return leave.BalanceResponse{}, leave.ErrInsufficientBalance
	}
	f.usage = append(f.usage, req)
	f.remaining -= req.Hours
	return leave.BalanceResponse{StaffID: req.StaffID, Year: req.Year, HoursRemaining: f.remaining}, nil
}

type fakeShiftService struct {
	shift.ShiftService
}

func (f *fakeShiftService) GetWeekDeadline(_ context.Context, req shift.WeekDeadlineRequest) (shift.WeekDeadlineResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.WeekDeadlineResponse{}, err
	}
	return shift.WeekDeadlineResponse{Date: req.Date, WeekStart: "2026-01-11"}, nil
}

type fakeActivityRepo struct {
	lastLimit int
}

func (f *fakeActivityRepo) Log(context.Context, activity.Log) error { return nil }

func (f *fakeActivityRepo) ListRecent(_ context.Context, action string, limit int) ([]activity.Log, error) {
	f.lastLimit = limit
	return []activity.Log{{ID: "a-1", Action: action, Status: activity.StatusSuccess, Timestamp: time.Now()}}, nil
}

type testServer struct {
	handler  http.Handler
	jwt      jwt.Service
	leave    *fakeLeaveService
	notifier *fakeNotifier
	activity *fakeActivityRepo
}

func newTestServer() *testServer {
	jwtService := jwt.NewJWTService(handlerTestSecret)
	leaveSvc := &fakeLeaveService{remaining: 56}
	notifier := &fakeNotifier{}
	activityRepo := &fakeActivityRepo{}
	payrollSvc := &fakePayrollService{audits: map[string]payroll.ShiftAudit{
		"shift-1": {ShiftID: "shift-1", StaffName: "Alice Carer", Cost: decimal.RequireFromString("132.5")},
	}}

	router := NewRouter(RouterOptions{Env: "test"}, jwtService, Handlers{
		Payroll:  NewPayrollHandler(payrollSvc, notifier, "admin@example.com"),
		Leave:    NewLeaveHandler(leaveSvc),
		Shift:    NewShiftHandler(&fakeShiftService{}),
		Activity: NewActivityHandler(activityRepo),
	})
	return &testServer{handler: router, jwt: jwtService, leave: leaveSvc, notifier: notifier, activity: activityRepo}
}

func (s *testServer) token(t *testing.T, role, staffID string) string {
	t.Helper()
	_, raw, err := s.jwt.JWTAuth().Encode(map[string]interface{}{
		"user_id":  "user-" + role,
		"role":     role,
		"staff_id": staffID,
		"type":     "access",
		"exp":      time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return raw
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRouter_RequiresToken(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/period?start=2026-01-11&end=2026-01-17", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/period?start=2026-01-11&end=2026-01-17", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PermissionDenied(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/period?start=2026-01-11&end=2026-01-17", s.token(t, "staff", "s-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/leave/balances/refresh", s.token(t, "manager", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPayrollHandler_GetPeriodReport(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "manager", "")

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/period?start=2026-01-11&end=2026-01-17", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeResponse(t, rec)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "run-1", data["run_id"])
	assert.Equal(t, "320", data["total_pay"])

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/period?start=2026-01-17&end=2026-01-11", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decodeResponse(t, rec)["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errBody["code"])
}

func TestPayrollHandler_ExportPeriod(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/period/export?start=2026-01-11&end=2026-01-17", s.token(t, "admin", ""), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="payroll_2026-01-11_2026-01-17.xlsx"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", rec.Body.String())
}

func TestPayrollHandler_AuditShift(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "manager", "")

	rec := s.do(t, http.MethodGet, "/api/v1/payroll/shifts/missing/audit", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/shifts/shift-1/audit", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, s.notifier.audits)

	rec = s.do(t, http.MethodGet, "/api/v1/payroll/shifts/shift-1/audit?notify=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, s.notifier.audits, 1)
	assert.Equal(t, "Alice Carer", s.notifier.audits[0].StaffName)
}

func TestLeaveHandler_GetBalance_OwnOnlyForStaff(t *testing.T) {
	s := newTestServer()

	rec := s.do(t, http.MethodGet, "/api/v1/leave/balances/s-1?year=2026", s.token(t, "staff", "s-1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, float64(2026), data["year"])

	rec = s.do(t, http.MethodGet, "/api/v1/leave/balances/s-2?year=2026", s.token(t, "staff", "s-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/leave/balances/s-2?year=26", s.token(t, "admin", ""), nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestLeaveHandler_RecordUsage(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "admin", "")

	rec := s.do(t, http.MethodPost, "/api/v1/leave/balances/s-1/usage", token, map[string]interface{}{"year": 2026, "hours": 16})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, s.leave.usage, 1)
	assert.Equal(t, "s-1", s.leave.usage[0].StaffID)

	rec = s.do(t, http.MethodPost, "/api/v1/leave/balances/s-1/usage", token, map[string]interface{}{"year": 2026, "hours": 100})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/leave/balances/s-1/usage", token, map[string]interface{}{"year": 2026, "hours": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestShiftHandler_GetWeekDeadline(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "staff", "s-1")

	rec := s.do(t, http.MethodGet, "/api/v1/shifts/deadline?date=2026-01-14", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/shifts/deadline?date=14/01/2026", token, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/v1/shifts/remove-duplicates", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestActivityHandler_ListRecent(t *testing.T) {
	s := newTestServer()
	token := s.token(t, "admin", "")

	rec := s.do(t, http.MethodGet, "/api/v1/activity?action=SHIFT_AUDIT&limit=10000", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxActivityLimit, s.activity.lastLimit)

	rec = s.do(t, http.MethodGet, "/api/v1/activity?limit=-1", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/v1/activity", s.token(t, "manager", ""), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
