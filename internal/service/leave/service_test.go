package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeStaffRepo struct {
	members []staff.Staff
}

func (f *fakeStaffRepo) List(ctx context.Context) ([]staff.Staff, error) { return f.members, nil }

func (f *fakeStaffRepo) ListActive(ctx context.Context) ([]staff.Staff, error) {
	out := make([]staff.Staff, 0, len(f.members))
	for _, m := range f.members {
		if m.Status == "active" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStaffRepo) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return staff.Staff{}, staff.ErrStaffNotFound
}

type fakeBalanceRepo struct {
	balances map[string]leave.Balance
	seq      int
	locked   int
}

func newFakeBalanceRepo(balances ...leave.Balance) *fakeBalanceRepo {
	f := &fakeBalanceRepo{balances: map[string]leave.Balance{}}
	for _, b := range balances {
		f.balances[balanceKey(b.StaffID, b.Year)] = b
	}
	return f
}

func balanceKey(staffID string, year int) string {
	return fmt.Sprintf("%s/%d", staffID, year)
}

func (f *fakeBalanceRepo) Create(ctx context.Context, b leave.Balance) (leave.Balance, error) {
	key := balanceKey(b.StaffID, b.Year)
	if _, ok := f.balances[key]; ok {
		return leave.Balance{}, leave.ErrBalanceExists
	}
	f.seq++
	b.ID = fmt.Sprintf("lb-%d", f.seq)
	f.balances[key] = b
	return b, nil
}

func (f *fakeBalanceRepo) GetByStaffYear(ctx context.Context, staffID string, year int) (leave.Balance, error) {
	b, ok := f.balances[balanceKey(staffID, year)]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

func (f *fakeBalanceRepo) GetByStaffYearForUpdate(ctx context.Context, staffID string, year int) (leave.Balance, error) {
	f.locked++
	return f.GetByStaffYear(ctx, staffID, year)
}

func (f *fakeBalanceRepo) ListByYearForUpdate(ctx context.Context, year int) ([]leave.Balance, error) {
	f.locked++
	return f.ListByYear(ctx, year)
}

func (f *fakeBalanceRepo) ListByYear(ctx context.Context, year int) ([]leave.Balance, error) {
	var out []leave.Balance
	for _, b := range f.balances {
		if b.Year == year {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) Update(ctx context.Context, b leave.Balance) error {
	key := balanceKey(b.StaffID, b.Year)
	if _, ok := f.balances[key]; !ok {
		return leave.ErrBalanceNotFound
	}
	f.balances[key] = b
	return nil
}

type fakeActivityRepo struct {
	entries []activity.Log
}

func (f *fakeActivityRepo) Log(ctx context.Context, entry activity.Log) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeActivityRepo) ListRecent(ctx context.Context, action string, limit int) ([]activity.Log, error) {
	return f.entries, nil
}

func ptrTime(t time.Time) *time.Time { return &t }

func newTestService(members []staff.Staff, balances *fakeBalanceRepo, logs *fakeActivityRepo, now time.Time) *LeaveServiceImpl {
	svc := NewLeaveService(passthroughTx{}, balances, &fakeStaffRepo{members: members}, logs, NewAccrualCalculator(leave.PolicyV2)).(*LeaveServiceImpl)
	svc.now = func() time.Time { return now }
	return svc
}

func TestCalculateAccruedLeave(t *testing.T) {
	svc := newTestService(nil, newFakeBalanceRepo(), &fakeActivityRepo{}, time.Date(2026, 6, 1, 12, 0, 0, 0, time.Local))

	asOf := "2026-06-01"
	resp, err := svc.CalculateAccruedLeave(context.Background(), leave.AccrualRequest{StartDate: "2026-02-26", AsOfDate: &asOf})
	require.NoError(t, err)
	assert.Equal(t, 56, resp.HoursAccrued)

	resp, err = svc.CalculateAccruedLeave(context.Background(), leave.AccrualRequest{StartDate: "2020-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 224, resp.HoursAccrued)
	assert.Equal(t, "2026-06-01", resp.AsOfDate)
}

func TestCalculateAccruedLeave_Validation(t *testing.T) {
	svc := newTestService(nil, newFakeBalanceRepo(), &fakeActivityRepo{}, time.Now())

	_, err := svc.CalculateAccruedLeave(context.Background(), leave.AccrualRequest{StartDate: "01/02/2026"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "start_date", verrs[0].Field)

	asOf := "2026-01-01"
	_, err = svc.CalculateAccruedLeave(context.Background(), leave.AccrualRequest{StartDate: "2026-03-01", AsOfDate: &asOf})
	assert.ErrorIs(t, err, leave.ErrStartDateInFuture)
}

func TestRecordUsage(t *testing.T) {
	balances := newFakeBalanceRepo(leave.Balance{
		ID: "lb-1", StaffID: "s1", Year: 2026,
		TotalEntitlement: 224, HoursAccrued: 112, HoursUsed: 16, HoursRemaining: 208, PolicyVersion: 2,
	})
	svc := newTestService(nil, balances, &fakeActivityRepo{}, time.Now())

	resp, err := svc.RecordUsage(context.Background(), leave.RecordUsageRequest{StaffID: "s1", Year: 2026, Hours: 8})
	require.NoError(t, err)
	assert.Equal(t, 24, resp.HoursUsed)
	assert.Equal(t, 200, resp.HoursRemaining)

	assert.Equal(t, 1, balances.locked)

	_, err = svc.RecordUsage(context.Background(), leave.RecordUsageRequest{StaffID: "s1", Year: 2026, Hours: 500})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	_, err = svc.RecordUsage(context.Background(), leave.RecordUsageRequest{StaffID: "nobody", Year: 2026, Hours: 8})
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestRefreshBalances(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	members := []staff.Staff{
		{ID: "s1", Name: "Amy", Status: "active", StartDate: ptrTime(now.AddDate(0, 0, -95))},
		{ID: "s2", Name: "Ben", Status: "active", StartDate: ptrTime(now.AddDate(-2, 0, 0))},
		{ID: "s3", Name: "Cal", Status: "active"},
		{ID: "s4", Name: "Dee", Status: "inactive", StartDate: ptrTime(now.AddDate(-1, 0, 0))},
	}
	balances := newFakeBalanceRepo(leave.Balance{
		ID: "lb-9", StaffID: "s2", Year: 2026,
		TotalEntitlement: 224, HoursAccrued: 168, HoursUsed: 24, HoursRemaining: 200, PolicyVersion: 2,
	})
	svc := newTestService(members, balances, &fakeActivityRepo{}, now)

	result, err := svc.RefreshBalances(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, []string{"Cal"}, result.Skipped)

	amy, err := balances.GetByStaffYear(context.Background(), "s1", 2026)
	require.NoError(t, err)
	assert.Equal(t, 56, amy.HoursAccrued)
	assert.Equal(t, 224, amy.HoursRemaining)

	ben, err := balances.GetByStaffYear(context.Background(), "s2", 2026)
	require.NoError(t, err)
	assert.Equal(t, 224, ben.HoursAccrued)
	assert.Equal(t, 200, ben.HoursRemaining)
}

func TestRefreshBalances_UnmigratedBalanceKeepsItsPolicy(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	members := []staff.Staff{
		{ID: "s1", Name: "Amy", Status: "active", StartDate: ptrTime(now.AddDate(-2, 0, 0))},
		{ID: "s2", Name: "Ben", Status: "active", StartDate: ptrTime(now.AddDate(0, -7, 0))},
	}
	balances := newFakeBalanceRepo(
		leave.Balance{ID: "lb-1", StaffID: "s1", Year: 2026, TotalEntitlement: 112, HoursAccrued: 56, HoursUsed: 8, HoursRemaining: 104, PolicyVersion: 1},
		leave.Balance{ID: "lb-2", StaffID: "s2", Year: 2026, TotalEntitlement: 112, HoursAccrued: 0, HoursUsed: 0, HoursRemaining: 112, PolicyVersion: 1},
	)
	svc := newTestService(members, balances, &fakeActivityRepo{}, now)

	_, err := svc.RefreshBalances(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, balances.locked)

	amy, _ := balances.GetByStaffYear(context.Background(), "s1", 2026)
	assert.Equal(t, 112, amy.HoursAccrued)
	assert.Equal(t, 112, amy.TotalEntitlement)
	assert.Equal(t, 1, amy.PolicyVersion)

	// Two quarters at the v1 rate.
	ben, _ := balances.GetByStaffYear(context.Background(), "s2", 2026)
	assert.Equal(t, 56, ben.HoursAccrued)
	assert.LessOrEqual(t, ben.HoursAccrued, ben.TotalEntitlement)
}

func TestMigrateEntitlement(t *testing.T) {
	now := time.Date(2026, 6, 1, 9, 0, 0, 0, time.Local)
	members := []staff.Staff{
		{ID: "s1", Name: "Amy", Status: "active", StartDate: ptrTime(now.AddDate(0, 0, -200))},
		{ID: "s2", Name: "Ben", Status: "active"},
	}
	balances := newFakeBalanceRepo(
		leave.Balance{ID: "lb-1", StaffID: "s1", Year: 2026, TotalEntitlement: 112, HoursAccrued: 56, HoursUsed: 10, HoursRemaining: 102, PolicyVersion: 1},
		leave.Balance{ID: "lb-2", StaffID: "s2", Year: 2026, TotalEntitlement: 112, HoursAccrued: 112, HoursUsed: 100, HoursRemaining: 12, PolicyVersion: 1},
		leave.Balance{ID: "lb-3", StaffID: "s3", Year: 2026, TotalEntitlement: 224, HoursAccrued: 0, HoursUsed: 0, HoursRemaining: 224, PolicyVersion: 2},
	)
	logs := &fakeActivityRepo{}
	svc := newTestService(members, balances, logs, now)

	result, err := svc.MigrateEntitlement(context.Background(), 2026)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Updated)

	amy, _ := balances.GetByStaffYear(context.Background(), "s1", 2026)
	assert.Equal(t, 224, amy.TotalEntitlement)
	assert.Equal(t, 214, amy.HoursRemaining)
	assert.Equal(t, 112, amy.HoursAccrued)

	ben, _ := balances.GetByStaffYear(context.Background(), "s2", 2026)
	assert.Equal(t, 124, ben.HoursRemaining)
	assert.Equal(t, 112, ben.HoursAccrued)

	require.Len(t, logs.entries, 1)
	assert.Equal(t, activity.ActionLeaveMigration, logs.entries[0].Action)
	assert.Equal(t, activity.StatusSuccess, logs.entries[0].Status)
}
