package postgresql_test

import (
	"context"
	"testing"
	"time"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func strPtr(s string) *string { return &s }

func TestStaffRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewStaffRepository(setup.DB)

	id, err := setup.InsertStaff(ctx, "Alice Carer", "12.50", "—", "£15.00", strPtr("2025-01-15"))
	require.NoError(t, err)

	member, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "12.5", member.StandardRate.String())
	assert.Nil(t, member.EnhancedRate)
	assert.Equal(t, "—", member.EnhancedRateRaw)
	require.NotNil(t, member.NightRate)
	assert.Equal(t, "15", member.NightRate.String())
	require.NotNil(t, member.StartDate)
	assert.Equal(t, "2025-01-15", member.StartDate.Format("2006-01-02"))

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, staff.ErrStaffNotFound)
}

func TestShiftRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewShiftRepository(setup.DB)

	staffID, err := setup.InsertStaff(ctx, "Bob Night", "12.50", "—", "—", nil)
	require.NoError(t, err)

	first, err := setup.InsertShift(ctx, &staffID, "2026-01-12", "Night", "20:00", "08:00")
	require.NoError(t, err)
	_, err = setup.InsertShift(ctx, &staffID, "2026-01-20", "Day", "08:00", "16:00")
	require.NoError(t, err)
	unassigned, err := setup.InsertShift(ctx, nil, "2026-01-13", "Day", "08:00", "16:00")
	require.NoError(t, err)

	inRange, err := repo.GetInRange(ctx, "2026-01-11", "2026-01-17")
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.Equal(t, first, inRange[0].ID)
	assert.Equal(t, shift.StatusPending, inRange[0].StaffStatus)
	assert.Equal(t, "", inRange[1].StaffID)

	week, err := repo.GetForStaffInWeek(ctx, staffID, "2026-01-11", "2026-01-17")
	require.NoError(t, err)
	assert.Len(t, week, 1)

	deadline := time.Date(2026, 1, 11, 0, 0, 0, 0, time.Local)
	require.NoError(t, repo.SetWeekDeadline(ctx, first, deadline))

	accepted, err := repo.AutoAcceptPastDeadline(ctx, deadline.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.True(t, accepted[0].AutoAccepted)
	assert.True(t, accepted[0].ResponseLocked)

	deleted, err := repo.DeleteByIDs(ctx, []string{unassigned})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.GetByID(ctx, unassigned)
	assert.ErrorIs(t, err, shift.ErrShiftNotFound)
	assert.ErrorIs(t, repo.ClockOut(ctx, unassigned, time.Now()), shift.ErrShiftNotFound)
}

func TestLeaveBalanceRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(setup.DB)

	staffID, err := setup.InsertStaff(ctx, "Alice Carer", "12.50", "—", "—", strPtr("2025-01-15"))
	require.NoError(t, err)

	balance := leave.Balance{StaffID: staffID, StaffName: "Alice Carer", Year: 2026, TotalEntitlement: 224, HoursAccrued: 56, PolicyVersion: 2}
	balance.Recompute()

	created, err := repo.Create(ctx, balance)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 224, created.HoursRemaining)

	_, err = repo.Create(ctx, balance)
	assert.ErrorIs(t, err, leave.ErrBalanceExists)

	created.HoursUsed = 24
	created.Recompute()
	require.NoError(t, repo.Update(ctx, created))

	got, err := repo.GetByStaffYear(ctx, staffID, 2026)
	require.NoError(t, err)
	assert.Equal(t, 200, got.HoursRemaining)

	_, err = repo.GetByStaffYear(ctx, staffID, 2025)
	assert.ErrorIs(t, err, leave.ErrBalanceNotFound)
}

func TestLeaveBalanceRepository_ConcurrentUsageUnderRowLock(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewLeaveBalanceRepository(setup.DB)
	tx := postgresql.NewTransactor(setup.DB)

	staffID, err := setup.InsertStaff(ctx, "Alice Carer", "12.50", "—", "—", strPtr("2025-01-15"))
	require.NoError(t, err)
	balance := leave.Balance{StaffID: staffID, StaffName: "Alice Carer", Year: 2026, TotalEntitlement: 224, HoursAccrued: 112, PolicyVersion: 2}
	balance.Recompute()
	_, err = repo.Create(ctx, balance)
	require.NoError(t, err)

	const workers = 6
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			return tx.WithinTx(ctx, func(ctx context.Context) error {
				b, err := repo.GetByStaffYearForUpdate(ctx, staffID, 2026)
				if err != nil {
					return err
				}
				b.HoursUsed += 8
				b.Recompute()
				return repo.Update(ctx, b)
			})
		})
	}
	require.NoError(t, g.Wait())

	got, err := repo.GetByStaffYear(ctx, staffID, 2026)
	require.NoError(t, err)
	assert.Equal(t, workers*8, got.HoursUsed)
	assert.Equal(t, 224-workers*8, got.HoursRemaining)

	locked, err := repo.ListByYearForUpdate(ctx, 2026)
	require.NoError(t, err)
	assert.Len(t, locked, 1)
}

func TestActivityLogRepository(t *testing.T) {
	setup := NewTestDatabase(t)
	ctx := context.Background()
	repo := postgresql.NewActivityLogRepository(setup.DB)

	require.NoError(t, repo.Log(ctx, activity.Log{
		Action:   activity.ActionShiftAudit,
		Status:   activity.StatusWarning,
		Details:  "Shift audit with notes",
		Metadata: map[string]interface{}{"week_start": "2026-01-11"},
	}))
	require.NoError(t, repo.Log(ctx, activity.Log{Action: activity.ActionAutoAccept, Status: activity.StatusSuccess}))

	audits, err := repo.ListRecent(ctx, activity.ActionShiftAudit, 10)
	require.NoError(t, err)
	require.Len(t, audits, 1)
	assert.Equal(t, activity.StatusWarning, audits[0].Status)
	assert.Equal(t, "2026-01-11", audits[0].Metadata["week_start"])

	all, err := repo.ListRecent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
