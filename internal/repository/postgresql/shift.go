package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/shift"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
)

type shiftRepositoryImpl struct {
	db *database.DB
}

func NewShiftRepository(db *database.DB) shift.ShiftRepository {
	return &shiftRepositoryImpl{db: db}
}

const shiftColumns = `
	id, COALESCE(staff_id, ''), staff_name, site_id, site_name,
	date, type, start_time, end_time, duration::float8,
	clocked_in, clock_in_time, clocked_out, clock_out_time,
	staff_status, week_deadline, auto_accepted, response_locked,
	notes, decline_reason, created_at, updated_at`

func scanShift(row rowScanner) (shift.Shift, error) {
	var (
		s      shift.Shift
		status string
	)
	err := row.Scan(
		&s.ID, &s.StaffID, &s.StaffName, &s.SiteID, &s.SiteName,
		&s.Date, &s.Type, &s.StartTime, &s.EndTime, &s.Duration,
		&s.ClockedIn, &s.ClockInTime, &s.ClockedOut, &s.ClockOutTime,
		&status, &s.WeekDeadline, &s.AutoAccepted, &s.ResponseLocked,
		&s.Notes, &s.DeclineReason, &s.CreatedAt, &s.UpdatedAt,
	)
	s.StaffStatus = shift.ResponseStatus(status)
	return s, err
}

func (r *shiftRepositoryImpl) query(ctx context.Context, sql string, args ...any) ([]shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shifts := make([]shift.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, s)
	}
	return shifts, rows.Err()
}

// GetByID implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetByID(ctx context.Context, id string) (shift.Shift, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanShift(q.QueryRow(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return shift.Shift{}, shift.ErrShiftNotFound
		}
		return shift.Shift{}, err
	}
	return s, nil
}

// GetInRange implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetInRange(ctx context.Context, startDate, endDate string) ([]shift.Shift, error) {
	return r.query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE date >= $1 AND date <= $2
		ORDER BY date, start_time`, startDate, endDate)
}

// GetForStaffInWeek implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetForStaffInWeek(ctx context.Context, staffID, weekStart, weekEnd string) ([]shift.Shift, error) {
	return r.query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE staff_id = $1 AND date >= $2 AND date <= $3
		ORDER BY date, start_time`, staffID, weekStart, weekEnd)
}

// GetByDate implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetByDate(ctx context.Context, date string) ([]shift.Shift, error) {
	return r.query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE date = $1
		ORDER BY site_name, start_time`, date)
}

// GetWithoutDeadline implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetWithoutDeadline(ctx context.Context) ([]shift.Shift, error) {
	return r.query(ctx, `SELECT `+shiftColumns+` FROM shifts WHERE week_deadline IS NULL ORDER BY date`)
}

// SetWeekDeadline implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) SetWeekDeadline(ctx context.Context, id string, deadline time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE shifts SET week_deadline = $2, updated_at = NOW() WHERE id = $1`, id, deadline)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// AutoAcceptPastDeadline implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) AutoAcceptPastDeadline(ctx context.Context, now time.Time) ([]shift.Shift, error) {
	return r.query(ctx, `
		UPDATE shifts
		SET staff_status = 'accepted', auto_accepted = true, response_locked = true, updated_at = NOW()
		WHERE staff_status = 'pending' AND week_deadline IS NOT NULL AND week_deadline < $1
		RETURNING `+shiftColumns, now)
}

// LockPastDeadline implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) LockPastDeadline(ctx context.Context, now time.Time) (int64, error) {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE shifts
		SET response_locked = true, updated_at = NOW()
		WHERE response_locked = false AND week_deadline IS NOT NULL AND week_deadline < $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// GetOpenBefore implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetOpenBefore(ctx context.Context, date string) ([]shift.Shift, error) {
	return r.query(ctx, `
		SELECT `+shiftColumns+`
		FROM shifts
		WHERE date < $1 AND clocked_in = true AND clocked_out = false
		ORDER BY date, start_time`, date)
}

// ClockOut implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) ClockOut(ctx context.Context, id string, at time.Time) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `
		UPDATE shifts
		SET clocked_out = true, clock_out_time = $2, updated_at = NOW()
		WHERE id = $1 AND clocked_out = false`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shift.ErrShiftNotFound
	}
	return nil
}

// GetAll implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) GetAll(ctx context.Context) ([]shift.Shift, error) {
	return r.query(ctx, `SELECT `+shiftColumns+` FROM shifts ORDER BY created_at`)
}

// DeleteByIDs implements shift.ShiftRepository.
func (r *shiftRepositoryImpl) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM shifts WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
