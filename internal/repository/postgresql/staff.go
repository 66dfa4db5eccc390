package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/staff"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
)

type staffRepositoryImpl struct {
	db *database.DB
}

func NewStaffRepository(db *database.DB) staff.StaffRepository {
	return &staffRepositoryImpl{db: db}
}

const staffColumns = `
	id, name, email, role, site, status,
	standard_rate::text, COALESCE(enhanced_rate, ''), COALESCE(night_rate, ''),
	start_date, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStaff(row rowScanner) (staff.Staff, error) {
	var (
		s         staff.Staff
		standard  string
		startDate *time.Time
	)
	if err := row.Scan(
		&s.ID, &s.Name, &s.Email, &s.Role, &s.Site, &s.Status,
		&standard, &s.EnhancedRateRaw, &s.NightRateRaw,
		&startDate, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return staff.Staff{}, err
	}

	rate, err := decimal.NewFromString(standard)
	if err != nil {
		return staff.Staff{}, fmt.Errorf("staff %s: invalid standard rate %q: %w", s.ID, standard, err)
	}
	s.StandardRate = rate
	s.EnhancedRate = staff.ParseRate(s.EnhancedRateRaw)
	s.NightRate = staff.ParseRate(s.NightRateRaw)

	if startDate != nil {
		// DATE columns come back as UTC midnight.
		local := time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, time.Local)
		s.StartDate = &local
	}
	return s, nil
}

func (r *staffRepositoryImpl) list(ctx context.Context, query string, args ...any) ([]staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := make([]staff.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, s)
	}
	return members, rows.Err()
}

// List implements staff.StaffRepository.
func (r *staffRepositoryImpl) List(ctx context.Context) ([]staff.Staff, error) {
	return r.list(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY name`)
}

// ListActive implements staff.StaffRepository.
func (r *staffRepositoryImpl) ListActive(ctx context.Context) ([]staff.Staff, error) {
	return r.list(ctx, `SELECT `+staffColumns+` FROM staff WHERE LOWER(status) = 'active' ORDER BY name`)
}

// GetByID implements staff.StaffRepository.
func (r *staffRepositoryImpl) GetByID(ctx context.Context, id string) (staff.Staff, error) {
	q := GetQuerier(ctx, r.db)

	s, err := scanStaff(q.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return staff.Staff{}, staff.ErrStaffNotFound
		}
		return staff.Staff{}, err
	}
	return s, nil
}
