package postgresql

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/socialcare-homes/rota-backend-go/internal/domain/leave"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const balanceColumns = `
	id, staff_id, staff_name, year,
	total_entitlement, hours_accrued, hours_used, hours_remaining,
	policy_version, created_at, updated_at`

func scanBalance(row rowScanner) (leave.Balance, error) {
	var b leave.Balance
	err := row.Scan(
		&b.ID, &b.StaffID, &b.StaffName, &b.Year,
		&b.TotalEntitlement, &b.HoursAccrued, &b.HoursUsed, &b.HoursRemaining,
		&b.PolicyVersion, &b.CreatedAt, &b.UpdatedAt,
	)
	return b, err
}

// Create implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.Balance) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_balances (
			staff_id, staff_name, year,
			total_entitlement, hours_accrued, hours_used, hours_remaining, policy_version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + balanceColumns

	created, err := scanBalance(q.QueryRow(ctx, query,
		balance.StaffID, balance.StaffName, balance.Year,
		balance.TotalEntitlement, balance.HoursAccrued, balance.HoursUsed, balance.HoursRemaining,
		balance.PolicyVersion,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return leave.Balance{}, leave.ErrBalanceExists
		}
		return leave.Balance{}, err
	}
	return created, nil
}

// GetByStaffYear implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) GetByStaffYear(ctx context.Context, staffID string, year int) (leave.Balance, error) {
	return r.getByStaffYear(ctx, staffID, year, "")
}

// GetByStaffYearForUpdate implements leave.BalanceRepository.
// Outside a transaction the lock is released as soon as the row is read.
func (r *leaveBalanceRepositoryImpl) GetByStaffYearForUpdate(ctx context.Context, staffID string, year int) (leave.Balance, error) {
	return r.getByStaffYear(ctx, staffID, year, " FOR UPDATE")
}

func (r *leaveBalanceRepositoryImpl) getByStaffYear(ctx context.Context, staffID string, year int, lockClause string) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + balanceColumns + ` FROM leave_balances WHERE staff_id = $1 AND year = $2` + lockClause

	b, err := scanBalance(q.QueryRow(ctx, query, staffID, year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, err
	}
	return b, nil
}

// ListByYear implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByYear(ctx context.Context, year int) ([]leave.Balance, error) {
	return r.listByYear(ctx, year, "")
}

// ListByYearForUpdate implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) ListByYearForUpdate(ctx context.Context, year int) ([]leave.Balance, error) {
	return r.listByYear(ctx, year, " FOR UPDATE")
}

func (r *leaveBalanceRepositoryImpl) listByYear(ctx context.Context, year int, lockClause string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT `+balanceColumns+` FROM leave_balances WHERE year = $1 ORDER BY staff_name`+lockClause, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	balances := make([]leave.Balance, 0)
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// Update implements leave.BalanceRepository.
func (r *leaveBalanceRepositoryImpl) Update(ctx context.Context, balance leave.Balance) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET total_entitlement = $2,
			hours_accrued = $3,
			hours_used = $4,
			hours_remaining = $5,
			policy_version = $6,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		balance.ID, balance.TotalEntitlement, balance.HoursAccrued,
		balance.HoursUsed, balance.HoursRemaining, balance.PolicyVersion,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}
	return nil
}
