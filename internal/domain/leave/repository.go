package leave

import (
	"context"
)

// BalanceRepository - interface for leave_balances table
type BalanceRepository interface {
	Create(ctx context.Context, balance Balance) (Balance, error)
	GetByStaffYear(ctx context.Context, staffID string, year int) (Balance, error)
	// GetByStaffYearForUpdate also locks the row until the surrounding transaction ends.
	GetByStaffYearForUpdate(ctx context.Context, staffID string, year int) (Balance, error)
	ListByYear(ctx context.Context, year int) ([]Balance, error)
	ListByYearForUpdate(ctx context.Context, year int) ([]Balance, error)
	Update(ctx context.Context, balance Balance) error
}
