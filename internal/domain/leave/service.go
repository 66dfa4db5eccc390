package leave

import (
	"context"
)

type LeaveService interface {
	// Accrual
	CalculateAccruedLeave(ctx context.Context, req AccrualRequest) (AccrualResponse, error)
	GetAccrualBreakdown(ctx context.Context, req AccrualRequest) (AccrualBreakdown, error)
	// Balance
	GetBalance(ctx context.Context, req BalanceRequest) (BalanceResponse, error)
	RecordUsage(ctx context.Context, req RecordUsageRequest) (BalanceResponse, error)
	RefreshBalances(ctx context.Context, year int) (BatchResult, error)
	MigrateEntitlement(ctx context.Context, year int) (BatchResult, error)
}
