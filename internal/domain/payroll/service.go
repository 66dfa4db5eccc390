package payroll

import "context"

type PayrollService interface {
	CalculatePayForPeriod(ctx context.Context, req PeriodRequest) (PeriodReport, error)
	AuditSingleShift(ctx context.Context, shiftID string) (ShiftAudit, error)
	ExportPeriodXLSX(ctx context.Context, req PeriodRequest) (ExportFile, error)
}
