package activity

import "context"

// ActivityLogRepository - interface for activity_logs table
type ActivityLogRepository interface {
	Log(ctx context.Context, entry Log) error
	ListRecent(ctx context.Context, action string, limit int) ([]Log, error)
}
