package postgresql

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/socialcare-homes/rota-backend-go/internal/domain/activity"
	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
)

type activityLogRepositoryImpl struct {
	db *database.DB
}

func NewActivityLogRepository(db *database.DB) activity.ActivityLogRepository {
	return &activityLogRepositoryImpl{db: db}
}

// Log implements activity.ActivityLogRepository.
func (r *activityLogRepositoryImpl) Log(ctx context.Context, entry activity.Log) error {
	q := GetQuerier(ctx, r.db)

	var metadata []byte
	if len(entry.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("marshal activity metadata: %w", err)
		}
	}

	query := `
		INSERT INTO activity_logs (action, status, staff_id, staff_name, site_name, details, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := q.Exec(ctx, query,
		entry.Action, string(entry.Status), entry.StaffID, entry.StaffName, entry.SiteName,
		entry.Details, metadata,
	)
	return err
}

// ListRecent implements activity.ActivityLogRepository. An empty action lists every action.
func (r *activityLogRepositoryImpl) ListRecent(ctx context.Context, action string, limit int) ([]activity.Log, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, timestamp, action, status, staff_id, staff_name, site_name, details, metadata
		FROM activity_logs
		WHERE ($1 = '' OR action = $1)
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := q.Query(ctx, query, action, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]activity.Log, 0)
	for rows.Next() {
		var (
			entry    activity.Log
			status   string
			metadata []byte
		)
		if err := rows.Scan(
			&entry.ID, &entry.Timestamp, &entry.Action, &status,
			&entry.StaffID, &entry.StaffName, &entry.SiteName, &entry.Details, &metadata,
		); err != nil {
			return nil, err
		}
		entry.Status = activity.Status(status)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("activity log %s: %w", entry.ID, err)
			}
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
