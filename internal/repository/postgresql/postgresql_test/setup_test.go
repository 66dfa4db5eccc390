package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/socialcare-homes/rota-backend-go/internal/pkg/database"
)

// TestDatabaseSetup holds a migrated test database.
type TestDatabaseSetup struct {
	DB *database.DB
}

// NewTestDatabase connects to TEST_DATABASE_URL and applies the migrations.
// The test is skipped when no database is configured.
func NewTestDatabase(t *testing.T) *TestDatabaseSetup {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository integration test")
	}

	if err := database.RunMigrations(dsn); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	db, err := database.NewPostgreSQLDB(context.Background(), dsn, database.PoolOptions{MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	setup := &TestDatabaseSetup{DB: db}
	if err := setup.TruncateAllTables(context.Background()); err != nil {
		db.Close()
		t.Fatalf("failed to truncate test database: %v", err)
	}
	t.Cleanup(setup.Close)
	return setup
}

// TruncateAllTables removes every row from the application tables.
func (s *TestDatabaseSetup) TruncateAllTables(ctx context.Context) error {
	tx, err := s.DB.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tables := []string{
		"activity_logs",
		"leave_balances",
		"shifts",
		"staff",
	}

	for _, table := range tables {
		_, err := tx.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table))
		if err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}

// InsertStaff seeds a staff row and returns its ID.
func (s *TestDatabaseSetup) InsertStaff(ctx context.Context, name, standard, enhanced, night string, startDate *string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO staff (name, role, site, status, standard_rate, enhanced_rate, night_rate, start_date)
		VALUES ($1, 'Carer', 'Oak House', 'Active', $2::numeric, $3, $4, $5::date)
		RETURNING id
	`, name, standard, enhanced, night, startDate).Scan(&id)
	return id, err
}

// InsertShift seeds a shift row and returns its ID.
func (s *TestDatabaseSetup) InsertShift(ctx context.Context, staffID *string, date, shiftType, start, end string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
		INSERT INTO shifts (staff_id, staff_name, site_id, site_name, date, type, start_time, end_time)
		VALUES ($1, 'Seeded', 'site-1', 'Oak House', $2, $3, $4, $5)
		RETURNING id
	`, staffID, date, shiftType, start, end).Scan(&id)
	return id, err
}

// Close closes the database connection
func (s *TestDatabaseSetup) Close() {
	s.DB.Close()
}
