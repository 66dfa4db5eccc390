package staff

import "context"

// StaffRepository - interface for the staff table
type StaffRepository interface {
	List(ctx context.Context) ([]Staff, error)
	ListActive(ctx context.Context) ([]Staff, error)
	GetByID(ctx context.Context, id string) (Staff, error)
}
