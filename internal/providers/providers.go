package providers

import (
	"context"

	"employee-directory/internal/domain"
)

// EmployeeProvider is one remote source of directory entries, typically an office.
type EmployeeProvider interface {
	Name() string
	ListEmployees(ctx context.Context) ([]domain.Employee, error)
}
