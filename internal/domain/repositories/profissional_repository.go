package repositories

import (
	"context"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// ProfissionalRepository defines the interface for professional data access
type ProfissionalRepository interface {
	// ListActive returns active professionals, default assignee first, then by name
	ListActive(ctx context.Context) ([]*entities.Profissional, error)

	// FindDefault returns the default assignee; gorm.ErrRecordNotFound when none
	FindDefault(ctx context.Context) (*entities.Profissional, error)
}
