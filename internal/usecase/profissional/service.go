package profissional

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/repositories"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
)

// Service defines the interface for the professional use case
type Service interface {
	// ListActive returns active professionals and the default assignee, if any
	ListActive(ctx context.Context) (*Roster, error)
}

// Roster is the list of assignable professionals
type Roster struct {
	Profissionais []*entities.Profissional
	Padrao        *entities.Profissional
}

// ProfissionalService handles professional business logic
type ProfissionalService struct {
	repo   repositories.ProfissionalRepository
	logger *zap.Logger
}

// Ensure ProfissionalService implements Service interface
var _ Service = (*ProfissionalService)(nil)

// NewProfissionalService creates a new professional service
func NewProfissionalService(repo repositories.ProfissionalRepository, logger *zap.Logger) *ProfissionalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfissionalService{repo: repo, logger: logger}
}

// ListActive lists active professionals, default first. The default is taken
// from the list itself so both come from the same read.
func (s *ProfissionalService) ListActive(ctx context.Context) (*Roster, error) {
	list, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("profissional.list.failed", zap.Error(err))
		return nil, fmt.Errorf("failed to list profissionais: %w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	roster := &Roster{Profissionais: list}
	for _, p := range list {
		if p.FgPadraoPendencia {
			roster.Padrao = p
			break
		}
	}
	return roster, nil
}
