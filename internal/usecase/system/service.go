package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/repositories"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
)

// ActionAddResponsavelColumn is the only maintenance action currently known
const ActionAddResponsavelColumn = "add_responsavel_column"

const pendenciaTable = "pendencia_sinalizada"

// Service defines the interface for diagnostics and maintenance
type Service interface {
	// Health runs a trivial query against the store
	Health(ctx context.Context) error

	// TestDB reports the database clock and the pendência table state
	TestDB(ctx context.Context) (*DBReport, error)

	// Tables lists the tables of the clinic schema
	Tables(ctx context.Context) ([]string, error)

	// Migrate runs a named maintenance action
	Migrate(ctx context.Context, action string) (*MigrationResult, error)
}

// DBReport is the result of TestDB
type DBReport struct {
	CurrentTime    time.Time
	TableExists    bool
	PendenciaCount int64
}

// MigrationResult is the result of a maintenance action
type MigrationResult struct {
	Action        string
	Profissional  *entities.Profissional
	AssignedIDs   []int64
	AssignedCount int
}

// SystemService handles diagnostics and maintenance
type SystemService struct {
	schemaRepo       repositories.SchemaRepository
	pendenciaRepo    repositories.PendenciaRepository
	profissionalRepo repositories.ProfissionalRepository
	logger           *zap.Logger
}

// Ensure SystemService implements Service interface
var _ Service = (*SystemService)(nil)

// NewSystemService creates a new system service
func NewSystemService(
	schemaRepo repositories.SchemaRepository,
	pendenciaRepo repositories.PendenciaRepository,
	profissionalRepo repositories.ProfissionalRepository,
	logger *zap.Logger,
) *SystemService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SystemService{
		schemaRepo:       schemaRepo,
		pendenciaRepo:    pendenciaRepo,
		profissionalRepo: profissionalRepo,
		logger:           logger,
	}
}

func (s *SystemService) Health(ctx context.Context) error {
	if err := s.schemaRepo.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}
	return nil
}

// TestDB counts rows only when the table exists
func (s *SystemService) TestDB(ctx context.Context) (*DBReport, error) {
	now, err := s.schemaRepo.Now(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}
	report := &DBReport{CurrentTime: now}

	report.TableExists, err = s.schemaRepo.TableExists(ctx, entities.Schema, pendenciaTable)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}
	if report.TableExists {
		report.PendenciaCount, err = s.schemaRepo.CountRows(ctx, entities.Pendencia{}.TableName())
		if err != nil {
			return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
		}
	}
	return report, nil
}

func (s *SystemService) Tables(ctx context.Context) ([]string, error) {
	tables, err := s.schemaRepo.ListTables(ctx, entities.Schema)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}
	return tables, nil
}

// Migrate runs action. add_responsavel_column ensures the column, assigns
// every unassigned pendência to the default professional and then adds the
// foreign key, so the key is never created over dangling values.
func (s *SystemService) Migrate(ctx context.Context, action string) (*MigrationResult, error) {
	if action != ActionAddResponsavelColumn {
		return nil, fmt.Errorf("%w: %q", usecaseErrors.ErrUnknownAction, action)
	}

	if err := s.schemaRepo.EnsureResponsavelColumn(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	def, err := s.profissionalRepo.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrNoDefaultProfissional
		}
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	ids, err := s.pendenciaRepo.AssignUnassigned(ctx, def.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	if err := s.schemaRepo.EnsureResponsavelForeignKey(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	s.logger.Info("system.migrate.done",
		zap.String("action", action),
		zap.Int64("id_profissional", def.ID),
		zap.Int("assigned", len(ids)),
	)
	return &MigrationResult{
		Action:        action,
		Profissional:  def,
		AssignedIDs:   ids,
		AssignedCount: len(ids),
	}, nil
}
