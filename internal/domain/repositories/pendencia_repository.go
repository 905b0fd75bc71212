package repositories

import (
	"context"
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// PendenciaRepository defines the interface for pendência data access
type PendenciaRepository interface {
	// List retrieves pendências joined with assignee and person data,
	// newest detection first
	List(ctx context.Context, filters PendenciaFilters) ([]*PendenciaRow, error)

	// FindByID retrieves a single pendência
	FindByID(ctx context.Context, id int64) (*entities.Pendencia, error)

	// Modify locks the row, lets fn mutate it and persists the columns fn
	// returns. gorm.ErrRecordNotFound is returned for unknown ids.
	Modify(ctx context.Context, id int64, fn func(p *entities.Pendencia) []string) (*entities.Pendencia, error)

	// Create inserts a pendência and fills its generated id
	Create(ctx context.Context, p *entities.Pendencia) error

	// AssignUnassigned sets the assignee of every pendência without one and
	// returns the affected ids
	AssignUnassigned(ctx context.Context, profissionalID int64) ([]int64, error)
}

// PendenciaFilters represents the server-side filter options. Nil/zero
// fields are not applied.
type PendenciaFilters struct {
	Status        *entities.PendenciaStatus
	Tipo          string
	Prioridade    *int
	Unassigned    bool
	IDResponsavel *int64
	Search        string
	Limit         int
}

// PendenciaRow is a pendência with the columns of its LEFT JOINs. Joined
// columns are nil when the related row is missing.
type PendenciaRow struct {
	entities.Pendencia
	ResponsavelNome          *string    `gorm:"column:responsavel_nome"`
	ResponsavelEspecialidade *string    `gorm:"column:responsavel_especialidade"`
	IDPessoa                 *int64     `gorm:"column:id_pessoa"`
	PessoaNome               *string    `gorm:"column:pessoa_nome"`
	PessoaStatus             *string    `gorm:"column:pessoa_status"`
	Stage                    *string    `gorm:"column:stage"`
	LeadScore                *int       `gorm:"column:lead_score"`
	ConsentMarketing         *bool      `gorm:"column:consent_marketing"`
	ConversaCanal            *string    `gorm:"column:conversa_canal"`
	ConversaStatus           *string    `gorm:"column:conversa_status"`
	ConversaStartedAt        *time.Time `gorm:"column:conversa_started_at"`
	ResumoConversa           *string    `gorm:"column:resumo_conversa"`
}
