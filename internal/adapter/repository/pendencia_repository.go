package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/repositories"
)

// DefaultListLimit caps list results when the caller passes no limit
const DefaultListLimit = 50

const pendenciaListColumns = `
	p.id_pendencia_sinalizada,
	p.id_conversa,
	p.id_mensagem_origem,
	p.tipo,
	p.descricao,
	p.prioridade,
	p.sla_at,
	p.status,
	p.detected_at,
	p.resolved_at,
	p.resolution_note,
	p.id_responsavel,
	prof.nome_completo AS responsavel_nome,
	prof.especialidade AS responsavel_especialidade,
	pes.id_pessoa,
	pes.nome_completo AS pessoa_nome,
	pes.status AS pessoa_status,
	pes.stage,
	pes.lead_score,
	pes.consent_marketing,
	c.canal AS conversa_canal,
	c.status AS conversa_status,
	c.started_at AS conversa_started_at,
	c.resumo_conversa`

// pendenciaRepository implements the PendenciaRepository interface
type pendenciaRepository struct {
	db *gorm.DB
}

// NewPendenciaRepository creates a new pendência repository
func NewPendenciaRepository(db *gorm.DB) repositories.PendenciaRepository {
	return &pendenciaRepository{db: db}
}

// List retrieves pendências with filters, newest detection first
func (r *pendenciaRepository) List(ctx context.Context, filters repositories.PendenciaFilters) ([]*repositories.PendenciaRow, error) {
	query := r.db.WithContext(ctx).
		Table(entities.Pendencia{}.TableName() + " AS p").
		Select(pendenciaListColumns).
		Joins("LEFT JOIN " + entities.Profissional{}.TableName() + " prof ON p.id_responsavel = prof.id_profissional").
		Joins("LEFT JOIN " + entities.Conversa{}.TableName() + " c ON p.id_conversa = c.id_conversa").
		Joins("LEFT JOIN " + entities.Pessoa{}.TableName() + " pes ON c.id_pessoa = pes.id_pessoa")

	// Apply filters
	if filters.Status != nil {
		query = query.Where("p.status = ?", *filters.Status)
	}
	if filters.Tipo != "" {
		query = query.Where("p.tipo = ?", filters.Tipo)
	}
	if filters.Prioridade != nil {
		query = query.Where("p.prioridade = ?", *filters.Prioridade)
	}
	if filters.Unassigned {
		query = query.Where("p.id_responsavel IS NULL")
	} else if filters.IDResponsavel != nil {
		query = query.Where("p.id_responsavel = ?", *filters.IDResponsavel)
	}
	if filters.Search != "" {
		searchPattern := containsPattern(filters.Search)
		query = query.Where(
			`p.descricao ILIKE ? ESCAPE '\' OR pes.nome_completo ILIKE ? ESCAPE '\' OR CAST(p.id_pendencia_sinalizada AS TEXT) LIKE ? ESCAPE '\'`,
			searchPattern, searchPattern, searchPattern,
		)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []*repositories.PendenciaRow
	err := query.
		Order("p.detected_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID retrieves a pendência by its ID
func (r *pendenciaRepository) FindByID(ctx context.Context, id int64) (*entities.Pendencia, error) {
	var p entities.Pendencia
	err := r.db.WithContext(ctx).
		Where("id_pendencia_sinalizada = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Modify applies fn to the locked row and persists the returned columns
func (r *pendenciaRepository) Modify(ctx context.Context, id int64, fn func(p *entities.Pendencia) []string) (*entities.Pendencia, error) {
	var p entities.Pendencia
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id_pendencia_sinalizada = ?", id).
			First(&p).Error; err != nil {
			return err
		}

		columns := fn(&p)
		if len(columns) == 0 {
			return nil
		}
		return tx.Model(&p).Select(columns).Updates(&p).Error
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create creates a new pendência
func (r *pendenciaRepository) Create(ctx context.Context, p *entities.Pendencia) error {
	if p == nil {
		return errors.New("pendencia cannot be nil")
	}
	return r.db.WithContext(ctx).Create(p).Error
}

// AssignUnassigned backfills the assignee of every unassigned pendência
func (r *pendenciaRepository) AssignUnassigned(ctx context.Context, profissionalID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.Pendencia{}).
			Where("id_responsavel IS NULL").
			Pluck("id_pendencia_sinalizada", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&entities.Pendencia{}).
			Where("id_pendencia_sinalizada IN ?", ids).
			Update("id_responsavel", profissionalID).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching term literally anywhere
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
