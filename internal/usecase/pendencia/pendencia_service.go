package pendencia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/domain/kanban"
	"github.com/bebel/pendencias/internal/domain/repositories"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
)

const (
	cacheGenerationKey = "pendencias:list:gen"
	cacheListPrefix    = "pendencias:list:"
)

// PendenciaService handles pendência business logic
type PendenciaService struct {
	pendenciaRepo    repositories.PendenciaRepository
	profissionalRepo repositories.ProfissionalRepository
	cache            Cache
	cfg              Config
	logger           *zap.Logger
	now              func() time.Time
}

// NewPendenciaService creates a new pendência service. cache may be nil.
func NewPendenciaService(
	pendenciaRepo repositories.PendenciaRepository,
	profissionalRepo repositories.ProfissionalRepository,
	cache Cache,
	cfg Config,
	logger *zap.Logger,
) *PendenciaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultConversaID == 0 {
		cfg.DefaultConversaID = 1
	}
	return &PendenciaService{
		pendenciaRepo:    pendenciaRepo,
		profissionalRepo: profissionalRepo,
		cache:            cache,
		cfg:              cfg,
		logger:           logger,
		now:              time.Now,
	}
}

// List retrieves pendências with details, serving repeated queries from cache
func (s *PendenciaService) List(ctx context.Context, spec filter.Spec) ([]*entities.PendenciaWithDetails, error) {
	key := s.listKey(ctx, spec)
	if out, ok := s.cachedList(ctx, key); ok {
		return out, nil
	}

	rows, err := s.pendenciaRepo.List(ctx, toFilters(spec, s.cfg.ListLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to list pendencias: %w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	out := make([]*entities.PendenciaWithDetails, 0, len(rows))
	for _, row := range rows {
		out = append(out, BuildDetails(row))
	}

	s.storeList(ctx, key, out)
	return out, nil
}

// Update applies patch under a row lock. resolved_at follows the status
// transition: set on entering RESOLVIDA, kept while resolved, cleared otherwise.
func (s *PendenciaService) Update(ctx context.Context, id int64, patch entities.PendenciaPatch) (*entities.Pendencia, error) {
	if id <= 0 {
		return nil, usecaseErrors.ErrMissingID
	}
	if patch.IsEmpty() {
		return nil, usecaseErrors.ErrNothingToUpdate
	}
	if patch.Status != nil && !patch.Status.IsValid() {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrInvalidInput, entities.ErrInvalidStatus)
	}

	now := s.now()
	updated, err := s.pendenciaRepo.Modify(ctx, id, func(p *entities.Pendencia) []string {
		next, touched := kanban.Apply(*p, patch, now)
		*p = next
		return touched
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecaseErrors.ErrPendenciaNotFound
		}
		s.logger.Error("pendencia.update.failed", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to update pendencia: %w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	s.invalidate(ctx)
	s.logger.Info("pendencia.updated",
		zap.Int64("id", id),
		zap.String("status", string(updated.Status)),
		zap.Int("prioridade", updated.Prioridade),
	)
	return updated, nil
}

// Create inserts a new pendência
func (s *PendenciaService) Create(ctx context.Context, draft entities.PendenciaDraft) (*entities.Pendencia, error) {
	if draft.Status != nil && !draft.Status.IsValid() {
		return nil, fmt.Errorf("%w: %w", usecaseErrors.ErrInvalidInput, entities.ErrInvalidStatus)
	}

	p := kanban.FromDraft(draft, s.cfg.DefaultConversaID, s.now())
	if p.IDResponsavel == nil && s.profissionalRepo != nil {
		def, err := s.profissionalRepo.FindDefault(ctx)
		switch {
		case err == nil:
			p.IDResponsavel = &def.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			s.logger.Warn("pendencia.create.default_responsavel", zap.Error(err))
		}
	}

	if err := s.pendenciaRepo.Create(ctx, p); err != nil {
		s.logger.Error("pendencia.create.failed", zap.Error(err))
		return nil, fmt.Errorf("failed to create pendencia: %w: %w", usecaseErrors.ErrStoreUnavailable, err)
	}

	s.invalidate(ctx)
	s.logger.Info("pendencia.created", zap.Int64("id", p.ID), zap.String("tipo", p.Tipo))
	return p, nil
}

// BuildDetails turns a joined row into the board read model. Unresolvable
// relations become placeholders, never nil.
func BuildDetails(row *repositories.PendenciaRow) *entities.PendenciaWithDetails {
	d := &entities.PendenciaWithDetails{Pendencia: row.Pendencia}
	kanban.Decorate(d)

	if row.IDResponsavel != nil {
		nome := entities.PlaceholderResponsavelNome
		if row.ResponsavelNome != nil && *row.ResponsavelNome != "" {
			nome = *row.ResponsavelNome
		}
		d.Responsavel = &entities.ProfissionalRef{
			ID:            *row.IDResponsavel,
			NomeCompleto:  nome,
			Especialidade: row.ResponsavelEspecialidade,
		}
	}

	d.Pessoa = entities.PlaceholderPessoa()
	if row.IDPessoa != nil {
		pe := d.Pessoa
		pe.ID = *row.IDPessoa
		if row.PessoaNome != nil && *row.PessoaNome != "" {
			pe.NomeCompleto = row.PessoaNome
		}
		if row.PessoaStatus != nil && *row.PessoaStatus != "" {
			pe.Status = entities.PessoaStatus(*row.PessoaStatus)
		}
		if row.Stage != nil && *row.Stage != "" {
			pe.Stage = entities.PessoaStage(*row.Stage)
		}
		if row.LeadScore != nil {
			pe.LeadScore = *row.LeadScore
		}
		if row.ConsentMarketing != nil {
			pe.ConsentMarketing = *row.ConsentMarketing
		}
	}

	d.Conversa = entities.PlaceholderConversa(row.IDConversa, d.Pessoa.ID, row.DetectedAt)
	if row.ConversaCanal != nil && *row.ConversaCanal != "" {
		d.Conversa.Canal = entities.Canal(*row.ConversaCanal)
	}
	if row.ConversaStatus != nil && *row.ConversaStatus != "" {
		d.Conversa.Status = entities.ConversaStatus(*row.ConversaStatus)
	}
	if row.ConversaStartedAt != nil {
		d.Conversa.StartedAt = *row.ConversaStartedAt
	}
	if row.ResumoConversa != nil && *row.ResumoConversa != "" {
		d.Conversa.ResumoConversa = row.ResumoConversa
	}
	return d
}

func toFilters(spec filter.Spec, limit int) repositories.PendenciaFilters {
	f := repositories.PendenciaFilters{
		Status:     spec.Status,
		Tipo:       spec.Tipo,
		Prioridade: spec.Prioridade,
		Search:     spec.Search,
		Limit:      limit,
	}
	switch spec.Responsavel.Mode {
	case filter.AssigneeNone:
		f.Unassigned = true
	case filter.AssigneeID:
		id := spec.Responsavel.ID
		f.IDResponsavel = &id
	}
	return f
}

// listKey embeds the write generation so every update or create makes older
// entries unreachable without enumerating them.
func (s *PendenciaService) listKey(ctx context.Context, spec filter.Spec) string {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return ""
	}
	gen, ok, err := s.cache.Get(ctx, cacheGenerationKey)
	if err != nil {
		s.logger.Warn("pendencia.cache.get_generation", zap.Error(err))
		return ""
	}
	if !ok {
		gen = "0"
	}
	return cacheListPrefix + "v" + gen + ":" + spec.Key()
}

func (s *PendenciaService) cachedList(ctx context.Context, key string) ([]*entities.PendenciaWithDetails, bool) {
	if key == "" {
		return nil, false
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("pendencia.cache.get", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var out []*entities.PendenciaWithDetails
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.logger.Warn("pendencia.cache.decode", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return out, true
}

func (s *PendenciaService) storeList(ctx context.Context, key string, out []*entities.PendenciaWithDetails) {
	if key == "" {
		return
	}
	raw, err := json.Marshal(out)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cfg.CacheTTL); err != nil {
		s.logger.Warn("pendencia.cache.set", zap.String("key", key), zap.Error(err))
	}
}

func (s *PendenciaService) invalidate(ctx context.Context) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	gen, err := s.cache.Incr(ctx, cacheGenerationKey)
	if err != nil {
		s.logger.Warn("pendencia.cache.invalidate", zap.Error(err))
		return
	}
	s.logger.Debug("pendencia.cache.invalidated", zap.String("generation", strconv.FormatInt(gen, 10)))
}
