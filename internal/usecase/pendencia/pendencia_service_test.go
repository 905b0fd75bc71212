package pendencia

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/domain/repositories"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
	"github.com/bebel/pendencias/pkg/optional"
)

type fakePendenciaRepo struct {
	mu        sync.Mutex
	rows      map[int64]*repositories.PendenciaRow
	nextID    int64
	listCalls int
	lastList  repositories.PendenciaFilters
	failWith  error
}

func newFakePendenciaRepo(rows ...*repositories.PendenciaRow) *fakePendenciaRepo {
	r := &fakePendenciaRepo{rows: map[int64]*repositories.PendenciaRow{}, nextID: 100}
	for _, row := range rows {
		r.rows[row.ID] = row
	}
	return r
}

func (r *fakePendenciaRepo) List(_ context.Context, f repositories.PendenciaFilters) ([]*repositories.PendenciaRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	r.lastList = f
	if r.failWith != nil {
		return nil, r.failWith
	}
	out := make([]*repositories.PendenciaRow, 0, len(r.rows))
	for _, row := range r.rows {
		c := *row
		out = append(out, &c)
	}
	return out, nil
}

func (r *fakePendenciaRepo) FindByID(_ context.Context, id int64) (*entities.Pendencia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := row.Pendencia
	return &p, nil
}

func (r *fakePendenciaRepo) Modify(_ context.Context, id int64, fn func(p *entities.Pendencia) []string) (*entities.Pendencia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	row, ok := r.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	p := row.Pendencia
	fn(&p)
	row.Pendencia = p
	return &p, nil
}

func (r *fakePendenciaRepo) Create(_ context.Context, p *entities.Pendencia) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	r.nextID++
	p.ID = r.nextID
	r.rows[p.ID] = &repositories.PendenciaRow{Pendencia: *p}
	return nil
}

func (r *fakePendenciaRepo) AssignUnassigned(context.Context, int64) ([]int64, error) {
	return nil, nil
}

type fakeProfissionalRepo struct {
	def *entities.Profissional
}

func (r *fakeProfissionalRepo) ListActive(context.Context) ([]*entities.Profissional, error) {
	if r.def == nil {
		return nil, nil
	}
	return []*entities.Profissional{r.def}, nil
}

func (r *fakeProfissionalRepo) FindDefault(context.Context) (*entities.Profissional, error) {
	if r.def == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return r.def, nil
}

type mapCache struct {
	mu    sync.Mutex
	items map[string]string
}

func (c *mapCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
	return nil
}

func (c *mapCache) Incr(_ context.Context, key string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, _ := strconv.ParseInt(c.items[key], 10, 64)
	n++
	c.items[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func row(id int64, status entities.PendenciaStatus, prio int) *repositories.PendenciaRow {
	desc := "Confirmar consulta"
	return &repositories.PendenciaRow{Pendencia: entities.Pendencia{
		ID:         id,
		IDConversa: 1,
		Tipo:       entities.TipoAgendar,
		Descricao:  &desc,
		Prioridade: prio,
		Status:     status,
		DetectedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}}
}

func fixedNow() time.Time { return time.Date(2024, 1, 16, 9, 0, 0, 0, time.UTC) }

func newTestService(repo *fakePendenciaRepo, prof *fakeProfissionalRepo, cache Cache) *PendenciaService {
	svc := NewPendenciaService(repo, prof, cache, Config{DefaultConversaID: 1, ListLimit: 50, CacheTTL: time.Minute}, nil)
	svc.now = fixedNow
	return svc
}

func TestUpdate_ResolveSetsResolvedAt(t *testing.T) {
	repo := newFakePendenciaRepo(row(5, entities.StatusFlagged, 4))
	svc := newTestService(repo, &fakeProfissionalRepo{}, nil)

	status := entities.StatusResolved
	got, err := svc.Update(context.Background(), 5, entities.PendenciaPatch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, entities.StatusResolved, got.Status)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, fixedNow(), *got.ResolvedAt)
	assert.Equal(t, 4, got.Prioridade, "unsupplied fields are untouched")
}

func TestUpdate_ReopenClearsResolvedAt(t *testing.T) {
	r := row(6, entities.StatusResolved, 2)
	resolved := fixedNow().Add(-time.Hour)
	r.ResolvedAt = &resolved
	svc := newTestService(newFakePendenciaRepo(r), &fakeProfissionalRepo{}, nil)

	status := entities.StatusFlagged
	got, err := svc.Update(context.Background(), 6, entities.PendenciaPatch{Status: &status})
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)
}

func TestUpdate_PriorityCoerced(t *testing.T) {
	svc := newTestService(newFakePendenciaRepo(row(7, entities.StatusFlagged, 1)), &fakeProfissionalRepo{}, nil)

	p := 0
	got, err := svc.Update(context.Background(), 7, entities.PendenciaPatch{Prioridade: &p})
	require.NoError(t, err)
	assert.Equal(t, 3, got.Prioridade)
}

func TestUpdate_Errors(t *testing.T) {
	ctx := context.Background()
	repo := newFakePendenciaRepo(row(1, entities.StatusFlagged, 1))
	svc := newTestService(repo, &fakeProfissionalRepo{}, nil)
	status := entities.StatusResolved

	_, err := svc.Update(ctx, 0, entities.PendenciaPatch{Status: &status})
	assert.ErrorIs(t, err, usecaseErrors.ErrMissingID)

	_, err = svc.Update(ctx, 1, entities.PendenciaPatch{})
	assert.ErrorIs(t, err, usecaseErrors.ErrNothingToUpdate)

	bad := entities.PendenciaStatus("PENDENTE")
	_, err = svc.Update(ctx, 1, entities.PendenciaPatch{Status: &bad})
	assert.ErrorIs(t, err, usecaseErrors.ErrInvalidInput)

	_, err = svc.Update(ctx, 999, entities.PendenciaPatch{Status: &status})
	assert.ErrorIs(t, err, usecaseErrors.ErrPendenciaNotFound)

	repo.failWith = errors.New("connection refused")
	_, err = svc.Update(ctx, 1, entities.PendenciaPatch{Status: &status})
	assert.ErrorIs(t, err, usecaseErrors.ErrStoreUnavailable)
}

func TestCreate_Defaults(t *testing.T) {
	repo := newFakePendenciaRepo()
	svc := newTestService(repo, &fakeProfissionalRepo{def: &entities.Profissional{ID: 3, NomeCompleto: "Dra. Ana"}}, nil)

	desc := "x"
	got, err := svc.Create(context.Background(), entities.PendenciaDraft{Descricao: &desc})
	require.NoError(t, err)

	assert.NotZero(t, got.ID)
	assert.Equal(t, entities.TipoInformacao, got.Tipo)
	assert.Equal(t, 1, got.Prioridade)
	assert.Equal(t, entities.StatusFlagged, got.Status)
	assert.Equal(t, int64(1), got.IDConversa)
	assert.Equal(t, fixedNow(), got.DetectedAt)
	assert.Nil(t, got.ResolvedAt)
	require.NotNil(t, got.IDResponsavel)
	assert.Equal(t, int64(3), *got.IDResponsavel)
	require.NotNil(t, got.Descricao)
	assert.Equal(t, "x", *got.Descricao)
}

func TestCreate_NoDefaultProfissional(t *testing.T) {
	svc := newTestService(newFakePendenciaRepo(), &fakeProfissionalRepo{}, nil)

	prio := 9
	got, err := svc.Create(context.Background(), entities.PendenciaDraft{Prioridade: &prio})
	require.NoError(t, err)
	assert.Nil(t, got.IDResponsavel)
	assert.Equal(t, 3, got.Prioridade)
	require.NotNil(t, got.Descricao)
	assert.Equal(t, "", *got.Descricao)
}

func TestList_DetailsAndPlaceholders(t *testing.T) {
	assigned := row(1, entities.StatusFlagged, 3)
	assignee := int64(42)
	assigned.IDResponsavel = &assignee

	named := row(2, entities.StatusFlagged, 1)
	pessoaID := int64(8)
	nome := "Maria Silva"
	canal := "TELEFONE"
	named.IDPessoa = &pessoaID
	named.PessoaNome = &nome
	named.ConversaCanal = &canal

	svc := newTestService(newFakePendenciaRepo(assigned, named), &fakeProfissionalRepo{}, nil)

	spec, err := filter.ParseSpec("", "", "", "", "")
	require.NoError(t, err)
	out, err := svc.List(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, out, 2)

	byID := map[int64]*entities.PendenciaWithDetails{}
	for _, d := range out {
		byID[d.ID] = d
	}

	a := byID[1]
	assert.Equal(t, entities.ColumnDoing, a.KanbanStatus)
	require.NotNil(t, a.Responsavel)
	assert.Equal(t, entities.PlaceholderResponsavelNome, a.Responsavel.NomeCompleto)
	require.NotNil(t, a.Pessoa)
	assert.Equal(t, int64(0), a.Pessoa.ID)
	assert.Equal(t, "Cliente", a.PessoaNome())
	require.NotNil(t, a.Conversa)
	assert.Equal(t, entities.CanalWhatsApp, a.Conversa.Canal)
	assert.Equal(t, a.DetectedAt, a.Conversa.StartedAt)

	n := byID[2]
	assert.Equal(t, entities.ColumnTodo, n.KanbanStatus)
	assert.Nil(t, n.Responsavel)
	assert.Equal(t, "Maria Silva", n.PessoaNome())
	assert.Equal(t, pessoaID, n.Conversa.IDPessoa)
	assert.Equal(t, entities.CanalTelefone, n.Conversa.Canal)
}

func TestList_FiltersPassedToRepository(t *testing.T) {
	repo := newFakePendenciaRepo()
	svc := newTestService(repo, &fakeProfissionalRepo{}, nil)

	spec, err := filter.ParseSpec("RESOLVIDA", "PAGAMENTO", "2", "none", "ana")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), spec)
	require.NoError(t, err)

	require.NotNil(t, repo.lastList.Status)
	assert.Equal(t, entities.StatusResolved, *repo.lastList.Status)
	assert.Equal(t, "PAGAMENTO", repo.lastList.Tipo)
	require.NotNil(t, repo.lastList.Prioridade)
	assert.Equal(t, 2, *repo.lastList.Prioridade)
	assert.True(t, repo.lastList.Unassigned)
	assert.Nil(t, repo.lastList.IDResponsavel)
	assert.Equal(t, "ana", repo.lastList.Search)
	assert.Equal(t, 50, repo.lastList.Limit)

	spec, err = filter.ParseSpec("", "", "", "7", "")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), spec)
	require.NoError(t, err)
	require.NotNil(t, repo.lastList.IDResponsavel)
	assert.Equal(t, int64(7), *repo.lastList.IDResponsavel)
}

func TestList_CacheInvalidatedOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := newFakePendenciaRepo(row(1, entities.StatusFlagged, 1))
	cache := &mapCache{items: map[string]string{}}
	svc := newTestService(repo, &fakeProfissionalRepo{}, cache)

	_, err := svc.List(ctx, filter.Spec{})
	require.NoError(t, err)
	out, err := svc.List(ctx, filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls, "second list is served from cache")
	require.Len(t, out, 1)
	assert.Equal(t, entities.ColumnTodo, out[0].KanbanStatus)

	status := entities.StatusResolved
	_, err = svc.Update(ctx, 1, entities.PendenciaPatch{Status: &status})
	require.NoError(t, err)

	out, err = svc.List(ctx, filter.Spec{})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	require.Len(t, out, 1)
	assert.Equal(t, entities.ColumnDone, out[0].KanbanStatus)
}

func TestList_StoreFailure(t *testing.T) {
	repo := newFakePendenciaRepo()
	repo.failWith = errors.New("relation does not exist")
	svc := newTestService(repo, &fakeProfissionalRepo{}, nil)

	_, err := svc.List(context.Background(), filter.Spec{})
	assert.ErrorIs(t, err, usecaseErrors.ErrStoreUnavailable)
}

func TestUpdate_AssigneeNull(t *testing.T) {
	r := row(3, entities.StatusFlagged, 2)
	assignee := int64(5)
	r.IDResponsavel = &assignee
	svc := newTestService(newFakePendenciaRepo(r), &fakeProfissionalRepo{}, nil)

	got, err := svc.Update(context.Background(), 3, entities.PendenciaPatch{IDResponsavel: optional.Null[int64]()})
	require.NoError(t, err)
	assert.Nil(t, got.IDResponsavel)
}
