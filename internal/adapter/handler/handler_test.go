package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/domain/kanban"
	usecaseErrors "github.com/bebel/pendencias/internal/usecase/errors"
	profissionalUsecase "github.com/bebel/pendencias/internal/usecase/profissional"
	systemUsecase "github.com/bebel/pendencias/internal/usecase/system"
	"github.com/bebel/pendencias/pkg/config"
	pkgvalidator "github.com/bebel/pendencias/pkg/validator"
)

type fakePendenciaService struct {
	records   map[int64]*entities.Pendencia
	lastSpec  filter.Spec
	lastPatch entities.PendenciaPatch
	lastDraft entities.PendenciaDraft
	listErr   error
}

func (f *fakePendenciaService) List(_ context.Context, spec filter.Spec) ([]*entities.PendenciaWithDetails, error) {
	f.lastSpec = spec
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []*entities.PendenciaWithDetails
	for _, p := range f.records {
		d := &entities.PendenciaWithDetails{Pendencia: *p}
		kanban.Decorate(d)
		out = append(out, d)
	}
	return out, nil
}

func (f *fakePendenciaService) Update(_ context.Context, id int64, patch entities.PendenciaPatch) (*entities.Pendencia, error) {
	f.lastPatch = patch
	if patch.IsEmpty() {
		return nil, usecaseErrors.ErrNothingToUpdate
	}
	p, ok := f.records[id]
	if !ok {
		return nil, usecaseErrors.ErrPendenciaNotFound
	}
	next, _ := kanban.Apply(*p, patch, time.Now())
	f.records[id] = &next
	return &next, nil
}

func (f *fakePendenciaService) Create(_ context.Context, draft entities.PendenciaDraft) (*entities.Pendencia, error) {
	f.lastDraft = draft
	p := &entities.Pendencia{ID: 77, Tipo: entities.TipoInformacao, Prioridade: 1, Status: entities.StatusFlagged, Descricao: draft.Descricao}
	return p, nil
}

type fakeProfissionalService struct{}

func (fakeProfissionalService) ListActive(context.Context) (*profissionalUsecase.Roster, error) {
	padrao := &entities.Profissional{ID: 1, NomeCompleto: "Dra. Ana", Ativo: true, FgPadraoPendencia: true}
	return &profissionalUsecase.Roster{
		Profissionais: []*entities.Profissional{padrao, {ID: 2, NomeCompleto: "Dr. Bruno", Ativo: true}},
		Padrao:        padrao,
	}, nil
}

type fakeSystemService struct {
	healthErr error
}

func (f fakeSystemService) Health(context.Context) error { return f.healthErr }
func (fakeSystemService) TestDB(context.Context) (*systemUsecase.DBReport, error) {
	return &systemUsecase.DBReport{TableExists: true, PendenciaCount: 5}, nil
}
func (fakeSystemService) Tables(context.Context) ([]string, error) { return nil, nil }
func (fakeSystemService) Migrate(_ context.Context, action string) (*systemUsecase.MigrationResult, error) {
	if action != systemUsecase.ActionAddResponsavelColumn {
		return nil, fmt.Errorf("%w: %q", usecaseErrors.ErrUnknownAction, action)
	}
	return &systemUsecase.MigrationResult{
		Action:        action,
		Profissional:  &entities.Profissional{ID: 1, NomeCompleto: "Dra. Ana"},
		AssignedIDs:   []int64{3},
		AssignedCount: 1,
	}, nil
}

func newTestServer(t *testing.T, svc *fakePendenciaService, sys fakeSystemService) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Validator = pkgvalidator.New()
	router := NewRouter(&config.Config{Server: config.ServerConfig{Environment: "test"}},
		NewPendenciaHandler(svc, nil),
		NewProfissionalHandler(fakeProfissionalService{}, nil),
		NewSystemHandler(sys, nil),
	)
	router.Setup(e)
	return e
}

func seed() *fakePendenciaService {
	return &fakePendenciaService{records: map[int64]*entities.Pendencia{
		5: {ID: 5, Tipo: entities.TipoAgendar, Prioridade: 4, Status: entities.StatusFlagged},
	}}
}

func do(e *echo.Echo, method, target, body string) (*httptest.ResponseRecorder, map[string]any) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var out map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &out)
	return rec, out
}

func TestList(t *testing.T) {
	svc := seed()
	e := newTestServer(t, svc, fakeSystemService{})

	for _, path := range []string{"/pendencias", "/api/pendencias"} {
		rec, body := do(e, http.MethodGet, path+"?status=SINALIZADA&responsavel=none&q=orto", "")
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, true, body["ok"])
		assert.EqualValues(t, 1, body["count"])
		item := body["data"].([]any)[0].(map[string]any)
		assert.Equal(t, "FAZENDO", item["kanban_status"])

		require.NotNil(t, svc.lastSpec.Status)
		assert.Equal(t, entities.StatusFlagged, *svc.lastSpec.Status)
		assert.Equal(t, filter.AssigneeNone, svc.lastSpec.Responsavel.Mode)
		assert.Equal(t, "orto", svc.lastSpec.Search)
	}
}

func TestList_InvalidFilter(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{})
	rec, body := do(e, http.MethodGet, "/api/pendencias?prioridade=9", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, body["ok"])
}

func TestList_StoreFailureCarriesHint(t *testing.T) {
	svc := seed()
	svc.listErr = fmt.Errorf("failed to list pendencias: %w: %w", usecaseErrors.ErrStoreUnavailable, errors.New("relation does not exist"))
	e := newTestServer(t, svc, fakeSystemService{})

	rec, body := do(e, http.MethodGet, "/api/pendencias", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["ok"])
	assert.Contains(t, body["error"], "relation does not exist")
	assert.Equal(t, listHint, body["hint"])
}

func TestUpdate(t *testing.T) {
	svc := seed()
	e := newTestServer(t, svc, fakeSystemService{})

	rec, body := do(e, http.MethodPost, "/api/pendencias", `{"id":"5","status":"RESOLVIDA"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "RESOLVIDA", data["status"])
	assert.Equal(t, "FEITO", data["kanban_status"])
	assert.NotNil(t, data["resolved_at"])
}

func TestUpdate_PutWithQueryID(t *testing.T) {
	svc := seed()
	e := newTestServer(t, svc, fakeSystemService{})

	rec, _ := do(e, http.MethodPut, "/api/pendencias?id=5", `{"prioridade":2,"descricao":null}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastPatch.Prioridade)
	assert.Equal(t, 2, *svc.lastPatch.Prioridade)
	assert.True(t, svc.lastPatch.Descricao.IsNull())
	assert.False(t, svc.lastPatch.ResolutionNote.Set)
}

func TestUpdate_Errors(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{})

	tests := []struct {
		name string
		body string
		code int
		msg  string
	}{
		{"missing id", `{"status":"RESOLVIDA"}`, http.StatusBadRequest, "ID é obrigatório"},
		{"not found", `{"id":999,"status":"RESOLVIDA"}`, http.StatusNotFound, "Pendência não encontrada"},
		{"nothing to update", `{"id":5}`, http.StatusBadRequest, "Nenhum campo para atualizar foi fornecido"},
		{"bad status", `{"id":5,"status":"PENDENTE"}`, http.StatusBadRequest, ""},
		{"bad json", `{"id":`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(e, http.MethodPost, "/pendencias", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, false, body["ok"])
			if tt.msg != "" {
				assert.Equal(t, tt.msg, body["error"])
			}
		})
	}
}

func TestMove(t *testing.T) {
	svc := seed()
	e := newTestServer(t, svc, fakeSystemService{})

	rec, body := do(e, http.MethodPost, "/api/pendencias/move", `{"id":5,"kanban_status":"FEITO"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body["data"].(map[string]any)
	assert.Equal(t, "RESOLVIDA", data["status"])
	assert.Equal(t, "FEITO", data["kanban_status"])
	assert.NotNil(t, data["resolved_at"])

	rec, body = do(e, http.MethodPost, "/pendencias/move", `{"id":"5","kanban_status":"FAZENDO"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	data = body["data"].(map[string]any)
	assert.Equal(t, "SINALIZADA", data["status"])
	assert.Nil(t, data["resolved_at"])
}

func TestMove_Errors(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"missing id", `{"kanban_status":"FEITO"}`, http.StatusBadRequest},
		{"unknown column", `{"id":5,"kanban_status":"BACKLOG"}`, http.StatusBadRequest},
		{"missing column", `{"id":5}`, http.StatusBadRequest},
		{"not found", `{"id":999,"kanban_status":"FEITO"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := do(e, http.MethodPost, "/api/pendencias/move", tt.body)
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, false, body["ok"])
		})
	}
}

func TestCreate(t *testing.T) {
	svc := seed()
	e := newTestServer(t, svc, fakeSystemService{})

	rec, body := do(e, http.MethodPost, "/api/pendencias/new", `{"descricao":"x"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	data := body["data"].(map[string]any)
	assert.EqualValues(t, 77, data["id_pendencia_sinalizada"])
	assert.Equal(t, "A_FAZER", data["kanban_status"])
	require.NotNil(t, svc.lastDraft.Descricao)
	assert.Equal(t, "x", *svc.lastDraft.Descricao)
	assert.Nil(t, svc.lastDraft.Prioridade)
}

func TestProfissionais(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{})

	rec, body := do(e, http.MethodGet, "/api/profissionais", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])
	padrao := body["profissional_padrao"].(map[string]any)
	assert.Equal(t, "Dra. Ana", padrao["nome_completo"])
}

func TestSystem(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{})

	rec, _ := do(e, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, body := do(e, http.MethodGet, "/api/test-db", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["table_exists"])
	assert.EqualValues(t, 5, body["record_count"])

	rec, body = do(e, http.MethodGet, "/api/tables", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["tables"])

	rec, body = do(e, http.MethodPost, "/api/migrate", `{"action":"add_responsavel_column"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["pendencias_atualizadas"])

	rec, body = do(e, http.MethodPost, "/api/migrate", `{"action":"drop"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Ação não reconhecida", body["error"])
}

func TestHealth_Down(t *testing.T) {
	e := newTestServer(t, seed(), fakeSystemService{healthErr: errors.New("refused")})

	rec, body := do(e, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, false, body["ok"])
}
