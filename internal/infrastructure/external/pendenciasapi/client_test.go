package pendenciasapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/bebel/pendencias/errors"
	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/usecase/board"
	"github.com/bebel/pendencias/pkg/optional"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", 2*time.Second, nil)
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestList_SendsStructuredCriteria(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/pendencias", r.URL.Path)
		assert.Equal(t, "SINALIZADA", r.URL.Query().Get("status"))
		assert.Equal(t, "none", r.URL.Query().Get("responsavel"))
		assert.Empty(t, r.URL.Query().Get("q"), "search stays client side")
		writeJSON(w, http.StatusOK, `{"ok":true,"count":1,"data":[
			{"id_pendencia_sinalizada":2,"id_conversa":2,"tipo":"ORCAMENTO","prioridade":4,
			 "status":"SINALIZADA","detected_at":"2024-01-15T10:15:00Z","kanban_status":"FAZENDO",
			 "pessoa":{"id_pessoa":2,"nome_completo":"João Pedro Oliveira"},"prioridade_label":"Alta"}]}`)
	})

	spec, err := filter.ParseSpec("SINALIZADA", "", "", "none", "joão")
	require.NoError(t, err)

	out, err := c.List(context.Background(), spec)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(2), out[0].ID)
	assert.Equal(t, entities.ColumnDoing, out[0].KanbanStatus)
	assert.Equal(t, "João Pedro Oliveira", out[0].PessoaNome())
}

func TestList_EmptyIsNotMalformed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"data":[],"count":0}`)
	})
	out, err := c.List(context.Background(), filter.Spec{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestList_Malformed(t *testing.T) {
	bodies := []string{
		`not json`,
		`{"ok":true,"data":{"id":1}}`,
		`{"ok":true,"data":null}`,
		`{"ok":true}`,
		`{"ok":false,"error":"boom"}`,
		`{"data":[]}`,
	}
	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, body)
			})
			_, err := c.List(context.Background(), filter.Spec{})
			assert.ErrorIs(t, err, board.ErrMalformed)
		})
	}
}

func TestStatusClassification(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, board.ErrNotFound},
		{http.StatusBadRequest, board.ErrInvalid},
		{http.StatusInternalServerError, board.ErrUnavailable},
		{http.StatusBadGateway, board.ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"ok":false,"error":"Pendência não encontrada","hint":"verifique o id"}`)
			})
			_, err := c.Update(context.Background(), 999, entities.PendenciaPatch{Prioridade: intPtr(2)})
			require.ErrorIs(t, err, tt.want)

			var appErr appErrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.status, appErr.HTTPCode)
			assert.Equal(t, "Pendência não encontrada", appErr.Message)
			assert.Equal(t, "verifique o id", appErr.Hint)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(srv.URL, time.Second, nil)

	_, err := c.List(context.Background(), filter.Spec{})
	assert.ErrorIs(t, err, board.ErrUnavailable)
}

func TestUpdate_SendsOnlySetFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/pendencias", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 5, body["id"])
		assert.Equal(t, "RESOLVIDA", body["status"])
		v, ok := body["id_responsavel"]
		assert.True(t, ok)
		assert.Nil(t, v, "explicit null is sent")
		assert.NotContains(t, body, "descricao")
		assert.NotContains(t, body, "prioridade")

		writeJSON(w, http.StatusOK, `{"ok":true,"data":{"id_pendencia_sinalizada":5,"id_conversa":3,
			"tipo":"PAGAMENTO","prioridade":1,"status":"RESOLVIDA","detected_at":"2024-01-13T11:35:00Z",
			"resolved_at":"2024-10-15T12:00:00Z","id_responsavel":null,"kanban_status":"FEITO"}}`)
	})

	status := entities.StatusResolved
	p, err := c.Update(context.Background(), 5, entities.PendenciaPatch{
		Status:        &status,
		IDResponsavel: optional.Null[int64](),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, entities.StatusResolved, p.Status)
	assert.NotNil(t, p.ResolvedAt)
}

func TestCreate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/pendencias/new", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]any{"descricao": "x"}, body)

		writeJSON(w, http.StatusCreated, `{"ok":true,"data":{"id_pendencia_sinalizada":42,"id_conversa":1,
			"tipo":"INFORMACAO","descricao":"x","prioridade":1,"status":"SINALIZADA",
			"detected_at":"2024-10-15T12:00:00Z","kanban_status":"A_FAZER"}}`)
	})

	desc := "x"
	p, err := c.Create(context.Background(), entities.PendenciaDraft{Descricao: &desc})
	require.NoError(t, err)
	assert.Equal(t, int64(42), p.ID)
	assert.Equal(t, entities.TipoInformacao, p.Tipo)
}

func TestProfissionais(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/profissionais", r.URL.Path)
		writeJSON(w, http.StatusOK, `{"ok":true,"count":2,
			"data":[{"id_profissional":1,"nome_completo":"Dra. Ana","ativo":true,"fg_padrao_pendencia":true},
			        {"id_profissional":2,"nome_completo":"Dr. Bruno","ativo":true}],
			"profissional_padrao":{"id_profissional":1,"nome_completo":"Dra. Ana","ativo":true,"fg_padrao_pendencia":true}}`)
	})

	profs, padrao, err := c.Profissionais(context.Background())
	require.NoError(t, err)
	assert.Len(t, profs, 2)
	require.NotNil(t, padrao)
	assert.Equal(t, int64(1), padrao.ID)
}

func TestProfissionais_NoDefault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"ok":true,"count":0,"data":[],"profissional_padrao":null}`)
	})

	profs, padrao, err := c.Profissionais(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profs)
	assert.Nil(t, padrao)
}

func intPtr(v int) *int { return &v }
