package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebel/pendencias/internal/domain/entities"
)

func record(id int64, desc *string, assignee *int64) *entities.PendenciaWithDetails {
	return &entities.PendenciaWithDetails{
		Pendencia: entities.Pendencia{
			ID:            id,
			Tipo:          entities.TipoOrcamento,
			Prioridade:    4,
			Status:        entities.StatusFlagged,
			Descricao:     desc,
			IDResponsavel: assignee,
		},
	}
}

func strPtr(s string) *string { return &s }
func i64(v int64) *int64      { return &v }

func TestMatches_AssigneeNone(t *testing.T) {
	unassigned := record(1, nil, nil)
	assigned := record(2, nil, i64(7))

	spec, err := ParseSpec("", "", "", "none", "")
	require.NoError(t, err)

	got := spec.Apply([]*entities.PendenciaWithDetails{unassigned, assigned})
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)
}

func TestMatches_AssigneeIDAcrossRepresentations(t *testing.T) {
	rec := record(3, nil, i64(7))

	spec, err := ParseSpec("", "", "", "7", "")
	require.NoError(t, err)
	assert.True(t, spec.Matches(rec), "string \"7\" must match numeric 7")

	spec, err = ParseSpec("", "", "", "8", "")
	require.NoError(t, err)
	assert.False(t, spec.Matches(rec))
	assert.False(t, spec.Matches(record(4, nil, nil)))
}

func TestMatches_AllAndUnset(t *testing.T) {
	for _, raw := range []string{"", "all", "ALL"} {
		spec, err := ParseSpec("all", "all", "all", raw, "")
		require.NoError(t, err)
		assert.True(t, spec.Matches(record(1, nil, nil)))
		assert.True(t, spec.Matches(record(2, nil, i64(9))))
	}
}

func TestMatches_FreeTextSearch(t *testing.T) {
	withDesc := record(10, strPtr("Enviar orçamento - tratamento ortodôntico"), nil)
	noDesc := record(11, nil, nil)

	spec := Spec{Search: "ORTO"}
	assert.True(t, spec.Matches(withDesc))
	assert.NotPanics(t, func() { spec.Matches(noDesc) })
	assert.False(t, spec.Matches(noDesc), "a missing description is not a wildcard")

	assert.True(t, Spec{Search: "11"}.Matches(noDesc), "id is searchable")

	nome := "João Pedro Oliveira"
	noDesc.Pessoa = &entities.Pessoa{NomeCompleto: &nome}
	assert.True(t, Spec{Search: "joão"}.Matches(noDesc), "person name is searchable")
}

func TestMatches_StructuredCriteriaAreANDed(t *testing.T) {
	rec := record(1, nil, nil)

	spec, err := ParseSpec("SINALIZADA", entities.TipoOrcamento, "4", "", "")
	require.NoError(t, err)
	assert.True(t, spec.Matches(rec))

	spec, err = ParseSpec("RESOLVIDA", entities.TipoOrcamento, "4", "", "")
	require.NoError(t, err)
	assert.False(t, spec.Matches(rec))

	spec, err = ParseSpec("", entities.TipoAgendar, "", "", "")
	require.NoError(t, err)
	assert.False(t, spec.Matches(rec))

	spec, err = ParseSpec("", "", "2", "", "")
	require.NoError(t, err)
	assert.False(t, spec.Matches(rec))
}

func TestMatches_NilRecord(t *testing.T) {
	assert.False(t, Spec{}.Matches(nil))
	assert.Empty(t, Spec{}.Apply([]*entities.PendenciaWithDetails{nil}))
}

func TestParseSpec_Rejects(t *testing.T) {
	_, err := ParseSpec("PENDENTE", "", "", "", "")
	assert.ErrorIs(t, err, entities.ErrInvalidStatus)

	_, err = ParseSpec("", "", "9", "", "")
	assert.ErrorIs(t, err, entities.ErrInvalidPriority)

	_, err = ParseSpec("", "", "", "someone", "")
	assert.ErrorIs(t, err, entities.ErrInvalidAssignee)
}

func TestNormalizeID(t *testing.T) {
	cases := []any{7, int64(7), float64(7), "7", " 7 ", json.Number("7"), i64(7)}
	for _, c := range cases {
		id, ok := NormalizeID(c)
		assert.True(t, ok, "%#v", c)
		assert.Equal(t, int64(7), id)
	}

	_, ok := NormalizeID((*int64)(nil))
	assert.False(t, ok)
	_, ok = NormalizeID(7.5)
	assert.False(t, ok)
	_, ok = NormalizeID("sete")
	assert.False(t, ok)
}

func TestQueryAndKey(t *testing.T) {
	spec, err := ParseSpec("sinalizada", "AGENDAR", "3", "none", "Maria")
	require.NoError(t, err)

	q := spec.Query()
	assert.Equal(t, "SINALIZADA", q.Get("status"))
	assert.Equal(t, "AGENDAR", q.Get("tipo"))
	assert.Equal(t, "3", q.Get("prioridade"))
	assert.Equal(t, "none", q.Get("responsavel"))
	assert.Empty(t, q.Get("q"), "search is evaluated client-side")

	assert.Contains(t, spec.Key(), "q=maria")
	assert.NotContains(t, spec.Structured().Key(), "q=")
}
