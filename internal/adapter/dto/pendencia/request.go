package pendencia

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/filter"
	"github.com/bebel/pendencias/internal/domain/kanban"
	"github.com/bebel/pendencias/pkg/optional"
)

// FlexibleID is an id that arrives either as a JSON number or as a numeric
// string. It always marshals as a number.
type FlexibleID int64

// UnmarshalJSON accepts 7, 7.0 and "7"
func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	id, ok := filter.NormalizeID(raw)
	if !ok {
		return fmt.Errorf("invalid id %s", string(data))
	}
	*f = FlexibleID(id)
	return nil
}

// ListPendenciasQuery holds the list filters
type ListPendenciasQuery struct {
	Status      string `query:"status"`
	Tipo        string `query:"tipo"`
	Prioridade  string `query:"prioridade"`
	Responsavel string `query:"responsavel"`
	Q           string `query:"q"`
}

// Spec validates the query and converts it to a filter spec
func (q ListPendenciasQuery) Spec() (filter.Spec, error) {
	return filter.ParseSpec(q.Status, q.Tipo, q.Prioridade, q.Responsavel, q.Q)
}

// UpdatePendenciaRequest is a partial update. Absent keys are left untouched;
// descricao, id_responsavel and resolution_note may be set to null.
type UpdatePendenciaRequest struct {
	ID             FlexibleID                 `json:"id"`
	Status         *string                    `json:"status,omitempty" validate:"omitempty,pendencia_status"`
	Descricao      optional.Value[string]     `json:"descricao,omitzero"`
	Prioridade     *int                       `json:"prioridade,omitempty"`
	IDResponsavel  optional.Value[FlexibleID] `json:"id_responsavel,omitzero"`
	ResolutionNote optional.Value[string]     `json:"resolution_note,omitzero"`
}

// Patch converts the request to a domain patch
func (r *UpdatePendenciaRequest) Patch() entities.PendenciaPatch {
	patch := entities.PendenciaPatch{
		Descricao:      r.Descricao,
		Prioridade:     r.Prioridade,
		ResolutionNote: r.ResolutionNote,
	}
	if r.Status != nil {
		s := entities.PendenciaStatus(*r.Status)
		patch.Status = &s
	}
	if r.IDResponsavel.Set {
		if r.IDResponsavel.V == nil {
			patch.IDResponsavel = optional.Null[int64]()
		} else {
			patch.IDResponsavel = optional.Of(int64(*r.IDResponsavel.V))
		}
	}
	return patch
}

// NewUpdatePendenciaRequest builds the wire request for patch
func NewUpdatePendenciaRequest(id int64, patch entities.PendenciaPatch) *UpdatePendenciaRequest {
	r := &UpdatePendenciaRequest{
		ID:             FlexibleID(id),
		Descricao:      patch.Descricao,
		Prioridade:     patch.Prioridade,
		ResolutionNote: patch.ResolutionNote,
	}
	if patch.Status != nil {
		s := string(*patch.Status)
		r.Status = &s
	}
	if patch.IDResponsavel.Set {
		if patch.IDResponsavel.V == nil {
			r.IDResponsavel = optional.Null[FlexibleID]()
		} else {
			r.IDResponsavel = optional.Of(FlexibleID(*patch.IDResponsavel.V))
		}
	}
	return r
}

// MovePendenciaRequest drops a card on a kanban column
type MovePendenciaRequest struct {
	ID           FlexibleID `json:"id"`
	KanbanStatus string     `json:"kanban_status" validate:"required,kanban_column"`
}

// Patch converts the move to the status change it implies. FEITO always
// resolves; a card is never dismissed by moving it.
func (r *MovePendenciaRequest) Patch() (entities.PendenciaPatch, error) {
	return kanban.MovePatch(entities.KanbanColumn(r.KanbanStatus))
}

// CreatePendenciaRequest creates a pendência; every field is optional
type CreatePendenciaRequest struct {
	IDConversa       *int64      `json:"id_conversa,omitempty" validate:"omitempty,gt=0"`
	IDMensagemOrigem *int64      `json:"id_mensagem_origem,omitempty"`
	Tipo             *string     `json:"tipo,omitempty" validate:"omitempty,max=50"`
	Descricao        *string     `json:"descricao,omitempty"`
	Prioridade       *int        `json:"prioridade,omitempty"`
	SLAAt            *time.Time  `json:"sla_at,omitempty"`
	Status           *string     `json:"status,omitempty" validate:"omitempty,pendencia_status"`
	IDResponsavel    *FlexibleID `json:"id_responsavel,omitempty"`
	ResolutionNote   *string     `json:"resolution_note,omitempty"`
}

// Draft converts the request to a domain draft
func (r *CreatePendenciaRequest) Draft() entities.PendenciaDraft {
	d := entities.PendenciaDraft{
		IDConversa:       r.IDConversa,
		IDMensagemOrigem: r.IDMensagemOrigem,
		Tipo:             r.Tipo,
		Descricao:        r.Descricao,
		Prioridade:       r.Prioridade,
		SLAAt:            r.SLAAt,
		ResolutionNote:   r.ResolutionNote,
	}
	if r.Status != nil {
		s := entities.PendenciaStatus(*r.Status)
		d.Status = &s
	}
	if r.IDResponsavel != nil {
		id := int64(*r.IDResponsavel)
		d.IDResponsavel = &id
	}
	return d
}

// NewCreatePendenciaRequest builds the wire request for draft
func NewCreatePendenciaRequest(d entities.PendenciaDraft) *CreatePendenciaRequest {
	r := &CreatePendenciaRequest{
		IDConversa:       d.IDConversa,
		IDMensagemOrigem: d.IDMensagemOrigem,
		Tipo:             d.Tipo,
		Descricao:        d.Descricao,
		Prioridade:       d.Prioridade,
		SLAAt:            d.SLAAt,
		ResolutionNote:   d.ResolutionNote,
	}
	if d.Status != nil {
		s := string(*d.Status)
		r.Status = &s
	}
	if d.IDResponsavel != nil {
		id := FlexibleID(*d.IDResponsavel)
		r.IDResponsavel = &id
	}
	return r
}
