// Package kanban derives board columns from business status and priority and
// applies partial updates to pendências. The server and the board controller
// both go through these functions so a (status, priority) pair always lands
// in the same column on either side.
package kanban

import (
	"time"

	"github.com/bebel/pendencias/internal/domain/entities"
)

// ColumnFor maps a business status and priority to exactly one column.
// Unknown statuses fall back to A_FAZER.
func ColumnFor(status entities.PendenciaStatus, prioridade int) entities.KanbanColumn {
	switch status {
	case entities.StatusResolved, entities.StatusDismissed:
		return entities.ColumnDone
	case entities.StatusFlagged:
		if prioridade >= 3 {
			return entities.ColumnDoing
		}
		return entities.ColumnTodo
	default:
		return entities.ColumnTodo
	}
}

// StatusForColumn is the reverse mapping used when a card is dropped on a
// column. It is lossy: dropping on FEITO always resolves and never dismisses,
// dismissal is only reachable through an explicit status update.
func StatusForColumn(column entities.KanbanColumn) (entities.PendenciaStatus, error) {
	switch column {
	case entities.ColumnDone:
		return entities.StatusResolved, nil
	case entities.ColumnTodo, entities.ColumnDoing:
		return entities.StatusFlagged, nil
	default:
		return "", entities.ErrInvalidColumn
	}
}

// NormalizePriority coerces values outside [1,5] to the mid value.
func NormalizePriority(p int) int {
	if p < entities.PriorityMin || p > entities.PriorityMax {
		return entities.PriorityDefault
	}
	return p
}

// MovePatch builds the patch for dropping a card on column.
func MovePatch(column entities.KanbanColumn) (entities.PendenciaPatch, error) {
	status, err := StatusForColumn(column)
	if err != nil {
		return entities.PendenciaPatch{}, err
	}
	return entities.PendenciaPatch{Status: &status}, nil
}

// Apply returns p with patch applied and the names of the columns that
// changed storage-wise. resolved_at is set when the record enters RESOLVIDA
// and cleared whenever a non-resolved status is written.
func Apply(p entities.Pendencia, patch entities.PendenciaPatch, now time.Time) (entities.Pendencia, []string) {
	var touched []string

	// the result shares no memory with the input
	p.IDMensagemOrigem = copyOf(p.IDMensagemOrigem)
	p.Descricao = copyOf(p.Descricao)
	p.SLAAt = copyOf(p.SLAAt)
	p.ResolvedAt = copyOf(p.ResolvedAt)
	p.ResolutionNote = copyOf(p.ResolutionNote)
	p.IDResponsavel = copyOf(p.IDResponsavel)

	if patch.Status != nil {
		next := *patch.Status
		if next == entities.StatusResolved {
			if p.Status != entities.StatusResolved || p.ResolvedAt == nil {
				t := now
				p.ResolvedAt = &t
			}
		} else {
			p.ResolvedAt = nil
		}
		p.Status = next
		touched = append(touched, "status", "resolved_at")
	}
	if patch.Descricao.Set {
		p.Descricao = copyOf(patch.Descricao.V)
		touched = append(touched, "descricao")
	}
	if patch.Prioridade != nil {
		p.Prioridade = NormalizePriority(*patch.Prioridade)
		touched = append(touched, "prioridade")
	}
	if patch.IDResponsavel.Set {
		p.IDResponsavel = copyOf(patch.IDResponsavel.V)
		touched = append(touched, "id_responsavel")
	}
	if patch.ResolutionNote.Set {
		p.ResolutionNote = copyOf(patch.ResolutionNote.V)
		touched = append(touched, "resolution_note")
	}
	return p, touched
}

// ApplyDetails applies patch to a board record and recomputes its column.
// Assignee details are dropped when the assignee changes to an id the caller
// cannot resolve; resolve lets callers fill them from a known roster.
func ApplyDetails(p *entities.PendenciaWithDetails, patch entities.PendenciaPatch, now time.Time, resolve func(id int64) *entities.ProfissionalRef) *entities.PendenciaWithDetails {
	out := p.Clone()
	out.Pendencia, _ = Apply(out.Pendencia, patch, now)
	out.KanbanStatus = ColumnFor(out.Status, out.Prioridade)
	if patch.IDResponsavel.Set {
		out.Responsavel = nil
		if out.IDResponsavel != nil && resolve != nil {
			out.Responsavel = resolve(*out.IDResponsavel)
		}
	}
	return out
}

// FromDraft builds the record inserted for draft. Absent priority is 1 so a
// bare draft lands in A_FAZER; out-of-range values are coerced to 3.
func FromDraft(draft entities.PendenciaDraft, defaultConversaID int64, now time.Time) *entities.Pendencia {
	p := &entities.Pendencia{
		IDConversa:       defaultConversaID,
		IDMensagemOrigem: copyOf(draft.IDMensagemOrigem),
		Tipo:             entities.TipoInformacao,
		Prioridade:       entities.PriorityMin,
		SLAAt:            copyOf(draft.SLAAt),
		Status:           entities.StatusFlagged,
		DetectedAt:       now,
		ResolutionNote:   copyOf(draft.ResolutionNote),
		IDResponsavel:    copyOf(draft.IDResponsavel),
	}
	if draft.IDConversa != nil {
		p.IDConversa = *draft.IDConversa
	}
	if draft.Tipo != nil && *draft.Tipo != "" {
		p.Tipo = *draft.Tipo
	}
	desc := ""
	if draft.Descricao != nil {
		desc = *draft.Descricao
	}
	p.Descricao = &desc
	if draft.Prioridade != nil {
		p.Prioridade = NormalizePriority(*draft.Prioridade)
	}
	if draft.Status != nil {
		p.Status = *draft.Status
	}
	if p.Status == entities.StatusResolved {
		t := now
		p.ResolvedAt = &t
	}
	return p
}

// Decorate fills the derived column of a record in place.
func Decorate(p *entities.PendenciaWithDetails) {
	p.Prioridade = NormalizePriority(p.Prioridade)
	p.KanbanStatus = ColumnFor(p.Status, p.Prioridade)
}

func copyOf[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
