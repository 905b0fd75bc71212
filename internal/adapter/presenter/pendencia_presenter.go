package presenter

import (
	"time"

	"github.com/bebel/pendencias/internal/adapter/dto/pendencia"
	"github.com/bebel/pendencias/internal/domain/entities"
	"github.com/bebel/pendencias/internal/domain/kanban"
)

// ToPendenciaResponse converts a stored Pendencia to PendenciaResponse DTO
func ToPendenciaResponse(p *entities.Pendencia) *pendencia.PendenciaResponse {
	if p == nil {
		return nil
	}
	return &pendencia.PendenciaResponse{
		Pendencia:    *p,
		KanbanStatus: kanban.ColumnFor(p.Status, p.Prioridade),
	}
}

// ToPendenciaDetailsResponse adds the display labels to a board record
func ToPendenciaDetailsResponse(p *entities.PendenciaWithDetails, now time.Time) *pendencia.PendenciaDetailsResponse {
	if p == nil {
		return nil
	}
	return &pendencia.PendenciaDetailsResponse{
		PendenciaWithDetails: p,
		PrioridadeLabel:      kanban.PriorityLabel(p.Prioridade),
		TipoLabel:            kanban.TipoLabel(p.Tipo),
		Atrasada:             p.IsOverdue(now),
	}
}

// ToListPendenciasResponse converts board records to the list envelope
func ToListPendenciasResponse(list []*entities.PendenciaWithDetails, now time.Time) *pendencia.ListPendenciasResponse {
	data := make([]*pendencia.PendenciaDetailsResponse, 0, len(list))
	for _, p := range list {
		if p == nil {
			continue
		}
		data = append(data, ToPendenciaDetailsResponse(p, now))
	}
	return &pendencia.ListPendenciasResponse{
		OK:    true,
		Data:  data,
		Count: len(data),
	}
}
