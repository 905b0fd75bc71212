package pendencia

import (
	"github.com/bebel/pendencias/internal/domain/entities"
)

// PendenciaResponse is a stored pendência with its derived column
type PendenciaResponse struct {
	entities.Pendencia
	KanbanStatus entities.KanbanColumn `json:"kanban_status"`
}

// PendenciaDetailsResponse is a board record with display helpers
type PendenciaDetailsResponse struct {
	*entities.PendenciaWithDetails
	PrioridadeLabel string `json:"prioridade_label"`
	TipoLabel       string `json:"tipo_label"`
	Atrasada        bool   `json:"atrasada"`
}

// ListPendenciasResponse is the list envelope
type ListPendenciasResponse struct {
	OK    bool                        `json:"ok"`
	Data  []*PendenciaDetailsResponse `json:"data"`
	Count int                         `json:"count"`
}

// PendenciaEnvelope wraps a single record
type PendenciaEnvelope struct {
	OK   bool               `json:"ok"`
	Data *PendenciaResponse `json:"data"`
}
