package kanban

import "github.com/bebel/pendencias/internal/domain/entities"

var priorityLabels = map[int]string{
	1: "Muito Baixa",
	2: "Baixa",
	3: "Média",
	4: "Alta",
	5: "Muito Alta",
}

var tipoLabels = map[string]string{
	entities.TipoAgendar:      "Agendamento",
	entities.TipoPagamento:    "Pagamento",
	entities.TipoOrcamento:    "Orçamento",
	entities.TipoCancelamento: "Cancelamento",
	entities.TipoInformacao:   "Informação",
}

var columnTitles = map[entities.KanbanColumn]string{
	entities.ColumnTodo:  "A Fazer",
	entities.ColumnDoing: "Fazendo",
	entities.ColumnDone:  "Feito",
}

// PriorityLabel returns the display label of a priority
func PriorityLabel(p int) string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return "Desconhecida"
}

// TipoLabel returns the display label of a type, or the raw type when unknown
func TipoLabel(tipo string) string {
	if l, ok := tipoLabels[tipo]; ok {
		return l
	}
	return tipo
}

// ColumnTitle returns the board header of a column
func ColumnTitle(c entities.KanbanColumn) string {
	if t, ok := columnTitles[c]; ok {
		return t
	}
	return string(c)
}
