package profissional

import "github.com/bebel/pendencias/internal/domain/entities"

// ListProfissionaisResponse lists active professionals and the default one
type ListProfissionaisResponse struct {
	OK                 bool                     `json:"ok"`
	Data               []*entities.Profissional `json:"data"`
	ProfissionalPadrao *entities.Profissional   `json:"profissional_padrao"`
	Count              int                      `json:"count"`
}
