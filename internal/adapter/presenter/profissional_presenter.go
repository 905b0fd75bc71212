package presenter

import (
	"github.com/bebel/pendencias/internal/adapter/dto/profissional"
	"github.com/bebel/pendencias/internal/domain/entities"
)

// ToListProfissionaisResponse converts a roster to the list envelope
func ToListProfissionaisResponse(list []*entities.Profissional, padrao *entities.Profissional) *profissional.ListProfissionaisResponse {
	if list == nil {
		list = []*entities.Profissional{}
	}
	return &profissional.ListProfissionaisResponse{
		OK:                 true,
		Data:               list,
		ProfissionalPadrao: padrao,
		Count:              len(list),
	}
}
