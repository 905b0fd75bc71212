package entities

// PlaceholderResponsavelNome is shown when an assignee id no longer resolves
const PlaceholderResponsavelNome = "Responsável não encontrado"

// Profissional is a clinic professional that pendências can be assigned to.
// At most one row carries FgPadraoPendencia; the database enforces it.
type Profissional struct {
	ID                int64   `gorm:"column:id_profissional;primaryKey" json:"id_profissional"`
	NomeCompleto      string  `gorm:"column:nome_completo;not null" json:"nome_completo"`
	Especialidade     *string `gorm:"column:especialidade" json:"especialidade"`
	Ativo             bool    `gorm:"column:ativo;not null" json:"ativo"`
	FgPadraoPendencia bool    `gorm:"column:fg_padrao_pendencia;not null;default:false" json:"fg_padrao_pendencia"`
}

// TableName specifies the table name for Profissional
func (Profissional) TableName() string {
	return Schema + ".profissionais"
}

// ProfissionalRef is the assignee summary embedded in a pendência
type ProfissionalRef struct {
	ID            int64   `json:"id_profissional"`
	NomeCompleto  string  `json:"nome_completo"`
	Especialidade *string `json:"especialidade"`
}

// IntentLabel describes a conversation intent and whether it raises pendências
type IntentLabel struct {
	IntentCode                    string  `json:"intent_code"`
	Description                   *string `json:"description"`
	Active                        bool    `json:"active"`
	GeneratePendencia             bool    `json:"generate_pendencia"`
	GeneratePendenciaInstructions *string `json:"generate_pendencia_instructions"`
}
