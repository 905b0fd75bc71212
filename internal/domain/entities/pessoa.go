package entities

import "time"

// PessoaStatus distinguishes leads from patients
type PessoaStatus string

const (
	PessoaLead     PessoaStatus = "LEAD"
	PessoaPaciente PessoaStatus = "PACIENTE"
)

// PessoaStage is the lifecycle stage of a lead
type PessoaStage string

const (
	StageNew       PessoaStage = "NOVO"
	StageQualified PessoaStage = "QUALIFICADO"
	StageConverted PessoaStage = "CONVERTIDO"
)

// PlaceholderPessoaNome is shown when a person cannot be resolved
const PlaceholderPessoaNome = "Cliente"

// Pessoa is a lead or patient
type Pessoa struct {
	ID               int64        `gorm:"column:id_pessoa;primaryKey" json:"id_pessoa"`
	Status           PessoaStatus `gorm:"column:status;type:varchar(20)" json:"status"`
	NomeCompleto     *string      `gorm:"column:nome_completo" json:"nome_completo"`
	DataNascimento   *string      `gorm:"column:data_nascimento" json:"data_nascimento,omitempty"`
	CPF              *string      `gorm:"column:cpf" json:"cpf,omitempty"`
	Origem           *string      `gorm:"column:origem" json:"origem,omitempty"`
	Stage            PessoaStage  `gorm:"column:stage;type:varchar(20)" json:"stage"`
	LeadScore        int          `gorm:"column:lead_score" json:"lead_score"`
	ConsentMarketing bool         `gorm:"column:consent_marketing" json:"consent_marketing"`
}

// TableName specifies the table name for Pessoa
func (Pessoa) TableName() string {
	return Schema + ".pessoas"
}

// PlaceholderPessoa is returned instead of nil when no person is resolvable
func PlaceholderPessoa() *Pessoa {
	nome := PlaceholderPessoaNome
	return &Pessoa{
		ID:           0,
		Status:       PessoaLead,
		NomeCompleto: &nome,
		Stage:        StageNew,
	}
}

// Canal is the channel a conversation happened on
type Canal string

const (
	CanalWhatsApp Canal = "WHATSAPP"
	CanalTelefone Canal = "TELEFONE"
	CanalEmail    Canal = "EMAIL"
)

// ConversaStatus is the open/closed state of a conversation
type ConversaStatus string

const (
	ConversaOpen   ConversaStatus = "OPEN"
	ConversaClosed ConversaStatus = "CLOSED"
)

// PlaceholderResumo is the summary shown when the conversation row is not joined
const PlaceholderResumo = "Conversa relacionada à pendência"

// Conversa is the conversation a pendência originated from
type Conversa struct {
	ID             int64          `gorm:"column:id_conversa;primaryKey" json:"id_conversa"`
	IDPessoa       int64          `gorm:"column:id_pessoa" json:"id_pessoa"`
	Canal          Canal          `gorm:"column:canal;type:varchar(20)" json:"canal"`
	Status         ConversaStatus `gorm:"column:status;type:varchar(20)" json:"status"`
	StartedAt      time.Time      `gorm:"column:started_at" json:"started_at"`
	EndedAt        *time.Time     `gorm:"column:ended_at" json:"ended_at,omitempty"`
	LastMessageAt  *time.Time     `gorm:"column:last_message_at" json:"last_message_at,omitempty"`
	Topic          *string        `gorm:"column:topic" json:"topic,omitempty"`
	ResumoConversa *string        `gorm:"column:resumo_conversa" json:"resumo_conversa"`
}

// TableName specifies the table name for Conversa
func (Conversa) TableName() string {
	return Schema + ".conversas"
}

// PlaceholderConversa builds neutral conversation details for a pendência
func PlaceholderConversa(idConversa, idPessoa int64, startedAt time.Time) *Conversa {
	resumo := PlaceholderResumo
	return &Conversa{
		ID:             idConversa,
		IDPessoa:       idPessoa,
		Canal:          CanalWhatsApp,
		Status:         ConversaOpen,
		StartedAt:      startedAt,
		ResumoConversa: &resumo,
	}
}
